package events

// ListingRef es la parte común de los eventos de listing que solo necesita el ID.
type ListingRef struct {
	ID int64 `json:"id"`
}

type ListingDeleted struct {
	ID int64 `json:"id"`
}
