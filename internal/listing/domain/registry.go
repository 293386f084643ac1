package domain

import (
	"reflect"

	sharedEvents "github.com/davicafu/listingsearch/shared/events"
)

// Las constantes de los tipos de evento se definen aquí, como valores string.
const (
	ListingCreated = "listing.created"
	ListingUpdated = "listing.updated"
	ListingDeleted = "listing.deleted"
)

const ListingTopic = "listing"

func NewEventRegistry() map[string]sharedEvents.EventMetadata {
	return map[string]sharedEvents.EventMetadata{
		ListingCreated: {
			Type:  reflect.TypeOf(Listing{}),
			Topic: ListingTopic,
		},
		ListingUpdated: {
			Type:  reflect.TypeOf(Listing{}),
			Topic: ListingTopic,
		},
		ListingDeleted: {
			Type:  reflect.TypeOf(sharedEvents.ListingDeleted{}),
			Topic: ListingTopic,
		},
	}
}
