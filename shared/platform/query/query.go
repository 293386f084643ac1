package query

import (
	"errors"
	"fmt"
	"math"
)

// ---------- Tipos de filtrado / paginación / ordenamiento ----------

var ErrInvalidPageRequest = errors.New("invalid page request")

// OffsetPagination para paginación clásica
type OffsetPagination struct {
	Limit  int
	Offset int
}

// Interfaz genérica para paginación
type Pagination interface{}

// Sort indica campo y dirección.
type Sort struct {
	Field string // ej. "price", "created_at"
	Desc  bool
}

// String devuelve la forma "campo,dir" que se acepta en query params.
func (s Sort) String() string {
	if s.Desc {
		return s.Field + ",desc"
	}
	return s.Field + ",asc"
}

// PageRequest es la petición de página: índice base cero, tamaño y claves de orden.
type PageRequest struct {
	Page int
	Size int
	Sort []Sort
}

// NewPageRequest construye una petición validada.
func NewPageRequest(page, size int, sorts ...Sort) (PageRequest, error) {
	req := PageRequest{Page: page, Size: size, Sort: sorts}
	if err := req.Validate(); err != nil {
		return PageRequest{}, err
	}
	return req, nil
}

func (r PageRequest) Validate() error {
	if r.Page < 0 {
		return fmt.Errorf("%w: page must be >= 0, got %d", ErrInvalidPageRequest, r.Page)
	}
	if r.Size <= 0 {
		return fmt.Errorf("%w: size must be > 0, got %d", ErrInvalidPageRequest, r.Size)
	}
	// Page*Size debe caber en int para que el offset no dé la vuelta.
	if r.Page > math.MaxInt/r.Size {
		return fmt.Errorf("%w: page %d too large for size %d", ErrInvalidPageRequest, r.Page, r.Size)
	}
	for _, s := range r.Sort {
		if s.Field == "" {
			return fmt.Errorf("%w: empty sort field", ErrInvalidPageRequest)
		}
	}
	return nil
}

func (r PageRequest) Offset() int {
	return r.Page * r.Size
}

// OffsetPagination traduce la página a offset/limit.
func (r PageRequest) OffsetPagination() OffsetPagination {
	return OffsetPagination{Limit: r.Size, Offset: r.Offset()}
}

// ErrInvalidSortField se devuelve cuando una clave de orden no corresponde a un campo ordenable.
var ErrInvalidSortField = errors.New("invalid sort field")
