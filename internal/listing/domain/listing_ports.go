package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	sharedDomain "github.com/davicafu/listingsearch/shared/domain"
	sharedQuery "github.com/davicafu/listingsearch/shared/platform/query"
)

// ---------- Errores de dominio ----------
var (
	ErrListingNotFound      = errors.New("listing not found")
	ErrListingAlreadyExists = errors.New("listing already exists")
	ErrInvalidListing       = errors.New("invalid listing")
	ErrNoStrategy           = errors.New("no strategy for type")
)

// ---------- Interfaces (Ports) ----------

// ListingSearchRepository es lo que el núcleo de búsqueda necesita del almacenamiento.
type ListingSearchRepository interface {
	// Búsquedas indexadas por igualdad, paginadas y ordenadas según req.
	FindByDeveloper(ctx context.Context, developer string, req sharedQuery.PageRequest) (*ListingPage, error)
	FindByInvestment(ctx context.Context, investment string, req sharedQuery.PageRequest) (*ListingPage, error)
	FindAll(ctx context.Context, req sharedQuery.PageRequest) (*ListingPage, error)

	// ListByCriteria aplica las condiciones con AND, el orden y la paginación.
	// Sin claves de orden el repositorio ordena por id.
	ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria, pagination sharedQuery.Pagination, sorts []sharedQuery.Sort) ([]*Listing, error)

	// CountByCriteria cuenta las coincidencias de las mismas condiciones sin paginar.
	CountByCriteria(ctx context.Context, criteria sharedDomain.Criteria) (int64, error)
}

// ListingRepository define las operaciones persistentes para Listing.
type ListingRepository interface {
	ListingSearchRepository

	// Create asigna l.ID, CreatedAt y UpdatedAt, y completa evt.AggregateID antes de guardar el evento.
	Create(ctx context.Context, l *Listing, evt sharedDomain.OutboxEvent) error

	// Debe devolver ErrListingNotFound si no existe.
	GetByID(ctx context.Context, id int64) (*Listing, error)

	// Debe devolver ErrListingNotFound si no existe. Actualiza UpdatedAt.
	Update(ctx context.Context, l *Listing, evt sharedDomain.OutboxEvent) error

	// Debe devolver ErrListingNotFound si no existe.
	DeleteByID(ctx context.Context, id int64, evt sharedDomain.OutboxEvent) error
}

// SearchRecord describe una búsqueda ejecutada, para analítica.
type SearchRecord struct {
	Strategy      StrategyType
	Auto          bool
	Criteria      map[string]string
	Page          int
	Size          int
	Sort          []string
	TotalElements int64
	Returned      int
	Duration      time.Duration
	ExecutedAt    time.Time
}

type SearchAnalyticsRepository interface {
	LogSearch(ctx context.Context, rec SearchRecord) error
}

// StrategyUsage resume el uso de una estrategia en un intervalo.
type StrategyUsage struct {
	Strategy     StrategyType  `json:"strategy"`
	Searches     uint64        `json:"searches"`
	AutoSearches uint64        `json:"autoSearches"`
	AvgResults   float64       `json:"avgResults"`
	AvgDuration  time.Duration `json:"avgDurationNs"`
}

// SearchAnalyticsReader consulta la analítica agregada de búsquedas.
type SearchAnalyticsReader interface {
	StrategyUsage(ctx context.Context, from, to time.Time) ([]StrategyUsage, error)
}

// ---------- Helpers comunes (cache keys, etc.) ----------

func ListingCacheKeyByID(id int64) string {
	return fmt.Sprintf("listing:id:%d", id)
}
