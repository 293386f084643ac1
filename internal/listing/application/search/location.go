package search

import (
	"context"

	"github.com/davicafu/listingsearch/internal/listing/domain"
	sharedDomain "github.com/davicafu/listingsearch/shared/domain"
	sharedQuery "github.com/davicafu/listingsearch/shared/platform/query"
	"go.uber.org/zap"
)

// LocationStrategy filtra por igualdad en region, city y district.
// El resto de campos se ignora aunque venga informado.
type LocationStrategy struct {
	repo domain.ListingSearchRepository
	log  *zap.Logger
}

func NewLocationStrategy(repo domain.ListingSearchRepository, log *zap.Logger) *LocationStrategy {
	return &LocationStrategy{repo: repo, log: log}
}

// LocationPredicates construye las condiciones de ubicación presentes.
func LocationPredicates(criteria domain.SearchCriteria) sharedDomain.Conditions {
	return sharedDomain.Conditions(domain.LocationOf(criteria).ToConditions())
}

func (s *LocationStrategy) Filter(ctx context.Context, criteria domain.SearchCriteria, req sharedQuery.PageRequest) (*domain.ListingPage, error) {
	content, err := s.repo.ListByCriteria(ctx, LocationPredicates(criteria), req.OffsetPagination(), nil)
	if err != nil {
		return nil, err
	}

	// El conteo se construye de nuevo, con la misma función.
	total, err := s.repo.CountByCriteria(ctx, LocationPredicates(criteria))
	if err != nil {
		return nil, err
	}

	s.log.Debug("location search",
		zap.Int("returned", len(content)),
		zap.Int64("total", total))

	return sharedQuery.NewPage(content, req, total), nil
}
