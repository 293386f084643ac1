package search

import (
	"context"

	"github.com/davicafu/listingsearch/internal/listing/domain"
	sharedDomain "github.com/davicafu/listingsearch/shared/domain"
	sharedQuery "github.com/davicafu/listingsearch/shared/platform/query"
	"go.uber.org/zap"
)

// AdvancedStrategy combina con AND una condición por cada campo informado.
type AdvancedStrategy struct {
	repo domain.ListingSearchRepository
	log  *zap.Logger
}

func NewAdvancedStrategy(repo domain.ListingSearchRepository, log *zap.Logger) *AdvancedStrategy {
	return &AdvancedStrategy{repo: repo, log: log}
}

// AdvancedPredicates traduce los criterios a condiciones neutrales.
// Un status que no corresponde a ningún valor conocido no genera condición.
func AdvancedPredicates(criteria domain.SearchCriteria) sharedDomain.Conditions {
	var parts []sharedDomain.Criteria

	if v, ok := criteria.Developer(); ok {
		parts = append(parts, domain.DeveloperCriteria{Developer: v})
	}
	if v, ok := criteria.Investment(); ok {
		parts = append(parts, domain.InvestmentCriteria{Investment: v})
	}
	if v, ok := criteria.Floor(); ok {
		parts = append(parts, domain.FloorCriteria{Floor: v})
	}
	if v, ok := criteria.Status(); ok {
		if status, known := domain.ParseStatus(v); known {
			parts = append(parts, domain.StatusCriteria{Status: status})
		}
	}
	parts = append(parts,
		domain.LocationOf(criteria),
		domain.PriceRangeOf(criteria),
		domain.AreaRangeOf(criteria),
	)

	return sharedDomain.Conditions(sharedDomain.And(parts...).ToConditions())
}

// effectiveSort deja solo la última clave: cada clave sustituye a la anterior.
func effectiveSort(sorts []sharedQuery.Sort) []sharedQuery.Sort {
	if len(sorts) == 0 {
		return nil
	}
	return []sharedQuery.Sort{sorts[len(sorts)-1]}
}

func (s *AdvancedStrategy) Filter(ctx context.Context, criteria domain.SearchCriteria, req sharedQuery.PageRequest) (*domain.ListingPage, error) {
	content, err := s.repo.ListByCriteria(ctx, AdvancedPredicates(criteria), req.OffsetPagination(), effectiveSort(req.Sort))
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountByCriteria(ctx, AdvancedPredicates(criteria))
	if err != nil {
		return nil, err
	}

	s.log.Debug("advanced search",
		zap.Int("returned", len(content)),
		zap.Int64("total", total))

	return sharedQuery.NewPage(content, req, total), nil
}
