package search

import (
	"context"

	"github.com/davicafu/listingsearch/internal/listing/domain"
	sharedQuery "github.com/davicafu/listingsearch/shared/platform/query"
	"go.uber.org/zap"
)

// SimpleStrategy resuelve por las búsquedas indexadas del repositorio.
// Solo mira developer e investment; developer tiene prioridad.
type SimpleStrategy struct {
	repo domain.ListingSearchRepository
	log  *zap.Logger
}

func NewSimpleStrategy(repo domain.ListingSearchRepository, log *zap.Logger) *SimpleStrategy {
	return &SimpleStrategy{repo: repo, log: log}
}

func (s *SimpleStrategy) Filter(ctx context.Context, criteria domain.SearchCriteria, req sharedQuery.PageRequest) (*domain.ListingPage, error) {
	if developer, ok := criteria.Developer(); ok {
		s.log.Debug("simple search by developer", zap.String("developer", developer))
		return s.repo.FindByDeveloper(ctx, developer, req)
	}
	if investment, ok := criteria.Investment(); ok {
		s.log.Debug("simple search by investment", zap.String("investment", investment))
		return s.repo.FindByInvestment(ctx, investment, req)
	}
	s.log.Debug("simple search without filters")
	return s.repo.FindAll(ctx, req)
}
