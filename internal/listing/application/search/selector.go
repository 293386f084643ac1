package search

import (
	"context"
	"fmt"

	"github.com/davicafu/listingsearch/internal/listing/domain"
	sharedQuery "github.com/davicafu/listingsearch/shared/platform/query"
	"go.uber.org/zap"
)

// Selector despacha cada búsqueda a exactamente una estrategia registrada.
// El registro se monta al arrancar y no cambia después.
type Selector struct {
	strategies map[domain.StrategyType]domain.Filter
	log        *zap.Logger
}

func NewSelector(strategies map[domain.StrategyType]domain.Filter, log *zap.Logger) *Selector {
	registry := make(map[domain.StrategyType]domain.Filter, len(strategies))
	for t, f := range strategies {
		registry[t] = f
	}
	return &Selector{strategies: registry, log: log}
}

// DefaultSelector registra las tres estrategias sobre el mismo repositorio.
func DefaultSelector(repo domain.ListingSearchRepository, log *zap.Logger) *Selector {
	return NewSelector(map[domain.StrategyType]domain.Filter{
		domain.StrategySimple:     NewSimpleStrategy(repo, log),
		domain.StrategyByLocation: NewLocationStrategy(repo, log),
		domain.StrategyAdvanced:   NewAdvancedStrategy(repo, log),
	}, log)
}

// ExecuteSearch ejecuta la estrategia pedida. Si no hay ninguna registrada
// para ese tipo devuelve ErrNoStrategy.
func (s *Selector) ExecuteSearch(ctx context.Context, strategy domain.StrategyType, criteria domain.SearchCriteria, req sharedQuery.PageRequest) (*domain.ListingPage, error) {
	filter, ok := s.strategies[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoStrategy, strategy)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.log.Debug("executing search strategy", zap.String("strategy", string(strategy)))
	return filter.Filter(ctx, criteria, req)
}

// ExecuteAutoSearch elige la estrategia según los campos informados.
func (s *Selector) ExecuteAutoSearch(ctx context.Context, criteria domain.SearchCriteria, req sharedQuery.PageRequest) (*domain.ListingPage, error) {
	return s.ExecuteSearch(ctx, Classify(criteria), criteria, req)
}

// Classify aplica la tabla de decisión: solo ubicación → BY_LOCATION,
// solo developer/investment → SIMPLE, cualquier otro caso (vacío incluido) → ADVANCED.
func Classify(criteria domain.SearchCriteria) domain.StrategyType {
	hasLocation := criteria.HasLocation()
	hasSimple := criteria.HasSimple()
	hasOther := criteria.HasOther()

	switch {
	case hasLocation && !hasSimple && !hasOther:
		return domain.StrategyByLocation
	case !hasLocation && hasSimple && !hasOther:
		return domain.StrategySimple
	default:
		return domain.StrategyAdvanced
	}
}
