package domain

import (
	"context"
	"fmt"
	"strings"

	sharedQuery "github.com/davicafu/listingsearch/shared/platform/query"
)

// StrategyType identifica una de las estrategias fijas de búsqueda.
type StrategyType string

const (
	StrategySimple     StrategyType = "SIMPLE"
	StrategyByLocation StrategyType = "BY_LOCATION"
	StrategyAdvanced   StrategyType = "ADVANCED"
)

// StrategyAuto no es una estrategia registrable: pide la selección automática.
const StrategyAuto = "AUTO"

// ParseStrategyType acepta el nombre sin distinguir mayúsculas.
func ParseStrategyType(s string) (StrategyType, error) {
	switch StrategyType(strings.ToUpper(strings.TrimSpace(s))) {
	case StrategySimple:
		return StrategySimple, nil
	case StrategyByLocation:
		return StrategyByLocation, nil
	case StrategyAdvanced:
		return StrategyAdvanced, nil
	}
	return "", fmt.Errorf("%w: %q", ErrNoStrategy, s)
}

// ListingPage es el sobre paginado que devuelven las estrategias.
type ListingPage = sharedQuery.Page[*Listing]

// Filter es el contrato común de las estrategias.
type Filter interface {
	Filter(ctx context.Context, criteria SearchCriteria, req sharedQuery.PageRequest) (*ListingPage, error)
}

// FilterFunc permite registrar una función como estrategia.
type FilterFunc func(ctx context.Context, criteria SearchCriteria, req sharedQuery.PageRequest) (*ListingPage, error)

func (f FilterFunc) Filter(ctx context.Context, criteria SearchCriteria, req sharedQuery.PageRequest) (*ListingPage, error) {
	return f(ctx, criteria, req)
}
