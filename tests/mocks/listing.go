package mocks

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	listingDomain "github.com/davicafu/listingsearch/internal/listing/domain"
	sharedDomain "github.com/davicafu/listingsearch/shared/domain"
	sharedQuery "github.com/davicafu/listingsearch/shared/platform/query"
	"github.com/shopspring/decimal"
)

// InMemoryListingRepo simula ListingRepository con outbox incluido.
// Calls registra qué método de búsqueda se invocó, para verificar el despacho.
type InMemoryListingRepo struct {
	Listings map[int64]*listingDomain.Listing
	Outbox   []sharedDomain.OutboxEvent
	Calls    []string
	// LastSorts guarda las claves de orden recibidas en la última llamada de listado.
	LastSorts []sharedQuery.Sort
	// Err, si no es nil, se devuelve en todas las operaciones de lectura.
	Err    error
	nextID int64
	mu     sync.Mutex
}

func NewInMemoryListingRepo() *InMemoryListingRepo {
	return &InMemoryListingRepo{
		Listings: make(map[int64]*listingDomain.Listing),
		Outbox:   []sharedDomain.OutboxEvent{},
	}
}

// Seed inserta registros sin generar eventos; respeta el ID si viene informado.
func (r *InMemoryListingRepo) Seed(listings ...*listingDomain.Listing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range listings {
		if l.ID == 0 {
			r.nextID++
			l.ID = r.nextID
		} else if l.ID > r.nextID {
			r.nextID = l.ID
		}
		if l.Status == "" {
			l.Status = listingDomain.StatusAvailable
		}
		r.Listings[l.ID] = l
	}
}

// ResetCalls limpia el registro de llamadas.
func (r *InMemoryListingRepo) ResetCalls() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = nil
	r.LastSorts = nil
}

// --- CRUD + Outbox ---

func (r *InMemoryListingRepo) Create(ctx context.Context, l *listingDomain.Listing, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.ID != 0 {
		if _, ok := r.Listings[l.ID]; ok {
			return listingDomain.ErrListingAlreadyExists
		}
	}
	r.nextID++
	l.ID = r.nextID
	now := time.Now().UTC()
	l.CreatedAt, l.UpdatedAt = now, now
	r.Listings[l.ID] = l

	evt.AggregateID = strconv.FormatInt(l.ID, 10)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryListingRepo) GetByID(ctx context.Context, id int64) (*listingDomain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	l, ok := r.Listings[id]
	if !ok {
		return nil, listingDomain.ErrListingNotFound
	}
	return l, nil
}

func (r *InMemoryListingRepo) Update(ctx context.Context, l *listingDomain.Listing, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.Listings[l.ID]
	if !ok {
		return listingDomain.ErrListingNotFound
	}
	l.CreatedAt = prev.CreatedAt
	l.UpdatedAt = time.Now().UTC()
	r.Listings[l.ID] = l
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryListingRepo) DeleteByID(ctx context.Context, id int64, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Listings[id]; !ok {
		return listingDomain.ErrListingNotFound
	}
	delete(r.Listings, id)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

// --- Búsqueda ---

func (r *InMemoryListingRepo) FindByDeveloper(ctx context.Context, developer string, req sharedQuery.PageRequest) (*listingDomain.ListingPage, error) {
	return r.findPage(ctx, "FindByDeveloper", listingDomain.DeveloperCriteria{Developer: developer}, req)
}

func (r *InMemoryListingRepo) FindByInvestment(ctx context.Context, investment string, req sharedQuery.PageRequest) (*listingDomain.ListingPage, error) {
	return r.findPage(ctx, "FindByInvestment", listingDomain.InvestmentCriteria{Investment: investment}, req)
}

func (r *InMemoryListingRepo) FindAll(ctx context.Context, req sharedQuery.PageRequest) (*listingDomain.ListingPage, error) {
	return r.findPage(ctx, "FindAll", nil, req)
}

func (r *InMemoryListingRepo) findPage(ctx context.Context, call string, criteria sharedDomain.Criteria, req sharedQuery.PageRequest) (*listingDomain.ListingPage, error) {
	r.mu.Lock()
	r.Calls = append(r.Calls, call)
	r.mu.Unlock()

	content, err := r.list(criteria, req.OffsetPagination(), req.Sort)
	if err != nil {
		return nil, err
	}
	total, err := r.count(criteria)
	if err != nil {
		return nil, err
	}
	return sharedQuery.NewPage(content, req, total), nil
}

func (r *InMemoryListingRepo) ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria, pagination sharedQuery.Pagination, sorts []sharedQuery.Sort) ([]*listingDomain.Listing, error) {
	r.mu.Lock()
	r.Calls = append(r.Calls, "ListByCriteria")
	r.mu.Unlock()
	return r.list(criteria, pagination, sorts)
}

func (r *InMemoryListingRepo) CountByCriteria(ctx context.Context, criteria sharedDomain.Criteria) (int64, error) {
	r.mu.Lock()
	r.Calls = append(r.Calls, "CountByCriteria")
	r.mu.Unlock()
	return r.count(criteria)
}

func (r *InMemoryListingRepo) list(criteria sharedDomain.Criteria, pagination sharedQuery.Pagination, sorts []sharedQuery.Sort) ([]*listingDomain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	r.LastSorts = append([]sharedQuery.Sort(nil), sorts...)

	list, err := r.match(criteria)
	if err != nil {
		return nil, err
	}

	for _, s := range sorts {
		if _, ok := listingField(&listingDomain.Listing{}, s.Field); !ok {
			return nil, fmt.Errorf("%w: %s", sharedQuery.ErrInvalidSortField, s.Field)
		}
	}

	// Ordenar: claves en orden y desempate por id
	sort.SliceStable(list, func(i, j int) bool {
		for _, s := range sorts {
			a, _ := listingField(list[i], s.Field)
			b, _ := listingField(list[j], s.Field)
			c, _ := compareValues(a, b)
			if c == 0 {
				continue
			}
			if s.Desc {
				return c > 0
			}
			return c < 0
		}
		return list[i].ID < list[j].ID
	})

	// Paginar
	if p, ok := pagination.(sharedQuery.OffsetPagination); ok {
		start := p.Offset
		if start > len(list) {
			return []*listingDomain.Listing{}, nil
		}
		end := start + p.Limit
		if end > len(list) {
			end = len(list)
		}
		return list[start:end], nil
	}

	return list, nil
}

func (r *InMemoryListingRepo) count(criteria sharedDomain.Criteria) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	list, err := r.match(criteria)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (r *InMemoryListingRepo) match(criteria sharedDomain.Criteria) ([]*listingDomain.Listing, error) {
	conds := sharedDomain.ConditionsOf(criteria)
	list := make([]*listingDomain.Listing, 0, len(r.Listings))
	for _, l := range r.Listings {
		ok, err := matchListing(l, conds)
		if err != nil {
			return nil, err
		}
		if ok {
			list = append(list, l)
		}
	}
	return list, nil
}

// --- Lógica de filtrado del mock ---

func matchListing(l *listingDomain.Listing, conds []sharedDomain.Criterion) (bool, error) {
	for _, cond := range conds {
		actual, ok := listingField(l, cond.Field)
		if !ok {
			return false, fmt.Errorf("unknown field %q", cond.Field)
		}

		c, ok := compareValues(actual, cond.Value)
		if !ok {
			return false, fmt.Errorf("cannot compare %s with %T", cond.Field, cond.Value)
		}

		var match bool
		switch cond.Op {
		case sharedDomain.OpEq:
			match = c == 0
		case sharedDomain.OpGte:
			match = c >= 0
		case sharedDomain.OpLte:
			match = c <= 0
		default:
			return false, fmt.Errorf("unsupported operator %s", cond.Op)
		}
		if !match {
			return false, nil
		}
	}
	return true, nil
}

func listingField(l *listingDomain.Listing, field string) (interface{}, bool) {
	switch strings.ToLower(field) {
	case listingDomain.FieldID:
		return l.ID, true
	case listingDomain.FieldDeveloper:
		return l.Developer, true
	case listingDomain.FieldInvestment:
		return l.Investment, true
	case listingDomain.FieldUnitNumber:
		return l.UnitNumber, true
	case listingDomain.FieldArea:
		return l.Area, true
	case listingDomain.FieldPrice:
		return l.Price, true
	case listingDomain.FieldRegion:
		return l.Region, true
	case listingDomain.FieldCity:
		return l.City, true
	case listingDomain.FieldDistrict:
		return l.District, true
	case listingDomain.FieldFloor:
		return l.Floor, true
	case listingDomain.FieldStatus:
		return l.Status, true
	case listingDomain.FieldCreatedAt:
		return l.CreatedAt, true
	case listingDomain.FieldUpdatedAt:
		return l.UpdatedAt, true
	}
	return nil, false
}

func compareValues(a, b interface{}) (int, bool) {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return strings.Compare(av, bv), ok
	case listingDomain.Status:
		switch bv := b.(type) {
		case listingDomain.Status:
			return strings.Compare(string(av), string(bv)), true
		case string:
			return strings.Compare(string(av), bv), true
		}
	case int:
		if bv, ok := b.(int); ok {
			return compareInt(int64(av), int64(bv)), true
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return compareInt(av, bv), true
		}
	case decimal.Decimal:
		if bv, ok := b.(decimal.Decimal); ok {
			return av.Cmp(bv), true
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv), true
		}
	}
	return 0, false
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Verificación estática.
var _ listingDomain.ListingRepository = (*InMemoryListingRepo)(nil)
