package search

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/davicafu/listingsearch/internal/listing/domain"
	sharedDomain "github.com/davicafu/listingsearch/shared/domain"
	sharedQuery "github.com/davicafu/listingsearch/shared/platform/query"
	"github.com/davicafu/listingsearch/tests/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Registros A, B y C del escenario base.
func seededRepo() *mocks.InMemoryListingRepo {
	repo := mocks.NewInMemoryListingRepo()
	repo.Seed(
		&domain.Listing{ID: 1, Developer: "Acme", Investment: "Sunrise", Price: decimal.NewFromInt(500000), Area: decimal.NewFromInt(80), City: "Springfield", Region: "North", Floor: 2, Status: domain.StatusAvailable},
		&domain.Listing{ID: 2, Developer: "Acme", Investment: "Skyline", Price: decimal.NewFromInt(900000), Area: decimal.NewFromInt(120), City: "Metropolis", Region: "East", Floor: 7, Status: domain.StatusReserved},
		&domain.Listing{ID: 3, Developer: "Globex", Investment: "Sunrise", Price: decimal.NewFromInt(300000), Area: decimal.NewFromInt(55), City: "Springfield", Region: "North", Floor: 0, Status: domain.StatusSold},
	)
	repo.ResetCalls()
	return repo
}

func ids(page *domain.ListingPage) []int64 {
	out := make([]int64, 0, len(page.Content))
	for _, l := range page.Content {
		out = append(out, l.ID)
	}
	return out
}

func pageReq(t *testing.T, page, size int, sorts ...sharedQuery.Sort) sharedQuery.PageRequest {
	t.Helper()
	req, err := sharedQuery.NewPageRequest(page, size, sorts...)
	require.NoError(t, err)
	return req
}

func TestAutoSearch_Scenario(t *testing.T) {
	ctx := context.Background()
	req := pageReq(t, 0, 10)

	tests := []struct {
		name     string
		criteria domain.SearchCriteria
		strategy domain.StrategyType
		want     []int64
	}{
		{
			name:     "developer only goes to simple",
			criteria: domain.NewSearchCriteria(domain.WithDeveloper("Acme")),
			strategy: domain.StrategySimple,
			want:     []int64{1, 2},
		},
		{
			name:     "city only goes to location",
			criteria: domain.NewSearchCriteria(domain.WithCity("Springfield")),
			strategy: domain.StrategyByLocation,
			want:     []int64{1, 3},
		},
		{
			name:     "developer and min price goes to advanced",
			criteria: domain.NewSearchCriteria(domain.WithDeveloper("Acme"), domain.WithMinPrice(decimal.NewFromInt(600000))),
			strategy: domain.StrategyAdvanced,
			want:     []int64{2},
		},
		{
			name:     "empty criteria goes to advanced",
			criteria: domain.NewSearchCriteria(),
			strategy: domain.StrategyAdvanced,
			want:     []int64{1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selector := DefaultSelector(seededRepo(), zap.NewNop())

			assert.Equal(t, tt.strategy, Classify(tt.criteria))

			page, err := selector.ExecuteAutoSearch(ctx, tt.criteria, req)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, ids(page))
			assert.Equal(t, int64(len(tt.want)), page.TotalElements)
		})
	}
}

func TestClassify_DecisionTable(t *testing.T) {
	one := decimal.NewFromInt(1)

	tests := []struct {
		name     string
		criteria domain.SearchCriteria
		want     domain.StrategyType
	}{
		{"empty", domain.NewSearchCriteria(), domain.StrategyAdvanced},
		{"region", domain.NewSearchCriteria(domain.WithRegion("North")), domain.StrategyByLocation},
		{"city and district", domain.NewSearchCriteria(domain.WithCity("x"), domain.WithDistrict("y")), domain.StrategyByLocation},
		{"investment", domain.NewSearchCriteria(domain.WithInvestment("Sunrise")), domain.StrategySimple},
		{"developer and investment", domain.NewSearchCriteria(domain.WithDeveloper("a"), domain.WithInvestment("b")), domain.StrategySimple},
		{"floor", domain.NewSearchCriteria(domain.WithFloor(3)), domain.StrategyAdvanced},
		{"status", domain.NewSearchCriteria(domain.WithStatus("SOLD")), domain.StrategyAdvanced},
		{"max area", domain.NewSearchCriteria(domain.WithMaxArea(one)), domain.StrategyAdvanced},
		{"location and simple", domain.NewSearchCriteria(domain.WithCity("x"), domain.WithDeveloper("a")), domain.StrategyAdvanced},
		{"location and other", domain.NewSearchCriteria(domain.WithCity("x"), domain.WithMinPrice(one)), domain.StrategyAdvanced},
		{"all buckets", domain.NewSearchCriteria(domain.WithCity("x"), domain.WithDeveloper("a"), domain.WithFloor(1)), domain.StrategyAdvanced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.criteria))
		})
	}
}

func TestSimple_EqualsDirectDeveloperLookup(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo()
	req := pageReq(t, 0, 10)

	direct, err := repo.FindByDeveloper(ctx, "Acme", req)
	require.NoError(t, err)

	page, err := DefaultSelector(repo, zap.NewNop()).ExecuteAutoSearch(ctx, domain.NewSearchCriteria(domain.WithDeveloper("Acme")), req)
	require.NoError(t, err)
	assert.Equal(t, direct, page)
}

func TestSimple_DeveloperTakesPriority(t *testing.T) {
	repo := seededRepo()
	selector := DefaultSelector(repo, zap.NewNop())

	criteria := domain.NewSearchCriteria(domain.WithDeveloper("Globex"), domain.WithInvestment("Skyline"))
	page, err := selector.ExecuteSearch(context.Background(), domain.StrategySimple, criteria, pageReq(t, 0, 10))
	require.NoError(t, err)

	// Investment no se aplica: Globex no tiene Skyline y aun así se devuelve C.
	assert.Equal(t, []int64{3}, ids(page))
	assert.Equal(t, []string{"FindByDeveloper"}, repo.Calls)
}

func TestSimple_InvestmentAndFallback(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo()
	selector := DefaultSelector(repo, zap.NewNop())

	page, err := selector.ExecuteSearch(ctx, domain.StrategySimple, domain.NewSearchCriteria(domain.WithInvestment("Sunrise")), pageReq(t, 0, 10))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 3}, ids(page))

	// Los demás campos se ignoran y se listan todos
	page, err = selector.ExecuteSearch(ctx, domain.StrategySimple, domain.NewSearchCriteria(domain.WithCity("Metropolis")), pageReq(t, 0, 10))
	require.NoError(t, err)
	assert.Len(t, page.Content, 3)
	assert.Equal(t, []string{"FindByInvestment", "FindAll"}, repo.Calls)
}

func TestLocation_IgnoresOtherFields(t *testing.T) {
	selector := DefaultSelector(seededRepo(), zap.NewNop())

	criteria := domain.NewSearchCriteria(
		domain.WithCity("Springfield"),
		domain.WithDeveloper("Globex"),
		domain.WithMaxPrice(decimal.NewFromInt(1)),
	)
	page, err := selector.ExecuteSearch(context.Background(), domain.StrategyByLocation, criteria, pageReq(t, 0, 10))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(page))
}

func TestLocation_AndsPresentFields(t *testing.T) {
	selector := DefaultSelector(seededRepo(), zap.NewNop())
	ctx := context.Background()

	page, err := selector.ExecuteAutoSearch(ctx, domain.NewSearchCriteria(domain.WithRegion("North"), domain.WithCity("Springfield")), pageReq(t, 0, 10))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(page))

	page, err = selector.ExecuteAutoSearch(ctx, domain.NewSearchCriteria(domain.WithRegion("North"), domain.WithCity("Metropolis")), pageReq(t, 0, 10))
	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.Equal(t, int64(0), page.TotalElements)
	assert.Equal(t, 0, page.TotalPages)
	assert.True(t, page.First)
	assert.True(t, page.Last)
}

func TestLocationPredicates(t *testing.T) {
	conds := LocationPredicates(domain.NewSearchCriteria(domain.WithDistrict("Old Town"), domain.WithFloor(3)))
	assert.Equal(t, sharedDomain.Conditions{sharedDomain.Eq(domain.FieldDistrict, "Old Town")}, conds)
}

func TestAdvancedPredicates(t *testing.T) {
	minPrice := decimal.NewFromInt(100)
	maxArea := decimal.NewFromInt(90)

	conds := AdvancedPredicates(domain.NewSearchCriteria(
		domain.WithDeveloper("Acme"),
		domain.WithFloor(2),
		domain.WithStatus("reserved"),
		domain.WithCity("Springfield"),
		domain.WithMinPrice(minPrice),
		domain.WithMaxArea(maxArea),
	))

	assert.ElementsMatch(t, sharedDomain.Conditions{
		sharedDomain.Eq(domain.FieldDeveloper, "Acme"),
		sharedDomain.Eq(domain.FieldFloor, 2),
		sharedDomain.Eq(domain.FieldStatus, domain.StatusReserved),
		sharedDomain.Eq(domain.FieldCity, "Springfield"),
		sharedDomain.Gte(domain.FieldPrice, minPrice),
		sharedDomain.Lte(domain.FieldArea, maxArea),
	}, conds)

	assert.Empty(t, AdvancedPredicates(domain.NewSearchCriteria()))
}

func TestAdvanced_UnknownStatusIsSkipped(t *testing.T) {
	ctx := context.Background()
	selector := DefaultSelector(seededRepo(), zap.NewNop())
	req := pageReq(t, 0, 10)

	base := domain.NewSearchCriteria(domain.WithCity("Springfield"), domain.WithMinPrice(decimal.NewFromInt(1)))
	withBadStatus := domain.NewSearchCriteria(domain.WithCity("Springfield"), domain.WithMinPrice(decimal.NewFromInt(1)), domain.WithStatus("NOT_A_STATUS"))

	expected, err := selector.ExecuteSearch(ctx, domain.StrategyAdvanced, base, req)
	require.NoError(t, err)

	page, err := selector.ExecuteSearch(ctx, domain.StrategyAdvanced, withBadStatus, req)
	require.NoError(t, err)
	assert.Equal(t, expected, page)
	assert.Equal(t, []int64{1, 3}, ids(page))
}

func TestAdvanced_StatusIsCaseInsensitive(t *testing.T) {
	selector := DefaultSelector(seededRepo(), zap.NewNop())

	page, err := selector.ExecuteAutoSearch(context.Background(), domain.NewSearchCriteria(domain.WithStatus("sold")), pageReq(t, 0, 10))
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids(page))
}

func TestAdvanced_InclusiveRanges(t *testing.T) {
	selector := DefaultSelector(seededRepo(), zap.NewNop())
	ctx := context.Background()

	criteria := domain.NewSearchCriteria(
		domain.WithMinPrice(decimal.NewFromInt(500000)),
		domain.WithMaxPrice(decimal.NewFromInt(900000)),
	)
	page, err := selector.ExecuteAutoSearch(ctx, criteria, pageReq(t, 0, 10))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(page))

	criteria = domain.NewSearchCriteria(domain.WithMinArea(decimal.RequireFromString("55")), domain.WithMaxArea(decimal.RequireFromString("80.0")))
	page, err = selector.ExecuteAutoSearch(ctx, criteria, pageReq(t, 0, 10))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(page))
}

func TestAdvanced_OnlyLastSortKeyApplies(t *testing.T) {
	repo := seededRepo()
	selector := DefaultSelector(repo, zap.NewNop())

	req := pageReq(t, 0, 10,
		sharedQuery.Sort{Field: domain.FieldCity},
		sharedQuery.Sort{Field: domain.FieldPrice, Desc: true},
	)
	page, err := selector.ExecuteSearch(context.Background(), domain.StrategyAdvanced, domain.NewSearchCriteria(), req)
	require.NoError(t, err)

	assert.Equal(t, []sharedQuery.Sort{{Field: domain.FieldPrice, Desc: true}}, repo.LastSorts)
	assert.Equal(t, []int64{2, 1, 3}, ids(page))
}

func TestLocation_AppliesNoSort(t *testing.T) {
	repo := seededRepo()
	selector := DefaultSelector(repo, zap.NewNop())

	req := pageReq(t, 0, 10, sharedQuery.Sort{Field: domain.FieldPrice, Desc: true})
	page, err := selector.ExecuteSearch(context.Background(), domain.StrategyByLocation, domain.NewSearchCriteria(domain.WithRegion("North")), req)
	require.NoError(t, err)

	assert.Empty(t, repo.LastSorts)
	assert.Equal(t, []int64{1, 3}, ids(page))
}

func TestStrategies_CountMatchesUnpagedQuery(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo()
	selector := DefaultSelector(repo, zap.NewNop())

	criteria := domain.NewSearchCriteria(domain.WithCity("Springfield"))
	unpaged, err := repo.CountByCriteria(ctx, LocationPredicates(criteria))
	require.NoError(t, err)

	for _, strategy := range []domain.StrategyType{domain.StrategyByLocation, domain.StrategyAdvanced} {
		t.Run(string(strategy), func(t *testing.T) {
			first, err := selector.ExecuteSearch(ctx, strategy, criteria, pageReq(t, 0, 1))
			require.NoError(t, err)
			assert.Equal(t, unpaged, first.TotalElements)
			assert.Len(t, first.Content, 1)
			assert.Equal(t, 2, first.TotalPages)
			assert.True(t, first.First)
			assert.False(t, first.Last)

			second, err := selector.ExecuteSearch(ctx, strategy, criteria, pageReq(t, 1, 1))
			require.NoError(t, err)
			assert.Equal(t, unpaged, second.TotalElements)
			assert.False(t, second.First)
			assert.True(t, second.Last)
			assert.NotEqual(t, ids(first), ids(second))

			beyond, err := selector.ExecuteSearch(ctx, strategy, criteria, pageReq(t, 5, 1))
			require.NoError(t, err)
			assert.Empty(t, beyond.Content)
			assert.Equal(t, unpaged, beyond.TotalElements)
		})
	}
}

func TestSearch_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	selector := DefaultSelector(seededRepo(), zap.NewNop())
	req := pageReq(t, 0, 2, sharedQuery.Sort{Field: domain.FieldArea})
	criteria := domain.NewSearchCriteria(domain.WithDeveloper("Acme"), domain.WithFloor(7))

	first, err := selector.ExecuteAutoSearch(ctx, criteria, req)
	require.NoError(t, err)
	second, err := selector.ExecuteAutoSearch(ctx, criteria, req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExecuteSearch_NoStrategy(t *testing.T) {
	repo := seededRepo()
	selector := NewSelector(map[domain.StrategyType]domain.Filter{
		domain.StrategySimple: NewSimpleStrategy(repo, zap.NewNop()),
	}, zap.NewNop())

	_, err := selector.ExecuteSearch(context.Background(), domain.StrategyAdvanced, domain.NewSearchCriteria(), pageReq(t, 0, 10))
	assert.ErrorIs(t, err, domain.ErrNoStrategy)

	// La búsqueda automática de un criterio vacío también necesita ADVANCED
	_, err = selector.ExecuteAutoSearch(context.Background(), domain.NewSearchCriteria(), pageReq(t, 0, 10))
	assert.ErrorIs(t, err, domain.ErrNoStrategy)
	assert.Empty(t, repo.Calls)
}

func TestExecuteSearch_InvalidPageRequest(t *testing.T) {
	repo := seededRepo()
	selector := DefaultSelector(repo, zap.NewNop())

	_, err := selector.ExecuteSearch(context.Background(), domain.StrategyAdvanced, domain.NewSearchCriteria(), sharedQuery.PageRequest{Page: 0, Size: 0})
	assert.ErrorIs(t, err, sharedQuery.ErrInvalidPageRequest)

	_, err = selector.ExecuteAutoSearch(context.Background(), domain.NewSearchCriteria(), sharedQuery.PageRequest{Page: -1, Size: 10})
	assert.ErrorIs(t, err, sharedQuery.ErrInvalidPageRequest)

	// Offset que desbordaría int.
	_, err = selector.ExecuteSearch(context.Background(), domain.StrategySimple, domain.NewSearchCriteria(), sharedQuery.PageRequest{Page: math.MaxInt/5 + 1, Size: 10})
	assert.ErrorIs(t, err, sharedQuery.ErrInvalidPageRequest)
	assert.Empty(t, repo.Calls)
}

func TestExecuteSearch_StorageErrorPropagates(t *testing.T) {
	storageErr := errors.New("connection refused")
	repo := seededRepo()
	repo.Err = storageErr
	selector := DefaultSelector(repo, zap.NewNop())

	for _, strategy := range []domain.StrategyType{domain.StrategySimple, domain.StrategyByLocation, domain.StrategyAdvanced} {
		_, err := selector.ExecuteSearch(context.Background(), strategy, domain.NewSearchCriteria(domain.WithCity("x")), pageReq(t, 0, 10))
		assert.ErrorIs(t, err, storageErr, string(strategy))
	}
}

func TestSelector_AcceptsFilterFunc(t *testing.T) {
	called := false
	custom := domain.FilterFunc(func(ctx context.Context, criteria domain.SearchCriteria, req sharedQuery.PageRequest) (*domain.ListingPage, error) {
		called = true
		return sharedQuery.NewPage[*domain.Listing](nil, req, 0), nil
	})
	selector := NewSelector(map[domain.StrategyType]domain.Filter{domain.StrategyByLocation: custom}, zap.NewNop())

	page, err := selector.ExecuteAutoSearch(context.Background(), domain.NewSearchCriteria(domain.WithCity("x")), pageReq(t, 0, 5))
	require.NoError(t, err)
	assert.True(t, called)
	assert.NotNil(t, page.Content)
}
