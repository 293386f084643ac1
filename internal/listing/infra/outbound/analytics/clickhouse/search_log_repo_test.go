package clickhouse

import (
	"testing"
	"time"

	listingDomain "github.com/davicafu/listingsearch/internal/listing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchLogRow(t *testing.T) {
	executed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	row := searchLogRow(listingDomain.SearchRecord{
		Strategy:      listingDomain.StrategyAdvanced,
		Auto:          true,
		Criteria:      map[string]string{"developer": "Acme", "minPrice": "600000"},
		Page:          2,
		Size:          20,
		Sort:          []string{"price,desc"},
		TotalElements: 41,
		Returned:      1,
		Duration:      1500 * time.Microsecond,
		ExecutedAt:    executed,
	})

	require.Len(t, row, 10)
	assert.Equal(t, "ADVANCED", row[0])
	assert.Equal(t, true, row[1])
	assert.Equal(t, map[string]string{"developer": "Acme", "minPrice": "600000"}, row[2])
	assert.Equal(t, uint32(2), row[3])
	assert.Equal(t, uint32(20), row[4])
	assert.Equal(t, []string{"price,desc"}, row[5])
	assert.Equal(t, uint64(41), row[6])
	assert.Equal(t, uint32(1), row[7])
	assert.InDelta(t, 1.5, row[8], 1e-9)
	assert.Equal(t, executed, row[9])
}

func TestSearchLogRow_EmptyCollections(t *testing.T) {
	row := searchLogRow(listingDomain.SearchRecord{Strategy: listingDomain.StrategySimple})

	assert.Equal(t, map[string]string{}, row[2])
	assert.Equal(t, []string{}, row[5])
}
