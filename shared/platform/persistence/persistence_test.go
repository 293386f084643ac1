package persistence

import (
	"testing"

	sharedDomain "github.com/davicafu/listingsearch/shared/domain"
	sharedQuery "github.com/davicafu/listingsearch/shared/platform/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testColumns = Columns{
	"developer": "developer",
	"price":     "price",
	"id":        "id",
	"title":     "title",
}

func TestBuildWhere_Postgres(t *testing.T) {
	criteria := sharedDomain.Conditions{
		sharedDomain.Eq("developer", "Acme"),
		sharedDomain.Gte("price", 100),
		sharedDomain.Lte("price", 200),
	}

	where, args, err := BuildWhere(criteria, testColumns, Postgres, 1)

	require.NoError(t, err)
	assert.Equal(t, "WHERE developer = $1 AND price >= $2 AND price <= $3", where)
	assert.Equal(t, []interface{}{"Acme", 100, 200}, args)
}

func TestBuildWhere_SQLiteAndOffset(t *testing.T) {
	criteria := sharedDomain.Conditions{
		sharedDomain.Eq("title", "casa"),
		sharedDomain.Lte("price", 300),
	}

	where, args, err := BuildWhere(criteria, testColumns, SQLite, 4)

	require.NoError(t, err)
	assert.Equal(t, "WHERE title = ? AND price <= ?", where)
	assert.Equal(t, []interface{}{"casa", 300}, args)

	where, _, err = BuildWhere(criteria, testColumns, Postgres, 4)
	require.NoError(t, err)
	assert.Equal(t, "WHERE title = $4 AND price <= $5", where)
}

func TestBuildWhere_UnsupportedOperator(t *testing.T) {
	for _, op := range []sharedDomain.Operator{">", "<", "LIKE", "ILIKE"} {
		_, _, err := BuildWhere(sharedDomain.Conditions{{Field: "title", Op: op, Value: "x"}}, testColumns, Postgres, 1)
		assert.ErrorIs(t, err, ErrUnsupportedOperator, string(op))
	}
}

func TestBuildWhere_Empty(t *testing.T) {
	where, args, err := BuildWhere(sharedDomain.And(), testColumns, SQLite, 1)
	require.NoError(t, err)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildWhere_UnknownField(t *testing.T) {
	_, _, err := BuildWhere(sharedDomain.Conditions{sharedDomain.Eq("price; DROP TABLE", 1)}, testColumns, SQLite, 1)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestBuildOrderBy(t *testing.T) {
	orderBy, err := BuildOrderBy(nil, testColumns, "id ASC")
	require.NoError(t, err)
	assert.Equal(t, "ORDER BY id ASC", orderBy)

	orderBy, err = BuildOrderBy([]sharedQuery.Sort{{Field: "price", Desc: true}, {Field: "developer"}}, testColumns, "id ASC")
	require.NoError(t, err)
	assert.Equal(t, "ORDER BY price DESC, developer ASC, id ASC", orderBy)

	_, err = BuildOrderBy([]sharedQuery.Sort{{Field: "nope"}}, testColumns, "id ASC")
	assert.ErrorIs(t, err, sharedQuery.ErrInvalidSortField)
}
