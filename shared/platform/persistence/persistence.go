package persistence

import (
	"errors"
	"fmt"
	"strings"

	sharedDomain "github.com/davicafu/listingsearch/shared/domain"
	sharedQuery "github.com/davicafu/listingsearch/shared/platform/query"
)

var ErrUnknownField = errors.New("unknown filter field")
var ErrUnsupportedOperator = errors.New("unsupported operator")

// Dialect recoge lo poco que cambia entre motores SQL al traducir criterios.
type Dialect struct {
	Name        string
	Placeholder func(n int) string
}

var SQLite = Dialect{
	Name:        "sqlite",
	Placeholder: func(int) string { return "?" },
}

var Postgres = Dialect{
	Name:        "postgres",
	Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
}

// Columns mapea nombres de campo neutrales a columnas reales. Actúa también como whitelist.
type Columns map[string]string

// BuildWhere traduce criterios neutrales a una cláusula WHERE con AND.
// argStart es el número del primer placeholder (1 para una consulta nueva).
// Devuelve "" cuando no hay condiciones.
func BuildWhere(criteria sharedDomain.Criteria, cols Columns, d Dialect, argStart int) (string, []interface{}, error) {
	conds := sharedDomain.ConditionsOf(criteria)
	if len(conds) == 0 {
		return "", nil, nil
	}

	clauses := make([]string, 0, len(conds))
	args := make([]interface{}, 0, len(conds))
	for i, c := range conds {
		col, ok := cols[c.Field]
		if !ok {
			return "", nil, fmt.Errorf("%w: %s", ErrUnknownField, c.Field)
		}

		op, err := sqlOperator(c.Op)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, fmt.Sprintf("%s %s %s", col, op, d.Placeholder(argStart+i)))
		args = append(args, c.Value)
	}

	return "WHERE " + strings.Join(clauses, " AND "), args, nil
}

// BuildOrderBy traduce las claves de orden respetando su orden. Sin claves usa fallback.
func BuildOrderBy(sorts []sharedQuery.Sort, cols Columns, fallback string) (string, error) {
	if len(sorts) == 0 {
		if fallback == "" {
			return "", nil
		}
		return "ORDER BY " + fallback, nil
	}

	parts := make([]string, 0, len(sorts)+1)
	for _, s := range sorts {
		col, ok := cols[s.Field]
		if !ok {
			return "", fmt.Errorf("%w: %s", sharedQuery.ErrInvalidSortField, s.Field)
		}
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	// desempate estable para que offset/limit no repita filas entre páginas
	if fallback != "" {
		parts = append(parts, fallback)
	}

	return "ORDER BY " + strings.Join(parts, ", "), nil
}

func sqlOperator(op sharedDomain.Operator) (string, error) {
	switch op {
	case sharedDomain.OpEq, sharedDomain.OpGte, sharedDomain.OpLte:
		return string(op), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedOperator, op)
	}
}
