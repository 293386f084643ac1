package domain

// ---------------- Operadores ----------------

type Operator string

// Solo igualdad y rangos cerrados: es todo lo que emiten las estrategias de búsqueda.
const (
	OpEq  Operator = "="
	OpGte Operator = ">="
	OpLte Operator = "<="
)

// LogicalOperator solo admite AND: los adapters combinan todas las condiciones en conjunción.
type LogicalOperator string

const OpAnd LogicalOperator = "AND"

// ---------------- Criterion ----------------

// Criterion describe una condición neutral de filtrado sobre un único campo.
type Criterion struct {
	Field string
	Op    Operator
	Value interface{}
}

// Eq, Gte y Lte son los constructores que usa el núcleo de búsqueda.
func Eq(field string, value interface{}) Criterion {
	return Criterion{Field: field, Op: OpEq, Value: value}
}

func Gte(field string, value interface{}) Criterion {
	return Criterion{Field: field, Op: OpGte, Value: value}
}

func Lte(field string, value interface{}) Criterion {
	return Criterion{Field: field, Op: OpLte, Value: value}
}

// ---------------- Criteria interface ----------------

// Criteria permite transformar filtros a condiciones neutrales
type Criteria interface {
	ToConditions() []Criterion
}

// Conditions adapta una lista ya construida de Criterion a la interfaz Criteria.
type Conditions []Criterion

func (c Conditions) ToConditions() []Criterion {
	return c
}

// ---------------- Composite Criteria ----------------

type CompositeCriteria struct {
	Operator  LogicalOperator
	Criterias []Criteria
}

func (c CompositeCriteria) ToConditions() []Criterion {
	var all []Criterion
	for _, crit := range c.Criterias {
		if crit == nil {
			continue
		}
		all = append(all, crit.ToConditions()...)
	}
	return all
}

// ---------------- Helpers ----------------

// And crea un CompositeCriteria con operador AND
func And(criterias ...Criteria) CompositeCriteria {
	return CompositeCriteria{Operator: OpAnd, Criterias: criterias}
}

// ConditionsOf devuelve las condiciones de un Criteria que puede ser nil.
func ConditionsOf(criteria Criteria) []Criterion {
	if criteria == nil {
		return nil
	}
	return criteria.ToConditions()
}
