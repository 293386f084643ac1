package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompositeCriteria_FlattensInOrder(t *testing.T) {
	c := And(
		Conditions{Eq("developer", "Acme")},
		nil,
		Conditions{Gte("price", 10), Lte("price", 20)},
	)

	conds := c.ToConditions()

	assert.Equal(t, OpAnd, c.Operator)
	assert.Equal(t, []Criterion{
		{Field: "developer", Op: OpEq, Value: "Acme"},
		{Field: "price", Op: OpGte, Value: 10},
		{Field: "price", Op: OpLte, Value: 20},
	}, conds)
}

func TestConditionsOf_Nil(t *testing.T) {
	assert.Empty(t, ConditionsOf(nil))
	assert.Empty(t, And().ToConditions())
}
