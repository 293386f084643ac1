package domain

import "strings"

// Nombres neutrales de campo. Los adapters los traducen a columnas o claves BSON.
const (
	FieldID         = "id"
	FieldDeveloper  = "developer"
	FieldInvestment = "investment"
	FieldUnitNumber = "unit_number"
	FieldArea       = "area"
	FieldPrice      = "price"
	FieldRegion     = "region"
	FieldCity       = "city"
	FieldDistrict   = "district"
	FieldFloor      = "floor"
	FieldStatus     = "status"
	FieldCreatedAt  = "created_at"
	FieldUpdatedAt  = "updated_at"
)

var fieldAliases = map[string]string{
	"id":          FieldID,
	"developer":   FieldDeveloper,
	"investment":  FieldInvestment,
	"unitnumber":  FieldUnitNumber,
	"unit_number": FieldUnitNumber,
	"area":        FieldArea,
	"price":       FieldPrice,
	"region":      FieldRegion,
	"city":        FieldCity,
	"district":    FieldDistrict,
	"floor":       FieldFloor,
	"status":      FieldStatus,
	"createdat":   FieldCreatedAt,
	"created_at":  FieldCreatedAt,
	"updatedat":   FieldUpdatedAt,
	"updated_at":  FieldUpdatedAt,
}

// NormalizeField acepta camelCase o snake_case y devuelve el nombre neutral.
func NormalizeField(name string) (string, bool) {
	f, ok := fieldAliases[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}
