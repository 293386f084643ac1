package domain

import (
	sharedDomain "github.com/davicafu/listingsearch/shared/domain"
	"github.com/shopspring/decimal"
)

// SearchCriteria es la bolsa inmutable de filtros opcionales de una búsqueda.
// Cada campo está presente o ausente; no hay valores por defecto que amplíen la consulta.
// Se construye con NewSearchCriteria y las opciones With*.
type SearchCriteria struct {
	developer  *string
	investment *string
	region     *string
	city       *string
	district   *string
	floor      *int
	status     *string
	minPrice   *decimal.Decimal
	maxPrice   *decimal.Decimal
	minArea    *decimal.Decimal
	maxArea    *decimal.Decimal
}

type CriteriaOption func(*SearchCriteria)

func NewSearchCriteria(opts ...CriteriaOption) SearchCriteria {
	var c SearchCriteria
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func WithDeveloper(v string) CriteriaOption  { return func(c *SearchCriteria) { c.developer = &v } }
func WithInvestment(v string) CriteriaOption { return func(c *SearchCriteria) { c.investment = &v } }
func WithRegion(v string) CriteriaOption     { return func(c *SearchCriteria) { c.region = &v } }
func WithCity(v string) CriteriaOption       { return func(c *SearchCriteria) { c.city = &v } }
func WithDistrict(v string) CriteriaOption   { return func(c *SearchCriteria) { c.district = &v } }
func WithFloor(v int) CriteriaOption         { return func(c *SearchCriteria) { c.floor = &v } }

// WithStatus guarda el texto tal cual; se valida contra Status al construir el filtro.
func WithStatus(v string) CriteriaOption { return func(c *SearchCriteria) { c.status = &v } }

func WithMinPrice(v decimal.Decimal) CriteriaOption {
	return func(c *SearchCriteria) { c.minPrice = &v }
}
func WithMaxPrice(v decimal.Decimal) CriteriaOption {
	return func(c *SearchCriteria) { c.maxPrice = &v }
}
func WithMinArea(v decimal.Decimal) CriteriaOption { return func(c *SearchCriteria) { c.minArea = &v } }
func WithMaxArea(v decimal.Decimal) CriteriaOption { return func(c *SearchCriteria) { c.maxArea = &v } }

// ---------------- Accesores ----------------

func (c SearchCriteria) Developer() (string, bool)  { return str(c.developer) }
func (c SearchCriteria) Investment() (string, bool) { return str(c.investment) }
func (c SearchCriteria) Region() (string, bool)     { return str(c.region) }
func (c SearchCriteria) City() (string, bool)       { return str(c.city) }
func (c SearchCriteria) District() (string, bool)   { return str(c.district) }
func (c SearchCriteria) Status() (string, bool)     { return str(c.status) }

func (c SearchCriteria) Floor() (int, bool) {
	if c.floor == nil {
		return 0, false
	}
	return *c.floor, true
}

func (c SearchCriteria) MinPrice() (decimal.Decimal, bool) { return dec(c.minPrice) }
func (c SearchCriteria) MaxPrice() (decimal.Decimal, bool) { return dec(c.maxPrice) }
func (c SearchCriteria) MinArea() (decimal.Decimal, bool)  { return dec(c.minArea) }
func (c SearchCriteria) MaxArea() (decimal.Decimal, bool)  { return dec(c.maxArea) }

func str(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}

func dec(p *decimal.Decimal) (decimal.Decimal, bool) {
	if p == nil {
		return decimal.Decimal{}, false
	}
	return *p, true
}

// ---------------- Clasificación ----------------

// HasLocation: alguno de region, city o district está presente.
func (c SearchCriteria) HasLocation() bool {
	return c.region != nil || c.city != nil || c.district != nil
}

// HasSimple: developer o investment está presente.
func (c SearchCriteria) HasSimple() bool {
	return c.developer != nil || c.investment != nil
}

// HasOther: cualquier filtro de rango, piso o estado.
func (c SearchCriteria) HasOther() bool {
	return c.floor != nil || c.status != nil ||
		c.minPrice != nil || c.maxPrice != nil ||
		c.minArea != nil || c.maxArea != nil
}

func (c SearchCriteria) IsEmpty() bool {
	return !c.HasLocation() && !c.HasSimple() && !c.HasOther()
}

// Fields devuelve los campos presentes como texto, para logs y analítica.
func (c SearchCriteria) Fields() map[string]string {
	out := make(map[string]string)
	put := func(k string, p *string) {
		if p != nil {
			out[k] = *p
		}
	}
	putDec := func(k string, p *decimal.Decimal) {
		if p != nil {
			out[k] = p.String()
		}
	}

	put("developer", c.developer)
	put("investment", c.investment)
	put("region", c.region)
	put("city", c.city)
	put("district", c.district)
	put("status", c.status)
	if c.floor != nil {
		out["floor"] = decimal.NewFromInt(int64(*c.floor)).String()
	}
	putDec("minPrice", c.minPrice)
	putDec("maxPrice", c.maxPrice)
	putDec("minArea", c.minArea)
	putDec("maxArea", c.maxArea)
	return out
}

// ---------------- Criterios por campo ----------------

// DeveloperCriteria filtra por promotora exacta.
type DeveloperCriteria struct {
	Developer string
}

func (c DeveloperCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{sharedDomain.Eq(FieldDeveloper, c.Developer)}
}

// InvestmentCriteria filtra por nombre de promoción exacto.
type InvestmentCriteria struct {
	Investment string
}

func (c InvestmentCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{sharedDomain.Eq(FieldInvestment, c.Investment)}
}

// FloorCriteria es igualdad exacta, no rango.
type FloorCriteria struct {
	Floor int
}

func (c FloorCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{sharedDomain.Eq(FieldFloor, c.Floor)}
}

type StatusCriteria struct {
	Status Status
}

func (c StatusCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{sharedDomain.Eq(FieldStatus, c.Status)}
}

// LocationCriteria: solo los campos no nulos generan condición.
type LocationCriteria struct {
	Region   *string
	City     *string
	District *string
}

func (c LocationCriteria) ToConditions() []sharedDomain.Criterion {
	var conds []sharedDomain.Criterion
	if c.Region != nil {
		conds = append(conds, sharedDomain.Eq(FieldRegion, *c.Region))
	}
	if c.City != nil {
		conds = append(conds, sharedDomain.Eq(FieldCity, *c.City))
	}
	if c.District != nil {
		conds = append(conds, sharedDomain.Eq(FieldDistrict, *c.District))
	}
	return conds
}

// DecimalRangeCriteria es un rango inclusivo; se omite el extremo no informado.
type DecimalRangeCriteria struct {
	Field string
	Min   *decimal.Decimal
	Max   *decimal.Decimal
}

func (c DecimalRangeCriteria) ToConditions() []sharedDomain.Criterion {
	var conds []sharedDomain.Criterion
	if c.Min != nil {
		conds = append(conds, sharedDomain.Gte(c.Field, *c.Min))
	}
	if c.Max != nil {
		conds = append(conds, sharedDomain.Lte(c.Field, *c.Max))
	}
	return conds
}

// LocationOf extrae de SearchCriteria solo la parte administrativa.
func LocationOf(c SearchCriteria) LocationCriteria {
	return LocationCriteria{Region: c.region, City: c.city, District: c.district}
}

// PriceRangeOf y AreaRangeOf extraen los rangos de la búsqueda.
func PriceRangeOf(c SearchCriteria) DecimalRangeCriteria {
	return DecimalRangeCriteria{Field: FieldPrice, Min: c.minPrice, Max: c.maxPrice}
}

func AreaRangeOf(c SearchCriteria) DecimalRangeCriteria {
	return DecimalRangeCriteria{Field: FieldArea, Min: c.minArea, Max: c.maxArea}
}
