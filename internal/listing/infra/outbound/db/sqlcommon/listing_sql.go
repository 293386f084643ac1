// Package sqlcommon reúne lo que los repositorios SQLite y Postgres de Listing comparten:
// columnas, escaneo de filas y la ejecución de búsquedas por criterios.
package sqlcommon

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	listingDomain "github.com/davicafu/listingsearch/internal/listing/domain"
	sharedDomain "github.com/davicafu/listingsearch/shared/domain"
	"github.com/davicafu/listingsearch/shared/platform/persistence"
	sharedQuery "github.com/davicafu/listingsearch/shared/platform/query"
)

const Table = "listings"

// SelectColumns en el orden que espera ScanListing.
const SelectColumns = "id, developer, investment, unit_number, area, price, region, city, district, floor, status, description, created_at, updated_at"

// DefaultOrder se usa sin claves de orden y como desempate.
const DefaultOrder = "id ASC"

// Columns es la whitelist de campos filtrables y ordenables.
var Columns = persistence.Columns{
	listingDomain.FieldID:         "id",
	listingDomain.FieldDeveloper:  "developer",
	listingDomain.FieldInvestment: "investment",
	listingDomain.FieldUnitNumber: "unit_number",
	listingDomain.FieldArea:       "area",
	listingDomain.FieldPrice:      "price",
	listingDomain.FieldRegion:     "region",
	listingDomain.FieldCity:       "city",
	listingDomain.FieldDistrict:   "district",
	listingDomain.FieldFloor:      "floor",
	listingDomain.FieldStatus:     "status",
	listingDomain.FieldCreatedAt:  "created_at",
	listingDomain.FieldUpdatedAt:  "updated_at",
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// ScanListing lee una fila con SelectColumns.
func ScanListing(row rowScanner) (*listingDomain.Listing, error) {
	var l listingDomain.Listing
	err := row.Scan(
		&l.ID, &l.Developer, &l.Investment, &l.UnitNumber, &l.Area, &l.Price,
		&l.Region, &l.City, &l.District, &l.Floor, &l.Status, &l.Description,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// driverArgs convierte los tipos de dominio que el driver no conoce.
func driverArgs(args []interface{}) []interface{} {
	for i, a := range args {
		if s, ok := a.(listingDomain.Status); ok {
			args[i] = string(s)
		}
	}
	return args
}

// Searcher ejecuta las consultas de búsqueda sobre cualquier *sql.DB según el dialecto.
type Searcher struct {
	DB      *sql.DB
	Dialect persistence.Dialect
}

// List aplica criterios, orden (con desempate por id) y paginación por offset.
func (s Searcher) List(ctx context.Context, criteria sharedDomain.Criteria, pagination sharedQuery.Pagination, sorts []sharedQuery.Sort) ([]*listingDomain.Listing, error) {
	where, args, err := persistence.BuildWhere(criteria, Columns, s.Dialect, 1)
	if err != nil {
		return nil, err
	}
	orderBy, err := persistence.BuildOrderBy(sorts, Columns, DefaultOrder)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s %s %s", SelectColumns, Table, where, orderBy)

	if p, ok := pagination.(sharedQuery.OffsetPagination); ok {
		n := len(args)
		query += fmt.Sprintf(" LIMIT %s OFFSET %s", s.Dialect.Placeholder(n+1), s.Dialect.Placeholder(n+2))
		args = append(args, p.Limit, p.Offset)
	}

	rows, err := s.DB.QueryContext(ctx, query, driverArgs(args)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []*listingDomain.Listing{}
	for rows.Next() {
		l, err := ScanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// Count cuenta sin paginar con la misma traducción de criterios que List.
func (s Searcher) Count(ctx context.Context, criteria sharedDomain.Criteria) (int64, error) {
	where, args, err := persistence.BuildWhere(criteria, Columns, s.Dialect, 1)
	if err != nil {
		return 0, err
	}

	var total int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", Table, where)
	if err := s.DB.QueryRowContext(ctx, query, driverArgs(args)...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Page combina List y Count en el sobre paginado.
func (s Searcher) Page(ctx context.Context, criteria sharedDomain.Criteria, req sharedQuery.PageRequest) (*listingDomain.ListingPage, error) {
	content, err := s.List(ctx, criteria, req.OffsetPagination(), req.Sort)
	if err != nil {
		return nil, err
	}
	total, err := s.Count(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return sharedQuery.NewPage(content, req, total), nil
}

// MarshalPayload serializa el payload de un evento de outbox.
func MarshalPayload(evt sharedDomain.OutboxEvent) ([]byte, error) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outbox payload: %w", err)
	}
	return payload, nil
}
