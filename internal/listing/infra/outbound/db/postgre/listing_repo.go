package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	listingDomain "github.com/davicafu/listingsearch/internal/listing/domain"
	"github.com/davicafu/listingsearch/internal/listing/infra/outbound/db/sqlcommon"
	sharedDomain "github.com/davicafu/listingsearch/shared/domain"
	"github.com/davicafu/listingsearch/shared/platform/persistence"
	sharedQuery "github.com/davicafu/listingsearch/shared/platform/query"

	_ "github.com/jackc/pgx/v5/stdlib" // Driver de PostgreSQL
)

// ListingRepoPostgres implementa ListingRepository para PostgreSQL.
type ListingRepoPostgres struct {
	db     *sql.DB
	search sqlcommon.Searcher
}

func NewListingRepoPostgres(db *sql.DB) *ListingRepoPostgres {
	return &ListingRepoPostgres{
		db:     db,
		search: sqlcommon.Searcher{DB: db, Dialect: persistence.Postgres},
	}
}

// ------------------ CRUD + Outbox ------------------

// Create inserta el listing y su evento en una transacción. El ID y las fechas los asigna la base de datos.
func (r *ListingRepoPostgres) Create(ctx context.Context, l *listingDomain.Listing, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // Se ignora si el Commit() es exitoso

	err = tx.QueryRowContext(ctx,
		`INSERT INTO listings (developer, investment, unit_number, area, price, region, city, district, floor, status, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		l.Developer, l.Investment, l.UnitNumber, l.Area, l.Price, l.Region, l.City, l.District,
		l.Floor, string(l.Status), l.Description,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return err
	}

	evt.AggregateID = strconv.FormatInt(l.ID, 10)
	if err := insertOutboxTx(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *ListingRepoPostgres) Update(ctx context.Context, l *listingDomain.Listing, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`UPDATE listings SET developer=$1, investment=$2, unit_number=$3, area=$4, price=$5, region=$6, city=$7,
		 district=$8, floor=$9, status=$10, description=$11, updated_at=now()
		 WHERE id=$12
		 RETURNING created_at, updated_at`,
		l.Developer, l.Investment, l.UnitNumber, l.Area, l.Price, l.Region, l.City, l.District,
		l.Floor, string(l.Status), l.Description, l.ID,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return listingDomain.ErrListingNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	if err := insertOutboxTx(ctx, tx, evt); err != nil {
		return fmt.Errorf("failed to insert outbox: %w", err)
	}

	return tx.Commit()
}

func (r *ListingRepoPostgres) DeleteByID(ctx context.Context, id int64, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM listings WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return listingDomain.ErrListingNotFound
	}

	if err := insertOutboxTx(ctx, tx, evt); err != nil {
		return fmt.Errorf("failed to insert outbox: %w", err)
	}

	return tx.Commit()
}

// ------------------ Lectura ------------------

func (r *ListingRepoPostgres) GetByID(ctx context.Context, id int64) (*listingDomain.Listing, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE id=$1`, sqlcommon.SelectColumns, sqlcommon.Table), id)

	l, err := sqlcommon.ScanListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, listingDomain.ErrListingNotFound
		}
		return nil, fmt.Errorf("db scan error: %w", err)
	}
	return l, nil
}

func (r *ListingRepoPostgres) FindByDeveloper(ctx context.Context, developer string, req sharedQuery.PageRequest) (*listingDomain.ListingPage, error) {
	return r.search.Page(ctx, listingDomain.DeveloperCriteria{Developer: developer}, req)
}

func (r *ListingRepoPostgres) FindByInvestment(ctx context.Context, investment string, req sharedQuery.PageRequest) (*listingDomain.ListingPage, error) {
	return r.search.Page(ctx, listingDomain.InvestmentCriteria{Investment: investment}, req)
}

func (r *ListingRepoPostgres) FindAll(ctx context.Context, req sharedQuery.PageRequest) (*listingDomain.ListingPage, error) {
	return r.search.Page(ctx, nil, req)
}

// ListByCriteria recupera listings aplicando filtros, paginación y ordenamiento.
func (r *ListingRepoPostgres) ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria, pagination sharedQuery.Pagination, sorts []sharedQuery.Sort) ([]*listingDomain.Listing, error) {
	return r.search.List(ctx, criteria, pagination, sorts)
}

func (r *ListingRepoPostgres) CountByCriteria(ctx context.Context, criteria sharedDomain.Criteria) (int64, error) {
	return r.search.Count(ctx, criteria)
}

// ------------------ Inicialización del Esquema ------------------

// InitPostgresListingSchema crea las tablas 'listings' y 'outbox' si no existen.
func InitPostgresListingSchema(db *sql.DB) error {
	_, err := db.Exec(`
    CREATE TABLE IF NOT EXISTS listings (
        id BIGSERIAL PRIMARY KEY,
        developer TEXT NOT NULL DEFAULT '',
        investment TEXT NOT NULL DEFAULT '',
        unit_number TEXT NOT NULL DEFAULT '',
        area NUMERIC(12,2) NOT NULL DEFAULT 0,
        price NUMERIC(14,2) NOT NULL DEFAULT 0,
        region TEXT NOT NULL DEFAULT '',
        city TEXT NOT NULL DEFAULT '',
        district TEXT NOT NULL DEFAULT '',
        floor INTEGER NOT NULL DEFAULT 0 CHECK (floor >= 0),
        status TEXT NOT NULL DEFAULT 'AVAILABLE',
        description VARCHAR(1000) NOT NULL DEFAULT '',
        created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
        updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
    )`)
	if err != nil {
		return fmt.Errorf("failed to create listings table: %w", err)
	}

	for _, idx := range []string{
		`CREATE INDEX IF NOT EXISTS idx_listings_developer ON listings(developer)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_investment ON listings(investment)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_location ON listings(region, city, district)`,
	} {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	_, err = db.Exec(`
    CREATE TABLE IF NOT EXISTS outbox (
        id UUID PRIMARY KEY,
        aggregate_type TEXT NOT NULL,
        aggregate_id TEXT NOT NULL,
        event_type TEXT NOT NULL,
        payload JSONB NOT NULL,
        created_at TIMESTAMP WITH TIME ZONE NOT NULL,
        processed BOOLEAN NOT NULL DEFAULT FALSE
    )`)
	return err
}

// ------------------ Helper para insertar en outbox ------------------
func insertOutboxTx(ctx context.Context, tx *sql.Tx, evt sharedDomain.OutboxEvent) error {
	payload, err := sqlcommon.MarshalPayload(evt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at, processed)
		 VALUES ($1, $2, $3, $4, $5, $6, false)`,
		evt.ID, evt.AggregateType, evt.AggregateID, evt.EventType, payload, evt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

var _ listingDomain.ListingRepository = (*ListingRepoPostgres)(nil)
