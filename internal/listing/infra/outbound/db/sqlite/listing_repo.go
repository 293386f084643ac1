package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	// _ "github.com/mattn/go-sqlite3" // better performance but requires gcc
	_ "modernc.org/sqlite"

	listingDomain "github.com/davicafu/listingsearch/internal/listing/domain"
	"github.com/davicafu/listingsearch/internal/listing/infra/outbound/db/sqlcommon"
	sharedDomain "github.com/davicafu/listingsearch/shared/domain"
	"github.com/davicafu/listingsearch/shared/platform/persistence"
	sharedQuery "github.com/davicafu/listingsearch/shared/platform/query"
)

type ListingRepoSQLite struct {
	db     *sql.DB
	search sqlcommon.Searcher
}

func NewListingRepoSQLite(db *sql.DB) *ListingRepoSQLite {
	return &ListingRepoSQLite{
		db:     db,
		search: sqlcommon.Searcher{DB: db, Dialect: persistence.SQLite},
	}
}

// ------------------ Helper para insertar en outbox ------------------

func insertOutboxTx(ctx context.Context, tx *sql.Tx, evt sharedDomain.OutboxEvent) error {
	payload, err := sqlcommon.MarshalPayload(evt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO outbox (id,aggregate_type,aggregate_id,event_type,payload,created_at,processed)
		 VALUES (?,?,?,?,?,?,0)`,
		evt.ID.String(), evt.AggregateType, evt.AggregateID, evt.EventType, string(payload), evt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

// ------------------ CRUD + Outbox ------------------

// Create inserta el listing y su evento en la misma transacción.
func (r *ListingRepoSQLite) Create(ctx context.Context, l *listingDomain.Listing, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO listings (developer,investment,unit_number,area,price,region,city,district,floor,status,description,created_at,updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		l.Developer, l.Investment, l.UnitNumber, l.Area, l.Price, l.Region, l.City, l.District,
		l.Floor, string(l.Status), l.Description, now, now,
	)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = id
	l.CreatedAt, l.UpdatedAt = now, now

	evt.AggregateID = strconv.FormatInt(id, 10)
	if err := insertOutboxTx(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit()
}

// Update reemplaza el registro y crea su evento en transacción.
func (r *ListingRepoSQLite) Update(ctx context.Context, l *listingDomain.Listing, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`UPDATE listings SET developer=?, investment=?, unit_number=?, area=?, price=?, region=?, city=?, district=?,
		 floor=?, status=?, description=?, updated_at=? WHERE id=?`,
		l.Developer, l.Investment, l.UnitNumber, l.Area, l.Price, l.Region, l.City, l.District,
		l.Floor, string(l.Status), l.Description, now, l.ID,
	)
	if err != nil {
		return err
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return listingDomain.ErrListingNotFound
	}
	l.UpdatedAt = now

	if err := insertOutboxTx(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *ListingRepoSQLite) DeleteByID(ctx context.Context, id int64, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM listings WHERE id=?`, id)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return listingDomain.ErrListingNotFound
	}

	if err := insertOutboxTx(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *ListingRepoSQLite) GetByID(ctx context.Context, id int64) (*listingDomain.Listing, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, sqlcommon.SelectColumns, sqlcommon.Table), id)

	l, err := sqlcommon.ScanListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, listingDomain.ErrListingNotFound
		}
		return nil, err
	}
	return l, nil
}

// ------------------ Búsqueda ------------------

func (r *ListingRepoSQLite) FindByDeveloper(ctx context.Context, developer string, req sharedQuery.PageRequest) (*listingDomain.ListingPage, error) {
	return r.search.Page(ctx, listingDomain.DeveloperCriteria{Developer: developer}, req)
}

func (r *ListingRepoSQLite) FindByInvestment(ctx context.Context, investment string, req sharedQuery.PageRequest) (*listingDomain.ListingPage, error) {
	return r.search.Page(ctx, listingDomain.InvestmentCriteria{Investment: investment}, req)
}

func (r *ListingRepoSQLite) FindAll(ctx context.Context, req sharedQuery.PageRequest) (*listingDomain.ListingPage, error) {
	return r.search.Page(ctx, nil, req)
}

func (r *ListingRepoSQLite) ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria, pagination sharedQuery.Pagination, sorts []sharedQuery.Sort) ([]*listingDomain.Listing, error) {
	return r.search.List(ctx, criteria, pagination, sorts)
}

func (r *ListingRepoSQLite) CountByCriteria(ctx context.Context, criteria sharedDomain.Criteria) (int64, error) {
	return r.search.Count(ctx, criteria)
}

// ------------------ Inicialización de DB ------------------

// InitSQLite crea las tablas listings y outbox si no existen.
func InitSQLite(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS listings (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            developer TEXT NOT NULL DEFAULT '',
            investment TEXT NOT NULL DEFAULT '',
            unit_number TEXT NOT NULL DEFAULT '',
            area NUMERIC NOT NULL DEFAULT 0,
            price NUMERIC NOT NULL DEFAULT 0,
            region TEXT NOT NULL DEFAULT '',
            city TEXT NOT NULL DEFAULT '',
            district TEXT NOT NULL DEFAULT '',
            floor INTEGER NOT NULL DEFAULT 0,
            status TEXT NOT NULL DEFAULT 'AVAILABLE',
            description TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )
    `)
	if err != nil {
		return err
	}

	for _, idx := range []string{
		`CREATE INDEX IF NOT EXISTS idx_listings_developer ON listings(developer)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_investment ON listings(investment)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_location ON listings(region, city, district)`,
	} {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS outbox (
            id TEXT PRIMARY KEY,
            aggregate_type TEXT NOT NULL,
            aggregate_id TEXT NOT NULL,
            event_type TEXT NOT NULL,
            payload TEXT NOT NULL,
            created_at DATETIME NOT NULL,
            processed BOOLEAN NOT NULL DEFAULT 0
        )
    `)
	return err
}

var _ listingDomain.ListingRepository = (*ListingRepoSQLite)(nil)
