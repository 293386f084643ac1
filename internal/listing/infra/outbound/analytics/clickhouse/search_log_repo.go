package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	listingDomain "github.com/davicafu/listingsearch/internal/listing/domain"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// SearchLogRepo guarda cada búsqueda ejecutada en ClickHouse.
type SearchLogRepo struct {
	db *sql.DB
}

func NewSearchLogRepo(addr string, dbName string) (*SearchLogRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 5 * time.Second,
	})

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	return &SearchLogRepo{db: conn}, nil
}

const insertSearchLog = `INSERT INTO search_log (strategy, auto, criteria, page, size, sort, total_elements, returned, duration_ms, executed_at)`

// searchLogRow devuelve los valores en el orden de insertSearchLog.
func searchLogRow(rec listingDomain.SearchRecord) []interface{} {
	criteria := rec.Criteria
	if criteria == nil {
		criteria = map[string]string{}
	}
	sort := rec.Sort
	if sort == nil {
		sort = []string{}
	}
	return []interface{}{
		string(rec.Strategy),
		rec.Auto,
		criteria,
		uint32(rec.Page),
		uint32(rec.Size),
		sort,
		uint64(rec.TotalElements),
		uint32(rec.Returned),
		float64(rec.Duration) / float64(time.Millisecond),
		rec.ExecutedAt,
	}
}

func (r *SearchLogRepo) LogSearch(ctx context.Context, rec listingDomain.SearchRecord) error {
	return r.LogBatch(ctx, []listingDomain.SearchRecord{rec})
}

// LogBatch inserta varias búsquedas en un único bloque.
func (r *SearchLogRepo) LogBatch(ctx context.Context, records []listingDomain.SearchRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, insertSearchLog)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, searchLogRow(rec)...); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to append search log: %w", err)
		}
	}

	return tx.Commit()
}

// StrategyUsage agrega las búsquedas por estrategia entre from y to.
func (r *SearchLogRepo) StrategyUsage(ctx context.Context, from, to time.Time) ([]listingDomain.StrategyUsage, error) {
	query := `
		SELECT
			strategy,
			count() AS searches,
			countIf(auto) AS auto_searches,
			avg(total_elements) AS avg_results,
			avg(duration_ms) AS avg_duration_ms
		FROM search_log
		WHERE executed_at BETWEEN ? AND ?
		GROUP BY strategy
		ORDER BY searches DESC
	`
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usage []listingDomain.StrategyUsage
	for rows.Next() {
		var (
			u          listingDomain.StrategyUsage
			strategy   string
			durationMs float64
		)
		if err := rows.Scan(&strategy, &u.Searches, &u.AutoSearches, &u.AvgResults, &durationMs); err != nil {
			return nil, err
		}
		u.Strategy = listingDomain.StrategyType(strategy)
		u.AvgDuration = time.Duration(durationMs * float64(time.Millisecond))
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

// InitSchema crea la tabla search_log si no existe.
func (r *SearchLogRepo) InitSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS search_log (
			strategy       LowCardinality(String),
			auto           Bool,
			criteria       Map(String, String),
			page           UInt32,
			size           UInt32,
			sort           Array(String),
			total_elements UInt64,
			returned       UInt32,
			duration_ms    Float64,
			executed_at    DateTime64(3)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(executed_at)
		ORDER BY (strategy, executed_at);
	`
	_, err := r.db.Exec(query)
	return err
}

func (r *SearchLogRepo) Close() error {
	return r.db.Close()
}

var (
	_ listingDomain.SearchAnalyticsRepository = (*SearchLogRepo)(nil)
	_ listingDomain.SearchAnalyticsReader     = (*SearchLogRepo)(nil)
)
