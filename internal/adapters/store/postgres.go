package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rollrank/rollrank/internal/domain/model"
)

// Postgres implements Store on a pgx connection pool.
//
// Schema (provisioned externally):
//
//	event(id int primary key, name text, week smallint, year int)
//	competitor(id int primary key, name text)
//	score(event_id int, competitor_id int, points bigint,
//	      primary key (event_id, competitor_id))
//	aggregate(competitor_id int, week smallint, year int,
//	          count int, weighted_points bigint,
//	          primary key (competitor_id, week, year))
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects a pool against dsn and verifies the connection.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", ErrPersistence, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrPersistence, err)
	}
	return &Postgres{pool: pool}, nil
}

// UpsertEvent records an event from the catalog.
func (p *Postgres) UpsertEvent(ctx context.Context, ev model.Event) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO event (id, name, week, year)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, ev.ID, ev.Name, ev.Week, ev.Year)
	if err != nil {
		return fmt.Errorf("%w: upsert event %d: %v", ErrPersistence, ev.ID, err)
	}
	return nil
}

// EventScores returns the cached score records for an event.
func (p *Postgres) EventScores(ctx context.Context, eventID int) ([]model.ScoreRecord, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT s.event_id, s.competitor_id, c.name, s.points
		FROM score s
		JOIN competitor c ON c.id = s.competitor_id
		WHERE s.event_id = $1
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: event scores %d: %v", ErrPersistence, eventID, err)
	}
	defer rows.Close()

	var out []model.ScoreRecord
	for rows.Next() {
		var rec model.ScoreRecord
		if err := rows.Scan(&rec.EventID, &rec.CompetitorID, &rec.Name, &rec.Points); err != nil {
			return nil, fmt.Errorf("%w: event scores %d: %v", ErrPersistence, eventID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: event scores %d: %v", ErrPersistence, eventID, err)
	}
	return out, nil
}

// InsertScore persists one score record and the competitor's display name.
// The score insert is idempotent on (event_id, competitor_id).
func (p *Postgres) InsertScore(ctx context.Context, rec model.ScoreRecord) error {
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO competitor (id, name)
			VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		`, rec.CompetitorID, rec.Name); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO score (event_id, competitor_id, points)
			VALUES ($1, $2, $3)
			ON CONFLICT (event_id, competitor_id) DO NOTHING
		`, rec.EventID, rec.CompetitorID, rec.Points)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: insert score event %d competitor %d: %v",
			ErrPersistence, rec.EventID, rec.CompetitorID, err)
	}
	return nil
}

// RecentScores returns up to limit records ordered by recency.
func (p *Postgres) RecentScores(ctx context.Context, competitorID, limit int) ([]model.DatedScore, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT s.event_id, s.competitor_id, s.points, e.week, e.year
		FROM score s
		JOIN event e ON e.id = s.event_id
		WHERE s.competitor_id = $1
		ORDER BY e.year DESC, e.week DESC, s.event_id DESC
		LIMIT $2
	`, competitorID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: recent scores competitor %d: %v", ErrPersistence, competitorID, err)
	}
	defer rows.Close()

	var out []model.DatedScore
	for rows.Next() {
		var ds model.DatedScore
		if err := rows.Scan(&ds.EventID, &ds.CompetitorID, &ds.Points, &ds.Week, &ds.Year); err != nil {
			return nil, fmt.Errorf("%w: recent scores competitor %d: %v", ErrPersistence, competitorID, err)
		}
		out = append(out, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: recent scores competitor %d: %v", ErrPersistence, competitorID, err)
	}
	return out, nil
}

// SaveAggregates upserts the final aggregates of a run in one batch.
func (p *Postgres) SaveAggregates(ctx context.Context, week, year int, aggs []model.Aggregate) error {
	if len(aggs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, agg := range aggs {
		batch.Queue(`
			INSERT INTO aggregate (competitor_id, week, year, count, weighted_points)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (competitor_id, week, year)
			DO UPDATE SET count = EXCLUDED.count, weighted_points = EXCLUDED.weighted_points
		`, agg.CompetitorID, week, year, agg.Count, agg.Weighted)
	}

	br := p.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range aggs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("%w: save aggregates week %d year %d: %v", ErrPersistence, week, year, err)
		}
	}
	return nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
