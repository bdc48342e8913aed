package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/jokeeffe/pulse/internal/pulse"
)

const buildNamespace = "-bld"

// Storage shape for a build row. "trigger" is an SQL keyword, so the
// column is named triggered_by.
type buildRow struct {
	ID          string    `db:"id"`
	TriggeredBy string    `db:"triggered_by"`
	Source      string    `db:"source"`
	Items       int       `db:"items"`
	DurationMS  int64     `db:"duration_ms"`
	Error       string    `db:"error"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r buildRow) toDomain() pulse.Build {
	return pulse.Build{
		ID:        r.ID,
		Trigger:   r.TriggeredBy,
		Source:    r.Source,
		Items:     r.Items,
		Duration:  time.Duration(r.DurationMS) * time.Millisecond,
		Error:     r.Error,
		CreatedAt: r.CreatedAt,
	}
}

func (r Repo) InsertBuild(ctx context.Context, b pulse.Build) (pulse.Build, error) {
	const q = `INSERT INTO builds (id, triggered_by, source, items, duration_ms, error)
	VALUES (:id, :triggered_by, :source, :items, :duration_ms, :error);`

	row := buildRow{
		ID:          fmt.Sprintf("%s%s", uuid.NewString(), buildNamespace),
		TriggeredBy: b.Trigger,
		Source:      b.Source,
		Items:       b.Items,
		DurationMS:  b.Duration.Milliseconds(),
		Error:       b.Error,
	}
	if _, err := r.db.NamedExecContext(ctx, q, row); err != nil {
		return pulse.Build{}, fmt.Errorf("error inserting build: %w", err)
	}

	return r.Build(ctx, row.ID)
}

func (r Repo) Build(ctx context.Context, id string) (pulse.Build, error) {
	const q = `SELECT * FROM builds WHERE id = ?;`

	var row buildRow
	err := r.db.GetContext(ctx, &row, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return pulse.Build{}, pulse.ErrNotFound
	}
	if err != nil {
		return pulse.Build{}, fmt.Errorf("error fetching build: %w", err)
	}

	return row.toDomain(), nil
}

// Builds returns the most recent regeneration records, newest first.
func (r Repo) Builds(ctx context.Context, limit int) ([]pulse.Build, error) {
	query, args, err := sq.Select("*").
		From("builds").
		OrderBy("created_at DESC, id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %w", err)
	}

	var rows []buildRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("error fetching builds: %w", err)
	}

	builds := make([]pulse.Build, 0, len(rows))
	for _, row := range rows {
		builds = append(builds, row.toDomain())
	}

	return builds, nil
}
