package measurements

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/telemetry/tracing"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/trends"

	"go.opentelemetry.io/otel/attribute"
)

// instants are stored as unix nanoseconds, which keeps ordering exact
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS measurement (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	client_id      TEXT NOT NULL,
	metric_key     TEXT NOT NULL,
	value          REAL,
	meta           TEXT,
	measured_at_ns INTEGER NOT NULL,
	created_at_ns  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_measurement_client_metric_time
	ON measurement (client_id, metric_key, measured_at_ns);
`

// SqliteRepo is the embedded measurement source for single node deployments.
type SqliteRepo struct {
	db *sql.DB
}

func NewSqliteRepo(ctx context.Context, db *sql.DB) (*SqliteRepo, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("create measurement schema: %w", err)
	}
	return &SqliteRepo{db: db}, nil
}

func (r *SqliteRepo) Add(ctx context.Context, clientID string, m trends.Measurement) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.sqlite.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("client", clientID),
		attribute.String("metric", m.MetricKey),
	)

	var meta sql.NullString
	if len(m.Meta) > 0 {
		metaJson, err := json.Marshal(m.Meta)
		if err != nil {
			return -1, fmt.Errorf("marshal meta: %w", err)
		}
		meta = sql.NullString{String: string(metaJson), Valid: true}
	}

	var value sql.NullFloat64
	if m.Value != nil {
		value = sql.NullFloat64{Float64: *m.Value, Valid: true}
	}

	res, err := r.db.ExecContext(
		ctx,
		`INSERT INTO measurement (client_id, metric_key, value, meta, measured_at_ns, created_at_ns)
			VALUES (?, ?, ?, ?, ?, ?)`,
		clientID, m.MetricKey, value, meta, m.Timestamp.UnixNano(), time.Now().UnixNano(),
	)
	if err != nil {
		return -1, fmt.Errorf("insert measurement: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return -1, fmt.Errorf("last insert id: %w", err)
	}
	span.SetAttributes(attribute.Int64("measurement.id", id))

	return id, nil
}

func (r *SqliteRepo) List(ctx context.Context, params ListParams) (_ []trends.Measurement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.sqlite.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("client", params.ClientID),
		attribute.String("metric", params.MetricKey),
	)

	if err := params.Validate(); err != nil {
		return nil, err
	}

	from, until := params.From.UnixNano(), params.Until.UnixNano()
	rows, err := r.db.QueryContext(
		ctx,
		`
		SELECT id, metric_key, value, meta, measured_at_ns FROM measurement
		WHERE id = (
			SELECT id FROM measurement
			WHERE client_id = ? AND metric_key = ? AND measured_at_ns < ? AND value IS NOT NULL
			ORDER BY measured_at_ns DESC, id DESC
			LIMIT 1
		)
		UNION ALL
		SELECT id, metric_key, value, meta, measured_at_ns FROM measurement
		WHERE client_id = ? AND metric_key = ? AND measured_at_ns >= ? AND measured_at_ns < ?
		ORDER BY measured_at_ns, id`,
		params.ClientID, params.MetricKey, from,
		params.ClientID, params.MetricKey, from, until,
	)
	if err != nil {
		return nil, fmt.Errorf("query measurements: %w", err)
	}
	defer rows.Close()

	var ms []trends.Measurement
	for rows.Next() {
		var (
			id         int64
			m          trends.Measurement
			value      sql.NullFloat64
			meta       sql.NullString
			measuredAt int64
		)
		if err := rows.Scan(&id, &m.MetricKey, &value, &meta, &measuredAt); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if value.Valid {
			v := value.Float64
			m.Value = &v
		}
		if meta.Valid {
			if m.Meta, err = unmarshalMeta([]byte(meta.String)); err != nil {
				return nil, err
			}
		}
		m.Timestamp = time.Unix(0, measuredAt).UTC()
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("measurements.count", len(ms)))
	return ms, nil
}
