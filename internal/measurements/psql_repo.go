package measurements

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/telemetry/tracing"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/trends"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

const PsqlSchema = `
CREATE TABLE IF NOT EXISTS measurement (
	id          BIGSERIAL PRIMARY KEY,
	client_id   TEXT NOT NULL,
	metric_key  TEXT NOT NULL,
	value       DOUBLE PRECISION,
	meta        JSONB,
	measured_at TIMESTAMPTZ NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS measurement_client_metric_time_idx
	ON measurement (client_id, metric_key, measured_at);
`

type PsqlRepo struct {
	db *pgxpool.Pool
}

func NewPsqlRepo(db *pgxpool.Pool) *PsqlRepo {
	return &PsqlRepo{
		db: db,
	}
}

func (r *PsqlRepo) EnsureSchema(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.schema")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = r.db.Exec(ctx, PsqlSchema)
	return err
}

func (r *PsqlRepo) Add(ctx context.Context, clientID string, m trends.Measurement) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("client", clientID),
		attribute.String("metric", m.MetricKey),
	)

	var metaJson []byte
	if len(m.Meta) > 0 {
		metaJson, err = json.Marshal(m.Meta)
		if err != nil {
			return -1, fmt.Errorf("marshal meta: %w", err)
		}
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO measurement
				(client_id, metric_key, value, meta, measured_at)
				VALUES ($1, $2, $3, $4, $5)
			RETURNING id;`,
		clientID, m.MetricKey, m.Value, metaJson, m.Timestamp,
	)
	if err != nil {
		return -1, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return -1, err
		}
		return -1, errors.New("unexpected error [no rows next]")
	}

	var id int64
	if err := rows.Scan(&id); err != nil {
		return -1, fmt.Errorf("rows scan: %w", err)
	}

	span.SetAttributes(attribute.Int64("measurement.id", id))
	return id, nil
}

func (r *PsqlRepo) List(ctx context.Context, params ListParams) (_ []trends.Measurement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("client", params.ClientID),
		attribute.String("metric", params.MetricKey),
		attribute.String("from", params.From.Format(time.RFC3339)),
		attribute.String("until", params.Until.Format(time.RFC3339)),
	)

	if err := params.Validate(); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT metric_key, value, meta, measured_at FROM (
				(
					SELECT id, metric_key, value, meta, measured_at
					FROM measurement
					WHERE client_id = $1 AND metric_key = $2 AND measured_at < $3 AND value IS NOT NULL
					ORDER BY measured_at DESC, id DESC
					LIMIT 1
				)
				UNION ALL
				(
					SELECT id, metric_key, value, meta, measured_at
					FROM measurement
					WHERE client_id = $1 AND metric_key = $2 AND measured_at >= $3 AND measured_at < $4
				)
			) m
			ORDER BY measured_at, id;`,
		params.ClientID, params.MetricKey, params.From, params.Until,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ms []trends.Measurement
	for rows.Next() {
		var (
			m        trends.Measurement
			metaJson []byte
		)
		if err := rows.Scan(&m.MetricKey, &m.Value, &metaJson, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if m.Meta, err = unmarshalMeta(metaJson); err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("measurements.count", len(ms)))
	return ms, nil
}

func unmarshalMeta(raw []byte) (map[string]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	meta := make(map[string]string)
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("unmarshal meta: %w", err)
	}
	return meta, nil
}
