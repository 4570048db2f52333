package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	"github.com/patrickwarner/seamlessads/internal/observability"
)

// ErrUnavailable is returned when the analytics DB is not configured.
var ErrUnavailable = errors.New("analytics unavailable")

// Sink records served recommendations. Implementations should return
// ErrUnavailable when their storage is not configured.
type Sink interface {
	RecordRecommendation(ctx context.Context, ev RecommendationEvent) error
}

// RecommendationEvent is one served ad recommendation.
type RecommendationEvent struct {
	Timestamp          time.Time `json:"timestamp"`
	RequestID          string    `json:"request_id"`
	SceneID            string    `json:"scene_id"`
	ProductKey         string    `json:"product_key"`
	Rule               string    `json:"rule"`
	SearchQuery        string    `json:"search_query"`
	TargetCategory     string    `json:"target_category"`
	PriceSensitivity   string    `json:"price_sensitivity"`
	HealthTilt         string    `json:"health_tilt"`
	DeliveryPreference string    `json:"delivery_preference"`
	ProductIDs         []string  `json:"product_ids"`
	LocationZIP        *string   `json:"location_zip,omitempty"`
}

// Analytics wraps a ClickHouse DB connection.
type Analytics struct {
	DB      *sql.DB
	Metrics observability.MetricsRegistry
}

var _ Sink = (*Analytics)(nil)

const schemaRecommendations = `CREATE TABLE IF NOT EXISTS recommendations (
    timestamp           DateTime,
    request_id          String,
    scene_id            String,
    product_key         String,
    rule                String,
    search_query        String,
    target_category     String,
    price_sensitivity   String,
    health_tilt         String,
    delivery_preference String,
    product_ids         Array(String),
    location_zip        Nullable(String)
) ENGINE=MergeTree() ORDER BY (scene_id, timestamp)`

const schemaVideoScenes = `CREATE TABLE IF NOT EXISTS video_scenes (
    video_id         String,
    scene_id         String,
    scene_start      Nullable(Float64),
    scene_end        Nullable(Float64),
    product_mentions String,
    source_file      String,
    ingested_at      DateTime DEFAULT now()
) ENGINE=MergeTree() ORDER BY (video_id, scene_id)`

const schemaProductMentions = `CREATE TABLE IF NOT EXISTS product_mentions (
    video_id          String,
    scene_id          String,
    scene_start       Nullable(Float64),
    scene_end         Nullable(Float64),
    product_name      Nullable(String),
    brand             Nullable(String),
    category          Nullable(String),
    confidence        Nullable(Float64),
    evidence_visual   Nullable(String),
    evidence_dialogue Nullable(String),
    source_file       String,
    ingested_at       DateTime DEFAULT now()
) ENGINE=MergeTree() ORDER BY (video_id, scene_id)`

// InitClickHouse connects to ClickHouse with pooling settings and ensures
// the analytics tables exist.
func InitClickHouse(dsn string, metrics observability.MetricsRegistry, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (*Analytics, error) {
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	for _, stmt := range []string{schemaRecommendations, schemaVideoScenes, schemaProductMentions} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("clickhouse create table: %w", err)
		}
	}

	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	zap.L().Info("Connected to ClickHouse")
	return &Analytics{DB: db, Metrics: metrics}, nil
}

// RecordRecommendation inserts a single recommendation row.
func (a *Analytics) RecordRecommendation(ctx context.Context, ev RecommendationEvent) error {
	if a == nil || a.DB == nil {
		return ErrUnavailable
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	if ev.ProductIDs == nil {
		ev.ProductIDs = []string{}
	}
	var zip sql.NullString
	if ev.LocationZIP != nil {
		zip = sql.NullString{String: *ev.LocationZIP, Valid: true}
	}

	stmt := `INSERT INTO recommendations (timestamp, request_id, scene_id, product_key, rule, search_query, target_category, price_sensitivity, health_tilt, delivery_preference, product_ids, location_zip) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := a.DB.ExecContext(ctx, stmt, ev.Timestamp, ev.RequestID, ev.SceneID, ev.ProductKey, ev.Rule, ev.SearchQuery,
		ev.TargetCategory, ev.PriceSensitivity, ev.HealthTilt, ev.DeliveryPreference, ev.ProductIDs, zip); err != nil {
		a.Metrics.IncrementAnalyticsErrors()
		zap.L().Error("clickhouse insert failed", zap.Error(err), zap.String("scene_id", ev.SceneID))
		return fmt.Errorf("insert recommendation: %w", err)
	}
	return nil
}

// RecommendationsByScene returns recommendations served for a scene, oldest
// first.
func (a *Analytics) RecommendationsByScene(ctx context.Context, sceneID string, limit int) ([]RecommendationEvent, error) {
	if a == nil || a.DB == nil {
		return nil, ErrUnavailable
	}
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT timestamp, request_id, scene_id, product_key, rule, search_query, target_category, price_sensitivity, health_tilt, delivery_preference, product_ids, location_zip FROM recommendations WHERE scene_id=? ORDER BY timestamp LIMIT ?`
	rows, err := a.DB.QueryContext(ctx, query, sceneID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Warn("rows close", zap.Error(err))
		}
	}()

	var out []RecommendationEvent
	for rows.Next() {
		var ev RecommendationEvent
		var zip sql.NullString
		if err := rows.Scan(&ev.Timestamp, &ev.RequestID, &ev.SceneID, &ev.ProductKey, &ev.Rule, &ev.SearchQuery,
			&ev.TargetCategory, &ev.PriceSensitivity, &ev.HealthTilt, &ev.DeliveryPreference, &ev.ProductIDs, &zip); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		if zip.Valid {
			z := zip.String
			ev.LocationZIP = &z
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

// Close terminates the ClickHouse connection.
func (a *Analytics) Close() {
	if a != nil && a.DB != nil {
		if err := a.DB.Close(); err != nil {
			zap.L().Error("clickhouse close", zap.Error(err))
		}
	}
}
