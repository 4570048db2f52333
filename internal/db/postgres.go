package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/patrickwarner/seamlessads/internal/models"
)

// Postgres wraps a postgres DB connection.
type Postgres struct {
	DB *sql.DB
}

// schemaSQL sets up the catalog tables if they don't exist.
const schemaSQL = `CREATE TABLE IF NOT EXISTS catalog_products (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    brand TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    tags TEXT[] NOT NULL DEFAULT '{}',
    price DOUBLE PRECISION,
    unit TEXT NOT NULL DEFAULT 'each',
    size TEXT NOT NULL DEFAULT 'each',
    in_stock BOOLEAN NOT NULL DEFAULT TRUE,
    image_url TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_catalog_products_name ON catalog_products (lower(name));
CREATE INDEX IF NOT EXISTS idx_catalog_products_tags ON catalog_products USING GIN (tags);
`

// CatalogProduct is a row of the catalog_products table.
type CatalogProduct struct {
	ID       string
	Name     string
	Brand    string
	Category string
	Tags     []string
	Price    *float64
	Unit     string
	Size     string
	InStock  bool
	ImageURL string
}

// Candidate converts the row into a ranking candidate.
func (p CatalogProduct) Candidate() models.Candidate {
	return models.Candidate{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Unit:     p.Unit,
		Size:     p.Size,
		InStock:  models.Bool(p.InStock),
		ImageURL: p.ImageURL,
	}
}

// InitPostgres connects to Postgres with connection pooling configuration.
func InitPostgres(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (*Postgres, error) {
	driverName, err := otelsql.Register("postgres",
		otelsql.WithAttributes(
			attribute.String("db.system", "postgresql"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("register otelsql: %w", err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	p := &Postgres{DB: db}
	if err := p.ensureSchema(); err != nil {
		return nil, err
	}
	zap.L().Info("Connected to Postgres with connection pooling",
		zap.Int("max_open_conns", maxOpenConns),
		zap.Int("max_idle_conns", maxIdleConns),
		zap.Duration("conn_max_lifetime", connMaxLifetime))
	return p, nil
}

// Close terminates the Postgres connection.
func (p *Postgres) Close() {
	if p != nil && p.DB != nil {
		if err := p.DB.Close(); err != nil {
			zap.L().Error("postgres close", zap.Error(err))
		}
	}
}

// ensureSchema creates the required tables if they do not exist.
func (p *Postgres) ensureSchema() error {
	if _, err := p.DB.ExecContext(context.Background(), schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

const productColumns = `id, name, brand, category, tags, price, unit, size, in_stock, image_url`

// searchProductsSQL matches the term against name, brand, category and tags.
// $4 is the term with LIKE wildcards escaped. A non-positive max price
// disables the price filter.
const searchProductsSQL = `SELECT ` + productColumns + ` FROM catalog_products
WHERE (name ILIKE '%' || $4::text || '%' ESCAPE '\' OR brand ILIKE '%' || $4::text || '%' ESCAPE '\' OR category ILIKE $4::text ESCAPE '\' OR lower($1::text) = ANY(tags))
  AND ($2::float8 <= 0 OR price IS NULL OR price <= $2::float8)
ORDER BY id
LIMIT $3`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes term match literally inside an ILIKE pattern.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (CatalogProduct, error) {
	var (
		p     CatalogProduct
		price sql.NullFloat64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Brand, &p.Category, pq.Array(&p.Tags), &price, &p.Unit, &p.Size, &p.InStock, &p.ImageURL); err != nil {
		return CatalogProduct{}, err
	}
	if price.Valid {
		p.Price = models.Float(price.Float64)
	}
	return p, nil
}

// SearchCatalogProducts returns up to limit products matching term.
func (p *Postgres) SearchCatalogProducts(ctx context.Context, term string, maxPrice float64, limit int) ([]CatalogProduct, error) {
	rows, err := p.DB.QueryContext(ctx, searchProductsSQL, term, maxPrice, limit, escapeLike(term))
	if err != nil {
		return nil, fmt.Errorf("search catalog products: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []CatalogProduct
	for rows.Next() {
		prod, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog product: %w", err)
		}
		out = append(out, prod)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

// GetCatalogProduct loads a single product. It returns models.ErrNotFound
// when the id is unknown.
func (p *Postgres) GetCatalogProduct(ctx context.Context, id string) (CatalogProduct, error) {
	row := p.DB.QueryRowContext(ctx, `SELECT `+productColumns+` FROM catalog_products WHERE id = $1`, id)
	prod, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return CatalogProduct{}, fmt.Errorf("catalog product %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return CatalogProduct{}, fmt.Errorf("get catalog product: %w", err)
	}
	return prod, nil
}

// UpsertCatalogProduct inserts or replaces a product row.
func (p *Postgres) UpsertCatalogProduct(ctx context.Context, prod CatalogProduct) error {
	var price sql.NullFloat64
	if prod.Price != nil {
		price = sql.NullFloat64{Float64: *prod.Price, Valid: true}
	}
	if prod.Tags == nil {
		prod.Tags = []string{}
	}
	_, err := p.DB.ExecContext(ctx, `INSERT INTO catalog_products (`+productColumns+`, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW())
ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, brand=EXCLUDED.brand, category=EXCLUDED.category,
    tags=EXCLUDED.tags, price=EXCLUDED.price, unit=EXCLUDED.unit, size=EXCLUDED.size,
    in_stock=EXCLUDED.in_stock, image_url=EXCLUDED.image_url, updated_at=NOW()`,
		prod.ID, prod.Name, prod.Brand, prod.Category, pq.Array(prod.Tags), price,
		defaultString(prod.Unit, "each"), defaultString(prod.Size, "each"), prod.InStock, prod.ImageURL)
	if err != nil {
		return fmt.Errorf("upsert catalog product %s: %w", prod.ID, err)
	}
	return nil
}

// DeleteCatalogProduct removes a product row.
func (p *Postgres) DeleteCatalogProduct(ctx context.Context, id string) error {
	if _, err := p.DB.ExecContext(ctx, `DELETE FROM catalog_products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete catalog product: %w", err)
	}
	return nil
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
