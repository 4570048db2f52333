package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/seamlessads/internal/catalog"
	"github.com/patrickwarner/seamlessads/internal/config"
	"github.com/patrickwarner/seamlessads/internal/db"
	"github.com/patrickwarner/seamlessads/internal/models"
	"github.com/patrickwarner/seamlessads/internal/observability"
)

var (
	perTerm = flag.Int("per-term", 6, "products per search term")
	seed    = flag.Int64("seed", time.Now().UnixNano(), "rng seed")
	reset   = flag.Bool("reset", false, "delete previously seeded products first")
)

// family describes products seeded for one catalog search term.
type family struct {
	term     string
	category string
	brands   []string
	minPrice float64
	maxPrice float64
	unit     string
	sizes    []string
}

// families covers every primary and fallback term the recommender searches.
var families = []family{
	{"frozen pizza", "frozen", []string{"DiGiorno", "Tombstone", "Red Baron", "Totino's"}, 3.99, 11.99, "each", []string{"12 in", "20.8 oz", "27.5 oz"}},
	{"vegetarian frozen pizza", "frozen", []string{"Amy's", "Daiya", "Newman's Own"}, 5.49, 12.99, "each", []string{"13 oz", "15.3 oz"}},
	{"pizza", "frozen", []string{"Private Selection", "California Pizza Kitchen"}, 4.99, 13.49, "each", []string{"12 in", "16 oz"}},
	{"coca-cola", "beverage", []string{"Coca-Cola"}, 1.99, 9.99, "each", []string{"12 fl oz", "2 L", "12 pk / 12 fl oz"}},
	{"cola soda", "beverage", []string{"Pepsi", "Big K", "RC Cola", "Coca-Cola"}, 0.99, 8.49, "each", []string{"12 fl oz", "2 L"}},
	{"laptop computer", "electronics", []string{"HP", "Lenovo", "Acer", "ASUS"}, 249.99, 899.99, "each", []string{"14 in", "15.6 in"}},
}

func main() {
	flag.Parse()

	logger, err := observability.InitLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()
	pg, err := db.InitPostgres(cfg.PostgresDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect postgres: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	ctx := context.Background()
	r := rand.New(rand.NewSource(*seed))

	inserted := 0
	for _, f := range families {
		for i := 1; i <= *perTerm; i++ {
			prod := generate(r, f, i)
			if *reset {
				if err := pg.DeleteCatalogProduct(ctx, prod.ID); err != nil {
					logger.Fatal("delete product", zap.String("id", prod.ID), zap.Error(err))
				}
			}
			if err := pg.UpsertCatalogProduct(ctx, prod); err != nil {
				logger.Fatal("upsert product", zap.String("id", prod.ID), zap.Error(err))
			}
			inserted++
		}
	}
	logger.Info("catalog seeded",
		zap.Int("products", inserted),
		zap.Int("terms", len(families)),
		zap.Int64("seed", *seed))
}

// generate builds the i-th product for f. Ids are stable across runs so
// reseeding replaces rows instead of piling up duplicates.
func generate(r *rand.Rand, f family, i int) db.CatalogProduct {
	brand := f.brands[r.Intn(len(f.brands))]
	price := f.minPrice + r.Float64()*(f.maxPrice-f.minPrice)
	price = math.Round(price*100) / 100
	slug := strings.ReplaceAll(f.term, " ", "_")

	return db.CatalogProduct{
		ID:       fmt.Sprintf("seed_%s_%d", slug, i),
		Name:     fmt.Sprintf("%s %s", brand, catalog.TitleCase(f.term)),
		Brand:    brand,
		Category: f.category,
		Tags:     []string{f.term, f.category},
		Price:    models.Float(price),
		Unit:     f.unit,
		Size:     f.sizes[r.Intn(len(f.sizes))],
		InStock:  r.Float64() > 0.15,
		ImageURL: catalog.GenericImageURL,
	}
}
