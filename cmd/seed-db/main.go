// Command seed-db loads the product catalog and demo users with API keys
// into the database. Intended for local development and the integration
// test stack.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/brmartins/delivery-orders/internal/handler"
	"github.com/brmartins/delivery-orders/internal/repository"
)

type productJSON struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"imageUrl"`
	Available   *bool           `json:"available"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed for the demo customer (or ORDERS_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or ORDERS_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("ORDERS_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or ORDERS_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("ORDERS_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return seedProducts(gctx, pool, productsFile)
	})
	g.Go(func() error {
		return seedDemoCustomer(gctx, pool, apiKey, pepper)
	})
	return g.Wait()
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products file")
	}

	const insertSQL = `INSERT INTO products (id, name, description, price, category, image_url, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description,
			price = EXCLUDED.price, category = EXCLUDED.category,
			image_url = EXCLUDED.image_url, available = EXCLUDED.available,
			updated_at = now()`

	for _, p := range products {
		available := true
		if p.Available != nil {
			available = *p.Available
		}
		if _, err := pool.Exec(ctx, insertSQL,
			p.ID, p.Name, p.Description, p.Price, p.Category, p.ImageURL, available,
		); err != nil {
			return errors.Wrapf(err, "insert product %q", p.ID)
		}
	}

	slog.Info("seeded products", slog.Int("count", len(products)))
	return nil
}

func seedDemoCustomer(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	userID := uuid.New().String()

	_, err := pool.Exec(ctx, `INSERT INTO users (id, name, email, role)
		VALUES ($1, 'Demo Customer', 'customer@example.com', 'customer')
		ON CONFLICT (email) DO NOTHING`, userID)
	if err != nil {
		return errors.Wrap(err, "insert demo user")
	}

	// The conflict branch above may have kept an existing user; resolve the
	// real ID so the key always points at the stored row.
	if err := pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = 'customer@example.com'`,
	).Scan(&userID); err != nil {
		return errors.Wrap(err, "resolve demo user id")
	}

	_, err = pool.Exec(ctx, `INSERT INTO api_keys (key_hash, user_id, label)
		VALUES ($1, $2, 'demo')
		ON CONFLICT (key_hash) DO NOTHING`,
		handler.HashAPIKey(apiKey, []byte(pepper)), userID,
	)
	if err != nil {
		return errors.Wrap(err, "insert api key")
	}

	slog.Info("seeded demo customer api key")
	return nil
}
