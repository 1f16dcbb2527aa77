package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"time"

	"dispodeals/database"
	"dispodeals/models"
)

// DealRepository persists raw deals accepted by the ingest routes
type DealRepository interface {
	// Save stores the deal and returns its assigned id
	Save(ctx context.Context, deal *models.Deal) (string, error)
	Count(ctx context.Context) (int, error)
}

// MemoryDealRepository keeps deals in process memory
type MemoryDealRepository struct {
	mu    sync.Mutex
	next  int
	deals []models.Deal
}

func NewMemoryDealRepository() *MemoryDealRepository {
	return &MemoryDealRepository{next: 1}
}

// Save assigns sequential ids: ddd-1, ddd-2, ...
func (r *MemoryDealRepository) Save(_ context.Context, deal *models.Deal) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deal.DealID = dealID(int64(r.next))
	r.next++
	if deal.CreatedAt.IsZero() {
		deal.CreatedAt = time.Now()
	}
	r.deals = append(r.deals, *deal)
	return deal.DealID, nil
}

func (r *MemoryDealRepository) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.deals), nil
}

// All returns a copy of the stored deals in insertion order
func (r *MemoryDealRepository) All() []models.Deal {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Deal, len(r.deals))
	copy(out, r.deals)
	return out
}

// PostgresDealRepository stores deals in the raw_deals table
type PostgresDealRepository struct {
	db *sql.DB
}

// NewPostgresDealRepository uses db, or the shared connection when nil
func NewPostgresDealRepository(db *sql.DB) *PostgresDealRepository {
	if db == nil {
		db = database.DB
	}
	return &PostgresDealRepository{db: db}
}

// Save inserts a deal; the id is derived from the SERIAL key
func (r *PostgresDealRepository) Save(ctx context.Context, deal *models.Deal) (string, error) {
	query := `
		INSERT INTO raw_deals (dispensary_name, location, raw_text, product_name, price, weight, thc, url, detected_at, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	source := deal.Source
	if source == "" {
		source = models.DealSourceManual
	}

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		deal.DispensaryName, deal.Location, deal.RawText, deal.ProductName,
		deal.Price, deal.Weight, deal.THC, deal.URL, deal.DetectedAt, source,
	).Scan(&id, &deal.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to save deal: %w", err)
	}

	deal.DealID = dealID(id)
	return deal.DealID, nil
}

func (r *PostgresDealRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM raw_deals`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count deals: %w", err)
	}
	return n, nil
}

func dealID(n int64) string {
	return "ddd-" + strconv.FormatInt(n, 10)
}
