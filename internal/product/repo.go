// Package product provides the repository interface and PostgreSQL implementation
// for managing catalog products, categories and stored translations.
package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("product not found")
)

type Query struct {
	Q        string
	Category string
	Sort     string // newest | oldest | price_low | price_high
	Locale   string // overlay stored translations when set
	Limit    int
	Offset   int
}

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug, locale string) (*Product, error)
	List(ctx context.Context, q Query) ([]Product, error)
	ListBySeller(ctx context.Context, sellerID string, limit int) ([]Product, error)
	Update(ctx context.Context, p *Product, updatePrice bool) error
	Delete(ctx context.Context, id, sellerID string) (bool, error)
	CategoryBySlug(ctx context.Context, slug string) (*Category, error)

	// Enrichment store
	GetText(ctx context.Context, id string) (title, description, categorySlug string, err error)
	UpsertTranslation(ctx context.Context, productID, locale, title, description, sourceHash string) error
	SetEligibility(ctx context.Context, id, status string, confidence int, reasons string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const productCols = `p.id, p.seller_id, p.category_id, p.title, p.description, p.slug,
	p.price_toman::text, p.stock, p.active,
	p.eligibility_status, p.eligibility_confidence, p.eligibility_reasons,
	p.created_at, p.updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var price string
	if err := row.Scan(&p.ID, &p.SellerID, &p.CategoryID, &p.Title, &p.Description, &p.Slug,
		&price, &p.Stock, &p.Active,
		&p.EligibilityStatus, &p.EligibilityConfidence, &p.EligibilityReasons,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	p.PriceToman = d
	return &p, nil
}

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO products
			(id, seller_id, category_id, title, description, slug,
			 price_toman, stock, active, eligibility_status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW(),NOW())
	`, p.ID, p.SellerID, p.CategoryID, p.Title, p.Description, p.Slug,
		p.PriceToman.String(), p.Stock, p.Active, p.EligibilityStatus)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, `
		SELECT `+productCols+` FROM products p WHERE p.id=$1
	`, id))
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// GetBySlug returns an active product, with title/description swapped for the
// stored translation when one exists for the requested locale.
func (r *PGRepo) GetBySlug(ctx context.Context, slug, locale string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, `
		SELECT p.id, p.seller_id, p.category_id,
			COALESCE(t.title, p.title), COALESCE(t.description, p.description), p.slug,
			p.price_toman::text, p.stock, p.active,
			p.eligibility_status, p.eligibility_confidence, p.eligibility_reasons,
			p.created_at, p.updated_at
		FROM products p
		LEFT JOIN product_translations t ON t.product_id = p.id AND t.locale = $2
		WHERE p.slug=$1 AND p.active
	`, slug, locale))
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// List serves the public catalog: active products only, with REJECTED
// eligibility soft-filtered out at query time.
func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	order := "p.created_at DESC"
	switch q.Sort {
	case "oldest":
		order = "p.created_at ASC"
	case "price_low":
		order = "p.price_toman ASC"
	case "price_high":
		order = "p.price_toman DESC"
	}

	search := strings.TrimSpace(q.Q)

	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.seller_id, p.category_id,
			COALESCE(t.title, p.title), COALESCE(t.description, p.description), p.slug,
			p.price_toman::text, p.stock, p.active,
			p.eligibility_status, p.eligibility_confidence, p.eligibility_reasons,
			p.created_at, p.updated_at
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN product_translations t ON t.product_id = p.id AND t.locale = $3
		WHERE p.active
		  AND p.eligibility_status <> 'REJECTED'
		  AND ($1 = '' OR p.title ILIKE '%'||$1||'%' OR p.description ILIKE '%'||$1||'%')
		  AND ($2 = '' OR c.slug = $2)
		ORDER BY `+order+`
		LIMIT $4 OFFSET $5
	`, search, q.Category, q.Locale, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PGRepo) ListBySeller(ctx context.Context, sellerID string, limit int) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 200 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+productCols+` FROM products p
		WHERE p.seller_id=$1
		ORDER BY p.created_at DESC
		LIMIT $2
	`, sellerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, p *Product, updatePrice bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if updatePrice {
		_, err := r.db.Exec(ctx, `
			UPDATE products
			SET title = COALESCE(NULLIF($2,''), title),
			    description = COALESCE(NULLIF($3,''), description),
			    category_id = $4,
			    price_toman = $5,
			    stock = $6,
			    active = $7,
			    updated_at = NOW()
			WHERE id = $1
		`, p.ID, p.Title, p.Description, p.CategoryID, p.PriceToman.String(), p.Stock, p.Active)
		return err
	}

	_, err := r.db.Exec(ctx, `
		UPDATE products
		SET title = COALESCE(NULLIF($2,''), title),
		    description = COALESCE(NULLIF($3,''), description),
		    category_id = $4,
		    stock = $5,
		    active = $6,
		    updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.Title, p.Description, p.CategoryID, p.Stock, p.Active)
	return err
}

func (r *PGRepo) Delete(ctx context.Context, id, sellerID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1 AND seller_id=$2`, id, sellerID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGRepo) CategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c Category
	err := r.db.QueryRow(ctx, `
		SELECT id, slug, name FROM categories WHERE slug=$1
	`, slug).Scan(&c.ID, &c.Slug, &c.Name)
	if err != nil {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *PGRepo) GetText(ctx context.Context, id string) (string, string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var title, description string
	var categorySlug *string
	err := r.db.QueryRow(ctx, `
		SELECT p.title, p.description, c.slug
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id=$1
	`, id).Scan(&title, &description, &categorySlug)
	if err != nil {
		return "", "", "", ErrNotFound
	}
	slug := ""
	if categorySlug != nil {
		slug = *categorySlug
	}
	return title, description, slug, nil
}

// UpsertTranslation creates or overwrites the (product, locale) row. The
// source_hash guard makes re-running with unchanged content a no-op write.
func (r *PGRepo) UpsertTranslation(ctx context.Context, productID, locale, title, description, sourceHash string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO product_translations (product_id, locale, title, description, source_hash, updated_at)
		VALUES ($1,$2,$3,$4,$5,NOW())
		ON CONFLICT (product_id, locale) DO UPDATE
		SET title = EXCLUDED.title,
		    description = EXCLUDED.description,
		    source_hash = EXCLUDED.source_hash,
		    updated_at = NOW()
		WHERE product_translations.source_hash IS DISTINCT FROM EXCLUDED.source_hash
	`, productID, locale, title, description, sourceHash)
	return err
}

func (r *PGRepo) SetEligibility(ctx context.Context, id, status string, confidence int, reasons string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET eligibility_status = $2,
		    eligibility_confidence = $3,
		    eligibility_reasons = NULLIF($4,''),
		    updated_at = NOW()
		WHERE id = $1
	`, id, status, confidence, reasons)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
