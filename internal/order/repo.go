package order

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repository interface {
	// Place runs the atomic checkout phase: re-validate every line against
	// current stock/active state, freeze unit prices, create the order and
	// its items, decrement stock and clear the cart, all inside one
	// transaction.
	Place(ctx context.Context, o *Order, lines []Line, cartID string, shipping decimal.Decimal) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, []Item, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error)
	ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]Order, error)
	// ContainsSellerProduct reports whether any line of the order references
	// one of the seller's products.
	ContainsSellerProduct(ctx context.Context, orderID, sellerID string) (bool, error)
	UpdateStatus(ctx context.Context, id, from, to string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Place(ctx context.Context, o *Order, lines []Line, cartID string, shipping decimal.Decimal) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock rows in a stable global order so two carts sharing products in
	// opposite order cannot deadlock each other.
	sortLinesByProduct(lines)

	// Authoritative re-read. FOR UPDATE serializes concurrent checkouts of
	// the same product, closing the read/decrement race.
	prices := make([]decimal.Decimal, len(lines))
	subtotal := decimal.Zero
	for i, ln := range lines {
		var title, price string
		var stock int
		var active bool
		err := tx.QueryRow(ctx, `
			SELECT title, price_toman::text, stock, active
			FROM products WHERE id=$1
			FOR UPDATE
		`, ln.ProductID).Scan(&title, &price, &stock, &active)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, &ProductUnavailableError{Title: ln.ProductID}
			}
			return nil, err
		}
		if !active {
			return nil, &ProductUnavailableError{Title: title}
		}
		if stock < ln.Quantity {
			return nil, &InsufficientStockError{Title: title, Available: stock, Requested: ln.Quantity}
		}
		p, err := decimal.NewFromString(price)
		if err != nil {
			return nil, err
		}
		prices[i] = p
		subtotal = subtotal.Add(p.Mul(decimal.NewFromInt(int64(ln.Quantity))))
	}
	total := subtotal.Add(shipping)

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders
			(id, user_id, status, total_toman,
			 full_name, phone, address1, address2, city, province, postal_code,
			 created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW(),NOW())
	`, o.ID, o.UserID, StatusPending, total.String(),
		o.FullName, o.Phone, o.Address1, o.Address2, o.City, o.Province, o.PostalCode); err != nil {
		return nil, err
	}

	for i, ln := range lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price_toman)
			VALUES ($1,$2,$3,$4,$5)
		`, uuid.NewString(), o.ID, ln.ProductID, ln.Quantity, prices[i].String()); err != nil {
			return nil, err
		}

		// Re-asserted guard: the decrement can never drive stock negative.
		tag, err := tx.Exec(ctx, `
			UPDATE products
			SET stock = stock - $2, updated_at = NOW()
			WHERE id = $1 AND stock >= $2
		`, ln.ProductID, ln.Quantity)
		if err != nil {
			return nil, err
		}
		if tag.RowsAffected() == 0 {
			return nil, &InsufficientStockError{Title: ln.ProductID, Requested: ln.Quantity}
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id=$1`, cartID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	o.Status = StatusPending
	o.TotalToman = total
	return o, nil
}

const orderCols = `id, user_id, status, total_toman::text,
	full_name, phone, address1, address2, city, province, postal_code,
	created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var total string
	if err := row.Scan(&o.ID, &o.UserID, &o.Status, &total,
		&o.FullName, &o.Phone, &o.Address1, &o.Address2, &o.City, &o.Province, &o.PostalCode,
		&o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return nil, err
	}
	o.TotalToman = d
	return &o, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, []Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `
		SELECT `+orderCols+` FROM orders WHERE id=$1
	`, id))
	if err != nil {
		return nil, nil, ErrNotFound
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price_toman::text
		FROM order_items WHERE order_id=$1
	`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var price string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &price); err != nil {
			return nil, nil, err
		}
		d, err := decimal.NewFromString(price)
		if err != nil {
			return nil, nil, err
		}
		it.UnitPriceToman = d
		items = append(items, it)
	}
	return o, items, rows.Err()
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit, offset = clampPage(limit, offset)
	rows, err := r.db.Query(ctx, `
		SELECT `+orderCols+` FROM orders
		WHERE user_id=$1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// ListBySeller returns orders that contain at least one of the seller's
// products.
func (r *PGRepo) ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit, offset = clampPage(limit, offset)
	rows, err := r.db.Query(ctx, `
		SELECT `+orderCols+` FROM orders
		WHERE id IN (
			SELECT i.order_id FROM order_items i
			JOIN products p ON p.id = i.product_id
			WHERE p.seller_id = $1
		)
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, sellerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *PGRepo) ContainsSellerProduct(ctx context.Context, orderID, sellerID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM order_items i
			JOIN products p ON p.id = i.product_id
			WHERE i.order_id = $1 AND p.seller_id = $2
		)
	`, orderID, sellerID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// UpdateStatus moves an order from one status to another; the conditional
// write keeps concurrent updates from skipping transitions.
func (r *PGRepo) UpdateStatus(ctx context.Context, id, from, to string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func sortLinesByProduct(lines []Line) {
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}
