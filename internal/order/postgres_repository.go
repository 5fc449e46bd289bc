package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/junedipasaribu/ecommerce-sub000/internal/domain"
	"github.com/lib/pq"
	_ "github.com/lib/pq"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

// DB exposes the underlying handle so other repositories can share the
// connection pool.
func (r *Repository) DB() *sql.DB {
	return r.db
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "orders_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order, event *OutboxEvent) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}
	addressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO orders (id, code, customer_id, items, shipping_address, courier, shipping_cost, subtotal, tax, total_amount, currency, payment_method, status, created_at, updated_at, expires_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW(), $14)`

	_, insertErr := tx.ExecContext(ctx, query,
		order.ID,
		order.Code,
		order.CustomerID,
		itemsJSON,
		addressJSON,
		order.Courier,
		order.ShippingCost,
		order.Subtotal,
		order.Tax,
		order.TotalAmount,
		order.Currency,
		order.PaymentMethod,
		order.Status,
		order.ExpiresAt)

	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateOrderCode
		}
		return fmt.Errorf("insert order: %w", insertErr)
	}

	if event != nil {
		if err := insertOutboxEvent(ctx, tx, event); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const orderColumns = `id, code, customer_id, items, shipping_address, courier, shipping_cost, subtotal, tax, total_amount, currency, payment_method, status, created_at, updated_at, expires_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*domain.Order, error) {
	var order domain.Order
	var itemsJSON, addressJSON []byte
	err := row.Scan(
		&order.ID,
		&order.Code,
		&order.CustomerID,
		&itemsJSON,
		&addressJSON,
		&order.Courier,
		&order.ShippingCost,
		&order.Subtotal,
		&order.Tax,
		&order.TotalAmount,
		&order.Currency,
		&order.PaymentMethod,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(addressJSON, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal shipping address: %w", err)
	}

	return &order, nil
}

func (r *Repository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	return order, nil
}

func (r *Repository) ListOrdersByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("query orders by customer: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (r *Repository) ListOrders(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	} else {
		rows, err = r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY created_at DESC`, status)
	}
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func collectOrders(rows *sql.Rows) ([]*domain.Order, error) {
	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, event *OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		to, id, from,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		// Either the order is gone or another writer moved it first.
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check order existence: %w", err)
		}
		if !exists {
			return ErrOrderNotFound
		}
		return ErrStatusConflict
	}

	if event != nil {
		if err := insertOutboxEvent(ctx, tx, event); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *Repository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
	          WHERE status = $1 AND expires_at <= $2
	          ORDER BY expires_at ASC LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, domain.StatusPendingPayment, now, limit)
	if err != nil {
		return nil, fmt.Errorf("query expired pending orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (r *Repository) GetPaymentAttempt(ctx context.Context, orderID uuid.UUID) (*PaymentAttempt, error) {
	var attempt PaymentAttempt
	err := r.db.QueryRowContext(ctx,
		`SELECT order_id, attempt_count, locked_until FROM payment_attempts WHERE order_id = $1`,
		orderID,
	).Scan(&attempt.OrderID, &attempt.AttemptCount, &attempt.LockedUntil)
	if errors.Is(err, sql.ErrNoRows) {
		return &PaymentAttempt{OrderID: orderID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query payment attempt: %w", err)
	}
	return &attempt, nil
}

// IncrementPaymentAttempt counts a failed PIN entry. The increment and the
// lock decision happen inside one statement, so two concurrent failures
// land on 2 and 3, never both on 2.
func (r *Repository) IncrementPaymentAttempt(ctx context.Context, orderID uuid.UUID, lockThreshold int, lockedUntil time.Time) (*PaymentAttempt, error) {
	query := `INSERT INTO payment_attempts (order_id, attempt_count, locked_until, updated_at)
	          VALUES ($1, 1, CASE WHEN 1 >= $2 THEN $3::timestamptz END, NOW())
	          ON CONFLICT (order_id) DO UPDATE
	          SET attempt_count = payment_attempts.attempt_count + 1,
	              locked_until = CASE WHEN payment_attempts.attempt_count + 1 >= $2
	                                  THEN $3::timestamptz
	                                  ELSE payment_attempts.locked_until END,
	              updated_at = NOW()
	          RETURNING order_id, attempt_count, locked_until`

	var attempt PaymentAttempt
	err := r.db.QueryRowContext(ctx, query, orderID, lockThreshold, lockedUntil).
		Scan(&attempt.OrderID, &attempt.AttemptCount, &attempt.LockedUntil)
	if err != nil {
		return nil, fmt.Errorf("increment payment attempt: %w", err)
	}
	return &attempt, nil
}

func (r *Repository) DeletePaymentAttempt(ctx context.Context, orderID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM payment_attempts WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("delete payment attempt: %w", err)
	}
	return nil
}

// AttachShipment writes the shipment with the order's status re-verified
// inside the same statement. A cancel landing between the service's check
// and this write leaves no shipment on the dead order.
func (r *Repository) AttachShipment(ctx context.Context, shipment *domain.Shipment) error {
	query := `INSERT INTO shipments (order_id, courier_name, tracking_number, status, shipped_at, delivered_at)
	          SELECT o.id, $2, $3, $4, $5, $6 FROM orders o
	          WHERE o.id = $1 AND o.status IN ('PAID', 'PROCESSING')
	          ON CONFLICT (order_id) DO UPDATE
	          SET courier_name = EXCLUDED.courier_name,
	              tracking_number = EXCLUDED.tracking_number,
	              status = EXCLUDED.status,
	              shipped_at = EXCLUDED.shipped_at,
	              delivered_at = EXCLUDED.delivered_at`

	result, err := r.db.ExecContext(ctx, query,
		shipment.OrderID,
		shipment.CourierName,
		shipment.TrackingNumber,
		shipment.Status,
		shipment.ShippedAt,
		shipment.DeliveredAt,
	)
	if err != nil {
		return fmt.Errorf("attach shipment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("attach shipment: %w", err)
	}
	if rows == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *Repository) UpsertShipment(ctx context.Context, shipment *domain.Shipment) error {
	query := `INSERT INTO shipments (order_id, courier_name, tracking_number, status, shipped_at, delivered_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (order_id) DO UPDATE
	          SET courier_name = EXCLUDED.courier_name,
	              tracking_number = EXCLUDED.tracking_number,
	              status = EXCLUDED.status,
	              shipped_at = EXCLUDED.shipped_at,
	              delivered_at = EXCLUDED.delivered_at`

	_, err := r.db.ExecContext(ctx, query,
		shipment.OrderID,
		shipment.CourierName,
		shipment.TrackingNumber,
		shipment.Status,
		shipment.ShippedAt,
		shipment.DeliveredAt,
	)
	if err != nil {
		return fmt.Errorf("upsert shipment: %w", err)
	}
	return nil
}

func (r *Repository) GetShipment(ctx context.Context, orderID uuid.UUID) (*domain.Shipment, error) {
	var shipment domain.Shipment
	err := r.db.QueryRowContext(ctx,
		`SELECT order_id, courier_name, tracking_number, status, shipped_at, delivered_at FROM shipments WHERE order_id = $1`,
		orderID,
	).Scan(
		&shipment.OrderID,
		&shipment.CourierName,
		&shipment.TrackingNumber,
		&shipment.Status,
		&shipment.ShippedAt,
		&shipment.DeliveredAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShipmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query shipment: %w", err)
	}
	return &shipment, nil
}

func insertOutboxEvent(ctx context.Context, tx *sql.Tx, event *OutboxEvent) error {
	query := `INSERT INTO order_outbox (aggregate_id, event_type, payload, created_at)
	          VALUES ($1, $2, $3, NOW())`

	if _, err := tx.ExecContext(ctx, query, event.AggregateID, event.EventType, event.Payload); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `SELECT id, aggregate_id, event_type, payload, created_at, processed_at
	          FROM order_outbox WHERE processed_at IS NULL ORDER BY id ASC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var event OutboxEvent
		if err := rows.Scan(
			&event.ID,
			&event.AggregateID,
			&event.EventType,
			&event.Payload,
			&event.CreatedAt,
			&event.ProcessedAt,
		); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, eventID int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE order_outbox SET processed_at = NOW() WHERE id = $1`, eventID); err != nil {
		return fmt.Errorf("mark event as processed: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
