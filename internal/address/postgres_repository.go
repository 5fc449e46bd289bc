package address

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/junedipasaribu/ecommerce-sub000/internal/domain"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) AddressRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, addr *domain.Address) (*domain.Address, error) {
	query := `INSERT INTO addresses (customer_id, label, receiver, phone, full_address, city, province, postal_code, is_primary, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	          RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		addr.CustomerID,
		addr.Label,
		addr.Receiver,
		addr.Phone,
		addr.FullAddress,
		addr.City,
		addr.Province,
		addr.PostalCode,
		addr.IsPrimary,
	).Scan(&addr.ID, &addr.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert address: %w", err)
	}

	return addr, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*domain.Address, error) {
	query := `SELECT id, customer_id, label, receiver, phone, full_address, city, province, postal_code, is_primary, created_at
	          FROM addresses WHERE id = $1`

	var addr domain.Address
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&addr.ID,
		&addr.CustomerID,
		&addr.Label,
		&addr.Receiver,
		&addr.Phone,
		&addr.FullAddress,
		&addr.City,
		&addr.Province,
		&addr.PostalCode,
		&addr.IsPrimary,
		&addr.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query address by id: %w", err)
	}

	return &addr, nil
}

func (r *postgresRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Address, error) {
	query := `SELECT id, customer_id, label, receiver, phone, full_address, city, province, postal_code, is_primary, created_at
	          FROM addresses WHERE customer_id = $1 ORDER BY is_primary DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("query addresses by customer: %w", err)
	}
	defer rows.Close()

	var addresses []*domain.Address
	for rows.Next() {
		var addr domain.Address
		if err := rows.Scan(
			&addr.ID,
			&addr.CustomerID,
			&addr.Label,
			&addr.Receiver,
			&addr.Phone,
			&addr.FullAddress,
			&addr.City,
			&addr.Province,
			&addr.PostalCode,
			&addr.IsPrimary,
			&addr.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan address row: %w", err)
		}
		addresses = append(addresses, &addr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return addresses, nil
}

func (r *postgresRepository) CountByCustomer(ctx context.Context, customerID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM addresses WHERE customer_id = $1`, customerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count addresses: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) Update(ctx context.Context, addr *domain.Address) error {
	query := `UPDATE addresses
	          SET label = $1, receiver = $2, phone = $3, full_address = $4, city = $5, province = $6, postal_code = $7
	          WHERE id = $8 AND customer_id = $9`

	result, err := r.db.ExecContext(ctx, query,
		addr.Label,
		addr.Receiver,
		addr.Phone,
		addr.FullAddress,
		addr.City,
		addr.Province,
		addr.PostalCode,
		addr.ID,
		addr.CustomerID,
	)
	if err != nil {
		return fmt.Errorf("update address: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrAddressNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM addresses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrAddressNotFound
	}
	return nil
}

func (r *postgresRepository) SetPrimary(ctx context.Context, customerID string, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE addresses SET is_primary = FALSE WHERE customer_id = $1 AND is_primary = TRUE`,
		customerID,
	); err != nil {
		return fmt.Errorf("unset previous primary: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE addresses SET is_primary = TRUE WHERE id = $1 AND customer_id = $2`,
		id, customerID,
	)
	if err != nil {
		return fmt.Errorf("set primary: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrAddressNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
