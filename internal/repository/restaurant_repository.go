package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/restaurant-portal/internal/domain"
)

// RestaurantRepository persists restaurant accounts. Missing rows surface as pgx.ErrNoRows.
type RestaurantRepository interface {
	// CreateWithOwner inserts the restaurant and its owner login in one transaction and
	// binds owner.RestaurantID to the new row. Either both rows exist afterwards or neither.
	CreateWithOwner(ctx context.Context, account *domain.RestaurantAccount, owner *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.RestaurantAccount, error)
	List(ctx context.Context, filter RestaurantFilter) ([]domain.RestaurantAccount, error)
	// TransitionVerification moves verification_status from one value to another and
	// reports pgx.ErrNoRows when the row is missing or not in the expected state.
	TransitionVerification(ctx context.Context, id string, from, to domain.VerificationStatus) (*domain.RestaurantAccount, error)
	// TransitionAccount is the account_status counterpart of TransitionVerification.
	TransitionAccount(ctx context.Context, id string, from, to domain.AccountStatus) (*domain.RestaurantAccount, error)
}

// RestaurantFilter narrows restaurant listings.
type RestaurantFilter struct {
	VerificationStatus *domain.VerificationStatus
	AccountStatus      *domain.AccountStatus
	Limit              int
	Offset             int
}

type restaurantRepository struct {
	pool *pgxpool.Pool
}

// NewRestaurantRepository returns a Postgres-backed implementation.
func NewRestaurantRepository(pool *pgxpool.Pool) RestaurantRepository {
	return &restaurantRepository{pool: pool}
}

const restaurantColumns = `id, name, verification_status, account_status, created_at, updated_at`

func (r *restaurantRepository) CreateWithOwner(ctx context.Context, account *domain.RestaurantAccount, owner *domain.User) error {
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		const query = `
            INSERT INTO restaurants (name, verification_status, account_status)
            VALUES ($1, $2, $3)
            RETURNING id, created_at, updated_at`

		if err := tx.QueryRow(ctx, query,
			account.Name,
			account.VerificationStatus,
			account.AccountStatus,
		).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return fmt.Errorf("insert restaurant: %w", err)
		}

		restaurantID := account.ID
		owner.RestaurantID = &restaurantID
		if err := insertUser(ctx, tx, owner); err != nil {
			return fmt.Errorf("insert owner: %w", err)
		}
		return nil
	})
}

func (r *restaurantRepository) GetByID(ctx context.Context, id string) (*domain.RestaurantAccount, error) {
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id=$1`
	return scanRestaurant(r.pool.QueryRow(ctx, query, id))
}

func (r *restaurantRepository) List(ctx context.Context, filter RestaurantFilter) ([]domain.RestaurantAccount, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.VerificationStatus != nil {
		args = append(args, *filter.VerificationStatus)
		conditions = append(conditions, fmt.Sprintf("verification_status=$%d", len(args)))
	}
	if filter.AccountStatus != nil {
		args = append(args, *filter.AccountStatus)
		conditions = append(conditions, fmt.Sprintf("account_status=$%d", len(args)))
	}

	query := `SELECT ` + restaurantColumns + ` FROM restaurants`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.RestaurantAccount
	for rows.Next() {
		account, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

func (r *restaurantRepository) TransitionVerification(ctx context.Context, id string, from, to domain.VerificationStatus) (*domain.RestaurantAccount, error) {
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	query := `
        UPDATE restaurants SET verification_status=$1, updated_at=NOW()
        WHERE id=$2 AND verification_status=$3
        RETURNING ` + restaurantColumns
	return scanRestaurant(r.pool.QueryRow(ctx, query, to, id, from))
}

func (r *restaurantRepository) TransitionAccount(ctx context.Context, id string, from, to domain.AccountStatus) (*domain.RestaurantAccount, error) {
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	query := `
        UPDATE restaurants SET account_status=$1, updated_at=NOW()
        WHERE id=$2 AND account_status=$3
        RETURNING ` + restaurantColumns
	return scanRestaurant(r.pool.QueryRow(ctx, query, to, id, from))
}

func scanRestaurant(row pgx.Row) (*domain.RestaurantAccount, error) {
	var (
		account      domain.RestaurantAccount
		verification string
		status       string
	)
	if err := row.Scan(
		&account.ID,
		&account.Name,
		&verification,
		&status,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	account.VerificationStatus = domain.ParseVerificationStatus(verification)
	account.AccountStatus = domain.ParseAccountStatus(status)
	return &account, nil
}

// validID reports whether id can match a UUID primary key. Anything else is treated as a
// missing row instead of a database error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
