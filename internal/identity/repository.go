package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrAccountExists is returned when the mobile number is already registered.
	ErrAccountExists = errors.New("account already exists")
	// ErrAccountNotFound is returned when no account matches.
	ErrAccountNotFound = errors.New("account not found")
)

// Repository persists accounts.
type Repository interface {
	Create(ctx context.Context, account Account) error
	FindByMobile(ctx context.Context, mobile string) (Account, error)
	RecordLogin(ctx context.Context, id string, at time.Time) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new account.
func (r *PostgresRepository) Create(ctx context.Context, a Account) error {
	id, err := uuid.Parse(a.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO accounts
        (id, mobile, name, dob, address, aadhar_url, pan_url, selfie_url, mpin_hash, fingerprint, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, a.Mobile, a.Name, a.DOB, a.Address, a.AadharURL, a.PANURL, a.SelfieURL, a.MPINHash, a.Fingerprint, a.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAccountExists
	}
	return err
}

// FindByMobile fetches an account by mobile number.
func (r *PostgresRepository) FindByMobile(ctx context.Context, mobile string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT id, mobile, name, dob, address, aadhar_url, pan_url, selfie_url,
        mpin_hash, fingerprint, created_at, last_login FROM accounts WHERE mobile = $1`, mobile)
	var (
		id uuid.UUID
		a  Account
	)
	err := row.Scan(&id, &a.Mobile, &a.Name, &a.DOB, &a.Address, &a.AadharURL, &a.PANURL, &a.SelfieURL,
		&a.MPINHash, &a.Fingerprint, &a.CreatedAt, &a.LastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	a.ID = id.String()
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}

// RecordLogin stamps the last successful login time.
func (r *PostgresRepository) RecordLogin(ctx context.Context, id string, at time.Time) error {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET last_login = $1 WHERE id = $2`, at.UTC(), accountID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}
