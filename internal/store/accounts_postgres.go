package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresAccounts is the identity store: credentials and the encrypted recovery email.
type PostgresAccounts struct {
	db *sqlx.DB
}

func NewPostgresAccounts(db *sqlx.DB) *PostgresAccounts {
	return &PostgresAccounts{db: db}
}

func (s *PostgresAccounts) CreateAccount(ctx context.Context, acct *models.Account) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO accounts (id, username, password_hash, email_encrypted, created_at)
		VALUES (:id, :username, :password_hash, :email_encrypted, :created_at)
	`, acct)
	return mapPostgresErr(err)
}

func (s *PostgresAccounts) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	var acct models.Account
	err := s.db.GetContext(ctx, &acct, `
		SELECT id, username, password_hash, COALESCE(email_encrypted, '') AS email_encrypted, created_at
		FROM accounts
		WHERE username = $1
	`, username)
	if err != nil {
		return nil, mapPostgresErr(err)
	}
	return &acct, nil
}

func (s *PostgresAccounts) DeleteAccount(ctx context.Context, uid string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, uid)
	return mapPostgresErr(err)
}

func mapPostgresErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}
