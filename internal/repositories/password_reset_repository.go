package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"taskverse/internal/database"
	"taskverse/internal/models"
)

type PasswordResetRepository interface {
	Create(ctx context.Context, pr *models.PasswordReset) error
	// GetByTokenHash returns nil, nil when no reset matches.
	GetByTokenHash(ctx context.Context, hash string) (*models.PasswordReset, error)
	// MarkUsed reports false when the reset was already used.
	MarkUsed(ctx context.Context, id string, at time.Time) (bool, error)
}

type passwordResetRepository struct {
	db *database.DB
}

func NewPasswordResetRepository(db *database.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, pr *models.PasswordReset) error {
	pr.ID = uuid.NewString()
	pr.CreatedAt = time.Now().UTC()
	pr.ExpiresAt = pr.ExpiresAt.UTC()
	query := r.db.Rebind(`
		INSERT INTO password_resets (id, user_id, token_hash, expires_at, created_at)
		VALUES (?,?,?,?,?)`)
	_, err := r.db.ExecContext(ctx, query, pr.ID, pr.UserID, pr.TokenHash, pr.ExpiresAt, pr.CreatedAt)
	return err
}

func (r *passwordResetRepository) GetByTokenHash(ctx context.Context, hash string) (*models.PasswordReset, error) {
	query := r.db.Rebind(`
		SELECT id, user_id, token_hash, expires_at, used_at, created_at
		FROM password_resets
		WHERE token_hash = ?`)
	pr := &models.PasswordReset{}
	var usedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, hash).
		Scan(&pr.ID, &pr.UserID, &pr.TokenHash, &pr.ExpiresAt, &usedAt, &pr.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	pr.UsedAt = timePtr(usedAt)
	return pr, nil
}

func (r *passwordResetRepository) MarkUsed(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE password_resets SET used_at = ? WHERE id = ? AND used_at IS NULL`),
		at.UTC(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
