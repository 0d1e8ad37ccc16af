package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskverse/internal/database"
	"taskverse/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	// Lookups return nil, nil when nothing matches.
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetBySubject(ctx context.Context, provider, subject string) (*models.User, error)
	UpdateTelegramLink(ctx context.Context, userID string, chatID int64, enable bool) error
	UpdatePassword(ctx context.Context, userID, hash string) error
}

type userRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, display_name, provider, subject,
	telegram_chat_id, notify_telegram, created_at`

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u       models.User
		hash    sql.NullString
		subject sql.NullString
		chatID  sql.NullInt64
	)
	if err := row.Scan(&u.ID, &u.Email, &hash, &u.DisplayName, &u.Provider, &subject,
		&chatID, &u.NotifyTelegram, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.PasswordHash = hash.String
	u.Subject = subject.String
	u.TelegramChatID = chatID.Int64
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.NewString()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = time.Now().UTC()
	if user.Provider == "" {
		user.Provider = models.ProviderPassword
	}
	var chatID any
	if user.TelegramChatID != 0 {
		chatID = user.TelegramChatID
	}

	query := r.db.Rebind(`
		INSERT INTO users (` + userColumns + `)
		VALUES (?,?,?,?,?,?,?,?,?)`)
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, nullIfEmpty(user.PasswordHash), user.DisplayName, user.Provider,
		nullIfEmpty(user.Subject), chatID, user.NotifyTelegram, user.CreatedAt,
	)
	return err
}

func (r *userRepository) getOne(ctx context.Context, where string, args ...any) (*models.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE ` + where)
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `id = ?`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `email = ?`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *userRepository) GetBySubject(ctx context.Context, provider, subject string) (*models.User, error) {
	return r.getOne(ctx, `provider = ? AND subject = ?`, provider, subject)
}

func (r *userRepository) UpdateTelegramLink(ctx context.Context, userID string, chatID int64, enable bool) error {
	var chat any
	if chatID != 0 {
		chat = chatID
	}
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE users SET telegram_chat_id = ?, notify_telegram = ? WHERE id = ?`),
		chat, enable, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID, hash string) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE users SET password_hash = ? WHERE id = ?`), hash, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
