package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/news-publisher/internal/models"
)

// CreateResetToken сохраняет новый токен восстановления пароля,
// предварительно удалив неиспользованные токены пользователя.
func (s *Storage) CreateResetToken(ctx context.Context, token models.ResetToken) (int64, error) {
	const op = "storage.CreateResetToken"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM reset_tokens WHERE user_id = $1 AND used_at IS NULL`,
		token.UserID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var newID int64
	query := `INSERT INTO reset_tokens (user_id, token_hash, expires_at)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	if err = tx.QueryRowContext(ctx, query,
		token.UserID, token.TokenHash, token.ExpiresAt).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// FindUnusedResetToken ищет неиспользованный токен по хэшу вместе с его
// владельцем. Возвращает (nil, nil, nil), если токен не найден.
func (s *Storage) FindUnusedResetToken(ctx context.Context, tokenHash string) (*models.User, *models.ResetToken, error) {
	const op = "storage.FindUnusedResetToken"
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT rt.id, rt.user_id, rt.token_hash, rt.created_at, rt.expires_at, rt.used_at,
			      ` + prefixedUserColumns("u") + `
			  FROM reset_tokens rt
			  JOIN users u ON u.id = rt.user_id
			  WHERE rt.token_hash = $1 AND rt.used_at IS NULL`
	row := s.DB.QueryRowContext(ctx, query, tokenHash)

	var rt models.ResetToken
	var usedAt sql.NullTime
	u := &models.User{}
	var affiliated sql.NullInt64
	err := row.Scan(&rt.ID, &rt.UserID, &rt.TokenHash, &rt.CreatedAt, &rt.ExpiresAt, &usedAt,
		&u.ID, &u.UID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.Role, &affiliated, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if usedAt.Valid {
		rt.UsedAt = &usedAt.Time
	}
	if affiliated.Valid {
		u.AffiliatedPublisherID = &affiliated.Int64
	}
	return u, &rt, nil
}

// DeleteResetToken удаляет токен по ID. Используется для зачистки
// просроченных токенов, обнаруженных при поиске.
func (s *Storage) DeleteResetToken(ctx context.Context, id int64) error {
	const op = "storage.DeleteResetToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM reset_tokens WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ConsumeResetTokenAndSetPassword помечает токен использованным и меняет
// пароль пользователя в одной транзакции: токен не может оказаться
// использованным без фактической смены пароля.
func (s *Storage) ConsumeResetTokenAndSetPassword(ctx context.Context, tokenID, userID int64, passwordHash string) error {
	const op = "storage.ConsumeResetTokenAndSetPassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx,
		`UPDATE reset_tokens SET used_at = $1 WHERE id = $2 AND used_at IS NULL`,
		time.Now().UTC(), tokenID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`,
		passwordHash, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
