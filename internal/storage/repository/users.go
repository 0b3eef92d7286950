package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/news-publisher/internal/models"
)

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его ID и UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (int64, string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return 0, "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	var newUID string
	query := `INSERT INTO users (username, email, first_name, last_name, password_hash, role,
			      affiliated_publisher_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id, uid`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Username, user.Email, user.FirstName, user.LastName, user.PasswordHash,
		user.Role, user.AffiliatedPublisherID).Scan(&newID, &newUID); err != nil {
		return 0, "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, newUID, nil
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var affiliated sql.NullInt64
	if err := row.Scan(&u.ID, &u.UID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.Role, &affiliated, &u.CreatedAt); err != nil {
		return nil, err
	}
	if affiliated.Valid {
		u.AffiliatedPublisherID = &affiliated.Int64
	}
	return u, nil
}

const userColumns = `id, uid, username, email, first_name, last_name,
			      password_hash, role, affiliated_publisher_id, created_at`

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE username = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его ID.
func (s *Storage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// FindUsernamesByEmail возвращает имена всех пользователей с данным email.
func (s *Storage) FindUsernamesByEmail(ctx context.Context, email string) ([]string, error) {
	const op = "storage.FindUsernamesByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT username FROM users WHERE email = $1 ORDER BY username`
	rows, err := s.DB.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, username)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateProfile обновляет профиль пользователя. Роль и аффилиация должны быть
// заранее приведены к инвариантам через models.NormalizeForRole; подписки
// читателя удаляются в той же транзакции, если роль перестала быть reader.
func (s *Storage) UpdateProfile(ctx context.Context, user models.User) error {
	const op = "storage.UpdateProfile"
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

	query := `UPDATE users
			  SET email = $1, first_name = $2, last_name = $3, role = $4,
			      affiliated_publisher_id = $5
			  WHERE id = $6`
	if _, err = tx.ExecContext(ctx, query,
		user.Email, user.FirstName, user.LastName, user.Role,
		user.AffiliatedPublisherID, user.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if user.Role != models.RoleReader {
		if _, err = tx.ExecContext(ctx,
			`DELETE FROM subscriptions_publishers WHERE user_id = $1`, user.ID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if _, err = tx.ExecContext(ctx,
			`DELETE FROM subscriptions_journalists WHERE user_id = $1`, user.ID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	// Состав редакции ведётся по текущей аффилиации: старая запись
	// снимается, актуальная добавляется в той же транзакции.
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM publisher_editors WHERE user_id = $1`, user.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if user.Role == models.RoleEditor && user.AffiliatedPublisherID != nil {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO publisher_editors (publisher_id, user_id)
			 VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			*user.AffiliatedPublisherID, user.ID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListJournalists возвращает список журналистов с пагинацией.
func (s *Storage) ListJournalists(ctx context.Context, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListJournalists"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE role = $1
			  ORDER BY username
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, models.RoleJournalist, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListSubscriberEmails возвращает адреса читателей, подписанных на издателя.
func (s *Storage) ListSubscriberEmails(ctx context.Context, publisherID int64) ([]string, error) {
	const op = "storage.ListSubscriberEmails"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT DISTINCT u.email
			  FROM users u
			  JOIN subscriptions_publishers sp ON sp.user_id = u.id
			  WHERE sp.publisher_id = $1
			    AND u.role = $2
			    AND u.email <> ''`
	rows, err := s.DB.QueryContext(ctx, query, publisherID, models.RoleReader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, email)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
