package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/news-publisher/internal/models"
)

// AddPublisherSubscription подписывает читателя на издателя.
// Повторная подписка не является ошибкой.
func (s *Storage) AddPublisherSubscription(ctx context.Context, userID, publisherID int64) error {
	const op = "storage.AddPublisherSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions_publishers (user_id, publisher_id)
			  VALUES ($1, $2)
			  ON CONFLICT DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, query, userID, publisherID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemovePublisherSubscription отписывает читателя от издателя
// и возвращает количество удалённых строк.
func (s *Storage) RemovePublisherSubscription(ctx context.Context, userID, publisherID int64) (int, error) {
	const op = "storage.RemovePublisherSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM subscriptions_publishers WHERE user_id = $1 AND publisher_id = $2`
	result, err := s.DB.ExecContext(ctx, query, userID, publisherID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// AddJournalistSubscription подписывает читателя на журналиста.
func (s *Storage) AddJournalistSubscription(ctx context.Context, userID, journalistID int64) error {
	const op = "storage.AddJournalistSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions_journalists (user_id, journalist_id)
			  VALUES ($1, $2)
			  ON CONFLICT DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, query, userID, journalistID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveJournalistSubscription отписывает читателя от журналиста
// и возвращает количество удалённых строк.
func (s *Storage) RemoveJournalistSubscription(ctx context.Context, userID, journalistID int64) (int, error) {
	const op = "storage.RemoveJournalistSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM subscriptions_journalists WHERE user_id = $1 AND journalist_id = $2`
	result, err := s.DB.ExecContext(ctx, query, userID, journalistID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListSubscriptionIDs возвращает идентификаторы издателей и журналистов,
// на которых подписан читатель. Используется для вычисления видимости ленты.
func (s *Storage) ListSubscriptionIDs(ctx context.Context, userID int64) ([]int64, []int64, error) {
	const op = "storage.ListSubscriptionIDs"
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	pubIDs := []int64{}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT publisher_id FROM subscriptions_publishers WHERE user_id = $1`, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		pubIDs = append(pubIDs, id)
	}
	if err = rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	_ = rows.Close()

	jourIDs := []int64{}
	rows, err = s.DB.QueryContext(ctx,
		`SELECT journalist_id FROM subscriptions_journalists WHERE user_id = $1`, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		jourIDs = append(jourIDs, id)
	}
	if err = rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	_ = rows.Close()

	return pubIDs, jourIDs, nil
}

// ListSubscriptions возвращает подписки читателя: издателей и журналистов.
func (s *Storage) ListSubscriptions(ctx context.Context, userID int64) (*models.Subscriptions, error) {
	const op = "storage.ListSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result := &models.Subscriptions{
		Publishers:  []*models.Publisher{},
		Journalists: []*models.User{},
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT p.id, p.name
		 FROM publishers p
		 JOIN subscriptions_publishers sp ON sp.publisher_id = p.id
		 WHERE sp.user_id = $1
		 ORDER BY p.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for rows.Next() {
		var p models.Publisher
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result.Publishers = append(result.Publishers, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	_ = rows.Close()

	rows, err = s.DB.QueryContext(ctx,
		`SELECT `+prefixedUserColumns("u")+`
		 FROM users u
		 JOIN subscriptions_journalists sj ON sj.journalist_id = u.id
		 WHERE sj.user_id = $1
		 ORDER BY u.username`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result.Journalists = append(result.Journalists, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	_ = rows.Close()

	return result, nil
}

func prefixedUserColumns(alias string) string {
	return alias + `.id, ` + alias + `.uid, ` + alias + `.username, ` + alias + `.email, ` +
		alias + `.first_name, ` + alias + `.last_name, ` + alias + `.password_hash, ` +
		alias + `.role, ` + alias + `.affiliated_publisher_id, ` + alias + `.created_at`
}
