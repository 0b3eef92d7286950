package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/news-publisher/internal/models"
)

// CreateNewsletter вставляет новую рассылку и возвращает её ID. Рассылка
// под издателем фиксирует автора в составе журналистов издателя.
func (s *Storage) CreateNewsletter(ctx context.Context, newsletter models.Newsletter) (int64, error) {
	const op = "storage.CreateNewsletter"
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

	query := `INSERT INTO newsletters (subject, content, author_id, publisher_id)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int64
	if err = tx.QueryRowContext(ctx, query,
		newsletter.Subject, newsletter.Content, newsletter.AuthorID, newsletter.PublisherID).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if newsletter.PublisherID != nil {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO publisher_journalists (publisher_id, user_id)
			 VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			*newsletter.PublisherID, newsletter.AuthorID); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadNewsletter возвращает рассылку по её ID.
func (s *Storage) ReadNewsletter(ctx context.Context, id int64) (*models.Newsletter, error) {
	const op = "storage.ReadNewsletter"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, subject, content, author_id, publisher_id, created_at, updated_at
			  FROM newsletters WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Newsletter
	var publisherID sql.NullInt64
	if err := row.Scan(&result.ID, &result.Subject, &result.Content, &result.AuthorID,
		&publisherID, &result.CreatedAt, &result.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if publisherID.Valid {
		result.PublisherID = &publisherID.Int64
	}
	return &result, nil
}

// UpdateNewsletter обновляет тему, текст и издателя рассылки,
// возвращает количество изменённых строк.
func (s *Storage) UpdateNewsletter(ctx context.Context, req models.Newsletter, id int64) (int, error) {
	const op = "storage.UpdateNewsletter"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE newsletters
			  SET subject = $1, content = $2, publisher_id = $3, updated_at = now()
			  WHERE id = $4`
	result, err := s.DB.ExecContext(ctx, query, req.Subject, req.Content, req.PublisherID, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveNewsletter удаляет рассылку по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveNewsletter(ctx context.Context, id int64) (int, error) {
	const op = "storage.RemoveNewsletter"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM newsletters WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListNewsletterFeedItems возвращает рассылки в виде элементов ленты с учётом
// видимости зрителя. Фильтр одобрения к рассылкам не применяется:
// у рассылок нет этапа одобрения.
func (s *Storage) ListNewsletterFeedItems(ctx context.Context, filter models.ContentFilter) ([]*models.FeedItem, error) {
	const op = "storage.ListNewsletterFeedItems"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT n.id, n.subject, n.content, n.author_id, u.username,
			      n.publisher_id, COALESCE(p.name, ''), n.created_at
			  FROM newsletters n
			  JOIN users u ON u.id = n.author_id
			  LEFT JOIN publishers p ON p.id = n.publisher_id
			  WHERE ($1
			      OR (n.publisher_id IS NULL AND n.author_id = ANY($2))
			      OR n.publisher_id = ANY($3))
			  ORDER BY n.created_at DESC, n.id DESC
			  LIMIT $4`
	rows, err := s.DB.QueryContext(ctx, query,
		filter.Scope.Unfiltered,
		filter.Scope.FollowedJournalistIDs,
		filter.Scope.SubscribedPublisherIDs,
		filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.FeedItem
	for rows.Next() {
		item := &models.FeedItem{Kind: models.KindNewsletter}
		var publisherID sql.NullInt64
		if err := rows.Scan(&item.ID, &item.Title, &item.Text, &item.AuthorID,
			&item.AuthorUsername, &publisherID, &item.PublisherName,
			&item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if publisherID.Valid {
			item.PublisherID = &publisherID.Int64
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
