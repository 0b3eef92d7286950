package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/news-publisher/internal/models"
)

// CreateArticle вставляет новую статью и возвращает её ID. Статья под
// издателем фиксирует автора в составе журналистов издателя.
func (s *Storage) CreateArticle(ctx context.Context, article models.Article) (int64, error) {
	const op = "storage.CreateArticle"
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

	query := `INSERT INTO articles (title, body, author_id, publisher_id)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int64
	if err = tx.QueryRowContext(ctx, query,
		article.Title, article.Body, article.AuthorID, article.PublisherID).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if article.PublisherID != nil {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO publisher_journalists (publisher_id, user_id)
			 VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			*article.PublisherID, article.AuthorID); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadArticle возвращает статью по её ID.
func (s *Storage) ReadArticle(ctx context.Context, id int64) (*models.Article, error) {
	const op = "storage.ReadArticle"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, body, author_id, publisher_id, is_approved, approved_by_id,
			      created_at, updated_at
			  FROM articles WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Article
	var publisherID, approvedByID sql.NullInt64
	if err := row.Scan(&result.ID, &result.Title, &result.Body, &result.AuthorID,
		&publisherID, &result.IsApproved, &approvedByID,
		&result.CreatedAt, &result.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if publisherID.Valid {
		result.PublisherID = &publisherID.Int64
	}
	if approvedByID.Valid {
		result.ApprovedByID = &approvedByID.Int64
	}
	return &result, nil
}

// UpdateArticle обновляет заголовок, текст и издателя статьи,
// возвращает количество изменённых строк.
func (s *Storage) UpdateArticle(ctx context.Context, req models.Article, id int64) (int, error) {
	const op = "storage.UpdateArticle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE articles
			  SET title = $1, body = $2, publisher_id = $3, updated_at = now()
			  WHERE id = $4`
	result, err := s.DB.ExecContext(ctx, query, req.Title, req.Body, req.PublisherID, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveArticle удаляет статью по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveArticle(ctx context.Context, id int64) (int, error) {
	const op = "storage.RemoveArticle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM articles WHERE id = $1`
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

// SetArticleApproval выставляет или снимает одобрение статьи.
// При снятии одобрения approved_by_id очищается.
func (s *Storage) SetArticleApproval(ctx context.Context, id int64, approved bool, approvedByID *int64) (int, error) {
	const op = "storage.SetArticleApproval"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE articles
			  SET is_approved = $1, approved_by_id = $2, updated_at = now()
			  WHERE id = $3`
	result, err := s.DB.ExecContext(ctx, query, approved, approvedByID, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListArticleFeedItems возвращает статьи в виде элементов ленты с учётом
// видимости зрителя. Для читателей действует предикат подписок:
// (издатель пуст И автор среди подписок) ИЛИ (издатель среди подписок).
// Порядок: created_at по убыванию, при равенстве — id по убыванию,
// чтобы пагинация была детерминированной.
func (s *Storage) ListArticleFeedItems(ctx context.Context, filter models.ContentFilter) ([]*models.FeedItem, error) {
	const op = "storage.ListArticleFeedItems"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT a.id, a.title, a.body, a.author_id, u.username,
			      a.publisher_id, COALESCE(p.name, ''), a.is_approved, a.created_at
			  FROM articles a
			  JOIN users u ON u.id = a.author_id
			  LEFT JOIN publishers p ON p.id = a.publisher_id
			  WHERE ($1
			      OR (a.publisher_id IS NULL AND a.author_id = ANY($2))
			      OR a.publisher_id = ANY($3))
			    AND (NOT $4 OR a.is_approved)
			  ORDER BY a.created_at DESC, a.id DESC
			  LIMIT $5`
	rows, err := s.DB.QueryContext(ctx, query,
		filter.Scope.Unfiltered,
		filter.Scope.FollowedJournalistIDs,
		filter.Scope.SubscribedPublisherIDs,
		filter.ApprovedOnly,
		filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.FeedItem
	for rows.Next() {
		item := &models.FeedItem{Kind: models.KindArticle}
		var publisherID sql.NullInt64
		if err := rows.Scan(&item.ID, &item.Title, &item.Text, &item.AuthorID,
			&item.AuthorUsername, &publisherID, &item.PublisherName,
			&item.IsApproved, &item.CreatedAt); err != nil {
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
