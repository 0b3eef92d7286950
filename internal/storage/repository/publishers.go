package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/news-publisher/internal/models"
)

// CreatePublisher вставляет нового издателя и возвращает его ID.
func (s *Storage) CreatePublisher(ctx context.Context, name string) (int64, error) {
	const op = "storage.CreatePublisher"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO publishers (name) VALUES ($1) RETURNING id`
	var newID int64
	if err := s.DB.QueryRowContext(ctx, query, name).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadPublisher возвращает издателя по его ID.
func (s *Storage) ReadPublisher(ctx context.Context, id int64) (*models.Publisher, error) {
	const op = "storage.ReadPublisher"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name FROM publishers WHERE id = $1`
	var p models.Publisher
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// ListPublisherEditors возвращает редакторов издателя. Состав ведётся
// в publisher_editors и дополняется текущей аффилиацией из профиля редактора.
func (s *Storage) ListPublisherEditors(ctx context.Context, publisherID int64) ([]*models.User, error) {
	const op = "storage.ListPublisherEditors"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE id IN (SELECT user_id FROM publisher_editors WHERE publisher_id = $1)
			     OR (affiliated_publisher_id = $1 AND role = $2)
			  ORDER BY username`
	rows, err := s.DB.QueryContext(ctx, query, publisherID, models.RoleEditor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.User{}
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

// ListPublisherJournalists возвращает журналистов, публиковавшихся
// у издателя. Состав пополняется при создании статьи или рассылки
// под издателем.
func (s *Storage) ListPublisherJournalists(ctx context.Context, publisherID int64) ([]*models.User, error) {
	const op = "storage.ListPublisherJournalists"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE id IN (SELECT user_id FROM publisher_journalists WHERE publisher_id = $1)
			  ORDER BY username`
	rows, err := s.DB.QueryContext(ctx, query, publisherID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.User{}
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

// ListPublishers возвращает список издателей с пагинацией, упорядоченный по имени.
func (s *Storage) ListPublishers(ctx context.Context, limit, offset int) ([]*models.Publisher, error) {
	const op = "storage.ListPublishers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name
			  FROM publishers
			  ORDER BY name
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Publisher
	for rows.Next() {
		var p models.Publisher
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
