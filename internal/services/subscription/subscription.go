// Package subscription содержит бизнес-логику подписок читателя
// на издателей и журналистов.
package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/news-publisher/internal/models"
)

// Ошибки уровня бизнес-логики подписок.
var (
	// ErrNotReader возвращается, если подписаться пытается не читатель.
	ErrNotReader = errors.New("only readers can manage subscriptions")
	// ErrNotFound возвращается, если цель подписки не существует
	// или подписки не было при попытке отписаться.
	ErrNotFound = errors.New("subscription target not found")
)

// Repository описывает контракт хранилища подписок.
type Repository interface {
	AddPublisherSubscription(ctx context.Context, userID, publisherID int64) error
	RemovePublisherSubscription(ctx context.Context, userID, publisherID int64) (int, error)
	AddJournalistSubscription(ctx context.Context, userID, journalistID int64) error
	RemoveJournalistSubscription(ctx context.Context, userID, journalistID int64) (int, error)
	ListSubscriptions(ctx context.Context, userID int64) (*models.Subscriptions, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ReadPublisher(ctx context.Context, id int64) (*models.Publisher, error)
}

// Service реализует операции управления подписками.
type Service struct {
	repo Repository
}

// New создает новый экземпляр Service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// List возвращает подписки читателя: издателей и журналистов.
func (s *Service) List(ctx context.Context, userID int64) (*models.Subscriptions, error) {
	const op = "services.subscription.List"

	subs, err := s.repo.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}

// SubscribePublisher подписывает читателя на издателя.
// Повторная подписка не является ошибкой.
func (s *Service) SubscribePublisher(ctx context.Context, user *models.User, publisherID int64) error {
	const op = "services.subscription.SubscribePublisher"

	if user.Role != models.RoleReader {
		return ErrNotReader
	}
	if _, err := s.repo.ReadPublisher(ctx, publisherID); err != nil {
		return ErrNotFound
	}
	if err := s.repo.AddPublisherSubscription(ctx, user.ID, publisherID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UnsubscribePublisher снимает подписку читателя на издателя.
func (s *Service) UnsubscribePublisher(ctx context.Context, user *models.User, publisherID int64) error {
	const op = "services.subscription.UnsubscribePublisher"

	if user.Role != models.RoleReader {
		return ErrNotReader
	}
	removed, err := s.repo.RemovePublisherSubscription(ctx, user.ID, publisherID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

// SubscribeJournalist подписывает читателя на журналиста. Цель подписки
// должна существовать и иметь роль журналиста.
func (s *Service) SubscribeJournalist(ctx context.Context, user *models.User, journalistID int64) error {
	const op = "services.subscription.SubscribeJournalist"

	if user.Role != models.RoleReader {
		return ErrNotReader
	}
	target, err := s.repo.GetUser(ctx, journalistID)
	if err != nil || target.Role != models.RoleJournalist {
		return ErrNotFound
	}
	if err := s.repo.AddJournalistSubscription(ctx, user.ID, journalistID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UnsubscribeJournalist снимает подписку читателя на журналиста.
func (s *Service) UnsubscribeJournalist(ctx context.Context, user *models.User, journalistID int64) error {
	const op = "services.subscription.UnsubscribeJournalist"

	if user.Role != models.RoleReader {
		return ErrNotReader
	}
	removed, err := s.repo.RemoveJournalistSubscription(ctx, user.ID, journalistID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}
