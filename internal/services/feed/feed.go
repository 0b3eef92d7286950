// Package feed реализует сборку объединённой ленты статей и рассылок.
//
// Лента собирается из двух разнородных видов контента, нормализованных
// в models.FeedItem, сортируется по убыванию даты создания и нарезается
// на страницы фиксированного размера. Видимость контента для читателя
// определяется его подписками; редакторы, журналисты и неаутентифицированные
// зрители видят ленту без фильтра.
package feed

import (
	"context"
	"fmt"
	"sort"

	"github.com/magabrotheeeer/news-publisher/internal/models"
)

// Размеры страниц ленты.
const (
	FeedPageSize   = 10 // Объединённая лента
	BrowsePageSize = 15 // Раздел Browse (только одобренные статьи)
	ListPageSize   = 20 // Списки статей и рассылок REST API
	CombinedTopN   = 10 // Комбинированная выдача REST: топ каждого вида
)

// Варианты фильтра по виду контента.
const (
	KindFilterAll         = "all"
	KindFilterArticles    = "articles"
	KindFilterNewsletters = "newsletters"
)

// Repository описывает контракт хранилища для сборки ленты.
type Repository interface {
	ListArticleFeedItems(ctx context.Context, filter models.ContentFilter) ([]*models.FeedItem, error)
	ListNewsletterFeedItems(ctx context.Context, filter models.ContentFilter) ([]*models.FeedItem, error)
	ListSubscriptionIDs(ctx context.Context, userID int64) ([]int64, []int64, error)
}

// Viewer описывает зрителя ленты. Для неаутентифицированных запросов
// Authenticated = false и остальные поля не используются.
type Viewer struct {
	Authenticated bool
	UserID        int64
	Role          string
}

// Page — страница объединённой ленты.
type Page struct {
	Items    []*models.FeedItem `json:"items"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	HasNext  bool               `json:"has_next"`
}

// Combined — комбинированная выдача REST API: топ статей и рассылок.
type Combined struct {
	Articles         []*models.FeedItem `json:"articles"`
	Newsletters      []*models.FeedItem `json:"newsletters"`
	TotalArticles    int                `json:"total_articles"`
	TotalNewsletters int                `json:"total_newsletters"`
}

// Service реализует бизнес-логику сборки ленты.
type Service struct {
	repo Repository
}

// New создает новый экземпляр Service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// ScopeFor вычисляет видимость контента для зрителя. Подписки читателя
// выбираются один раз на запрос; для остальных ролей фильтра нет.
func (s *Service) ScopeFor(ctx context.Context, viewer Viewer) (models.ViewerScope, error) {
	const op = "services.feed.ScopeFor"

	if !viewer.Authenticated || viewer.Role != models.RoleReader {
		return models.ViewerScope{Unfiltered: true}, nil
	}
	pubIDs, jourIDs, err := s.repo.ListSubscriptionIDs(ctx, viewer.UserID)
	if err != nil {
		return models.ViewerScope{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.ViewerScope{
		FollowedJournalistIDs:  jourIDs,
		SubscribedPublisherIDs: pubIDs,
	}, nil
}

// List возвращает страницу объединённой ленты для зрителя.
// kindFilter принимает all, articles или newsletters; approvedOnly
// ограничивает статьи одобренными. Страницы нумеруются с 1.
func (s *Service) List(ctx context.Context, viewer Viewer, page int, kindFilter string, approvedOnly bool, pageSize int) (*Page, error) {
	scope, err := s.ScopeFor(ctx, viewer)
	if err != nil {
		return nil, err
	}
	return s.listScoped(ctx, scope, page, kindFilter, approvedOnly, pageSize)
}

// Browse возвращает страницу раздела Browse: весь одобренный контент
// без фильтра подписок. Читатель без единой подписки видит раздел целиком.
func (s *Service) Browse(ctx context.Context, page int, kindFilter string) (*Page, error) {
	return s.listScoped(ctx, models.ViewerScope{Unfiltered: true}, page, kindFilter, true, BrowsePageSize)
}

func (s *Service) listScoped(ctx context.Context, scope models.ViewerScope, page int, kindFilter string, approvedOnly bool, pageSize int) (*Page, error) {
	const op = "services.feed.list"

	if page < 1 {
		page = 1
	}

	// Одного лишнего элемента сверх границы страницы достаточно,
	// чтобы определить наличие следующей страницы.
	fetchLimit := page*pageSize + 1
	filter := models.ContentFilter{
		Scope:        scope,
		ApprovedOnly: approvedOnly,
		Limit:        fetchLimit,
	}

	var items []*models.FeedItem
	if kindFilter == KindFilterAll || kindFilter == KindFilterArticles {
		arts, err := s.repo.ListArticleFeedItems(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, arts...)
	}
	if kindFilter == KindFilterAll || kindFilter == KindFilterNewsletters {
		letters, err := s.repo.ListNewsletterFeedItems(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, letters...)
	}

	sortFeedItems(items)

	start := (page - 1) * pageSize
	if start > len(items) {
		start = len(items)
	}
	end := start + pageSize
	hasNext := end < len(items)
	if end > len(items) {
		end = len(items)
	}

	return &Page{
		Items:    items[start:end],
		Page:     page,
		PageSize: pageSize,
		HasNext:  hasNext,
	}, nil
}

// Combined возвращает комбинированную выдачу REST API: топ-10 статей
// и топ-10 рассылок с учётом видимости зрителя.
func (s *Service) Combined(ctx context.Context, viewer Viewer) (*Combined, error) {
	const op = "services.feed.Combined"

	scope, err := s.ScopeFor(ctx, viewer)
	if err != nil {
		return nil, err
	}
	filter := models.ContentFilter{Scope: scope, Limit: CombinedTopN}

	arts, err := s.repo.ListArticleFeedItems(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	letters, err := s.repo.ListNewsletterFeedItems(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if arts == nil {
		arts = []*models.FeedItem{}
	}
	if letters == nil {
		letters = []*models.FeedItem{}
	}

	return &Combined{
		Articles:         arts,
		Newsletters:      letters,
		TotalArticles:    len(arts),
		TotalNewsletters: len(letters),
	}, nil
}

// sortFeedItems упорядочивает элементы по created_at по убыванию.
// Связки разрешаются по id по убыванию, затем по виду, чтобы порядок
// был полным и страницы не плыли между повторными запросами.
func sortFeedItems(items []*models.FeedItem) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if a.ID != b.ID {
			return a.ID > b.ID
		}
		return a.Kind < b.Kind
	})
}
