// Package content содержит бизнес-логику статей и рассылок: CRUD с правилом
// "автор или редактор", одобрение статей редактором с рассылкой уведомлений
// и кросс-постингом, публикацию рассылок.
//
// Побочные эффекты одобрения best-effort: сбой почты или кросс-постинга
// понижается до предупреждения в результате, сама операция остаётся успешной.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/news-publisher/internal/lib/sl"
	"github.com/magabrotheeeer/news-publisher/internal/models"
)

// DraftCacheKey — ключ Redis, под которым сохраняется текст несостоявшегося
// твита, чтобы его можно было отправить повторно вручную.
const DraftCacheKey = "tweet:draft:last"

const draftCacheTTL = 24 * time.Hour

// tweetBudget — предел длины составляемого текста твита, в рунах.
const tweetBudget = 270

// Ошибки уровня бизнес-логики контента.
var (
	// ErrNotFound возвращается, если запись не существует.
	ErrNotFound = errors.New("content not found")
	// ErrForbidden возвращается при попытке действия, запрещённого ролью
	// или правилом аффилиации.
	ErrForbidden = errors.New("action is not allowed for this user")
)

// Repository описывает контракт хранилища контента.
type Repository interface {
	CreateArticle(ctx context.Context, article models.Article) (int64, error)
	ReadArticle(ctx context.Context, id int64) (*models.Article, error)
	UpdateArticle(ctx context.Context, req models.Article, id int64) (int, error)
	RemoveArticle(ctx context.Context, id int64) (int, error)
	SetArticleApproval(ctx context.Context, id int64, approved bool, approvedByID *int64) (int, error)

	CreateNewsletter(ctx context.Context, newsletter models.Newsletter) (int64, error)
	ReadNewsletter(ctx context.Context, id int64) (*models.Newsletter, error)
	UpdateNewsletter(ctx context.Context, req models.Newsletter, id int64) (int, error)
	RemoveNewsletter(ctx context.Context, id int64) (int, error)

	GetUser(ctx context.Context, id int64) (*models.User, error)
	ReadPublisher(ctx context.Context, id int64) (*models.Publisher, error)
	ListSubscriberEmails(ctx context.Context, publisherID int64) ([]string, error)
}

// Notifier описывает контракт почтовых уведомлений подписчикам.
type Notifier interface {
	SendArticleApproved(article *models.Article, publisherName string, recipients []string) int
	SendNewsletter(newsletter *models.Newsletter, recipients []string) int
}

// Poster описывает контракт кросс-постинга в социальную сеть.
type Poster interface {
	PostContent(ctx context.Context, text string, mediaIDs []string, replyToID string) (string, error)
}

// DraftCache сохраняет черновик твита после неудачного кросс-поста.
type DraftCache interface {
	Set(key string, value any, expiration time.Duration) error
}

// Service реализует операции над статьями и рассылками.
type Service struct {
	repo     Repository
	notifier Notifier
	poster   Poster
	drafts   DraftCache
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, notifier Notifier, poster Poster, drafts DraftCache, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		poster:   poster,
		drafts:   drafts,
		log:      log,
	}
}

// SideEffects описывает результат побочных эффектов одобрения или публикации.
type SideEffects struct {
	EmailsSent int      `json:"emails_sent"`
	TweetID    string   `json:"tweet_id,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// canEdit реализует правило "автор или редактор".
func canEdit(user *models.User, authorID int64) bool {
	return user.ID == authorID || user.Role == models.RoleEditor
}

// canApprove реализует правило аффилиации: контент издателя одобряет
// только редактор этого издателя; независимый контент — любой редактор.
func canApprove(editor *models.User, publisherID *int64) bool {
	if editor.Role != models.RoleEditor {
		return false
	}
	if publisherID == nil {
		return true
	}
	return editor.AffiliatedPublisherID != nil && *editor.AffiliatedPublisherID == *publisherID
}

// CreateArticle создает статью. Авторами выступают журналисты и редакторы;
// издатель берётся из запроса.
func (s *Service) CreateArticle(ctx context.Context, author *models.User, req models.DummyArticle) (*models.Article, error) {
	const op = "services.content.CreateArticle"

	if author.Role == models.RoleReader {
		return nil, ErrForbidden
	}
	article := models.Article{
		Title:       req.Title,
		Body:        req.Body,
		AuthorID:    author.ID,
		PublisherID: req.PublisherID,
	}
	id, err := s.repo.CreateArticle(ctx, article)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	created, err := s.repo.ReadArticle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetArticle возвращает статью по ID.
func (s *Service) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	article, err := s.repo.ReadArticle(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return article, nil
}

// UpdateArticle обновляет статью. Разрешено автору и редакторам.
func (s *Service) UpdateArticle(ctx context.Context, user *models.User, id int64, req models.DummyArticle) (*models.Article, error) {
	const op = "services.content.UpdateArticle"

	existing, err := s.repo.ReadArticle(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if !canEdit(user, existing.AuthorID) {
		return nil, ErrForbidden
	}

	updated := models.Article{
		Title:       req.Title,
		Body:        req.Body,
		PublisherID: req.PublisherID,
	}
	if _, err := s.repo.UpdateArticle(ctx, updated, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := s.repo.ReadArticle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveArticle удаляет статью. Разрешено автору и редакторам.
func (s *Service) RemoveArticle(ctx context.Context, user *models.User, id int64) error {
	const op = "services.content.RemoveArticle"

	existing, err := s.repo.ReadArticle(ctx, id)
	if err != nil {
		return ErrNotFound
	}
	if !canEdit(user, existing.AuthorID) {
		return ErrForbidden
	}
	if _, err := s.repo.RemoveArticle(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ApproveArticle одобряет статью и запускает побочные эффекты: письма
// подписчикам издателя и кросс-пост. Повторное одобрение идемпотентно:
// уведомления отправляются только при переходе из неодобренного состояния.
func (s *Service) ApproveArticle(ctx context.Context, editor *models.User, id int64) (*models.Article, *SideEffects, error) {
	const op = "services.content.ApproveArticle"

	article, err := s.repo.ReadArticle(ctx, id)
	if err != nil {
		return nil, nil, ErrNotFound
	}
	if !canApprove(editor, article.PublisherID) {
		return nil, nil, ErrForbidden
	}

	if article.IsApproved {
		return article, &SideEffects{}, nil
	}

	if _, err := s.repo.SetArticleApproval(ctx, id, true, &editor.ID); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	article.IsApproved = true
	article.ApprovedByID = &editor.ID

	effects := &SideEffects{}
	s.notifySubscribers(ctx, article, effects)
	s.crossPost(ctx, s.composeArticleTweet(ctx, article), effects)
	return article, effects, nil
}

// UnapproveArticle снимает одобрение. approved_by очищается: запись об
// одобрившем редакторе относится только к действующему одобрению.
func (s *Service) UnapproveArticle(ctx context.Context, editor *models.User, id int64) (*models.Article, error) {
	const op = "services.content.UnapproveArticle"

	article, err := s.repo.ReadArticle(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if !canApprove(editor, article.PublisherID) {
		return nil, ErrForbidden
	}
	if _, err := s.repo.SetArticleApproval(ctx, id, false, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	article.IsApproved = false
	article.ApprovedByID = nil
	return article, nil
}

// CreateNewsletter создает рассылку.
func (s *Service) CreateNewsletter(ctx context.Context, author *models.User, req models.DummyNewsletter) (*models.Newsletter, error) {
	const op = "services.content.CreateNewsletter"

	if author.Role == models.RoleReader {
		return nil, ErrForbidden
	}
	newsletter := models.Newsletter{
		Subject:     req.Subject,
		Content:     req.Content,
		AuthorID:    author.ID,
		PublisherID: req.PublisherID,
	}
	id, err := s.repo.CreateNewsletter(ctx, newsletter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	created, err := s.repo.ReadNewsletter(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetNewsletter возвращает рассылку по ID.
func (s *Service) GetNewsletter(ctx context.Context, id int64) (*models.Newsletter, error) {
	newsletter, err := s.repo.ReadNewsletter(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return newsletter, nil
}

// UpdateNewsletter обновляет рассылку. Разрешено автору и редакторам.
func (s *Service) UpdateNewsletter(ctx context.Context, user *models.User, id int64, req models.DummyNewsletter) (*models.Newsletter, error) {
	const op = "services.content.UpdateNewsletter"

	existing, err := s.repo.ReadNewsletter(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if !canEdit(user, existing.AuthorID) {
		return nil, ErrForbidden
	}

	updated := models.Newsletter{
		Subject:     req.Subject,
		Content:     req.Content,
		PublisherID: req.PublisherID,
	}
	if _, err := s.repo.UpdateNewsletter(ctx, updated, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := s.repo.ReadNewsletter(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveNewsletter удаляет рассылку. Разрешено автору и редакторам.
func (s *Service) RemoveNewsletter(ctx context.Context, user *models.User, id int64) error {
	const op = "services.content.RemoveNewsletter"

	existing, err := s.repo.ReadNewsletter(ctx, id)
	if err != nil {
		return ErrNotFound
	}
	if !canEdit(user, existing.AuthorID) {
		return ErrForbidden
	}
	if _, err := s.repo.RemoveNewsletter(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// PublishNewsletter рассылает письма подписчикам издателя и кросс-постит
// анонс. У рассылок нет этапа одобрения: публикация доступна автору
// и редакторам сразу.
func (s *Service) PublishNewsletter(ctx context.Context, user *models.User, id int64) (*models.Newsletter, *SideEffects, error) {
	newsletter, err := s.repo.ReadNewsletter(ctx, id)
	if err != nil {
		return nil, nil, ErrNotFound
	}
	if !canEdit(user, newsletter.AuthorID) {
		return nil, nil, ErrForbidden
	}

	effects := &SideEffects{}
	if newsletter.PublisherID != nil {
		recipients, err := s.repo.ListSubscriberEmails(ctx, *newsletter.PublisherID)
		if err != nil {
			s.log.Warn("failed to list newsletter recipients", sl.Err(err))
			effects.Warnings = append(effects.Warnings, "failed to notify subscribers by email")
		} else {
			effects.EmailsSent = s.notifier.SendNewsletter(newsletter, recipients)
		}
	}
	s.crossPost(ctx, s.composeNewsletterTweet(ctx, newsletter), effects)
	return newsletter, effects, nil
}

// notifySubscribers отправляет письма подписчикам издателя статьи.
// Независимые статьи подписчиков издателя не имеют, уведомлять некого.
func (s *Service) notifySubscribers(ctx context.Context, article *models.Article, effects *SideEffects) {
	if article.PublisherID == nil {
		return
	}
	publisherName := s.publisherName(ctx, article.PublisherID)
	recipients, err := s.repo.ListSubscriberEmails(ctx, *article.PublisherID)
	if err != nil {
		s.log.Warn("failed to list article recipients", sl.Err(err))
		effects.Warnings = append(effects.Warnings, "failed to notify subscribers by email")
		return
	}
	effects.EmailsSent = s.notifier.SendArticleApproved(article, publisherName, recipients)
}

// crossPost публикует твит best-effort: при сбое текст сохраняется
// в кэше черновиков, а в результат добавляется предупреждение.
func (s *Service) crossPost(ctx context.Context, text string, effects *SideEffects) {
	tweetID, err := s.poster.PostContent(ctx, text, nil, "")
	if err != nil {
		s.log.Warn("cross-post failed", sl.Err(err))
		if cacheErr := s.drafts.Set(DraftCacheKey, text, draftCacheTTL); cacheErr != nil {
			s.log.Warn("failed to cache tweet draft", sl.Err(cacheErr))
		}
		effects.Warnings = append(effects.Warnings, "cross-post failed, draft saved")
		return
	}
	effects.TweetID = tweetID
}

// composeArticleTweet составляет текст твита об одобренной статье.
func (s *Service) composeArticleTweet(ctx context.Context, article *models.Article) string {
	header := fmt.Sprintf("📰 %s: %s", s.authorName(ctx, article.AuthorID), article.Title)
	return fitTweet(header, article.Body)
}

// composeNewsletterTweet составляет текст твита о рассылке.
func (s *Service) composeNewsletterTweet(ctx context.Context, newsletter *models.Newsletter) string {
	header := fmt.Sprintf("📣 %s: %s", s.authorName(ctx, newsletter.AuthorID), newsletter.Subject)
	return fitTweet(header, newsletter.Content)
}

// fitTweet дополняет заголовок телом, укладываясь в бюджет твита.
// Обрезка идёт по рунам и завершается многоточием.
func fitTweet(header, body string) string {
	headerRunes := []rune(header)
	if len(headerRunes) >= tweetBudget {
		return string(headerRunes[:tweetBudget-1]) + "…"
	}
	text := header + "\n\n" + body
	runes := []rune(text)
	if len(runes) <= tweetBudget {
		return text
	}
	return string(runes[:tweetBudget-1]) + "…"
}

func (s *Service) authorName(ctx context.Context, authorID int64) string {
	author, err := s.repo.GetUser(ctx, authorID)
	if err != nil {
		s.log.Warn("failed to load author for tweet", sl.Err(err))
		return "unknown author"
	}
	return author.DisplayName()
}

func (s *Service) publisherName(ctx context.Context, publisherID *int64) string {
	if publisherID == nil {
		return ""
	}
	publisher, err := s.repo.ReadPublisher(ctx, *publisherID)
	if err != nil {
		s.log.Warn("failed to load publisher", sl.Err(err))
		return "publisher"
	}
	return publisher.Name
}
