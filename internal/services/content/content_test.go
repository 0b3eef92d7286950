package content

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/news-publisher/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateArticle(ctx context.Context, article models.Article) (int64, error) {
	args := m.Called(ctx, article)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) ReadArticle(ctx context.Context, id int64) (*models.Article, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Article), args.Error(1)
}
func (m *RepoMock) UpdateArticle(ctx context.Context, req models.Article, id int64) (int, error) {
	args := m.Called(ctx, req, id)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) RemoveArticle(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) SetArticleApproval(ctx context.Context, id int64, approved bool, approvedByID *int64) (int, error) {
	args := m.Called(ctx, id, approved, approvedByID)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) CreateNewsletter(ctx context.Context, newsletter models.Newsletter) (int64, error) {
	args := m.Called(ctx, newsletter)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) ReadNewsletter(ctx context.Context, id int64) (*models.Newsletter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Newsletter), args.Error(1)
}
func (m *RepoMock) UpdateNewsletter(ctx context.Context, req models.Newsletter, id int64) (int, error) {
	args := m.Called(ctx, req, id)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) RemoveNewsletter(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) ReadPublisher(ctx context.Context, id int64) (*models.Publisher, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Publisher), args.Error(1)
}
func (m *RepoMock) ListSubscriberEmails(ctx context.Context, publisherID int64) ([]string, error) {
	args := m.Called(ctx, publisherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) SendArticleApproved(article *models.Article, publisherName string, recipients []string) int {
	return m.Called(article, publisherName, recipients).Int(0)
}
func (m *NotifierMock) SendNewsletter(newsletter *models.Newsletter, recipients []string) int {
	return m.Called(newsletter, recipients).Int(0)
}

type PosterMock struct{ mock.Mock }

func (m *PosterMock) PostContent(ctx context.Context, text string, mediaIDs []string, replyToID string) (string, error) {
	args := m.Called(ctx, text, mediaIDs, replyToID)
	return args.String(0), args.Error(1)
}

type DraftCacheMock struct{ mock.Mock }

func (m *DraftCacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newService(repo *RepoMock, notifier *NotifierMock, poster *PosterMock, drafts *DraftCacheMock) *Service {
	return New(repo, notifier, poster, drafts, newNoopLogger())
}

func int64Ptr(v int64) *int64 { return &v }

func editorOf(publisherID int64) *models.User {
	return &models.User{ID: 100, Username: "editor", Role: models.RoleEditor, AffiliatedPublisherID: int64Ptr(publisherID)}
}

func TestApproveArticle(t *testing.T) {
	article := func() *models.Article {
		return &models.Article{
			ID:          1,
			Title:       "Breaking news",
			Body:        "Something happened",
			AuthorID:    50,
			PublisherID: int64Ptr(7),
		}
	}

	t.Run("успешное одобрение с побочными эффектами", func(t *testing.T) {
		repo := new(RepoMock)
		notifier := new(NotifierMock)
		poster := new(PosterMock)
		drafts := new(DraftCacheMock)

		repo.On("ReadArticle", mock.Anything, int64(1)).Return(article(), nil)
		repo.On("SetArticleApproval", mock.Anything, int64(1), true, mock.Anything).Return(1, nil)
		repo.On("ReadPublisher", mock.Anything, int64(7)).Return(&models.Publisher{ID: 7, Name: "Daily Planet"}, nil)
		repo.On("ListSubscriberEmails", mock.Anything, int64(7)).Return([]string{"a@example.com", "b@example.com"}, nil)
		repo.On("GetUser", mock.Anything, int64(50)).Return(&models.User{ID: 50, Username: "lois"}, nil)
		notifier.On("SendArticleApproved", mock.Anything, "Daily Planet", []string{"a@example.com", "b@example.com"}).Return(2)
		poster.On("PostContent", mock.Anything, mock.Anything, mock.Anything, "").Return("tweet-42", nil)

		svc := newService(repo, notifier, poster, drafts)
		result, effects, err := svc.ApproveArticle(context.Background(), editorOf(7), 1)

		require.NoError(t, err)
		assert.True(t, result.IsApproved)
		require.NotNil(t, result.ApprovedByID)
		assert.Equal(t, int64(100), *result.ApprovedByID)
		assert.Equal(t, 2, effects.EmailsSent)
		assert.Equal(t, "tweet-42", effects.TweetID)
		assert.Empty(t, effects.Warnings)
		repo.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("повторное одобрение идемпотентно", func(t *testing.T) {
		repo := new(RepoMock)
		notifier := new(NotifierMock)
		poster := new(PosterMock)
		drafts := new(DraftCacheMock)

		approved := article()
		approved.IsApproved = true
		approved.ApprovedByID = int64Ptr(100)
		repo.On("ReadArticle", mock.Anything, int64(1)).Return(approved, nil)

		svc := newService(repo, notifier, poster, drafts)
		result, effects, err := svc.ApproveArticle(context.Background(), editorOf(7), 1)

		require.NoError(t, err)
		assert.True(t, result.IsApproved)
		assert.Equal(t, 0, effects.EmailsSent)
		assert.Empty(t, effects.TweetID)
		repo.AssertNotCalled(t, "SetArticleApproval", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		poster.AssertNotCalled(t, "PostContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("редактор чужого издателя не может одобрить", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ReadArticle", mock.Anything, int64(1)).Return(article(), nil)

		svc := newService(repo, new(NotifierMock), new(PosterMock), new(DraftCacheMock))
		_, _, err := svc.ApproveArticle(context.Background(), editorOf(99), 1)

		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("независимую статью одобряет любой редактор", func(t *testing.T) {
		repo := new(RepoMock)
		notifier := new(NotifierMock)
		poster := new(PosterMock)

		independent := article()
		independent.PublisherID = nil
		repo.On("ReadArticle", mock.Anything, int64(1)).Return(independent, nil)
		repo.On("SetArticleApproval", mock.Anything, int64(1), true, mock.Anything).Return(1, nil)
		repo.On("GetUser", mock.Anything, int64(50)).Return(&models.User{ID: 50, Username: "lois"}, nil)
		poster.On("PostContent", mock.Anything, mock.Anything, mock.Anything, "").Return("tweet-1", nil)

		svc := newService(repo, notifier, poster, new(DraftCacheMock))
		_, effects, err := svc.ApproveArticle(context.Background(), editorOf(99), 1)

		require.NoError(t, err)
		// Без издателя нет подписчиков, письма не отправляются
		assert.Equal(t, 0, effects.EmailsSent)
		notifier.AssertNotCalled(t, "SendArticleApproved", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("журналист не может одобрять", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ReadArticle", mock.Anything, int64(1)).Return(article(), nil)

		svc := newService(repo, new(NotifierMock), new(PosterMock), new(DraftCacheMock))
		journalist := &models.User{ID: 50, Role: models.RoleJournalist}
		_, _, err := svc.ApproveArticle(context.Background(), journalist, 1)

		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("сбой кросс-поста понижается до предупреждения", func(t *testing.T) {
		repo := new(RepoMock)
		notifier := new(NotifierMock)
		poster := new(PosterMock)
		drafts := new(DraftCacheMock)

		repo.On("ReadArticle", mock.Anything, int64(1)).Return(article(), nil)
		repo.On("SetArticleApproval", mock.Anything, int64(1), true, mock.Anything).Return(1, nil)
		repo.On("ReadPublisher", mock.Anything, int64(7)).Return(&models.Publisher{ID: 7, Name: "Daily Planet"}, nil)
		repo.On("ListSubscriberEmails", mock.Anything, int64(7)).Return([]string{"a@example.com"}, nil)
		repo.On("GetUser", mock.Anything, int64(50)).Return(&models.User{ID: 50, Username: "lois"}, nil)
		notifier.On("SendArticleApproved", mock.Anything, mock.Anything, mock.Anything).Return(1)
		poster.On("PostContent", mock.Anything, mock.Anything, mock.Anything, "").Return("", errors.New("api down"))
		drafts.On("Set", DraftCacheKey, mock.Anything, mock.Anything).Return(nil)

		svc := newService(repo, notifier, poster, drafts)
		_, effects, err := svc.ApproveArticle(context.Background(), editorOf(7), 1)

		require.NoError(t, err)
		assert.Equal(t, 1, effects.EmailsSent)
		assert.Empty(t, effects.TweetID)
		assert.Contains(t, effects.Warnings, "cross-post failed, draft saved")
		drafts.AssertExpectations(t)
	})

	t.Run("несуществующая статья", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ReadArticle", mock.Anything, int64(404)).Return(nil, errors.New("no rows"))

		svc := newService(repo, new(NotifierMock), new(PosterMock), new(DraftCacheMock))
		_, _, err := svc.ApproveArticle(context.Background(), editorOf(7), 404)

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUnapproveArticle(t *testing.T) {
	repo := new(RepoMock)
	approved := &models.Article{
		ID:           1,
		Title:        "Breaking news",
		AuthorID:     50,
		PublisherID:  int64Ptr(7),
		IsApproved:   true,
		ApprovedByID: int64Ptr(100),
	}
	repo.On("ReadArticle", mock.Anything, int64(1)).Return(approved, nil)
	repo.On("SetArticleApproval", mock.Anything, int64(1), false, (*int64)(nil)).Return(1, nil)

	svc := newService(repo, new(NotifierMock), new(PosterMock), new(DraftCacheMock))
	result, err := svc.UnapproveArticle(context.Background(), editorOf(7), 1)

	require.NoError(t, err)
	assert.False(t, result.IsApproved)
	assert.Nil(t, result.ApprovedByID)
	repo.AssertExpectations(t)
}

func TestArticleCRUDPermissions(t *testing.T) {
	author := &models.User{ID: 50, Username: "lois", Role: models.RoleJournalist}
	stranger := &models.User{ID: 51, Username: "jimmy", Role: models.RoleJournalist}
	editor := &models.User{ID: 100, Username: "perry", Role: models.RoleEditor}
	reader := &models.User{ID: 60, Username: "joe", Role: models.RoleReader}

	t.Run("читатель не может создавать статьи", func(t *testing.T) {
		svc := newService(new(RepoMock), new(NotifierMock), new(PosterMock), new(DraftCacheMock))
		_, err := svc.CreateArticle(context.Background(), reader, models.DummyArticle{Title: "t", Body: "b"})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("чужой журналист не может править", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ReadArticle", mock.Anything, int64(1)).Return(&models.Article{ID: 1, AuthorID: author.ID}, nil)

		svc := newService(repo, new(NotifierMock), new(PosterMock), new(DraftCacheMock))
		_, err := svc.UpdateArticle(context.Background(), stranger, 1, models.DummyArticle{Title: "t", Body: "b"})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("редактор может удалить чужую статью", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ReadArticle", mock.Anything, int64(1)).Return(&models.Article{ID: 1, AuthorID: author.ID}, nil)
		repo.On("RemoveArticle", mock.Anything, int64(1)).Return(1, nil)

		svc := newService(repo, new(NotifierMock), new(PosterMock), new(DraftCacheMock))
		err := svc.RemoveArticle(context.Background(), editor, 1)
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestPublishNewsletter(t *testing.T) {
	newsletter := &models.Newsletter{
		ID:          3,
		Subject:     "Weekly digest",
		Content:     "News of the week",
		AuthorID:    50,
		PublisherID: int64Ptr(7),
	}
	author := &models.User{ID: 50, Username: "lois", Role: models.RoleJournalist}

	t.Run("публикация рассылает письма и кросс-постит", func(t *testing.T) {
		repo := new(RepoMock)
		notifier := new(NotifierMock)
		poster := new(PosterMock)

		repo.On("ReadNewsletter", mock.Anything, int64(3)).Return(newsletter, nil)
		repo.On("ListSubscriberEmails", mock.Anything, int64(7)).Return([]string{"a@example.com"}, nil)
		repo.On("GetUser", mock.Anything, int64(50)).Return(author, nil)
		notifier.On("SendNewsletter", newsletter, []string{"a@example.com"}).Return(1)
		poster.On("PostContent", mock.Anything, mock.Anything, mock.Anything, "").Return("tweet-7", nil)

		svc := newService(repo, notifier, poster, new(DraftCacheMock))
		_, effects, err := svc.PublishNewsletter(context.Background(), author, 3)

		require.NoError(t, err)
		assert.Equal(t, 1, effects.EmailsSent)
		assert.Equal(t, "tweet-7", effects.TweetID)
	})

	t.Run("публиковать может только автор или редактор", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ReadNewsletter", mock.Anything, int64(3)).Return(newsletter, nil)

		svc := newService(repo, new(NotifierMock), new(PosterMock), new(DraftCacheMock))
		stranger := &models.User{ID: 51, Role: models.RoleJournalist}
		_, _, err := svc.PublishNewsletter(context.Background(), stranger, 3)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestFitTweet(t *testing.T) {
	t.Run("короткий текст остаётся целиком", func(t *testing.T) {
		got := fitTweet("📰 lois: Title", "Body")
		assert.Equal(t, "📰 lois: Title\n\nBody", got)
	})

	t.Run("длинный текст обрезается по рунам с многоточием", func(t *testing.T) {
		body := strings.Repeat("ж", 500)
		got := fitTweet("📰 lois: Title", body)
		runes := []rune(got)
		assert.Len(t, runes, tweetBudget)
		assert.Equal(t, '…', runes[len(runes)-1])
	})

	t.Run("длинный заголовок обрезается сам по себе", func(t *testing.T) {
		header := strings.Repeat("x", 400)
		got := fitTweet(header, "body")
		runes := []rune(got)
		assert.Len(t, runes, tweetBudget)
		assert.Equal(t, '…', runes[len(runes)-1])
	})
}
