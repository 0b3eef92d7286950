package account

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/news-publisher/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) FindUsernamesByEmail(ctx context.Context, email string) ([]string, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
func (m *RepoMock) UpdateProfile(ctx context.Context, user models.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *RepoMock) CreateResetToken(ctx context.Context, token models.ResetToken) (int64, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) FindUnusedResetToken(ctx context.Context, tokenHash string) (*models.User, *models.ResetToken, error) {
	args := m.Called(ctx, tokenHash)
	var user *models.User
	var token *models.ResetToken
	if args.Get(0) != nil {
		user = args.Get(0).(*models.User)
	}
	if args.Get(1) != nil {
		token = args.Get(1).(*models.ResetToken)
	}
	return user, token, args.Error(2)
}
func (m *RepoMock) DeleteResetToken(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *RepoMock) ConsumeResetTokenAndSetPassword(ctx context.Context, tokenID, userID int64, passwordHash string) error {
	return m.Called(ctx, tokenID, userID, passwordHash).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func int64Ptr(v int64) *int64 { return &v }

func TestIssueResetToken(t *testing.T) {
	user := &models.User{ID: 7, Username: "lois", Email: "lois@example.com"}
	frozen := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	repo := new(RepoMock)
	repo.On("GetUserByUsername", mock.Anything, "lois").Return(user, nil)

	var stored models.ResetToken
	repo.On("CreateResetToken", mock.Anything, mock.MatchedBy(func(tok models.ResetToken) bool {
		stored = tok
		return tok.UserID == user.ID
	})).Return(int64(1), nil)

	svc := New(repo, newNoopLogger(), 15*time.Minute)
	svc.now = func() time.Time { return frozen }

	raw, got, err := svc.IssueResetToken(context.Background(), "lois")
	require.NoError(t, err)
	assert.Equal(t, user, got)
	assert.NotEmpty(t, raw)

	// В базу попадает только хэш, не сырой секрет
	assert.Equal(t, hashToken(raw), stored.TokenHash)
	assert.NotEqual(t, raw, stored.TokenHash)
	assert.Equal(t, frozen.Add(15*time.Minute), stored.ExpiresAt)
}

func TestIssueResetToken_UnknownUser(t *testing.T) {
	repo := new(RepoMock)
	repo.On("GetUserByUsername", mock.Anything, "ghost").Return(nil, errors.New("no rows"))

	svc := New(repo, newNoopLogger(), 15*time.Minute)
	_, _, err := svc.IssueResetToken(context.Background(), "ghost")
	assert.Error(t, err)
}

func TestPeekResetToken(t *testing.T) {
	frozen := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	user := &models.User{ID: 7, Username: "lois"}

	t.Run("действующий токен найден", func(t *testing.T) {
		token := &models.ResetToken{ID: 1, UserID: 7, ExpiresAt: frozen.Add(time.Minute)}
		repo := new(RepoMock)
		repo.On("FindUnusedResetToken", mock.Anything, hashToken("raw-token")).Return(user, token, nil)

		svc := New(repo, newNoopLogger(), 15*time.Minute)
		svc.now = func() time.Time { return frozen }

		gotUser, gotToken, err := svc.PeekResetToken(context.Background(), "raw-token")
		require.NoError(t, err)
		assert.Equal(t, user, gotUser)
		assert.Equal(t, token, gotToken)
	})

	t.Run("неизвестный токен даёт nil без ошибки", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("FindUnusedResetToken", mock.Anything, mock.Anything).Return(nil, nil, nil)

		svc := New(repo, newNoopLogger(), 15*time.Minute)
		gotUser, gotToken, err := svc.PeekResetToken(context.Background(), "bogus")
		require.NoError(t, err)
		assert.Nil(t, gotUser)
		assert.Nil(t, gotToken)
	})

	t.Run("просроченный токен удаляется и даёт тот же результат", func(t *testing.T) {
		expired := &models.ResetToken{ID: 2, UserID: 7, ExpiresAt: frozen.Add(-time.Minute)}
		repo := new(RepoMock)
		repo.On("FindUnusedResetToken", mock.Anything, mock.Anything).Return(user, expired, nil)
		repo.On("DeleteResetToken", mock.Anything, int64(2)).Return(nil)

		svc := New(repo, newNoopLogger(), 15*time.Minute)
		svc.now = func() time.Time { return frozen }

		gotUser, gotToken, err := svc.PeekResetToken(context.Background(), "stale")
		require.NoError(t, err)
		assert.Nil(t, gotUser)
		assert.Nil(t, gotToken)
		repo.AssertExpectations(t)
	})
}

func TestConsumeResetToken(t *testing.T) {
	frozen := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	user := &models.User{ID: 7, Username: "lois"}
	token := &models.ResetToken{ID: 1, UserID: 7, ExpiresAt: frozen.Add(time.Minute)}

	t.Run("смена пароля по действующему токену", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("FindUnusedResetToken", mock.Anything, hashToken("raw-token")).Return(user, token, nil)
		repo.On("ConsumeResetTokenAndSetPassword", mock.Anything, int64(1), int64(7), mock.MatchedBy(func(hash string) bool {
			return hash != "" && hash != "newsecret"
		})).Return(nil)

		svc := New(repo, newNoopLogger(), 15*time.Minute)
		svc.now = func() time.Time { return frozen }

		got, err := svc.ConsumeResetToken(context.Background(), "raw-token", "newsecret")
		require.NoError(t, err)
		assert.Equal(t, user, got)
		repo.AssertExpectations(t)
	})

	t.Run("недействительный токен не меняет пароль", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("FindUnusedResetToken", mock.Anything, mock.Anything).Return(nil, nil, nil)

		svc := New(repo, newNoopLogger(), 15*time.Minute)
		got, err := svc.ConsumeResetToken(context.Background(), "bogus", "newsecret")
		require.NoError(t, err)
		assert.Nil(t, got)
		repo.AssertNotCalled(t, "ConsumeResetTokenAndSetPassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUpdateProfile_NormalizesRole(t *testing.T) {
	repo := new(RepoMock)
	existing := &models.User{
		ID:                    7,
		Username:              "lois",
		Role:                  models.RoleEditor,
		AffiliatedPublisherID: int64Ptr(3),
	}
	repo.On("GetUserByUsername", mock.Anything, "lois").Return(existing, nil)
	repo.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Role == models.RoleReader && u.AffiliatedPublisherID == nil
	})).Return(nil)

	svc := New(repo, newNoopLogger(), 15*time.Minute)
	got, err := svc.UpdateProfile(context.Background(), "lois", models.DummyProfile{
		Email:                 "lois@example.com",
		Role:                  models.RoleReader,
		AffiliatedPublisherID: int64Ptr(3),
	})

	require.NoError(t, err)
	// Аффилиация с издателем сбрасывается при уходе из роли редактора
	assert.Nil(t, got.AffiliatedPublisherID)
	assert.Equal(t, models.RoleReader, got.Role)
	repo.AssertExpectations(t)
}

func TestFindUsernames(t *testing.T) {
	repo := new(RepoMock)
	repo.On("FindUsernamesByEmail", mock.Anything, "shared@example.com").Return([]string{"lois", "clark"}, nil)

	svc := New(repo, newNoopLogger(), 15*time.Minute)
	usernames, err := svc.FindUsernames(context.Background(), "shared@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"lois", "clark"}, usernames)
}
