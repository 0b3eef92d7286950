// Package account содержит бизнес-логику обслуживания учётной записи:
// выпуск и проверку токенов восстановления пароля, напоминание имени
// пользователя и редактирование профиля.
//
// Токены восстановления одноразовые и ограничены по времени. В базе хранится
// только sha256-хэш секрета; любой промах поиска, истечение срока или попытка
// повторного использования дают единый результат "не найден" — вызывающая
// сторона не может отличить неверный токен от просроченного.
package account

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/news-publisher/internal/lib/password"
	"github.com/magabrotheeeer/news-publisher/internal/lib/sl"
	"github.com/magabrotheeeer/news-publisher/internal/models"
)

// Repository описывает контракт хранилища для операций с учётной записью.
type Repository interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	FindUsernamesByEmail(ctx context.Context, email string) ([]string, error)
	UpdateProfile(ctx context.Context, user models.User) error

	CreateResetToken(ctx context.Context, token models.ResetToken) (int64, error)
	FindUnusedResetToken(ctx context.Context, tokenHash string) (*models.User, *models.ResetToken, error)
	DeleteResetToken(ctx context.Context, id int64) error
	ConsumeResetTokenAndSetPassword(ctx context.Context, tokenID, userID int64, passwordHash string) error
}

// Service реализует операции с учётной записью.
type Service struct {
	repo     Repository
	log      *slog.Logger
	tokenTTL time.Duration
	now      func() time.Time
}

// New создает новый экземпляр Service. ttl задаёт время жизни
// токенов восстановления пароля.
func New(repo Repository, log *slog.Logger, ttl time.Duration) *Service {
	return &Service{
		repo:     repo,
		log:      log,
		tokenTTL: ttl,
		now:      time.Now,
	}
}

// hashToken возвращает hex-представление sha256 сырого токена.
// Сырой токен никогда не сохраняется.
func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// IssueResetToken выпускает токен восстановления пароля для пользователя
// с данным username и возвращает сырой токен. Старые неиспользованные
// токены пользователя удаляются при выпуске нового.
func (s *Service) IssueResetToken(ctx context.Context, username string) (string, *models.User, error) {
	const op = "services.account.IssueResetToken"

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	raw := base64.RawURLEncoding.EncodeToString(buf)

	token := models.ResetToken{
		UserID:    user.ID,
		TokenHash: hashToken(raw),
		ExpiresAt: s.now().UTC().Add(s.tokenTTL),
	}
	if _, err := s.repo.CreateResetToken(ctx, token); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return raw, user, nil
}

// PeekResetToken проверяет токен без его использования: форма смены пароля
// может быть показана до фактической смены. Просроченный токен удаляется
// и считается не найденным.
func (s *Service) PeekResetToken(ctx context.Context, raw string) (*models.User, *models.ResetToken, error) {
	const op = "services.account.PeekResetToken"

	user, token, err := s.repo.FindUnusedResetToken(ctx, hashToken(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if token == nil {
		return nil, nil, nil
	}
	if token.IsExpired(s.now().UTC()) {
		if err := s.repo.DeleteResetToken(ctx, token.ID); err != nil {
			s.log.Warn("failed to delete expired reset token", sl.Err(err))
		}
		return nil, nil, nil
	}
	return user, token, nil
}

// ConsumeResetToken проверяет токен и меняет пароль пользователя.
// Смена пароля и пометка токена использованным происходят в одной
// транзакции хранилища. Возвращает пользователя или (nil, nil) при
// недействительном токене.
func (s *Service) ConsumeResetToken(ctx context.Context, raw, newPassword string) (*models.User, error) {
	const op = "services.account.ConsumeResetToken"

	user, token, err := s.PeekResetToken(ctx, raw)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, nil
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.ConsumeResetTokenAndSetPassword(ctx, token.ID, user.ID, hashed); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// FindUsernames возвращает имена пользователей, зарегистрированных
// на данный email. Пустой список не является ошибкой: ответ наружу
// остаётся нейтральным, чтобы не раскрывать наличие учётной записи.
func (s *Service) FindUsernames(ctx context.Context, email string) ([]string, error) {
	const op = "services.account.FindUsernames"

	usernames, err := s.repo.FindUsernamesByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return usernames, nil
}

// GetProfile возвращает профиль пользователя по username.
func (s *Service) GetProfile(ctx context.Context, username string) (*models.User, error) {
	const op = "services.account.GetProfile"

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// UpdateProfile обновляет профиль пользователя. Перед сохранением профиль
// приводится к инвариантам роли: у не-редактора очищается аффилиация,
// у не-читателя хранилище удаляет подписки в той же транзакции.
func (s *Service) UpdateProfile(ctx context.Context, username string, req models.DummyProfile) (*models.User, error) {
	const op = "services.account.UpdateProfile"

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user.Email = req.Email
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Role = req.Role
	user.AffiliatedPublisherID = req.AffiliatedPublisherID
	normalized := models.NormalizeForRole(*user)

	if err := s.repo.UpdateProfile(ctx, normalized); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &normalized, nil
}
