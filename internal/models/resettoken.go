package models

import "time"

// ResetToken представляет одноразовый токен восстановления пароля.
// В базе хранится только sha256-хэш секрета; сырой токен отдаётся
// пользователю единственный раз при выпуске.
type ResetToken struct {
	ID        int64      // Числовой идентификатор
	UserID    int64      // Пользователь, которому принадлежит токен
	TokenHash string     // sha256-хэш сырого токена в hex
	CreatedAt time.Time  // Время выпуска
	ExpiresAt time.Time  // Время истечения
	UsedAt    *time.Time // Время использования (nil — не использован)
}

// IsExpired сообщает, истёк ли срок действия токена к моменту now.
func (t *ResetToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsUsed сообщает, был ли токен уже использован.
func (t *ResetToken) IsUsed() bool {
	return t.UsedAt != nil
}
