// Package models содержит доменные модели новостного сервиса:
// пользователей с ролями, издателей, статьи, рассылки и токены
// восстановления пароля. Структуры используются в бизнес‑логике
// и при работе с хранилищем.
package models

import "time"

// Роли пользователей системы.
const (
	RoleReader     = "reader"     // Читатель: подписывается на издателей и журналистов
	RoleEditor     = "editor"     // Редактор: одобряет контент своего издателя
	RoleJournalist = "journalist" // Журналист: публикует статьи и рассылки
)

// User представляет зарегистрированного пользователя системы.
// Роль определяет, какие связи могут быть заполнены: подписки есть
// только у читателей, аффилиация с издателем — только у редакторов.
type User struct {
	ID                    int64     `json:"id"`                                // Числовой идентификатор
	UID                   string    `json:"uid"`                               // Уникальный идентификатор пользователя
	Username              string    `json:"username"`                          // Имя пользователя (уникальное)
	Email                 string    `json:"email"`                             // Электронная почта
	FirstName             string    `json:"first_name,omitempty"`              // Имя
	LastName              string    `json:"last_name,omitempty"`               // Фамилия
	PasswordHash          string    `json:"-"`                                 // Хэш пароля пользователя, наружу не отдается
	Role                  string    `json:"role"`                              // Роль: reader, editor или journalist
	AffiliatedPublisherID *int64    `json:"affiliated_publisher_id,omitempty"` // Издатель редактора (nil для остальных ролей)
	CreatedAt             time.Time `json:"created_at"`                        // Дата регистрации
}

// DisplayName возвращает полное имя пользователя, либо username,
// если имя и фамилия не заполнены.
func (u *User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	if u.FirstName == "" {
		return u.LastName
	}
	return u.FirstName + " " + u.LastName
}

// NormalizeForRole возвращает копию пользователя, приведённую к инвариантам
// его роли: у не-редакторов очищается аффилиация с издателем. Подписки
// читателя хранятся отдельными таблицами и очищаются хранилищем в той же
// транзакции, что и смена роли.
func NormalizeForRole(u User) User {
	if u.Role != RoleEditor {
		u.AffiliatedPublisherID = nil
	}
	return u
}

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
type DummyRegister struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Role      string `json:"role" validate:"required,oneof=reader editor journalist"`
	FirstName string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName  string `json:"last_name,omitempty" validate:"omitempty,max=150"`
}

// DummyProfile используется для приёма данных редактирования профиля.
// Смена роли проходит через NormalizeForRole на доменной границе.
type DummyProfile struct {
	Email                 string `json:"email" validate:"required,email"`
	FirstName             string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName              string `json:"last_name,omitempty" validate:"omitempty,max=150"`
	Role                  string `json:"role" validate:"required,oneof=reader editor journalist"`
	AffiliatedPublisherID *int64 `json:"affiliated_publisher_id,omitempty"`
}
