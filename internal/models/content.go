package models

import "time"

// Виды контента в объединённой ленте.
const (
	KindArticle    = "article"
	KindNewsletter = "newsletter"
)

// Article представляет статью журналиста. Издатель опционален:
// статья без издателя считается независимой. Статья попадает в раздел
// Browse только после одобрения редактором.
type Article struct {
	ID           int64     `json:"id"`                       // Числовой идентификатор
	Title        string    `json:"title"`                    // Заголовок статьи
	Body         string    `json:"body"`                     // Текст статьи
	AuthorID     int64     `json:"author_id"`                // Автор (журналист)
	PublisherID  *int64    `json:"publisher_id,omitempty"`   // Издатель (nil — независимая статья)
	IsApproved   bool      `json:"is_approved"`              // Одобрена ли статья редактором
	ApprovedByID *int64    `json:"approved_by_id,omitempty"` // Редактор, одобривший статью (nil, пока не одобрена)
	CreatedAt    time.Time `json:"created_at"`               // Дата создания
	UpdatedAt    time.Time `json:"updated_at"`               // Дата последнего изменения
}

// Newsletter представляет рассылку журналиста. В отличие от статьи,
// у рассылки нет этапа одобрения.
type Newsletter struct {
	ID          int64     `json:"id"`                     // Числовой идентификатор
	Subject     string    `json:"subject"`                // Тема рассылки
	Content     string    `json:"content"`                // Текст рассылки
	AuthorID    int64     `json:"author_id"`              // Автор (журналист)
	PublisherID *int64    `json:"publisher_id,omitempty"` // Издатель (nil — независимая рассылка)
	CreatedAt   time.Time `json:"created_at"`             // Дата создания
	UpdatedAt   time.Time `json:"updated_at"`             // Дата последнего изменения
}

// FeedItem — нормализованное представление элемента ленты.
// Объединяет статьи и рассылки в один вид с дискриминантом Kind,
// чтобы лента не зависела от различий в полях исходных моделей.
type FeedItem struct {
	Kind           string    `json:"kind"`                     // article или newsletter
	ID             int64     `json:"id"`                       // Идентификатор исходной записи
	Title          string    `json:"title"`                    // Заголовок статьи или тема рассылки
	Text           string    `json:"text"`                     // Текст статьи или содержимое рассылки
	AuthorID       int64     `json:"author_id"`                // Автор
	AuthorUsername string    `json:"author_username"`          // Имя автора
	PublisherID    *int64    `json:"publisher_id,omitempty"`   // Издатель (nil — независимый контент)
	PublisherName  string    `json:"publisher_name,omitempty"` // Название издателя
	IsApproved     bool      `json:"is_approved"`              // Для статей: одобрена ли
	CreatedAt      time.Time `json:"created_at"`               // Дата создания
}

// ViewerScope описывает видимость контента для конкретного зрителя.
// Для редакторов, журналистов и неаутентифицированных зрителей ленты
// Unfiltered = true. Для читателей видимость определяется предикатом:
// (издатель пуст И автор в FollowedJournalistIDs) ИЛИ
// (издатель в SubscribedPublisherIDs).
type ViewerScope struct {
	Unfiltered             bool    // Показывать весь контент без фильтра
	FollowedJournalistIDs  []int64 // Журналисты, на которых подписан читатель
	SubscribedPublisherIDs []int64 // Издатели, на которых подписан читатель
}

// ContentFilter задаёт параметры выборки контента из хранилища.
type ContentFilter struct {
	Scope        ViewerScope // Видимость для зрителя
	ApprovedOnly bool        // Только одобренные статьи (режим Browse)
	Limit        int         // Максимум записей
}

// DummyArticle используется для приёма данных статьи из JSON-запроса.
type DummyArticle struct {
	Title       string `json:"title" validate:"required,max=255"`
	Body        string `json:"body" validate:"required"`
	PublisherID *int64 `json:"publisher_id,omitempty"`
}

// DummyNewsletter используется для приёма данных рассылки из JSON-запроса.
type DummyNewsletter struct {
	Subject     string `json:"subject" validate:"required,max=255"`
	Content     string `json:"content" validate:"required"`
	PublisherID *int64 `json:"publisher_id,omitempty"`
}
