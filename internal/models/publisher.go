package models

// Publisher представляет издателя, объединяющего редакторов и журналистов.
type Publisher struct {
	ID   int64  `json:"id"`   // Числовой идентификатор
	Name string `json:"name"` // Название издателя (уникальное)
}

// Subscriptions содержит текущие подписки читателя: издатели и журналисты.
type Subscriptions struct {
	Publishers  []*Publisher `json:"publishers"`  // Издатели, на которых подписан читатель
	Journalists []*User      `json:"journalists"` // Журналисты, на которых подписан читатель
}
