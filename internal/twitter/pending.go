package twitter

import "time"

// PendingAuth — пара verifier/state, сохраняемая между началом авторизации
// и возвратом с редиректа. Хранится вне процесса (в Redis), чтобы пережить
// перезапуск и работать при нескольких экземплярах сервера.
type PendingAuth struct {
	Verifier string `json:"verifier"`
	State    string `json:"state"`
}

// PendingAuthKey возвращает ключ кэша незавершённой авторизации для state.
// Ключ включает state, чтобы параллельные подключения не затирали друг друга,
// а возврат с редиректа находил свою пару по state из запроса.
func PendingAuthKey(state string) string {
	return "twitter:oauth:pending:" + state
}

// PendingAuthTTL — время, за которое пользователь должен завершить авторизацию.
const PendingAuthTTL = 10 * time.Minute
