package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/magabrotheeeer/news-publisher/internal/config"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTestClient(store CredentialStore) *Client {
	cfg := config.Twitter{
		ClientID:    "client-id",
		RedirectURI: "http://localhost:8080/api/v1/twitter/callback",
		Scopes:      []string{"tweet.read", "tweet.write", "offline.access"},
	}
	return New(cfg, store, newNoopLogger())
}

func connectedStore() *MemoryStore {
	store := NewMemoryStore()
	_ = store.Save(&oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	})
	return store
}

func TestSafeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLen  int
		wantTail rune
	}{
		{name: "короткий текст не меняется", input: "hello", wantLen: 5, wantTail: 'o'},
		{name: "длинный текст обрезается", input: strings.Repeat("a", 400), wantLen: MaxTweetChars, wantTail: '…'},
		{name: "кириллица обрезается по рунам", input: strings.Repeat("ж", 300), wantLen: MaxTweetChars, wantTail: '…'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []rune(SafeText(tt.input))
			assert.Len(t, got, tt.wantLen)
			assert.Equal(t, tt.wantTail, got[len(got)-1])
		})
	}
}

func TestBegin(t *testing.T) {
	client := newTestClient(NewMemoryStore())

	authURL, verifier, state := client.Begin()
	require.NotEmpty(t, verifier)
	require.NotEmpty(t, state)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.Equal(t, "code", q.Get("response_type"))
}

func TestFinish(t *testing.T) {
	t.Run("успешный обмен кода на токен", func(t *testing.T) {
		var gotVerifier, gotCode string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			gotVerifier = r.Form.Get("code_verifier")
			gotCode = r.Form.Get("code")
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "new-access",
				"token_type":    "Bearer",
				"refresh_token": "new-refresh",
				"expires_in":    7200,
			})
		}))
		defer srv.Close()

		store := NewMemoryStore()
		client := newTestClient(store)
		client.conf.Endpoint.TokenURL = srv.URL

		callback := "http://localhost:8080/api/v1/twitter/callback?code=auth-code&state=expected"
		err := client.Finish(context.Background(), callback, "the-verifier", "expected")
		require.NoError(t, err)

		assert.Equal(t, "the-verifier", gotVerifier)
		assert.Equal(t, "auth-code", gotCode)

		token, err := store.Load()
		require.NoError(t, err)
		require.NotNil(t, token)
		assert.Equal(t, "new-access", token.AccessToken)
		assert.Equal(t, "new-refresh", token.RefreshToken)
	})

	t.Run("расхождение state", func(t *testing.T) {
		client := newTestClient(NewMemoryStore())
		callback := "http://localhost:8080/api/v1/twitter/callback?code=auth-code&state=tampered"
		err := client.Finish(context.Background(), callback, "v", "expected")
		assert.ErrorIs(t, err, ErrStateMismatch)
	})

	t.Run("отказ пользователя на странице согласия", func(t *testing.T) {
		client := newTestClient(NewMemoryStore())
		callback := "http://localhost:8080/api/v1/twitter/callback?error=access_denied&error_description=denied"
		err := client.Finish(context.Background(), callback, "v", "expected")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access_denied")
	})

	t.Run("отсутствует код авторизации", func(t *testing.T) {
		client := newTestClient(NewMemoryStore())
		callback := "http://localhost:8080/api/v1/twitter/callback?state=expected"
		err := client.Finish(context.Background(), callback, "v", "expected")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing authorization code")
	})
}

func TestConnectionStatus(t *testing.T) {
	t.Run("не подключено", func(t *testing.T) {
		client := newTestClient(NewMemoryStore())
		status, err := client.ConnectionStatus()
		require.NoError(t, err)
		assert.False(t, status.Connected)
		assert.False(t, status.HasRefreshToken)
	})

	t.Run("подключено с refresh-токеном", func(t *testing.T) {
		client := newTestClient(connectedStore())
		status, err := client.ConnectionStatus()
		require.NoError(t, err)
		assert.True(t, status.Connected)
		assert.True(t, status.HasRefreshToken)
	})
}

func TestDisconnect(t *testing.T) {
	store := connectedStore()
	client := newTestClient(store)

	require.NoError(t, client.Disconnect())

	token, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, token)
}

func TestPostContent(t *testing.T) {
	t.Run("успешная публикация", func(t *testing.T) {
		var gotBody tweetRequest
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"data":{"id":"12345","text":"ok"}}`)
		}))
		defer srv.Close()

		client := newTestClient(connectedStore())
		client.tweetURL = srv.URL

		tweetID, err := client.PostContent(context.Background(), "hello world", []string{"m1"}, "")
		require.NoError(t, err)
		assert.Equal(t, "12345", tweetID)
		assert.Equal(t, "Bearer access", gotAuth)
		assert.Equal(t, "hello world", gotBody.Text)
		require.NotNil(t, gotBody.Media)
		assert.Equal(t, []string{"m1"}, gotBody.Media.MediaIDs)
		assert.Nil(t, gotBody.Reply)
	})

	t.Run("текст обрезается до лимита", func(t *testing.T) {
		var gotBody tweetRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			fmt.Fprint(w, `{"data":{"id":"1"}}`)
		}))
		defer srv.Close()

		client := newTestClient(connectedStore())
		client.tweetURL = srv.URL

		_, err := client.PostContent(context.Background(), strings.Repeat("x", 500), nil, "")
		require.NoError(t, err)
		assert.Len(t, []rune(gotBody.Text), MaxTweetChars)
	})

	t.Run("без подключённой учётной записи", func(t *testing.T) {
		client := newTestClient(NewMemoryStore())
		_, err := client.PostContent(context.Background(), "hello", nil, "")
		assert.ErrorIs(t, err, ErrNotConnected)
	})

	t.Run("ошибка API", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"title":"Forbidden"}`)
		}))
		defer srv.Close()

		client := newTestClient(connectedStore())
		client.tweetURL = srv.URL

		_, err := client.PostContent(context.Background(), "hello", nil, "")
		var postErr *PostError
		require.ErrorAs(t, err, &postErr)
		assert.Equal(t, http.StatusForbidden, postErr.StatusCode)
		assert.Equal(t, "tweet", postErr.Operation)
	})
}

func TestSavingTokenSource(t *testing.T) {
	store := NewMemoryStore()
	refreshed := &oauth2.Token{AccessToken: "fresh", Expiry: time.Now().Add(time.Hour)}
	src := &savingTokenSource{
		src:   oauth2.StaticTokenSource(refreshed),
		store: store,
		last:  "stale",
	}

	token, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh", token.AccessToken)

	saved, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "fresh", saved.AccessToken)
}
