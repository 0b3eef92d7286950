package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/magabrotheeeer/news-publisher/internal/config"
)

// Точки API X (Twitter).
const (
	authURL  = "https://x.com/i/oauth2/authorize"
	tokenURL = "https://api.x.com/2/oauth2/token"
	tweetURL = "https://api.x.com/2/tweets"

	mediaInitURL        = "https://api.x.com/2/media/upload/initialize"
	mediaAppendURLTmpl  = "https://api.x.com/2/media/upload/%s/append"
	mediaFinalizeURLTmp = "https://api.x.com/2/media/upload/%s/finalize"
	mediaStatusURL      = "https://api.x.com/2/media/upload"
)

// MaxTweetChars — предел длины текста твита, в рунах.
const MaxTweetChars = 250

const defaultTimeout = 15 * time.Second

// Ошибки клиента.
var (
	// ErrNotConnected возвращается, если учётная запись X не подключена.
	ErrNotConnected = errors.New("twitter account is not connected")
	// ErrStateMismatch возвращается при расхождении параметра state
	// в ответе авторизации. Возможная CSRF-атака.
	ErrStateMismatch = errors.New("oauth state mismatch")
)

// PostError описывает неуспешный ответ API на публикацию или загрузку.
type PostError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *PostError) Error() string {
	return fmt.Sprintf("%s failed: HTTP %d %s", e.Operation, e.StatusCode, e.Body)
}

// Status — состояние подключения для диагностического эндпоинта.
type Status struct {
	Connected       bool      `json:"connected"`
	HasRefreshToken bool      `json:"has_refresh_token"`
	Expiry          time.Time `json:"expiry,omitempty"`
}

// Client реализует кросс-постинг через API X.
// URL-ы хранятся в полях, чтобы тесты могли подменять их на httptest-сервер.
type Client struct {
	conf  *oauth2.Config
	store CredentialStore
	log   *slog.Logger
	base  *http.Client

	tweetURL         string
	mediaInitURL     string
	mediaAppendTmpl  string
	mediaFinalizeTmp string
	mediaStatusURL   string
}

// New создает новый экземпляр Client.
func New(cfg config.Twitter, store CredentialStore, log *slog.Logger) *Client {
	return &Client{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		store:            store,
		log:              log,
		base:             &http.Client{Timeout: defaultTimeout},
		tweetURL:         tweetURL,
		mediaInitURL:     mediaInitURL,
		mediaAppendTmpl:  mediaAppendURLTmpl,
		mediaFinalizeTmp: mediaFinalizeURLTmp,
		mediaStatusURL:   mediaStatusURL,
	}
}

// SafeText обрезает текст до MaxTweetChars рун, завершая многоточием.
func SafeText(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxTweetChars {
		return text
	}
	return string(runes[:MaxTweetChars-1]) + "…"
}

// Begin начинает авторизацию OAuth2 PKCE: возвращает URL страницы
// согласия, code_verifier и state. Пару verifier/state вызывающая сторона
// обязана сохранить до возврата с редиректа.
func (c *Client) Begin() (string, string, string) {
	verifier := oauth2.GenerateVerifier()
	state := uuid.NewString()
	authCodeURL := c.conf.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
	return authCodeURL, verifier, state
}

// Finish завершает авторизацию: проверяет state, обменивает код на токен
// с code_verifier и сохраняет токен в хранилище.
func (c *Client) Finish(ctx context.Context, callbackURL, verifier, expectedState string) error {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return fmt.Errorf("parse callback url: %w", err)
	}
	q := u.Query()

	if errCode := q.Get("error"); errCode != "" {
		return fmt.Errorf("authorization denied: %s %s", errCode, q.Get("error_description"))
	}
	if q.Get("state") != expectedState {
		return ErrStateMismatch
	}
	code := q.Get("code")
	if code == "" {
		return errors.New("missing authorization code in callback")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.base)
	token, err := c.conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return fmt.Errorf("token exchange failed: %w", err)
	}
	if err := c.store.Save(token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	c.log.Info("twitter account connected", slog.Time("token_expiry", token.Expiry))
	return nil
}

// Disconnect удаляет сохранённые учётные данные.
func (c *Client) Disconnect() error {
	return c.store.Clear()
}

// ConnectionStatus возвращает состояние подключения.
func (c *Client) ConnectionStatus() (*Status, error) {
	token, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	if token == nil {
		return &Status{}, nil
	}
	return &Status{
		Connected:       true,
		HasRefreshToken: token.RefreshToken != "",
		Expiry:          token.Expiry,
	}, nil
}

// savingTokenSource сохраняет токен в CredentialStore при каждом обновлении,
// чтобы refresh-токены переживали перезапуск процесса.
type savingTokenSource struct {
	mu    sync.Mutex
	src   oauth2.TokenSource
	store CredentialStore
	last  string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if token.AccessToken != s.last {
		if err := s.store.Save(token); err != nil {
			return nil, fmt.Errorf("save refreshed token: %w", err)
		}
		s.last = token.AccessToken
	}
	return token, nil
}

// httpClient возвращает авторизованный HTTP клиент или ErrNotConnected.
func (c *Client) httpClient(ctx context.Context) (*http.Client, error) {
	token, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, ErrNotConnected
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.base)
	src := &savingTokenSource{
		src:   c.conf.TokenSource(ctx, token),
		store: c.store,
		last:  token.AccessToken,
	}
	client := oauth2.NewClient(ctx, src)
	client.Timeout = defaultTimeout
	return client, nil
}

type tweetRequest struct {
	Text  string `json:"text"`
	Media *struct {
		MediaIDs []string `json:"media_ids"`
	} `json:"media,omitempty"`
	Reply *struct {
		InReplyToTweetID string `json:"in_reply_to_tweet_id"`
	} `json:"reply,omitempty"`
}

type tweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// PostContent публикует твит с текстом и необязательными вложениями.
// Текст обрезается до MaxTweetChars. Возвращает ID опубликованного твита.
func (c *Client) PostContent(ctx context.Context, text string, mediaIDs []string, replyToID string) (string, error) {
	client, err := c.httpClient(ctx)
	if err != nil {
		return "", err
	}

	payload := tweetRequest{Text: SafeText(text)}
	if len(mediaIDs) > 0 {
		payload.Media = &struct {
			MediaIDs []string `json:"media_ids"`
		}{MediaIDs: mediaIDs}
	}
	if replyToID != "" {
		payload.Reply = &struct {
			InReplyToTweetID string `json:"in_reply_to_tweet_id"`
		}{InReplyToTweetID: replyToID}
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fmt.Errorf("encode tweet payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tweetURL, &buf)
	if err != nil {
		return "", fmt.Errorf("build tweet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("post tweet: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", &PostError{Operation: "tweet", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result tweetResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode tweet response: %w", err)
	}
	c.log.Info("tweet posted", slog.String("tweet_id", result.Data.ID))
	return result.Data.ID, nil
}
