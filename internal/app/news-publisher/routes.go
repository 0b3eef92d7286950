// Package newspublisher предоставляет маршруты для основного приложения.
package newspublisher

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/magabrotheeeer/news-publisher/internal/cache"
	forgotusernamehandler "github.com/magabrotheeeer/news-publisher/internal/http/handlers/account/forgotusername"
	resetconfirmhandler "github.com/magabrotheeeer/news-publisher/internal/http/handlers/account/resetconfirm"
	resetpeekhandler "github.com/magabrotheeeer/news-publisher/internal/http/handlers/account/resetpeek"
	resetrequesthandler "github.com/magabrotheeeer/news-publisher/internal/http/handlers/account/resetrequest"
	articleapprove "github.com/magabrotheeeer/news-publisher/internal/http/handlers/article/approve"
	articlecreate "github.com/magabrotheeeer/news-publisher/internal/http/handlers/article/create"
	articlelist "github.com/magabrotheeeer/news-publisher/internal/http/handlers/article/list"
	articleread "github.com/magabrotheeeer/news-publisher/internal/http/handlers/article/read"
	articleremove "github.com/magabrotheeeer/news-publisher/internal/http/handlers/article/remove"
	articleunapprove "github.com/magabrotheeeer/news-publisher/internal/http/handlers/article/unapprove"
	articleupdate "github.com/magabrotheeeer/news-publisher/internal/http/handlers/article/update"
	"github.com/magabrotheeeer/news-publisher/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/news-publisher/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/news-publisher/internal/http/handlers/feed/browse"
	"github.com/magabrotheeeer/news-publisher/internal/http/handlers/feed/combined"
	"github.com/magabrotheeeer/news-publisher/internal/http/handlers/feed/newsfeed"
	"github.com/magabrotheeeer/news-publisher/internal/http/handlers/info"
	journalistlist "github.com/magabrotheeeer/news-publisher/internal/http/handlers/journalist/list"
	newslettercreate "github.com/magabrotheeeer/news-publisher/internal/http/handlers/newsletter/create"
	newsletterlist "github.com/magabrotheeeer/news-publisher/internal/http/handlers/newsletter/list"
	newsletterpublish "github.com/magabrotheeeer/news-publisher/internal/http/handlers/newsletter/publish"
	newsletterread "github.com/magabrotheeeer/news-publisher/internal/http/handlers/newsletter/read"
	newsletterremove "github.com/magabrotheeeer/news-publisher/internal/http/handlers/newsletter/remove"
	newsletterupdate "github.com/magabrotheeeer/news-publisher/internal/http/handlers/newsletter/update"
	profileget "github.com/magabrotheeeer/news-publisher/internal/http/handlers/profile/get"
	profileupdate "github.com/magabrotheeeer/news-publisher/internal/http/handlers/profile/update"
	publisherlist "github.com/magabrotheeeer/news-publisher/internal/http/handlers/publisher/list"
	publisherread "github.com/magabrotheeeer/news-publisher/internal/http/handlers/publisher/read"
	subscriptionadd "github.com/magabrotheeeer/news-publisher/internal/http/handlers/subscription/add"
	subscriptionlist "github.com/magabrotheeeer/news-publisher/internal/http/handlers/subscription/list"
	subscriptionremove "github.com/magabrotheeeer/news-publisher/internal/http/handlers/subscription/remove"
	twittercallback "github.com/magabrotheeeer/news-publisher/internal/http/handlers/twitterauth/callback"
	twitterconnect "github.com/magabrotheeeer/news-publisher/internal/http/handlers/twitterauth/connect"
	twitterdisconnect "github.com/magabrotheeeer/news-publisher/internal/http/handlers/twitterauth/disconnect"
	twitterstatus "github.com/magabrotheeeer/news-publisher/internal/http/handlers/twitterauth/status"
	"github.com/magabrotheeeer/news-publisher/internal/http/middlewarectx"
	"github.com/magabrotheeeer/news-publisher/internal/lib/jwt"
	accountservice "github.com/magabrotheeeer/news-publisher/internal/services/account"
	authservice "github.com/magabrotheeeer/news-publisher/internal/services/auth"
	contentservice "github.com/magabrotheeeer/news-publisher/internal/services/content"
	feedservice "github.com/magabrotheeeer/news-publisher/internal/services/feed"
	senderservice "github.com/magabrotheeeer/news-publisher/internal/services/sender"
	subscriptionservice "github.com/magabrotheeeer/news-publisher/internal/services/subscription"
	"github.com/magabrotheeeer/news-publisher/internal/storage/repository"
	"github.com/magabrotheeeer/news-publisher/internal/twitter"
)

// Version — версия API, отдаваемая эндпоинтом /info.
const Version = "1.0"

// Services — зависимости маршрутов приложения.
type Services struct {
	JWTMaker     jwt.Maker
	Users        middlewarectx.UserProvider
	Auth         *authservice.Service
	Account      *accountservice.Service
	Feed         *feedservice.Service
	Subscription *subscriptionservice.Service
	Sender       *senderservice.SenderService
	Content      *contentservice.Service
	Twitter      *twitter.Client
	Cache        *cache.Cache
	Storage      *repository.Storage
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
		r.Post("/account/forgot-username", forgotusernamehandler.New(logger, s.Account, s.Sender).ServeHTTP)
		r.Post("/account/reset", resetrequesthandler.New(logger, s.Account, s.Sender).ServeHTTP)
		r.Get("/account/reset/{token}", resetpeekhandler.New(logger, s.Account).ServeHTTP)
		r.Post("/account/reset/{token}", resetconfirmhandler.New(logger, s.Account).ServeHTTP)
		r.Get("/info", info.New(Version).ServeHTTP)

		// Лента открыта анонимно, но учитывает подписки читателя при наличии токена
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalJWTMiddleware(s.JWTMaker, s.Users, logger))
			r.Get("/feed", newsfeed.New(logger, s.Feed).ServeHTTP)
			r.Get("/feed/combined", combined.New(logger, s.Feed).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.JWTMaker, s.Users, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/browse", browse.New(logger, s.Feed).ServeHTTP)

			r.Get("/articles", articlelist.New(logger, s.Feed).ServeHTTP)
			r.Post("/articles", articlecreate.New(logger, s.Content).ServeHTTP)
			r.Get("/articles/{id}", articleread.New(logger, s.Content).ServeHTTP)
			r.Put("/articles/{id}", articleupdate.New(logger, s.Content).ServeHTTP)
			r.Delete("/articles/{id}", articleremove.New(logger, s.Content).ServeHTTP)
			r.Post("/articles/{id}/approve", articleapprove.New(logger, s.Content).ServeHTTP)
			r.Post("/articles/{id}/unapprove", articleunapprove.New(logger, s.Content).ServeHTTP)

			r.Get("/newsletters", newsletterlist.New(logger, s.Feed).ServeHTTP)
			r.Post("/newsletters", newslettercreate.New(logger, s.Content).ServeHTTP)
			r.Get("/newsletters/{id}", newsletterread.New(logger, s.Content).ServeHTTP)
			r.Put("/newsletters/{id}", newsletterupdate.New(logger, s.Content).ServeHTTP)
			r.Delete("/newsletters/{id}", newsletterremove.New(logger, s.Content).ServeHTTP)
			r.Post("/newsletters/{id}/publish", newsletterpublish.New(logger, s.Content).ServeHTTP)

			r.Get("/publishers", publisherlist.New(logger, s.Storage).ServeHTTP)
			r.Get("/publishers/{id}", publisherread.New(logger, s.Storage).ServeHTTP)
			r.Get("/journalists", journalistlist.New(logger, s.Storage).ServeHTTP)

			r.Get("/subscriptions", subscriptionlist.New(logger, s.Subscription).ServeHTTP)
			r.Post("/subscriptions", subscriptionadd.New(logger, s.Subscription).ServeHTTP)
			r.Delete("/subscriptions", subscriptionremove.New(logger, s.Subscription).ServeHTTP)

			r.Get("/profile", profileget.New(logger, s.Account).ServeHTTP)
			r.Put("/profile", profileupdate.New(logger, s.Account).ServeHTTP)

			r.Get("/twitter/connect", twitterconnect.New(logger, s.Twitter, s.Cache).ServeHTTP)
			r.Get("/twitter/callback", twittercallback.New(logger, s.Twitter, s.Cache).ServeHTTP)
			r.Delete("/twitter/disconnect", twitterdisconnect.New(logger, s.Twitter).ServeHTTP)
			r.Get("/twitter/status", twitterstatus.New(logger, s.Twitter).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
}
