package api

import (
	"marketplace/internal/api/handler"
	"marketplace/internal/app/service"
	"marketplace/internal/common/security"
	"marketplace/internal/platform/config"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	postService *service.PostService,
	paymentService *service.PaymentService,
	notificationService *service.NotificationService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies the bearer token when present and puts claims in context; the
	// Authenticator middleware on admin routes enforces it.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(authService)
	r.Route("/auth", authHandler.RegisterRoutes)

	// Posts, payments, and notifications share the /posts prefix.
	postHandler := handler.NewPostHandler(postService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	r.Route("/posts", func(posts chi.Router) {
		notificationHandler.RegisterRoutes(posts)
		paymentHandler.RegisterRoutes(posts)
		postHandler.RegisterRoutes(posts)
	})

	// Static site and uploaded images.
	fileServer := http.FileServer(http.Dir(config.AppConfig.PublicDir))
	r.Handle("/*", fileServer)

	return r
}
