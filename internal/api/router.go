package api

import (
	"net/http"
	"time"

	"taskbackend/internal/api/handler"
	"taskbackend/internal/api/middleware"
	"taskbackend/internal/app/service"
	"taskbackend/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	userService *service.UserService,
	taskService *service.TaskService,
	tokenChecker middleware.TokenChecker,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Parses "Authorization: Bearer <token>" and puts claims in context.
	// Enforcement happens in middleware.Authenticator on protected routes.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authenticator := middleware.Authenticator(tokenChecker)

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		// Auth routes. register/login are public; logout inspects the
		// token itself so it can stay idempotent for stale tokens.
		authHandler := handler.NewAuthHandler(authService)
		v1.Route("/auth", authHandler.RegisterRoutes)

		// Profile routes (authenticated)
		userHandler := handler.NewUserHandler(userService)
		v1.Route("/user", func(userRouter chi.Router) {
			userRouter.Use(authenticator)
			userHandler.RegisterRoutes(userRouter)
		})

		// Task routes (authenticated, owner-scoped)
		taskHandler := handler.NewTaskHandler(taskService)
		v1.Route("/task", func(taskRouter chi.Router) {
			taskRouter.Use(authenticator)
			taskHandler.RegisterRoutes(taskRouter)
		})
	})

	return r
}
