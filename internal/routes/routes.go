package routes

import (
	"net/http"

	"github.com/cinetrack/cinetrack/internal/app"
	"github.com/cinetrack/cinetrack/internal/handler"
	"github.com/cinetrack/cinetrack/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	users := handler.NewUsersHandler(app.AuthService, app.WatchlistService)
	health := handler.NewHealthHandler()

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", health.Health)

	// Authentication flow (rate limited)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("POST /users/send-otp", rateLimiter(users.SendOTP))
	mux.HandleFunc("POST /users/login", rateLimiter(users.Login))
	mux.HandleFunc("POST /users/signup", rateLimiter(users.Signup))

	// Account + watchlist. Token matching is enforced only when
	// REQUIRE_AUTH_TOKEN is set, for compatibility with older clients.
	requireAccount := middleware.RequireAccount(app.Cfg.RequireAuthToken)

	mux.HandleFunc("GET /users/{email}", requireAccount(users.GetAccount))
	mux.HandleFunc("POST /users/{email}/watchlist", requireAccount(users.AddMovie))
	mux.HandleFunc("DELETE /users/{email}/watchlist/{movieId}", requireAccount(users.RemoveMovie))

	// Global middleware - executed in order (top to bottom)
	h := middleware.Chain(
		mux,
		middleware.CORS(app.Cfg.CORSAllowedOrigins),
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService),
	)

	return h
}
