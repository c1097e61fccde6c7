package app

import (
	"fmt"

	"github.com/cinetrack/cinetrack/internal/catalog"
	"github.com/cinetrack/cinetrack/internal/config"
	"github.com/cinetrack/cinetrack/internal/db"
	"github.com/cinetrack/cinetrack/internal/notify"
	"github.com/cinetrack/cinetrack/internal/repository"
	"github.com/cinetrack/cinetrack/internal/service"
	"github.com/jmoiron/sqlx"
)

type App struct {
	Cfg              *config.Config
	DB               *sqlx.DB
	AuthService      *service.AuthService
	WatchlistService *service.WatchlistService
	EmailService     *service.EmailService
	Dispatcher       *notify.Dispatcher
}

func New(cfg *config.Config) (*App, error) {
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	accountRepository := repository.NewAccountRepository(database)

	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppName,
		cfg.IsDevelopment(),
	)

	dispatcher := notify.NewDispatcher(emailService, 64)
	dispatcher.Start()

	resolver := catalog.NewTMDBClient(cfg.TMDBBaseURL, cfg.TMDBAccessToken, cfg.TMDBTimeout)

	authService := service.NewAuthService(
		accountRepository,
		dispatcher,
		cfg.JWTSecret,
		cfg.JWTExpiry,
		cfg.OTPExpiry,
	)
	watchlistService := service.NewWatchlistService(accountRepository, resolver)

	return &App{
		Cfg:              cfg,
		DB:               database,
		AuthService:      authService,
		WatchlistService: watchlistService,
		EmailService:     emailService,
		Dispatcher:       dispatcher,
	}, nil
}

func (a *App) Close() error {
	if a.Dispatcher != nil {
		a.Dispatcher.Stop()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
