package httpapi

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	analyticsApp "trade-journal/internal/application/analytics"
	"trade-journal/internal/application/assistant"
	"trade-journal/internal/application/auth"
	journalApp "trade-journal/internal/application/journal"
	"trade-journal/internal/application/reports"
	authDomain "trade-journal/internal/domain/auth"
	"trade-journal/internal/infra/memory"
	authinfra "trade-journal/internal/infrastructure/auth"
	"trade-journal/internal/infrastructure/config"
	"trade-journal/internal/infrastructure/notify"
	"trade-journal/internal/infrastructure/persistence/postgres"
	"trade-journal/internal/infrastructure/persistence/sqlite"
	"trade-journal/internal/infrastructure/trace"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

const (
	seedTimeout       = 5 * time.Second
	defaultDevSecret  = "dev-secret-change-me"
	defaultRatePerMin = 10
)

// authStore 使用者與 refresh session 的儲存，memory 與 postgres 皆實作。
type authStore interface {
	auth.UserRepository
	authDomain.SessionStore
	reports.RecipientLister
}

// Server 封裝 gin 路由與依賴。
type Server struct {
	engine     *gin.Engine
	handler    http.Handler
	db         *sql.DB
	dataSource string
	tracer     *trace.Provider

	authRepo  authStore
	tokenSvc  *authinfra.TokenService
	loginUC   *auth.LoginUseCase
	refreshUC *auth.RefreshUseCase
	logoutUC  *auth.LogoutUseCase
	authz     *auth.Authorizer

	journalUC   *journalApp.UseCase
	analyticsUC *analyticsApp.UseCase
	reportsUC   *reports.UseCase
	assistant   *assistant.Assistant

	loginLimiter *ipRateLimiter
	chatLimiter  *ipRateLimiter
	digest       *reports.DigestWorker
}

// NewServer 依 DB 設定選擇儲存層：db 為 nil 時全部使用記憶體。
func NewServer(cfg config.Config, db *sql.DB, tracer *trace.Provider) *Server {
	store := memory.NewStore()
	store.SeedUsers()

	var (
		tradeRepo  journalApp.Repository = memory.NewTradeRepo()
		authRepo   authStore             = store
		dataSource                       = "memory"
	)
	switch {
	case db != nil && cfg.DB.Driver == config.DriverSQLite:
		ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
		repo, err := sqlite.NewTradeRepo(ctx, db)
		cancel()
		if err != nil {
			log.Printf("warning: sqlite schema failed, falling back to in-memory trades: %v", err)
		} else {
			tradeRepo = repo
			dataSource = "sqlite"
		}
	case db != nil:
		pgAuth := postgres.NewAuthRepo(db)
		tradeRepo = postgres.NewTradeRepo(db)
		authRepo = pgAuth
		dataSource = "postgres"
		ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
		if err := pgAuth.SeedDefaults(ctx); err != nil {
			log.Printf("warning: seed default accounts failed: %v", err)
		}
		cancel()
	}

	secret := cfg.Auth.Secret
	if secret == "" {
		log.Printf("warning: AUTH_SECRET not set, using development secret")
		secret = defaultDevSecret
	}
	accessTTL := cfg.Auth.TokenTTL
	if accessTTL == 0 {
		accessTTL = 30 * time.Minute
	}
	refreshTTL := cfg.Auth.RefreshTTL
	if refreshTTL == 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	tokenSvc := authinfra.NewTokenService(authinfra.TokenConfig{
		Secret:     secret,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}, authRepo, authRepo)

	rate := cfg.HTTP.LoginRatePerMin
	if rate <= 0 {
		rate = defaultRatePerMin
	}

	analyticsUC := analyticsApp.NewUseCase(tradeRepo)
	reportsUC := reports.NewUseCase(analyticsUC)

	s := &Server{
		db:           db,
		dataSource:   dataSource,
		tracer:       tracer,
		authRepo:     authRepo,
		tokenSvc:     tokenSvc,
		loginUC:      auth.NewLoginUseCase(authRepo, authinfra.BcryptHasher{}, tokenSvc),
		refreshUC:    auth.NewRefreshUseCase(tokenSvc),
		logoutUC:     auth.NewLogoutUseCase(tokenSvc),
		authz:        auth.NewAuthorizer(authRepo),
		journalUC:    journalApp.NewUseCase(tradeRepo),
		analyticsUC:  analyticsUC,
		reportsUC:    reportsUC,
		assistant:    assistant.New(nil, ""),
		loginLimiter: newIPRateLimiter(rate),
		chatLimiter:  newIPRateLimiter(rate * 3),
	}

	s.engine = gin.New()
	s.engine.Use(s.recovery(), s.traceRequests(), s.ginLogger())
	s.registerRoutes()
	s.handler = cors.New(cors.Options{
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}).Handler(s.engine)

	if tg := cfg.Notifier.Telegram; tg.Enabled && tg.Token != "" && tg.ChatID != 0 {
		s.digest = reports.NewDigestWorker(reportsUC, authRepo, notify.NewTelegramClient(tg), tg.Interval)
		s.digest.Start()
	}
	return s
}

// Handler 回傳含 CORS 的處理器，供 HTTP server 掛載。
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close 停止背景工作。
func (s *Server) Close() {
	if s.digest != nil {
		s.digest.Stop()
	}
}
