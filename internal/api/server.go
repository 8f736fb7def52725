package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"snapwallet/internal/ai"
	"snapwallet/internal/cache"
	"snapwallet/internal/config"
	"snapwallet/internal/security"
	"snapwallet/internal/storage"
	"snapwallet/internal/wallet"
)

type Server struct {
	log      *slog.Logger
	store    *wallet.Store
	cache    *cache.Client // nil when redis is not configured
	analyzer ai.Analyzer
	synth    ai.Synthesizer
	storage  storage.Client
	hub      *Hub
	limiter  *security.LimiterStore
	cfg      config.Config
	router   *gin.Engine
}

func NewServer(log *slog.Logger, store *wallet.Store, cacheClient *cache.Client, analyzer ai.Analyzer, synth ai.Synthesizer, storageClient storage.Client, hub *Hub, cfg config.Config) *Server {
	s := &Server{
		log:      log,
		store:    store,
		cache:    cacheClient,
		analyzer: analyzer,
		synth:    synth,
		storage:  storageClient,
		hub:      hub,
		limiter:  security.NewLimiterStore(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, 10*time.Minute),
		cfg:      cfg,
		router:   gin.New(),
	}

	gin.SetMode(gin.ReleaseMode)
	r := s.router
	r.Use(gin.Recovery())
	r.Use(s.corsMiddleware())
	r.Use(s.loggingMiddleware())
	r.Use(s.inputValidationMiddleware())
	r.Use(s.rateLimitMiddleware())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/accounts", s.listAccounts)
		v1.GET("/accounts/:account_id/stats", s.getStats)
		v1.GET("/accounts/:account_id/feed", s.getFeed)
		v1.GET("/accounts/:account_id/history", s.getHistory)

		v1.POST("/accounts/:account_id/uploads", s.uploadPhoto)
		v1.POST("/accounts/:account_id/photos/:photo_id/hide", s.hidePhoto)
		v1.POST("/accounts/:account_id/withdrawals", s.withdraw)
		v1.POST("/accounts/:account_id/redemptions", s.redeem)

		v1.POST("/vouchers/generate", s.generateVoucher)

		v1.GET("/health", s.health)
	}

	// live stats stream
	r.GET("/ws/accounts/:account_id", s.wsStats)

	// legacy route kept for probes
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), 10*time.Second)
}

// invalidateAndPush keeps the two read-side surfaces (redis cache, websocket
// subscribers) in sync after a mutation.
func (s *Server) invalidateAndPush(ctx context.Context, accountID string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, accountID); err != nil {
			s.log.Warn("cache_invalidate_failed", "account_id", accountID, "error", err)
		}
	}
	if s.hub != nil {
		if stats, ok := s.store.Stats(accountID); ok {
			s.hub.BroadcastStats(accountID, stats)
		}
	}
}
