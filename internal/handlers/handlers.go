// Package handlers wires the HTTP surface of the three apps: the incentive
// endpoint, the configuration app, and the survey and study flows.
package handlers

import (
	"time"

	"github.com/mwaldhauser/incentiva/internal/auth"
	"github.com/mwaldhauser/incentiva/internal/cache"
	"github.com/mwaldhauser/incentiva/internal/database"
	"github.com/mwaldhauser/incentiva/internal/frontend"
	"github.com/mwaldhauser/incentiva/internal/incentive"
	"github.com/mwaldhauser/incentiva/internal/monitoring"
	"github.com/mwaldhauser/incentiva/internal/ratelimit"
	"github.com/mwaldhauser/incentiva/internal/studydb"
	"github.com/mwaldhauser/incentiva/internal/vignette"
)

// API bundles the services the handlers dispatch into.
type API struct {
	surveys    *database.Repository
	studies    *studydb.Repository
	incentives *incentive.Service
	generator  *vignette.Generator
	auth       *auth.Service
	limiter    *ratelimit.RateLimiter
	cache      *cache.Cache
	metrics    *monitoring.Metrics
	logger     *monitoring.Logger
	pages      *frontend.Renderer

	// defaultStudyID is the study the participant flow enrolls into when no
	// study is named explicitly.
	defaultStudyID int64
}

// Config carries the dependencies for NewAPI.
type Config struct {
	Surveys        *database.Repository
	Studies        *studydb.Repository
	Incentives     *incentive.Service
	Generator      *vignette.Generator
	Auth           *auth.Service
	Limiter        *ratelimit.RateLimiter
	Metrics        *monitoring.Metrics
	Logger         *monitoring.Logger
	Pages          *frontend.Renderer
	DefaultStudyID int64
	CacheTTL       time.Duration
}

// NewAPI creates the handler set.
func NewAPI(cfg Config) *API {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &API{
		surveys:        cfg.Surveys,
		studies:        cfg.Studies,
		incentives:     cfg.Incentives,
		generator:      cfg.Generator,
		auth:           cfg.Auth,
		limiter:        cfg.Limiter,
		cache:          cache.New(ttl),
		metrics:        cfg.Metrics,
		logger:         cfg.Logger,
		pages:          cfg.Pages,
		defaultStudyID: cfg.DefaultStudyID,
	}
}
