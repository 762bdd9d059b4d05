package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/moodsense/internal/profile"
	"github.com/hrygo/moodsense/plugin/ai/cache"
	"github.com/hrygo/moodsense/plugin/ai/metrics"
	"github.com/hrygo/moodsense/plugin/ai/pattern"
	"github.com/hrygo/moodsense/plugin/ai/recommend"
	"github.com/hrygo/moodsense/server/internal/observability"
	apiv1 "github.com/hrygo/moodsense/server/router/api/v1"
	"github.com/hrygo/moodsense/server/runner/warmer"
	"github.com/hrygo/moodsense/server/service/insight"
	"github.com/hrygo/moodsense/store"
)

const rateLimiterPruneInterval = 5 * time.Minute

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	Insights *insight.Service
	Metrics  *metrics.Exporter

	echoServer *echo.Echo
	cache      *cache.AnalysisCache
	api        *apiv1.APIV1Service
	warmer     *warmer.Runner

	runnerCancelFuncs []context.CancelFunc
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	s := &Server{
		Profile: profile,
		Store:   store,
		Metrics: metrics.NewExporter(metrics.DefaultConfig()),
	}

	analysisConfig := pattern.DefaultAnalysisConfig()
	analysisConfig.LookbackDays = profile.LookbackDays
	analysisConfig.MinWeeklySamples = profile.MinWeeklySamples
	analysisConfig.MinCorrelationSamples = profile.MinCorrelationSamples
	analysisConfig.Location = profile.Location()
	analyzer := pattern.NewAnalyzer(analysisConfig, nil)

	cacheConfig := cache.DefaultConfig()
	cacheConfig.DefaultTTL = profile.AnalysisTTL
	cacheConfig.MaxEntries = profile.CacheMaxEntries
	cacheConfig.TTLs[cache.KindRecommendations] = profile.RecommendationTTL
	s.cache = cache.New(cacheConfig, s.Metrics)

	s.Insights = insight.NewService(
		store,
		s.cache,
		analyzer,
		recommend.NewRanker(recommend.DefaultConfig(), recommend.DefaultCatalog()),
		insight.WithSummaryWriter(store),
	)
	ingestor := insight.NewIngestor(store, s.Insights)

	if profile.PrewarmInterval > 0 {
		warmerConfig := warmer.DefaultConfig()
		warmerConfig.Interval = profile.PrewarmInterval
		warmerConfig.Lookback = time.Duration(profile.LookbackDays) * 24 * time.Hour
		s.warmer = warmer.NewRunner(store, s.Insights, warmerConfig)
	}

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(middleware.Recover())
	echoServer.Use(middleware.RequestID())
	echoServer.Use(s.requestLogger())
	echoServer.HTTPErrorHandler = apiv1.HTTPErrorHandler
	s.echoServer = echoServer

	// Register healthz and metrics endpoints.
	echoServer.GET("/healthz", func(c echo.Context) error {
		if err := store.GetDriver().GetDB().PingContext(c.Request().Context()); err != nil {
			return c.String(http.StatusServiceUnavailable, "Database not ready\n")
		}
		return c.String(http.StatusOK, "Service ready.\n")
	})
	echoServer.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))

	s.api = apiv1.NewAPIV1Service(profile, s.Insights, ingestor, s.Metrics)
	s.api.Register(echoServer)

	slog.Debug("server initialized", "driver", profile.Driver, "prewarm", profile.PrewarmInterval > 0)
	return s, nil
}

func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrap(err, "failed to listen")
	}

	s.echoServer.Listener = listener
	go func() {
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start echo server", "error", err)
		}
	}()

	s.StartBackgroundRunners(ctx)
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	slog.Info("server shutting down")

	// Cancel all background runners
	for _, cancelFunc := range s.runnerCancelFuncs {
		if cancelFunc != nil {
			cancelFunc()
		}
	}

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	s.cache.Close()

	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}

	slog.Info("server stopped properly")
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

func (s *Server) StartBackgroundRunners(ctx context.Context) {
	pruneCtx, pruneCancel := context.WithCancel(ctx)
	s.runnerCancelFuncs = append(s.runnerCancelFuncs, pruneCancel)
	go s.pruneRateLimiter(pruneCtx)

	if s.warmer != nil {
		warmerCtx, warmerCancel := context.WithCancel(ctx)
		s.runnerCancelFuncs = append(s.runnerCancelFuncs, warmerCancel)
		go s.warmer.Run(warmerCtx)
		slog.Info("cache warmer started", "interval", s.Profile.PrewarmInterval)
	}
}

func (s *Server) pruneRateLimiter(ctx context.Context) {
	ticker := time.NewTicker(rateLimiterPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if removed := s.api.RateLimiter.Prune(); removed > 0 {
				slog.Debug("pruned idle rate limiters", "removed", removed)
			}
		case <-ctx.Done():
			return
		}
	}
}

// requestLogger attaches a RequestContext to each request, then logs and
// counts the request once the response status is known.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			reqCtx := observability.NewRequestContext(
				slog.Default(),
				c.Response().Header().Get(echo.HeaderXRequestID),
				req.Method+" "+c.Path(),
				0,
			)
			c.SetRequest(req.WithContext(observability.WithRequestContext(req.Context(), reqCtx)))

			if err := next(c); err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			s.Metrics.RecordRequest(route, req.Method, status, reqCtx.Duration())
			reqCtx.Debug("http request",
				slog.Int(observability.LogFieldStatus, status),
				slog.String("uri", req.RequestURI),
				slog.Int64(observability.LogFieldDuration, reqCtx.Duration().Milliseconds()),
			)
			return nil
		}
	}
}
