package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Amityar01/chaolab-ircn-sub000/internal/api/handlers"
	mw "github.com/Amityar01/chaolab-ircn-sub000/internal/api/middleware"
	"github.com/Amityar01/chaolab-ircn-sub000/internal/config"
	"github.com/Amityar01/chaolab-ircn-sub000/internal/scene"
	"github.com/Amityar01/chaolab-ircn-sub000/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the router and request counters.
type App struct {
	Router *chi.Mux
	Engine *service.Engine

	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(engine *service.Engine, provider *scene.Provider, bus *service.EventBus, logger *zap.Logger) *App {
	agentHandler := handlers.NewAgentHandler(engine)
	sceneHandler := handlers.NewSceneHandler(provider)
	eventsHandler := handlers.NewEventsHandler(bus)
	attractorHandler := handlers.NewAttractorHandler(engine)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Engine:    engine,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", healthHandler())
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/agents", func(r chi.Router) {
			r.Get("/", agentHandler.List)
			r.Get("/{id}/mind", agentHandler.GetMind)
		})
		r.Get("/scene", sceneHandler.Get)
		r.Route("/events", func(r chi.Router) {
			r.Get("/", eventsHandler.List)
			r.Get("/stream", eventsHandler.Stream)
		})
		r.Post("/attractor", attractorHandler.Set)
	})

	return app
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)
		sim := app.Engine.Metrics()

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"simulation": map[string]any{
				"agents":        sim.Agents,
				"frames":        sim.Frames,
				"percept_ticks": sim.PerceptTicks,
				"reseeds":       sim.Reseeds,
			},
			"memory": map[string]any{
				"alloc_mb": float64(memStats.Alloc) / 1024 / 1024,
				"sys_mb":   float64(memStats.Sys) / 1024 / 1024,
				"num_gc":   memStats.NumGC,
			},
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}
