package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/sirupsen/logrus"

	"github.com/joeblew999/plat-draw/internal/api"
	"github.com/joeblew999/plat-draw/internal/api/editor"
	"github.com/joeblew999/plat-draw/internal/elevation"
	"github.com/joeblew999/plat-draw/internal/service"
)

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	DataDir string

	// ElevationURL is the base URL of an Open-Elevation compatible service.
	// Without it, elevation lines get simulated profiles.
	ElevationURL       string
	ElevationCacheSize int

	Logger logrus.FieldLogger
}

// Server is the drawing HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	humaAPI  huma.API
	services *api.Services
}

// New creates a new drawing server.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.ElevationCacheSize <= 0 {
		cfg.ElevationCacheSize = 256
	}
	mux := http.NewServeMux()

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("plat-draw API", "1.0.0")
	humaConfig.Info.Description = "Map drawing API for editing shapes, measuring coverage and sampling elevation profiles."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	services := &api.Services{
		Plan: service.NewPlanService(cfg.DataDir,
			service.WithSampler(newSampler(cfg)),
			service.WithLogger(cfg.Logger),
		),
		Source: service.NewSourceService(cfg.DataDir),
	}

	s := &Server{
		config:   cfg,
		mux:      mux,
		humaAPI:  humaAPI,
		services: services,
	}
	s.routes()
	return s
}

func newSampler(cfg Config) *elevation.Sampler {
	opts := []elevation.Option{elevation.WithLogger(cfg.Logger)}
	if cfg.ElevationURL == "" {
		return elevation.NewSampler(nil, opts...)
	}
	lookup := elevation.NewCachedLookup(elevation.NewHTTPLookup(cfg.ElevationURL), cfg.ElevationCacheSize, 4)
	return elevation.NewSampler(lookup, opts...)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Plans returns the plan service backing the API.
func (s *Server) Plans() *service.PlanService {
	return s.services.Plan
}

func (s *Server) routes() {
	// Register Huma REST API routes (OpenAPI-documented JSON endpoints)
	huma.AutoRegister(s.humaAPI, api.NewAPIHandler(s.services))
	api.NewInfoHandler(s.config.DataDir, s.config.ElevationURL).RegisterRoutes(s.humaAPI)

	// Register Editor SSE routes using Huma + Datastar SDK
	editor.NewDragHandler(s.services.Plan).RegisterRoutes(s.humaAPI)
	editor.NewEventHandler(s.services.Plan.Bus()).RegisterRoutes(s.humaAPI)

	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "plat-draw",
		"status":  "running",
	})
}
