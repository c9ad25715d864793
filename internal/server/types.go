package server

import (
	"context"
	"image"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/config"
	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/pipeline"
	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/technique"
)

// processorInterface defines what the server needs from the pipeline.
type processorInterface interface {
	ProcessImage(ctx context.Context, img image.Image, req pipeline.Request) (*pipeline.Result, error)
	ProcessBytes(ctx context.Context, data []byte, req pipeline.Request) (*pipeline.Result, error)
	DefaultParams() technique.Params
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	processor   processorInterface
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
}

// Config holds server configuration.
type Config struct {
	Host             string
	Port             int
	CORSOrigin       string
	MaxUploadMB      int64
	TimeoutSec       int
	ProcessingConfig config.ProcessingConfig
}

// Response types for API endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

type TechniqueInfo struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

type TechniquesResponse struct {
	Techniques []TechniqueInfo `json:"techniques"`
	Count      int             `json:"count"`
}

type ProcessResponse struct {
	Success bool           `json:"success"`
	Result  *ProcessResult `json:"result,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type ProcessResult struct {
	Technique    string `json:"technique"`
	Kind         string `json:"kind"`
	InputWidth   int    `json:"input_width"`
	InputHeight  int    `json:"input_height"`
	OutputWidth  int    `json:"output_width"`
	OutputHeight int    `json:"output_height"`
	Downscaled   bool   `json:"downscaled"`
	DurationMs   int64  `json:"duration_ms"`
	// Image is the PNG result, base64 encoded, when JSON output was
	// requested.
	Image string `json:"image,omitempty"`
}

// NewServer creates a new processing server instance.
func NewServer(cfg Config) (*Server, error) {
	proc, err := pipeline.NewBuilder().WithConfig(cfg.ProcessingConfig).Build()
	if err != nil {
		return nil, err
	}

	return &Server{
		processor:   proc,
		corsOrigin:  cfg.CORSOrigin,
		maxUploadMB: cfg.MaxUploadMB,
		timeoutSec:  cfg.TimeoutSec,
	}, nil
}

// Close releases server resources.
func (s *Server) Close() error {
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", s.corsMiddleware(s.indexHandler))
	mux.HandleFunc("/healthz", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/api/techniques", s.corsMiddleware(s.techniquesHandler))
	mux.HandleFunc("/api/process", s.corsMiddleware(s.processHandler))
	mux.HandleFunc("/api/ws", s.processWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}
