package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-sphere-raytracer/pkg/imageio"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// Parameter limits shared by parsing and the scene-config endpoint
const (
	minDimension = 1
	maxDimension = 2000
	maxSamples   = 10000
	maxDepth     = 500
)

// Server handles web requests for the sphere raytracer
type Server struct {
	port int
}

// NewServer creates a new web server
func NewServer(port int) *Server {
	return &Server{port: port}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene   string         `json:"scene"`   // Built-in scene name
	Width   int            `json:"width"`   // Image width
	Height  int            `json:"height"`  // Image height
	Samples int            `json:"samples"` // Samples per pixel
	Depth   int            `json:"depth"`   // Maximum bounce depth
	Seed    int64          `json:"seed"`    // Random seed
	Format  imageio.Format `json:"format"`  // Output encoding
}

// Stats represents render statistics
type Stats struct {
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int64   `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	NumWorkers     int     `json:"numWorkers"`
	ElapsedMs      int64   `json:"elapsedMs"`
}

func newStats(rs renderer.RenderStats) Stats {
	return Stats{
		TotalPixels:    rs.TotalPixels,
		TotalSamples:   int64(rs.TotalSamples),
		AverageSamples: rs.AverageSamples,
		NumWorkers:     rs.NumWorkers,
		ElapsedMs:      rs.Duration.Milliseconds(),
	}
}

// Handler returns the routes served by the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/render/stream", s.handleRenderStream)
	mux.HandleFunc("/api/inspect", s.handleInspect)

	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scene.ListScenes())
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj, err := scene.Create(sceneName)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	config := sceneObj.SamplingConfig
	response := map[string]interface{}{
		"scene": sceneName,
		"defaults": map[string]interface{}{
			"width":           config.Width,
			"height":          config.Height,
			"samplesPerPixel": config.SamplesPerPixel,
			"maxDepth":        config.MaxDepth,
		},
		"formats": imageio.Formats(),
		"limits": map[string]interface{}{
			"width":   map[string]int{"min": minDimension, "max": maxDimension},
			"height":  map[string]int{"min": minDimension, "max": maxDimension},
			"samples": map[string]int{"min": 1, "max": maxSamples},
			"depth":   map[string]int{"min": 1, "max": maxDepth},
		},
	}

	writeJSON(w, http.StatusOK, response)
}

// parseRenderRequest parses request parameters; omitted values fall back to the scene's defaults
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, *scene.Scene, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default" // Default scene
	}

	sceneObj, err := scene.Create(req.Scene)
	if err != nil {
		return nil, nil, err
	}
	defaults := renderer.ConfigFromScene(sceneObj)

	if req.Width, err = parseIntParam(query, "width", defaults.Width, minDimension, maxDimension); err != nil {
		return nil, nil, err
	}
	defaultHeight := defaults.Height
	if query.Get("width") != "" {
		defaultHeight = sceneObj.HeightForWidth(req.Width)
	}
	if req.Height, err = parseIntParam(query, "height", defaultHeight, minDimension, maxDimension); err != nil {
		return nil, nil, err
	}
	// Square pixels: the camera takes the shape of the requested image
	sceneObj.SetAspectRatio(float64(req.Width) / float64(req.Height))
	if req.Samples, err = parseIntParam(query, "samples", defaults.SamplesPerPixel, 1, maxSamples); err != nil {
		return nil, nil, err
	}
	if req.Depth, err = parseIntParam(query, "depth", defaults.MaxDepth, 1, maxDepth); err != nil {
		return nil, nil, err
	}
	if req.Seed, err = parseInt64Param(query, "seed", defaults.Seed); err != nil {
		return nil, nil, err
	}

	req.Format = imageio.FormatPNG
	if value := query.Get("format"); value != "" {
		if req.Format, err = imageio.ParseFormat(value); err != nil {
			return nil, nil, err
		}
	}

	// Performance warning
	if req.Width*req.Height > 800*600 && req.Samples > 100 {
		log.Printf("Render warning: Large image with high samples may render slowly")
	}

	return req, sceneObj, nil
}

// renderConfig converts a request to the renderer's configuration
func (req *RenderRequest) renderConfig() renderer.RenderConfig {
	return renderer.RenderConfig{
		Width:           req.Width,
		Height:          req.Height,
		SamplesPerPixel: req.Samples,
		MaxDepth:        req.Depth,
		NumWorkers:      0, // Auto-detect
		Seed:            req.Seed,
	}
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseInt64Param parses an unbounded 64-bit integer parameter from URL query
func parseInt64Param(values url.Values, key string, defaultValue int64) (int64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// statusForError maps request errors to HTTP status codes
func statusForError(err error) int {
	if errors.Is(err, scene.ErrUnknownScene) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
