package renderer

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// ErrInvalidConfig is wrapped by RenderConfig.Validate errors
var ErrInvalidConfig = errors.New("invalid render config")

// RenderConfig contains everything a render needs besides the scene
type RenderConfig struct {
	Width           int   // Image width in pixels
	Height          int   // Image height in pixels
	SamplesPerPixel int   // Number of rays per pixel
	MaxDepth        int   // Maximum ray bounce depth
	NumWorkers      int   // Number of parallel workers (0 = auto-detect)
	Seed            int64 // Base seed; row y uses Seed+y
}

// DefaultRenderConfig returns sensible default values
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 100,
		MaxDepth:        50,
		NumWorkers:      0,
		Seed:            42,
	}
}

// ConfigFromScene returns the default config with the scene's recommended sampling applied
func ConfigFromScene(s *scene.Scene) RenderConfig {
	config := DefaultRenderConfig()
	sc := s.SamplingConfig
	if sc.Width > 0 {
		config.Width = sc.Width
	}
	if sc.Height > 0 {
		config.Height = sc.Height
	}
	if sc.SamplesPerPixel > 0 {
		config.SamplesPerPixel = sc.SamplesPerPixel
	}
	if sc.MaxDepth > 0 {
		config.MaxDepth = sc.MaxDepth
	}
	return config
}

// Validate reports the first unusable setting
func (c RenderConfig) Validate() error {
	switch {
	case c.Width <= 0:
		return fmt.Errorf("%w: width must be positive, got %d", ErrInvalidConfig, c.Width)
	case c.Height <= 0:
		return fmt.Errorf("%w: height must be positive, got %d", ErrInvalidConfig, c.Height)
	case c.SamplesPerPixel <= 0:
		return fmt.Errorf("%w: samples per pixel must be positive, got %d", ErrInvalidConfig, c.SamplesPerPixel)
	case c.MaxDepth <= 0:
		return fmt.Errorf("%w: max depth must be positive, got %d", ErrInvalidConfig, c.MaxDepth)
	case c.NumWorkers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.NumWorkers)
	}
	return nil
}

// Raytracer renders a scene into an image
type Raytracer struct {
	scene      *scene.Scene
	config     RenderConfig
	integrator integrator.Integrator
	logger     core.Logger
}

// NewRaytracer creates a new raytracer using unidirectional path tracing
func NewRaytracer(scene *scene.Scene, config RenderConfig, logger core.Logger) *Raytracer {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Raytracer{
		scene:      scene,
		config:     config,
		integrator: integrator.NewPathTracingIntegrator(),
		logger:     logger,
	}
}

// SetIntegrator replaces the light transport algorithm
func (rt *Raytracer) SetIntegrator(i integrator.Integrator) {
	rt.integrator = i
}

// Config returns the render configuration
func (rt *Raytracer) Config() RenderConfig {
	return rt.config
}

// Render traces every pixel in parallel and returns the image, top row first
func (rt *Raytracer) Render() (*image.RGBA, RenderStats) {
	start := time.Now()
	width, height := max(rt.config.Width, 0), max(rt.config.Height, 0)
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	numWorkers := rt.config.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	numWorkers = max(1, min(numWorkers, height))

	rt.logger.Printf("Rendering %dx%d, %d samples/pixel, max depth %d (using %d workers)...\n",
		width, height, rt.config.SamplesPerPixel, rt.config.MaxDepth, numWorkers)

	pool := NewWorkerPool(rt, img, numWorkers)
	pool.Start()
	for y := 0; y < height; y++ {
		pool.SubmitTask(RowTask{Row: y})
	}
	pool.Stop()

	stats := RenderStats{NumWorkers: pool.GetNumWorkers()}
	for {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		stats.add(result.Stats)
	}
	stats.Duration = time.Since(start)

	rt.logger.Printf("Render completed in %v (%d samples, average luminance %.3f)\n",
		stats.Duration, stats.TotalSamples, CalculateAverageLuminance(img))

	return img, stats
}

// RenderRow renders output row y (0 = top) into img using the given sampler
func (rt *Raytracer) RenderRow(img *image.RGBA, y int, sampler core.Sampler) RenderStats {
	var stats RenderStats
	j := rt.config.Height - 1 - y

	for i := 0; i < rt.config.Width; i++ {
		ps := rt.samplePixel(i, j, sampler)
		img.SetRGBA(i, y, ps.RGBA())
		stats.add(RenderStats{TotalPixels: 1, TotalSamples: ps.SampleCount})
	}

	return stats
}

// samplePixel traces SamplesPerPixel jittered rays through pixel (i, j), with j = 0 the bottom row
func (rt *Raytracer) samplePixel(i, j int, sampler core.Sampler) PixelStats {
	var ps PixelStats
	uScale := float64(max(rt.config.Width-1, 1))
	vScale := float64(max(rt.config.Height-1, 1))

	for sample := 0; sample < rt.config.SamplesPerPixel; sample++ {
		u := (float64(i) + sampler.Get1D()) / uScale
		v := (float64(j) + sampler.Get1D()) / vScale

		ray := rt.scene.Camera.GetRay(u, v, sampler)
		ps.AddSample(rt.integrator.RayColor(ray, rt.scene, sampler, rt.config.MaxDepth))
	}

	return ps
}
