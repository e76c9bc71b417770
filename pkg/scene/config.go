package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// ErrInvalidConfig is wrapped by every validation error from Decode
var ErrInvalidConfig = errors.New("invalid scene config")

// Vector is a JSON [x, y, z] triple
type Vector core.Vec3

// UnmarshalJSON decodes a three element array
func (v *Vector) UnmarshalJSON(data []byte) error {
	var components []float64
	if err := json.Unmarshal(data, &components); err != nil {
		return fmt.Errorf("vector: %w", err)
	}
	if len(components) != 3 {
		return fmt.Errorf("vector: expected 3 components, got %d", len(components))
	}
	*v = Vector(core.NewVec3(components[0], components[1], components[2]))
	return nil
}

// Color is a linear RGB color written either as [r, g, b] or as an SVG color name
type Color core.Vec3

// UnmarshalJSON decodes an [r, g, b] array or a named color such as "gold"
func (c *Color) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		rgba, ok := colornames.Map[strings.ToLower(name)]
		if !ok {
			return fmt.Errorf("color: unknown color name %q", name)
		}
		*c = Color(core.NewVec3(float64(rgba.R)/255, float64(rgba.G)/255, float64(rgba.B)/255))
		return nil
	}

	var v Vector
	if err := v.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	*c = Color(v)
	return nil
}

// FileConfig is the on-disk JSON description of a scene
type FileConfig struct {
	Camera     *CameraFileConfig             `json:"camera,omitempty"`
	Background *BackgroundFileConfig         `json:"background,omitempty"`
	Render     *SamplingConfig               `json:"render,omitempty"`
	Materials  map[string]MaterialFileConfig `json:"materials"`
	Spheres    []SphereFileConfig            `json:"spheres"`
}

// CameraFileConfig overrides fields of the default camera; omitted fields keep their defaults
type CameraFileConfig struct {
	Center        *Vector `json:"center,omitempty"`
	LookAt        *Vector `json:"lookAt,omitempty"`
	Up            *Vector `json:"up,omitempty"`
	AspectRatio   float64 `json:"aspectRatio,omitempty"`
	VFov          float64 `json:"vfov,omitempty"`
	Aperture      float64 `json:"aperture,omitempty"`
	FocusDistance float64 `json:"focusDistance,omitempty"`
}

// BackgroundFileConfig sets the sky gradient
type BackgroundFileConfig struct {
	Zenith  *Color `json:"zenith,omitempty"`
	Horizon *Color `json:"horizon,omitempty"`
}

// MaterialFileConfig describes one named material
type MaterialFileConfig struct {
	Type            string  `json:"type"` // lambertian, metal or dielectric
	Albedo          *Color  `json:"albedo,omitempty"`
	Fuzz            float64 `json:"fuzz,omitempty"`
	RefractiveIndex float64 `json:"refractiveIndex,omitempty"`
}

// SphereFileConfig places a sphere using a named material
type SphereFileConfig struct {
	Center   Vector  `json:"center"`
	Radius   float64 `json:"radius"`
	Material string  `json:"material"`
}

// Load reads a scene from a PBRT file (.pbrt) or a JSON file (anything else)
func Load(path string) (*Scene, error) {
	if strings.EqualFold(filepath.Ext(path), ".pbrt") {
		return NewPBRTScene(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

// Decode reads a JSON scene description and builds the scene
func Decode(r io.Reader) (*Scene, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var cfg FileConfig
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return cfg.Build()
}

// Build validates the configuration and constructs the scene it describes
func (cfg FileConfig) Build() (*Scene, error) {
	cameraConfig := geometry.DefaultCameraConfig(defaultAspectRatio)
	if cfg.Camera != nil {
		cameraConfig = cfg.Camera.apply(cameraConfig)
	}
	if cameraConfig.AspectRatio <= 0 {
		return nil, fmt.Errorf("%w: aspect ratio must be positive", ErrInvalidConfig)
	}
	if cameraConfig.Center.Subtract(cameraConfig.LookAt).NearZero() {
		return nil, fmt.Errorf("%w: camera center and lookAt coincide", ErrInvalidConfig)
	}

	var render SamplingConfig
	if cfg.Render != nil {
		render = *cfg.Render
	}
	sampling := mergeSamplingConfig(defaultSamplingConfig(), render)

	// The image size and the camera aspect ratio must agree; an explicit size wins
	switch {
	case render.Width > 0 && render.Height > 0:
		cameraConfig.AspectRatio = float64(render.Width) / float64(render.Height)
	case render.Height > 0:
		sampling.Width = max(1, int(math.Round(float64(render.Height)*cameraConfig.AspectRatio)))
	default:
		sampling.Height = max(1, int(math.Round(float64(sampling.Width)/cameraConfig.AspectRatio)))
	}

	s := NewScene(cameraConfig, sampling)

	if cfg.Background != nil {
		if cfg.Background.Zenith != nil {
			s.Background.Zenith = core.Vec3(*cfg.Background.Zenith)
		}
		if cfg.Background.Horizon != nil {
			s.Background.Horizon = core.Vec3(*cfg.Background.Horizon)
		}
	}

	materials := make(map[string]material.Material, len(cfg.Materials))
	for name, mc := range cfg.Materials {
		mat, err := mc.build()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = mat
	}

	for i, sc := range cfg.Spheres {
		mat, ok := materials[sc.Material]
		if !ok {
			return nil, fmt.Errorf("%w: sphere %d references unknown material %q", ErrInvalidConfig, i, sc.Material)
		}
		if sc.Radius == 0 {
			return nil, fmt.Errorf("%w: sphere %d has zero radius", ErrInvalidConfig, i)
		}
		s.AddSphere(core.Vec3(sc.Center), sc.Radius, mat)
	}

	return s, nil
}

// apply overrides base with the fields present in the file.
// Vectors are assigned directly since the zero vector is a valid position.
func (c CameraFileConfig) apply(base geometry.CameraConfig) geometry.CameraConfig {
	cfg := geometry.MergeCameraConfig(base, geometry.CameraConfig{
		AspectRatio:   c.AspectRatio,
		VFov:          c.VFov,
		Aperture:      c.Aperture,
		FocusDistance: c.FocusDistance,
	})
	if c.Center != nil {
		cfg.Center = core.Vec3(*c.Center)
	}
	if c.LookAt != nil {
		cfg.LookAt = core.Vec3(*c.LookAt)
	}
	if c.Up != nil {
		cfg.Up = core.Vec3(*c.Up)
	}
	// A moved camera focuses on its look-at point unless told otherwise
	if (c.Center != nil || c.LookAt != nil) && c.FocusDistance == 0 {
		cfg.FocusDistance = 0
	}
	return cfg
}

func (m MaterialFileConfig) build() (material.Material, error) {
	albedo := func() (core.Vec3, error) {
		if m.Albedo == nil {
			return core.Vec3{}, fmt.Errorf("%w: %s requires an albedo", ErrInvalidConfig, m.Type)
		}
		return core.Vec3(*m.Albedo), nil
	}

	switch strings.ToLower(m.Type) {
	case "lambertian":
		a, err := albedo()
		if err != nil {
			return nil, err
		}
		return material.NewLambertian(a), nil
	case "metal":
		a, err := albedo()
		if err != nil {
			return nil, err
		}
		return material.NewMetal(a, m.Fuzz), nil
	case "dielectric":
		if m.RefractiveIndex <= 0 {
			return nil, fmt.Errorf("%w: dielectric requires a positive refractiveIndex", ErrInvalidConfig)
		}
		return material.NewDielectric(m.RefractiveIndex), nil
	default:
		return nil, fmt.Errorf("%w: unknown material type %q", ErrInvalidConfig, m.Type)
	}
}

func mergeSamplingConfig(base, override SamplingConfig) SamplingConfig {
	result := base
	if override.Width > 0 {
		result.Width = override.Width
	}
	if override.Height > 0 {
		result.Height = override.Height
	}
	if override.SamplesPerPixel > 0 {
		result.SamplesPerPixel = override.SamplesPerPixel
	}
	if override.MaxDepth > 0 {
		result.MaxDepth = override.MaxDepth
	}
	return result
}
