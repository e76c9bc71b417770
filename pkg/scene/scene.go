package scene

import (
	"math"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// Scene contains all the elements needed for rendering.
// A scene is fully built before rendering starts and is read-only afterwards.
type Scene struct {
	Camera         *geometry.Camera
	CameraConfig   geometry.CameraConfig
	World          *geometry.HittableList // Objects in the scene
	Background     Background
	SamplingConfig SamplingConfig
}

// SamplingConfig contains the recommended rendering configuration for a scene
type SamplingConfig struct {
	Width           int // Image width
	Height          int // Image height
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// Background is the sky gradient seen by rays that miss every object
type Background struct {
	Zenith  core.Vec3 // Color straight up
	Horizon core.Vec3 // Color straight down
}

// DefaultBackground returns the white to light blue sky
func DefaultBackground() Background {
	return Background{
		Zenith:  core.NewVec3(0.5, 0.7, 1.0),
		Horizon: core.NewVec3(1.0, 1.0, 1.0),
	}
}

// Color returns the gradient color based on the ray's vertical direction
func (b Background) Color(r core.Ray) core.Vec3 {
	unitDirection := r.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)
	return b.Horizon.Lerp(b.Zenith, t)
}

// NewScene creates an empty scene viewed through the given camera configuration
func NewScene(cameraConfig geometry.CameraConfig, samplingConfig SamplingConfig) *Scene {
	return &Scene{
		Camera:         geometry.NewCamera(cameraConfig),
		CameraConfig:   cameraConfig,
		World:          geometry.NewHittableList(),
		Background:     DefaultBackground(),
		SamplingConfig: samplingConfig,
	}
}

// AddSphere adds a sphere to the scene
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat material.Material) *geometry.Sphere {
	sphere := geometry.NewSphere(center, radius, mat)
	s.World.Add(sphere)
	return sphere
}

// Hit returns the closest intersection in the world
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	return s.World.Hit(ray, tMin, tMax)
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}

// SetAspectRatio rebuilds the camera for a different image shape.
// It must be called before rendering starts.
func (s *Scene) SetAspectRatio(aspectRatio float64) {
	if aspectRatio <= 0 || aspectRatio == s.CameraConfig.AspectRatio {
		return
	}
	s.CameraConfig.AspectRatio = aspectRatio
	s.Camera = geometry.NewCamera(s.CameraConfig)
}

// HeightForWidth derives an image height from a width and the camera aspect ratio
func (s *Scene) HeightForWidth(width int) int {
	return max(1, int(math.Round(float64(width)/s.CameraConfig.AspectRatio)))
}
