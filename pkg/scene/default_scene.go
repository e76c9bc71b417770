package scene

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

const defaultAspectRatio = 16.0 / 9.0

func defaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           400,
		Height:          225, // 16:9 aspect ratio
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
}

// NewDefaultScene creates the classic four sphere scene seen through the fixed pinhole camera:
// a large ground sphere, a diffuse center sphere, a glass sphere and a polished metal sphere
func NewDefaultScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	cameraConfig := geometry.DefaultCameraConfig(defaultAspectRatio)
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	s := NewScene(cameraConfig, defaultSamplingConfig())

	materialGround := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	materialCenter := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	materialLeft := material.NewDielectric(1.5)
	materialRight := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.0)

	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, materialGround)
	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, materialCenter)
	s.AddSphere(core.NewVec3(-1, 0, -1), 0.5, materialLeft)
	s.AddSphere(core.NewVec3(1, 0, -1), 0.5, materialRight)

	return s
}

// NewHollowGlassScene creates a scene with a hollow glass sphere (a bubble made with a
// negative radius inner sphere), a fuzzy gold sphere and a depth of field camera
func NewHollowGlassScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	cameraConfig := geometry.CameraConfig{
		Center:        core.NewVec3(-2, 2, 1),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		AspectRatio:   defaultAspectRatio,
		VFov:          20.0,
		Aperture:      0.1,
		FocusDistance: 0.0, // Auto-calculate focus distance
	}
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	s := NewScene(cameraConfig, defaultSamplingConfig())

	lambertianGreen := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0).Multiply(0.6))
	lambertianBlue := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	metalGold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)
	glass := material.NewDielectric(1.5)

	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, lambertianGreen)
	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, lambertianBlue)
	s.AddSphere(core.NewVec3(-1, 0, -1), 0.5, glass)
	s.AddSphere(core.NewVec3(-1, 0, -1), -0.45, glass)
	s.AddSphere(core.NewVec3(1, 0, -1), 0.5, metalGold)

	return s
}

// NewEmptyScene creates a scene with no objects; every ray sees the sky
func NewEmptyScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	cameraConfig := geometry.DefaultCameraConfig(defaultAspectRatio)
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}
	return NewScene(cameraConfig, defaultSamplingConfig())
}
