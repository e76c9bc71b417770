package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/loaders"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// NewPBRTScene creates a scene from a PBRT file using spheres and the diffuse, conductor
// and dielectric materials
func NewPBRTScene(filepath string, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	pbrtScene, err := loaders.LoadPBRT(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to load PBRT file: %w", err)
	}
	return FromPBRT(pbrtScene, cameraOverrides...)
}

// FromPBRT converts a parsed PBRT scene
func FromPBRT(pbrtScene *loaders.PBRTScene, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	sampling := convertSamplingConfig(pbrtScene)

	cameraConfig, err := convertCamera(pbrtScene, sampling)
	if err != nil {
		return nil, fmt.Errorf("failed to convert camera: %w", err)
	}
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	s := NewScene(cameraConfig, sampling)

	materials := make([]material.Material, len(pbrtScene.Materials))
	for i := range pbrtScene.Materials {
		mat, err := convertMaterial(&pbrtScene.Materials[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert material: %w", err)
		}
		materials[i] = mat
	}

	// PBRT's default material is a 0.5 gray diffuse
	var defaultMaterial material.Material = material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

	for _, sphere := range pbrtScene.Spheres {
		mat := defaultMaterial
		if sphere.MaterialIndex >= 0 {
			mat = materials[sphere.MaterialIndex]
		}
		s.AddSphere(mirrorX(sphere.Center), sphere.Radius, mat)
	}

	return s, nil
}

// mirrorX converts from PBRT's left-handed world to the right-handed camera so images are not flipped
func mirrorX(v core.Vec3) core.Vec3 {
	return core.NewVec3(-v.X, v.Y, v.Z)
}

func convertSamplingConfig(pbrtScene *loaders.PBRTScene) SamplingConfig {
	config := defaultSamplingConfig()

	if film := pbrtScene.Film; film != nil {
		if x, ok := film.GetIntParam("xresolution"); ok && x > 0 {
			config.Width = x
		}
		if y, ok := film.GetIntParam("yresolution"); ok && y > 0 {
			config.Height = y
		}
	}
	if sampler := pbrtScene.Sampler; sampler != nil {
		if n, ok := sampler.GetIntParam("pixelsamples"); ok && n > 0 {
			config.SamplesPerPixel = n
		}
	}
	if integrator := pbrtScene.Integrator; integrator != nil {
		if d, ok := integrator.GetIntParam("maxdepth"); ok && d > 0 {
			config.MaxDepth = d
		}
	}

	return config
}

func convertCamera(pbrtScene *loaders.PBRTScene, sampling SamplingConfig) (geometry.CameraConfig, error) {
	aspectRatio := float64(sampling.Width) / float64(sampling.Height)
	config := geometry.DefaultCameraConfig(aspectRatio)

	if pbrtScene.LookAt != nil {
		config.Center = mirrorX(*pbrtScene.LookAt)
		config.LookAt = mirrorX(*pbrtScene.LookAtTo)
		config.Up = mirrorX(*pbrtScene.LookAtUp)
		config.FocusDistance = 0
	}

	camera := pbrtScene.Camera
	if camera == nil {
		return config, nil
	}
	if camera.Subtype != "perspective" {
		return config, fmt.Errorf("%w: camera %q", loaders.ErrUnsupported, camera.Subtype)
	}

	if fov, ok := camera.GetFloatParam("fov"); ok {
		// PBRT's fov spans the shorter image axis
		config.VFov = fov
		if aspectRatio < 1 {
			halfWidth := math.Tan(fov * math.Pi / 360)
			config.VFov = 2 * math.Atan(halfWidth/aspectRatio) * 180 / math.Pi
		}
	}
	if lensRadius, ok := camera.GetFloatParam("lensradius"); ok {
		config.Aperture = 2 * lensRadius
	}
	if focus, ok := camera.GetFloatParam("focaldistance"); ok {
		config.FocusDistance = focus
	}

	return config, nil
}

func convertMaterial(stmt *loaders.PBRTStatement) (material.Material, error) {
	reflectance := core.NewVec3(0.5, 0.5, 0.5)
	if rgb, ok := stmt.GetRGBParam("reflectance"); ok {
		reflectance = *rgb
	}

	switch stmt.Subtype {
	case "diffuse":
		return material.NewLambertian(reflectance), nil
	case "conductor":
		roughness, _ := stmt.GetFloatParam("roughness")
		return material.NewMetal(reflectance, roughness), nil
	case "dielectric":
		eta, ok := stmt.GetFloatParam("eta")
		if !ok {
			eta = 1.5
		}
		return material.NewDielectric(eta), nil
	default:
		return nil, fmt.Errorf("%w: material %q", loaders.ErrUnsupported, stmt.Subtype)
	}
}
