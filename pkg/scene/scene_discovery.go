package scene

import (
	"errors"
	"fmt"
	"sort"

	"github.com/df07/go-sphere-raytracer/pkg/geometry"
)

// ErrUnknownScene is returned when a scene name is not registered
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
}

type builtinScene struct {
	info   SceneInfo
	create func(...geometry.CameraConfig) *Scene
}

var builtinScenes = map[string]builtinScene{
	"default": {
		info:   SceneInfo{ID: "default", DisplayName: "Default", Description: "Ground, diffuse, glass and metal spheres"},
		create: NewDefaultScene,
	},
	"hollow-glass": {
		info:   SceneInfo{ID: "hollow-glass", DisplayName: "Hollow Glass", Description: "Glass bubble and fuzzy gold with depth of field"},
		create: NewHollowGlassScene,
	},
	"spheregrid": {
		info:   SceneInfo{ID: "spheregrid", DisplayName: "Sphere Grid", Description: "10x10 grid of mixed material spheres"},
		create: NewSphereGridScene,
	},
	"empty": {
		info:   SceneInfo{ID: "empty", DisplayName: "Empty", Description: "Sky gradient only"},
		create: NewEmptyScene,
	},
}

// Create builds the built-in scene with the given name
func Create(name string, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	builtin, ok := builtinScenes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	return builtin.create(cameraOverrides...), nil
}

// ListScenes returns the built-in scenes sorted by ID
func ListScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtinScenes))
	for _, builtin := range builtinScenes {
		scenes = append(scenes, builtin.info)
	}
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].ID < scenes[j].ID
	})
	return scenes
}

// Names returns the IDs of the built-in scenes in sorted order
func Names() []string {
	scenes := ListScenes()
	names := make([]string, len(scenes))
	for i, info := range scenes {
		names[i] = info.ID
	}
	return names
}
