package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
	"github.com/df07/go-sphere-raytracer/pkg/material"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Sphere       map[string]interface{} `json:"sphere,omitempty"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

func hexColor(r, g, b float64) string {
	toByte := func(v float64) int { return int(math.Max(0, math.Min(1, v)) * 255) }
	return fmt.Sprintf("#%02x%02x%02x", toByte(r), toByte(g), toByte(b))
}

// extractMaterialInfo extracts detailed material information with type assertions
func extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = [3]float64{m.Albedo.X, m.Albedo.Y, m.Albedo.Z}
		properties["color"] = hexColor(m.Albedo.X, m.Albedo.Y, m.Albedo.Z)
		return "lambertian", properties

	case *material.Metal:
		properties["albedo"] = [3]float64{m.Albedo.X, m.Albedo.Y, m.Albedo.Z}
		properties["color"] = hexColor(m.Albedo.X, m.Albedo.Y, m.Albedo.Z)
		properties["fuzz"] = m.Fuzz
		return "metal", properties

	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = "#ffffff" // Clear glass
		return "dielectric", properties

	default:
		return "unknown", properties
	}
}

// inspectPixel casts a ray through the center of pixel (pixelX, pixelY), with y = 0 the top row,
// and returns the closest hit along with the sphere it belongs to
func inspectPixel(sceneObj *scene.Scene, width, height, pixelX, pixelY int) (*material.HitRecord, *geometry.Sphere) {
	u := (float64(pixelX) + 0.5) / float64(max(width-1, 1))
	v := (float64(height-1-pixelY) + 0.5) / float64(max(height-1, 1))

	// Pinhole ray: the lens is ignored so inspection is deterministic
	ray := sceneObj.Camera.GetRay(u, v, nil)
	if sceneObj.CameraConfig.Aperture > 0 {
		pinhole := sceneObj.CameraConfig
		pinhole.Aperture = 0
		ray = geometry.NewCamera(pinhole).GetRay(u, v, nil)
	}

	hit, isHit := sceneObj.Hit(ray, integrator.DefaultMinHitDistance, math.Inf(1))
	if !isHit {
		return nil, nil
	}

	// The list reports the record, not the shape; find the sphere that produced it
	for _, shape := range sceneObj.World.Shapes() {
		sphere, ok := shape.(*geometry.Sphere)
		if !ok {
			continue
		}
		if shapeHit, ok := sphere.Hit(ray, integrator.DefaultMinHitDistance, hit.T); ok && shapeHit.T == hit.T {
			return hit, sphere
		}
	}
	return hit, nil
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, sceneObj, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, statusForError(err), "Invalid scene parameters: "+err.Error())
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}
	if pixelX < 0 || pixelX >= req.Width || pixelY < 0 || pixelY >= req.Height {
		writeError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	hit, sphere := inspectPixel(sceneObj, req.Width, req.Height, pixelX, pixelY)
	if hit == nil {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	materialType, materialProps := extractMaterialInfo(hit.Material)
	response := InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		Point:        [3]float64{hit.Point.X, hit.Point.Y, hit.Point.Z},
		Normal:       [3]float64{hit.Normal.X, hit.Normal.Y, hit.Normal.Z},
		Distance:     hit.T,
		FrontFace:    hit.FrontFace,
		Properties:   materialProps,
	}
	if sphere != nil {
		response.Sphere = map[string]interface{}{
			"center": [3]float64{sphere.Center.X, sphere.Center.Y, sphere.Center.Z},
			"radius": sphere.Radius,
		}
	}

	writeJSON(w, http.StatusOK, response)
}
