package material

import (
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// fixedSampler returns the same values on every call
type fixedSampler struct {
	value float64
}

func (f fixedSampler) Get1D() float64 { return f.value }
func (f fixedSampler) Get3D() core.Vec3 {
	return core.NewVec3(f.value, f.value, f.value)
}

func TestHitRecord_SetFaceNormal(t *testing.T) {
	outward := core.NewVec3(0, 0, 1)

	tests := []struct {
		name           string
		direction      core.Vec3
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{"ray against outward normal", core.NewVec3(0, 0, -1), true, outward},
		{"ray along outward normal", core.NewVec3(0, 0, 1), false, outward.Negate()},
		{"oblique ray from outside", core.NewVec3(1, 2, -0.5), true, outward},
		{"oblique ray from inside", core.NewVec3(1, 2, 0.5), false, outward.Negate()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(core.NewVec3(0, 0, 0), tt.direction)
			var hit HitRecord
			hit.SetFaceNormal(ray, outward)

			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected FrontFace %t, got %t", tt.expectedFront, hit.FrontFace)
			}
			if !hit.Normal.Equals(tt.expectedNormal) {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
			if ray.Direction.Dot(hit.Normal) > 0 {
				t.Errorf("Normal %v should face against ray direction %v", hit.Normal, ray.Direction)
			}
		})
	}
}
