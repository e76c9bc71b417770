package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)

	// Perpendicular offset of 2 is larger than the radius
	ray := core.NewRay(core.NewVec3(2, 0, 5), core.NewVec3(0, 0, -1))

	hit, isHit := sphere.Hit(ray, 0.001, 1000.0)
	if isHit {
		t.Errorf("Expected miss, but got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_FrontAndBackFace(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float64
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{
			name:           "front face hit",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "back face hit from inside",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(0, 0, 1),
			expectedT:      1.0,
			expectedFront:  false,
			expectedNormal: core.NewVec3(0, 0, -1),
		},
		{
			name:           "non-unit direction",
			rayOrigin:      core.NewVec3(0, 0, 3),
			rayDirection:   core.NewVec3(0, 0, -4),
			expectedT:      0.5,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			hit, isHit := sphere.Hit(ray, 0.001, 1000.0)

			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}

			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}

			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %t, got %t", tt.expectedFront, hit.FrontFace)
			}

			if hit.Normal.Subtract(tt.expectedNormal).Length() > 1e-9 {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
		})
	}
}

func TestSphere_Hit_ClosestRootFromOutside(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, -5), 1.0, nil)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	// Both roots (4 and 6) lie in the interval; the nearer one is returned
	hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}
	if math.Abs(hit.T-4.0) > 1e-9 {
		t.Errorf("Expected closest intersection at t=4, got t=%f", hit.T)
	}

	// Excluding the near root yields the far one
	hit, isHit = sphere.Hit(ray, 4.5, math.Inf(1))
	if !isHit {
		t.Fatal("Expected far root hit, but got miss")
	}
	if math.Abs(hit.T-6.0) > 1e-9 {
		t.Errorf("Expected far intersection at t=6, got t=%f", hit.T)
	}
	if hit.FrontFace {
		t.Error("Far root should be a back face hit")
	}
}

func TestSphere_Hit_GlancingHit(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)
	ray := core.NewRay(core.NewVec3(1, 0, 2), core.NewVec3(0, 0, -1))

	hit, isHit := sphere.Hit(ray, 0.001, 1000.0)
	if !isHit {
		t.Fatal("Expected glancing hit, but got miss")
	}

	expectedPoint := core.NewVec3(1, 0, 0)
	if hit.Point.Subtract(expectedPoint).Length() > 1e-9 {
		t.Errorf("Expected hit point %v, got %v", expectedPoint, hit.Point)
	}
}

func TestSphere_Hit_Bounds(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	hit, isHit := sphere.Hit(ray, 0.001, 0.5)
	if isHit {
		t.Errorf("Expected miss due to tMax bound, but got hit at t=%f", hit.T)
	}

	hit, isHit = sphere.Hit(ray, 3.5, 1000.0)
	if isHit {
		t.Errorf("Expected miss due to tMin bound, but got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_CarriesMaterial(t *testing.T) {
	mat := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	sphere := NewSphere(core.NewVec3(0, 0, -1), 0.5, mat)

	hit, isHit := sphere.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), 0.001, math.Inf(1))
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}
	if hit.Material != mat {
		t.Errorf("Expected hit to reference the sphere's material")
	}
	if math.Abs(hit.Normal.Length()-1) > 1e-12 {
		t.Errorf("Normal should be unit length, got %f", hit.Normal.Length())
	}
}

func TestSphere_DielectricRoundTrip(t *testing.T) {
	glass := material.NewDielectric(1.5)
	sphere := NewSphere(core.NewVec3(0, 0, -3), 1.0, glass)
	// A draw of 0.999 never selects Schlick reflection at normal incidence
	sampler := fixedSampler(0.999)

	incoming := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	ray := incoming

	for bounce := 0; bounce < 2; bounce++ {
		hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))
		if !isHit {
			t.Fatalf("Expected hit on bounce %d", bounce)
		}
		if (bounce == 0) != hit.FrontFace {
			t.Fatalf("Unexpected face orientation on bounce %d: front=%t", bounce, hit.FrontFace)
		}
		scatter, ok := glass.Scatter(ray, *hit, sampler)
		if !ok {
			t.Fatalf("Dielectric should always scatter")
		}
		ray = scatter.Scattered
	}

	if ray.Direction.Normalize().Subtract(incoming.Direction).Length() > 1e-9 {
		t.Errorf("Expected exit direction parallel to %v, got %v", incoming.Direction, ray.Direction)
	}
	if math.Abs(ray.Origin.Z-(-4)) > 1e-9 {
		t.Errorf("Expected exit point on the far side at z=-4, got %v", ray.Origin)
	}
}

// fixedSampler returns the same value for every draw
type fixedSampler float64

func (f fixedSampler) Get1D() float64 { return float64(f) }
func (f fixedSampler) Get3D() core.Vec3 {
	return core.NewVec3(float64(f), float64(f), float64(f))
}
