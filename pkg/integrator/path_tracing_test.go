package integrator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/material"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

const tolerance = 1e-9

// absorbingMaterial never scatters
type absorbingMaterial struct{}

func (absorbingMaterial) Scatter(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
	return material.ScatterResult{}, false
}

// recordingMaterial reflects like a mirror and remembers what it produced
type recordingMaterial struct {
	attenuation core.Vec3
	calls       int
}

func (m *recordingMaterial) Scatter(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
	m.calls++
	reflected := rayIn.Direction.Reflect(hit.Normal)
	return material.ScatterResult{
		Scattered:   core.NewRay(hit.Point, reflected),
		Attenuation: m.attenuation,
	}, true
}

// createTestScene creates a scene viewed through the default camera with the given spheres
func createTestScene(spheres ...*geometry.Sphere) *scene.Scene {
	sc := scene.NewEmptyScene()
	for _, s := range spheres {
		sc.World.Add(s)
	}
	return sc
}

func newSampler() core.Sampler {
	return core.NewRandomSampler(rand.New(rand.NewSource(42)))
}

// TestPathTracingDepthTermination tests that depth 0 is always black
func TestPathTracingDepthTermination(t *testing.T) {
	sphere := geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	integrator := NewPathTracingIntegrator()

	tests := []struct {
		name string
		sc   *scene.Scene
		ray  core.Ray
	}{
		{"hitting ray", createTestScene(sphere), core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))},
		{"missing ray", createTestScene(sphere), core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0))},
		{"empty scene", createTestScene(), core.NewRay(core.Vec3{}, core.NewVec3(1, 2, 3))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, depth := range []int{0, -1} {
				if c := integrator.RayColor(tt.ray, tt.sc, newSampler(), depth); c != (core.Vec3{}) {
					t.Errorf("Expected black at depth %d, got %v", depth, c)
				}
			}
		})
	}
}

// TestPathTracingDepthOneHitIsBlack checks a single bounce exhausts the budget
func TestPathTracingDepthOneHitIsBlack(t *testing.T) {
	sphere := geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	sc := createTestScene(sphere)
	ray := sc.Camera.GetRay(0.5, 0.5, nil)

	c := NewPathTracingIntegrator().RayColor(ray, sc, newSampler(), 1)
	if c != (core.Vec3{}) {
		t.Errorf("Expected black for a depth 1 hit, got %v", c)
	}
}

// TestPathTracingMissReturnsBackground checks misses are exactly the sky gradient
func TestPathTracingMissReturnsBackground(t *testing.T) {
	sc := createTestScene()
	integrator := NewPathTracingIntegrator()

	directions := []core.Vec3{
		core.NewVec3(0, 1, 0),
		core.NewVec3(0, -1, 0),
		core.NewVec3(0.3, 0.2, -1),
	}
	for _, d := range directions {
		ray := core.NewRay(core.Vec3{}, d)
		expected := sc.Background.Color(ray)
		if c := integrator.RayColor(ray, sc, newSampler(), 5); c != expected {
			t.Errorf("Direction %v: expected %v, got %v", d, expected, c)
		}
	}
}

// TestPathTracingAbsorption checks absorbed rays carry no light
func TestPathTracingAbsorption(t *testing.T) {
	sc := createTestScene(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, absorbingMaterial{}))
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))

	if c := NewPathTracingIntegrator().RayColor(ray, sc, newSampler(), 10); c != (core.Vec3{}) {
		t.Errorf("Expected black, got %v", c)
	}
}

// TestPathTracingAttenuation checks the bounce color is attenuation times the next segment
func TestPathTracingAttenuation(t *testing.T) {
	mirror := &recordingMaterial{attenuation: core.NewVec3(0.5, 0.25, 1.0)}
	sc := createTestScene(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, mirror))

	// Straight at the sphere: bounces back along +z and then misses
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))
	c := NewPathTracingIntegrator().RayColor(ray, sc, newSampler(), 10)

	background := sc.Background.Color(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)))
	expected := mirror.attenuation.MultiplyVec(background)
	if c.Subtract(expected).Length() > tolerance {
		t.Errorf("Expected %v, got %v", expected, c)
	}
	if mirror.calls != 1 {
		t.Errorf("Expected exactly one scatter, got %d", mirror.calls)
	}
}

// TestPathTracingBounceLimit checks a ray trapped between mirrors stops after depth bounces
func TestPathTracingBounceLimit(t *testing.T) {
	mirror := &recordingMaterial{attenuation: core.NewVec3(1, 1, 1)}
	// Camera inside a mirrored sphere: every ray bounces forever
	sc := createTestScene(geometry.NewSphere(core.Vec3{}, 10, mirror))
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0.2, 0.1, -1))

	const depth = 7
	c := NewPathTracingIntegrator().RayColor(ray, sc, newSampler(), depth)
	if c != (core.Vec3{}) {
		t.Errorf("Expected black once the bounce budget is spent, got %v", c)
	}
	if mirror.calls != depth {
		t.Errorf("Expected %d scatters, got %d", depth, mirror.calls)
	}
}

// TestPathTracingMetalMirror checks a polished metal floor reflects exactly
func TestPathTracingMetalMirror(t *testing.T) {
	metal := material.NewMetal(core.NewVec3(1, 1, 1), 0)
	floor := geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, metal)

	// Axis-aligned ray straight down onto the top of the sphere
	incoming := core.NewRay(core.NewVec3(0, 5, 0), core.NewVec3(0, -1, 0))
	hit, ok := floor.Hit(incoming, DefaultMinHitDistance, math.Inf(1))
	if !ok {
		t.Fatal("Expected the ray to hit the floor")
	}

	scatter, scattered := metal.Scatter(incoming, *hit, newSampler())
	if !scattered {
		t.Fatal("Expected a reflection")
	}
	expected := incoming.Direction.Reflect(hit.Normal)
	if !scatter.Scattered.Direction.Normalize().Equals(expected) {
		t.Errorf("Expected direction %v, got %v", expected, scatter.Scattered.Direction)
	}

	// The reflected ray goes straight up into the zenith
	sc := createTestScene(floor)
	c := NewPathTracingIntegrator().RayColor(incoming, sc, newSampler(), 2)
	if c.Subtract(sc.Background.Zenith).Length() > tolerance {
		t.Errorf("Expected zenith color %v, got %v", sc.Background.Zenith, c)
	}
}

func TestPathTracingMinHitDistance(t *testing.T) {
	sc := createTestScene(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, absorbingMaterial{}))
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))

	// Both roots (0.5 and 1.5) fall below the minimum distance
	integrator := &PathTracingIntegrator{MinHitDistance: 2}
	if c := integrator.RayColor(ray, sc, newSampler(), 3); c != sc.Background.Color(ray) {
		t.Errorf("Expected background when hits are closer than MinHitDistance, got %v", c)
	}
}
