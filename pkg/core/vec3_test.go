package core

import (
	"math"
	"math/rand"
	"testing"
)

const tolerance = 1e-9

func randomVec(random *rand.Rand) Vec3 {
	return NewVec3(random.Float64()*20-10, random.Float64()*20-10, random.Float64()*20-10)
}

func TestVec3_Arithmetic(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, -5, 6)

	tests := []struct {
		name     string
		result   Vec3
		expected Vec3
	}{
		{"Add", a.Add(b), NewVec3(5, -3, 9)},
		{"Subtract", a.Subtract(b), NewVec3(-3, 7, -3)},
		{"Multiply", a.Multiply(2), NewVec3(2, 4, 6)},
		{"MultiplyVec", a.MultiplyVec(b), NewVec3(4, -10, 18)},
		{"Divide", b.Divide(2), NewVec3(2, -2.5, 3)},
		{"Negate", a.Negate(), NewVec3(-1, -2, -3)},
		{"Cross", a.Cross(b), NewVec3(27, 6, -13)},
		{"Lerp start", a.Lerp(b, 0), a},
		{"Lerp end", a.Lerp(b, 1), b},
		{"Clamp", NewVec3(-1, 0.5, 2).Clamp(0, 1), NewVec3(0, 0.5, 1)},
		{"Sqrt", NewVec3(4, 9, 0.25).Sqrt(), NewVec3(2, 3, 0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result.Subtract(tt.expected).Length() > tolerance {
				t.Errorf("Expected %v, got %v", tt.expected, tt.result)
			}
		})
	}
}

func TestVec3_InPlace(t *testing.T) {
	v := NewVec3(1, 2, 3)
	v.AddInPlace(NewVec3(1, 1, 1))
	v.MultiplyInPlace(0.5)

	if !v.Equals(NewVec3(1, 1.5, 2)) {
		t.Errorf("Expected (1, 1.5, 2), got %v", v)
	}
}

func TestVec3_DotIsSymmetric(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	for i := 0; i < 100; i++ {
		a, b := randomVec(random), randomVec(random)
		if a.Dot(b) != b.Dot(a) {
			t.Fatalf("dot(a,b) != dot(b,a) for a=%v b=%v", a, b)
		}
	}
}

func TestVec3_CrossDotIdentity(t *testing.T) {
	// |a×b|² + (a·b)² = |a|²|b|²
	random := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		a, b := randomVec(random), randomVec(random)
		lhs := a.Cross(b).LengthSquared() + a.Dot(b)*a.Dot(b)
		rhs := a.LengthSquared() * b.LengthSquared()
		if math.Abs(lhs-rhs) > 1e-9*rhs {
			t.Fatalf("Identity violated for a=%v b=%v: %f vs %f", a, b, lhs, rhs)
		}
	}
}

func TestVec3_NormalizeHasUnitLength(t *testing.T) {
	random := rand.New(rand.NewSource(11))
	for i := 0; i < 100; i++ {
		v := randomVec(random)
		if v.NearZero() {
			continue
		}
		if length := v.Normalize().Length(); math.Abs(length-1) > tolerance {
			t.Fatalf("Normalize(%v) has length %f", v, length)
		}
	}

	if zero := (Vec3{}).Normalize(); !zero.Equals(Vec3{}) {
		t.Errorf("Normalizing the zero vector should return zero, got %v", zero)
	}
}

func TestVec3_ReflectPreservesLength(t *testing.T) {
	random := rand.New(rand.NewSource(13))
	for i := 0; i < 100; i++ {
		v := randomVec(random)
		n := randomVec(random).Normalize()
		if math.Abs(v.Reflect(n).Length()-v.Length()) > 1e-9 {
			t.Fatalf("Reflect changed length: v=%v n=%v", v, n)
		}
	}
}

func TestVec3_Reflect(t *testing.T) {
	v := NewVec3(1, -1, 0)
	n := NewVec3(0, 1, 0)
	expected := NewVec3(1, 1, 0)

	if result := v.Reflect(n); result.Subtract(expected).Length() > tolerance {
		t.Errorf("Expected %v, got %v", expected, result)
	}
}

func TestVec3_Refract(t *testing.T) {
	n := NewVec3(0, 1, 0)

	t.Run("normal incidence passes straight through", func(t *testing.T) {
		v := NewVec3(0, -1, 0)
		result := v.Refract(n, 1.0/1.5)
		if result.Subtract(v).Length() > tolerance {
			t.Errorf("Expected %v, got %v", v, result)
		}
	})

	t.Run("equal indices do not bend", func(t *testing.T) {
		v := NewVec3(1, -1, 0).Normalize()
		result := v.Refract(n, 1.0)
		if result.Subtract(v).Length() > tolerance {
			t.Errorf("Expected %v, got %v", v, result)
		}
	})

	t.Run("snell's law", func(t *testing.T) {
		eta := 1.0 / 1.5
		v := NewVec3(1, -1, 0).Normalize()
		result := v.Refract(n, eta)

		sinIn := math.Sqrt(1 - math.Pow(v.Negate().Dot(n), 2))
		sinOut := math.Sqrt(1 - math.Pow(result.Negate().Dot(n), 2))
		if math.Abs(sinOut-eta*sinIn) > tolerance {
			t.Errorf("Expected sin(out)=%f, got %f", eta*sinIn, sinOut)
		}
		if math.Abs(result.Length()-1) > tolerance {
			t.Errorf("Refracted vector should be unit length, got %f", result.Length())
		}
	})
}

func TestVec3_NearZero(t *testing.T) {
	tests := []struct {
		name     string
		v        Vec3
		expected bool
	}{
		{"zero", NewVec3(0, 0, 0), true},
		{"tiny", NewVec3(1e-9, -1e-9, 1e-10), true},
		{"one component large", NewVec3(1e-9, 1e-3, 0), false},
		{"unit", NewVec3(1, 0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.v.NearZero() != tt.expected {
				t.Errorf("NearZero(%v) = %t, expected %t", tt.v, !tt.expected, tt.expected)
			}
		})
	}
}

func TestRay_At(t *testing.T) {
	ray := NewRay(NewVec3(1, 2, 3), NewVec3(0, 0, -2))

	if p := ray.At(0); !p.Equals(ray.Origin) {
		t.Errorf("At(0) should be the origin, got %v", p)
	}
	if p := ray.At(1.5); !p.Equals(NewVec3(1, 2, 0)) {
		t.Errorf("Expected (1, 2, 0), got %v", p)
	}
}
