package renderer

import (
	"image"
	"image/color"
	"math"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// MaxChannel is the largest linear channel value before quantization; it keeps bytes below 256
const MaxChannel = 0.999

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels    int           // Total number of pixels rendered
	TotalSamples   int           // Total number of samples taken
	AverageSamples float64       // Average samples per pixel
	NumWorkers     int           // Workers used for the render
	Duration       time.Duration // Wall clock time of the render
}

// add folds the counts of a partial render into s
func (s *RenderStats) add(other RenderStats) {
	s.TotalPixels += other.TotalPixels
	s.TotalSamples += other.TotalSamples
	if s.TotalPixels > 0 {
		s.AverageSamples = float64(s.TotalSamples) / float64(s.TotalPixels)
	}
}

// PixelStats accumulates the samples of a single pixel
type PixelStats struct {
	ColorAccum  core.Vec3 // Sum of linear RGB samples
	SampleCount int       // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum.AddInPlace(color)
	ps.SampleCount++
}

// RGBA converts the accumulated samples to an output pixel
func (ps *PixelStats) RGBA() color.RGBA {
	return ColorToRGBA(ps.ColorAccum, ps.SampleCount)
}

// ColorToRGBA averages sum over samples, applies gamma 2 and quantizes each channel as
// floor(256 * clamp(sqrt(avg), 0, MaxChannel)). Zero samples produce opaque black.
func ColorToRGBA(sum core.Vec3, samples int) color.RGBA {
	if samples <= 0 {
		return color.RGBA{A: 255}
	}

	avg := sum.Multiply(1.0 / float64(samples))
	return color.RGBA{
		R: quantize(avg.X),
		G: quantize(avg.Y),
		B: quantize(avg.Z),
		A: 255,
	}
}

func quantize(linear float64) uint8 {
	// NaN and negative values map to 0
	if !(linear > 0) {
		return 0
	}
	c := math.Min(math.Sqrt(linear), MaxChannel)
	return uint8(256 * c)
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of an image in [0, 1]
func CalculateAverageLuminance(img *image.RGBA) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}

	total := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			total += 0.2126*float64(c.R)/255 + 0.7152*float64(c.G)/255 + 0.0722*float64(c.B)/255
		}
	}
	return total / float64(pixels)
}
