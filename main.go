package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/imageio"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// Config holds the parsed command line options
type Config struct {
	SceneType  string
	SceneFile  string
	Width      int
	Samples    int
	MaxDepth   int
	NumWorkers int
	Seed       int64
	Format     string
	OutputPath string
	Help       bool
}

func parseFlags(args []string) (Config, *flag.FlagSet, error) {
	var config Config
	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)

	fs.StringVar(&config.SceneType, "scene", "default", "Built-in scene: "+strings.Join(scene.Names(), ", "))
	fs.StringVar(&config.SceneFile, "scene-file", "", "Load the scene from a JSON file instead of a built-in scene")
	fs.IntVar(&config.Width, "width", 0, "Image width in pixels; height follows the camera aspect ratio (0 = scene default)")
	fs.IntVar(&config.Samples, "samples", 0, "Samples per pixel (0 = scene default)")
	fs.IntVar(&config.MaxDepth, "depth", 0, "Maximum ray bounce depth (0 = scene default)")
	fs.IntVar(&config.NumWorkers, "workers", 0, "Number of parallel workers (0 = auto-detect)")
	fs.Int64Var(&config.Seed, "seed", renderer.DefaultRenderConfig().Seed, "Random seed")
	fs.StringVar(&config.Format, "format", "", "Output format: "+formatList()+" (default: from -out, else png)")
	fs.StringVar(&config.OutputPath, "out", "", "Output file (default: output/<scene>/render_<timestamp>.<ext>)")
	fs.BoolVar(&config.Help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return config, fs, err
	}
	return config, fs, nil
}

// formatList names the supported output formats for help text
func formatList() string {
	formats := imageio.Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func main() {
	config, fs, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if config.Help {
		showHelp(fs)
		return
	}

	if err := run(config); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func showHelp(fs *flag.FlagSet) {
	fmt.Println("Sphere Raytracer")
	fmt.Println("Usage: raytracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	fs.SetOutput(os.Stdout)
	fs.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	for _, info := range scene.ListScenes() {
		fmt.Printf("  %-13s - %s\n", info.ID, info.Description)
	}
	fmt.Println()
	fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.<ext> unless -out is given")
}

func run(config Config) error {
	fmt.Println("Starting Sphere Raytracer...")

	sc, err := createScene(config.SceneType, config.SceneFile)
	if err != nil {
		return err
	}

	renderConfig := buildRenderConfig(sc, config)
	if err := renderConfig.Validate(); err != nil {
		return err
	}
	sc.SetAspectRatio(float64(renderConfig.Width) / float64(renderConfig.Height))

	format, path, err := resolveOutput(config, time.Now())
	if err != nil {
		return err
	}

	raytracer := renderer.NewRaytracer(sc, renderConfig, renderer.NewDefaultLogger())
	img, stats := raytracer.Render()

	fmt.Printf("Samples per pixel: %.1f over %d pixels\n", stats.AverageSamples, stats.TotalPixels)

	if err := imageio.Save(path, img, format); err != nil {
		return fmt.Errorf("saving render: %w", err)
	}

	fmt.Printf("Render saved as %s\n", path)
	return nil
}

// createScene loads the scene file if given, otherwise the named built-in scene
func createScene(sceneType, sceneFile string) (*scene.Scene, error) {
	if sceneFile != "" {
		fmt.Printf("Loading scene from %s...\n", sceneFile)
		return scene.Load(sceneFile)
	}

	fmt.Printf("Using %s scene...\n", sceneType)
	return scene.Create(sceneType)
}

// buildRenderConfig starts from the scene's recommended settings and applies command line overrides
func buildRenderConfig(sc *scene.Scene, config Config) renderer.RenderConfig {
	renderConfig := renderer.ConfigFromScene(sc)

	if config.Width > 0 {
		renderConfig.Width = config.Width
		renderConfig.Height = sc.HeightForWidth(config.Width)
	}
	if config.Samples > 0 {
		renderConfig.SamplesPerPixel = config.Samples
	}
	if config.MaxDepth > 0 {
		renderConfig.MaxDepth = config.MaxDepth
	}
	renderConfig.NumWorkers = config.NumWorkers
	renderConfig.Seed = config.Seed

	return renderConfig
}

// resolveOutput picks the output format and path; an explicit -format wins over the -out extension
func resolveOutput(config Config, now time.Time) (imageio.Format, string, error) {
	format := imageio.FormatPNG
	switch {
	case config.Format != "":
		f, err := imageio.ParseFormat(config.Format)
		if err != nil {
			return "", "", err
		}
		format = f
	case config.OutputPath != "":
		if f, err := imageio.FormatFromPath(config.OutputPath); err == nil {
			format = f
		}
	}

	if config.OutputPath != "" {
		return format, config.OutputPath, nil
	}

	name := config.SceneType
	if config.SceneFile != "" {
		name = strings.TrimSuffix(filepath.Base(config.SceneFile), filepath.Ext(config.SceneFile))
	}
	timestamp := now.Format("20060102_150405")
	path := filepath.Join("output", name, fmt.Sprintf("render_%s%s", timestamp, format.Extension()))
	return format, path, nil
}
