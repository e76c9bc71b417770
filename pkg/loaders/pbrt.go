package loaders

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// ErrUnsupported is wrapped when a PBRT file uses a directive the sphere renderer cannot express
var ErrUnsupported = errors.New("unsupported PBRT directive")

// PBRTStatement represents a parsed PBRT statement
type PBRTStatement struct {
	Type       string               // Statement type (Camera, Material, Shape, etc.)
	Subtype    string               // Subtype (perspective, diffuse, sphere, etc.)
	Parameters map[string]PBRTParam // Named parameters
}

// PBRTParam represents a parameter with type and value(s)
type PBRTParam struct {
	Type   string   // Parameter type (float, rgb, point3, etc.)
	Values []string // Parameter values as strings
}

// PBRTSphere is a sphere shape placed in world space
type PBRTSphere struct {
	Center        core.Vec3
	Radius        float64
	MaterialIndex int // Index into PBRTScene.Materials (-1 = default material)
}

// PBRTScene contains all parsed PBRT scene data
type PBRTScene struct {
	// Pre-WorldBegin statements
	Camera     *PBRTStatement
	LookAt     *core.Vec3 // Eye position
	LookAtTo   *core.Vec3 // Look at target
	LookAtUp   *core.Vec3 // Up vector
	Film       *PBRTStatement
	Sampler    *PBRTStatement
	Integrator *PBRTStatement

	// World content
	Materials []PBRTStatement
	Spheres   []PBRTSphere
}

// graphicsState is the part of the PBRT graphics state that spheres depend on
type graphicsState struct {
	materialIndex int
	translation   core.Vec3
}

// PBRTParser encapsulates the state and logic for parsing PBRT files
type PBRTParser struct {
	scene          *PBRTScene
	state          graphicsState
	stateStack     []graphicsState
	namedMaterials map[string]int
	inWorld        bool
	statementLines []string
	lineNumber     int
}

// ParsePBRT parses PBRT content from an io.Reader
func ParsePBRT(reader io.Reader) (*PBRTScene, error) {
	parser := NewPBRTParser()

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		parser.lineNumber++
		if err := parser.processLine(scanner.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", parser.lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	// Process any remaining accumulated statement
	if err := parser.flush(); err != nil {
		return nil, fmt.Errorf("at end of file: %w", err)
	}

	return parser.scene, nil
}

// LoadPBRT loads and parses a PBRT scene file
func LoadPBRT(filename string) (*PBRTScene, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PBRT file: %w", err)
	}
	defer file.Close()

	return ParsePBRT(file)
}

// NewPBRTParser creates a new PBRT parser instance
func NewPBRTParser() *PBRTParser {
	return &PBRTParser{
		scene:          &PBRTScene{},
		state:          graphicsState{materialIndex: -1},
		namedMaterials: make(map[string]int),
	}
}

// processLine processes a single line of PBRT input
func (p *PBRTParser) processLine(line string) error {
	line = strings.TrimSpace(line)

	// Skip empty lines and comments
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	// Block directives take no arguments
	switch line {
	case "WorldBegin", "WorldEnd", "AttributeBegin", "AttributeEnd":
		if err := p.flush(); err != nil {
			return err
		}
		return p.processBlock(line)
	}

	if isStatementStart(line) {
		if err := p.flush(); err != nil {
			return err
		}
		p.statementLines = []string{line}
		return nil
	}

	// Continue previous statement
	if len(p.statementLines) == 0 {
		return fmt.Errorf("unexpected continuation line: %s", line)
	}
	p.statementLines = append(p.statementLines, line)
	return nil
}

func (p *PBRTParser) processBlock(directive string) error {
	switch directive {
	case "WorldBegin":
		p.inWorld = true
		p.state.translation = core.Vec3{}
	case "WorldEnd":
		p.inWorld = false
	case "AttributeBegin":
		p.stateStack = append(p.stateStack, p.state)
	case "AttributeEnd":
		if len(p.stateStack) == 0 {
			return fmt.Errorf("AttributeEnd without matching AttributeBegin")
		}
		p.state = p.stateStack[len(p.stateStack)-1]
		p.stateStack = p.stateStack[:len(p.stateStack)-1]
	}
	return nil
}

// flush parses and applies any accumulated statement lines
func (p *PBRTParser) flush() error {
	if len(p.statementLines) == 0 {
		return nil
	}
	fullStatement := strings.Join(p.statementLines, " ")
	p.statementLines = nil

	stmt, err := parseStatement(fullStatement)
	if err != nil {
		return fmt.Errorf("error parsing statement '%s': %w", fullStatement, err)
	}
	return p.apply(stmt)
}

// apply routes a parsed statement into the scene or the graphics state
func (p *PBRTParser) apply(stmt *PBRTStatement) error {
	switch stmt.Type {
	case "LookAt":
		return parseLookAt(stmt, p.scene)
	case "Camera":
		p.scene.Camera = stmt
	case "Film":
		p.scene.Film = stmt
	case "Sampler":
		p.scene.Sampler = stmt
	case "Integrator":
		p.scene.Integrator = stmt
	case "Translate":
		offset, err := parseFloats(stmt.Parameters["values"].Values, 3)
		if err != nil {
			return fmt.Errorf("Translate: %w", err)
		}
		p.state.translation = p.state.translation.Add(core.NewVec3(offset[0], offset[1], offset[2]))
	case "Material":
		p.scene.Materials = append(p.scene.Materials, *stmt)
		p.state.materialIndex = len(p.scene.Materials) - 1
	case "MakeNamedMaterial":
		// MakeNamedMaterial "name" "string type" "diffuse" ...
		materialType, ok := stmt.GetStringParam("type")
		if !ok {
			return fmt.Errorf("named material %q has no type", stmt.Subtype)
		}
		material := *stmt
		material.Type = "Material"
		material.Subtype = materialType
		p.scene.Materials = append(p.scene.Materials, material)
		p.namedMaterials[stmt.Subtype] = len(p.scene.Materials) - 1
	case "NamedMaterial":
		index, ok := p.namedMaterials[stmt.Subtype]
		if !ok {
			return fmt.Errorf("unknown named material %q", stmt.Subtype)
		}
		p.state.materialIndex = index
	case "Shape":
		return p.addShape(stmt)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, stmt.Type)
	}
	return nil
}

func (p *PBRTParser) addShape(stmt *PBRTStatement) error {
	if !p.inWorld {
		return fmt.Errorf("Shape outside WorldBegin")
	}
	if stmt.Subtype != "sphere" {
		return fmt.Errorf("%w: shape %q", ErrUnsupported, stmt.Subtype)
	}

	radius, ok := stmt.GetFloatParam("radius")
	if !ok {
		radius = 1 // PBRT default
	}
	p.scene.Spheres = append(p.scene.Spheres, PBRTSphere{
		Center:        p.state.translation,
		Radius:        radius,
		MaterialIndex: p.state.materialIndex,
	})
	return nil
}

// parseLookAt parses a LookAt statement into scene camera vectors
func parseLookAt(stmt *PBRTStatement, scene *PBRTScene) error {
	// eyex eyey eyez atx aty atz upx upy upz
	values, err := parseFloats(stmt.Parameters["values"].Values, 9)
	if err != nil {
		return fmt.Errorf("LookAt: %w", err)
	}

	eye := core.NewVec3(values[0], values[1], values[2])
	at := core.NewVec3(values[3], values[4], values[5])
	up := core.NewVec3(values[6], values[7], values[8])
	scene.LookAt, scene.LookAtTo, scene.LookAtUp = &eye, &at, &up
	return nil
}

func parseFloats(values []string, count int) ([]float64, error) {
	if len(values) != count {
		return nil, fmt.Errorf("expected %d values, got %d", count, len(values))
	}
	result := make([]float64, count)
	for i, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number '%s': %w", v, err)
		}
		result[i] = f
	}
	return result, nil
}

// tokenizePBRT tokenizes a PBRT line respecting quoted strings and brackets
func tokenizePBRT(line string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	inBrackets := false

	emit := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, char := range line {
		switch {
		case char == '"' && !inBrackets:
			current.WriteRune(char)
			if inQuotes {
				emit()
			}
			inQuotes = !inQuotes
		case char == '[' && !inQuotes:
			emit()
			current.WriteRune(char)
			inBrackets = true
		case char == ']' && !inQuotes && inBrackets:
			current.WriteRune(char)
			emit()
			inBrackets = false
		case (char == ' ' || char == '\t') && !inQuotes && !inBrackets:
			emit()
		default:
			current.WriteRune(char)
		}
	}
	emit()

	return tokens
}

// parseStatement parses a single PBRT statement line
func parseStatement(line string) (*PBRTStatement, error) {
	// Bare numeric statements
	for _, keyword := range []string{"LookAt", "Translate", "Rotate", "Scale", "Transform", "ConcatTransform"} {
		if strings.HasPrefix(line, keyword+" ") || line == keyword {
			parts := strings.Fields(strings.NewReplacer("[", " ", "]", " ").Replace(line[len(keyword):]))
			return &PBRTStatement{
				Type: keyword,
				Parameters: map[string]PBRTParam{
					"values": {Type: "float", Values: parts},
				},
			}, nil
		}
	}

	// Regular statements: Type "subtype" "param type" value
	parts := tokenizePBRT(line)
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid statement format")
	}

	stmt := &PBRTStatement{
		Type:       parts[0],
		Parameters: make(map[string]PBRTParam),
	}

	// Extract subtype (quoted string after type)
	if strings.HasPrefix(parts[1], "\"") && strings.HasSuffix(parts[1], "\"") {
		stmt.Subtype = strings.Trim(parts[1], "\"")
		parts = parts[2:]
	} else {
		parts = parts[1:]
	}

	for i := 0; i < len(parts); i++ {
		if !strings.HasPrefix(parts[i], "\"") {
			return nil, fmt.Errorf("unexpected token %s", parts[i])
		}

		// "type name" followed by a value or [values]
		paramParts := strings.Fields(strings.Trim(parts[i], "\""))
		if len(paramParts) != 2 {
			return nil, fmt.Errorf("invalid parameter declaration %s", parts[i])
		}
		if i+1 >= len(parts) {
			return nil, fmt.Errorf("parameter %s has no value", paramParts[1])
		}
		i++

		value := strings.Trim(parts[i], "[] ")
		var values []string
		if paramParts[0] == "string" {
			for _, s := range strings.Fields(value) {
				values = append(values, strings.Trim(s, "\""))
			}
		} else {
			values = strings.Fields(value)
		}

		stmt.Parameters[paramParts[1]] = PBRTParam{Type: paramParts[0], Values: values}
	}

	return stmt, nil
}

// GetFloatParam extracts a float parameter from a PBRT statement
func (stmt *PBRTStatement) GetFloatParam(name string) (float64, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return 0, false
	}
	val, err := strconv.ParseFloat(param.Values[0], 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// GetIntParam extracts an integer parameter from a PBRT statement
func (stmt *PBRTStatement) GetIntParam(name string) (int, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return 0, false
	}
	val, err := strconv.Atoi(param.Values[0])
	if err != nil {
		return 0, false
	}
	return val, true
}

// GetRGBParam extracts an RGB color parameter from a PBRT statement
func (stmt *PBRTStatement) GetRGBParam(name string) (*core.Vec3, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) < 3 {
		return nil, false
	}
	values, err := parseFloats(param.Values[:3], 3)
	if err != nil {
		return nil, false
	}
	return &core.Vec3{X: values[0], Y: values[1], Z: values[2]}, true
}

// GetStringParam extracts a string parameter from a PBRT statement
func (stmt *PBRTStatement) GetStringParam(name string) (string, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return "", false
	}
	return param.Values[0], true
}

// isStatementStart determines if a line starts a new PBRT statement
func isStatementStart(line string) bool {
	first := line
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		first = line[:i]
	}
	return first != "" && first[0] >= 'A' && first[0] <= 'Z'
}
