package taxonomy

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/skarven/flowsheet/pkg/graph"
)

//go:embed taxonomy.toml
var defaultConfigTOML string

// Config is the externally owned taxonomy table: the legal diagram element
// types per mode and the element types per rendering category. The
// converter consumes it but does not own it; the embedded default covers
// standalone use.
type Config struct {
	Modes      map[string]ModeConfig `toml:"modes"`
	Categories map[string][]string   `toml:"categories"`
}

// ModeConfig lists the legal element types for one diagram mode.
type ModeConfig struct {
	Types []string `toml:"types"`
}

// cfg is the active configuration. Set once at init (or by LoadConfig
// before conversions start); lookups treat it as immutable.
var cfg = mustParseConfig(defaultConfigTOML)

func mustParseConfig(text string) *Config {
	c, err := parseConfig(text)
	if err != nil {
		panic(fmt.Sprintf("taxonomy: embedded config invalid: %v", err))
	}
	return c
}

func parseConfig(text string) (*Config, error) {
	var c Config
	if _, err := toml.Decode(text, &c); err != nil {
		return nil, err
	}
	if len(c.Modes) == 0 {
		return nil, fmt.Errorf("no modes defined")
	}
	return &c, nil
}

// LoadConfig replaces the active taxonomy table with the one at path.
// Call before starting conversions; lookups never mutate the table.
func LoadConfig(path string) error {
	var c Config
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return fmt.Errorf("taxonomy config %s: %w", path, err)
	}
	if len(c.Modes) == 0 {
		return fmt.Errorf("taxonomy config %s: no modes defined", path)
	}
	cfg = &c
	return nil
}

// Legal reports whether elementType is a legal diagram type in mode.
func Legal(elementType string, mode graph.Mode) bool {
	mc, ok := cfg.Modes[string(mode)]
	if !ok {
		return false
	}
	for _, t := range mc.Types {
		if t == elementType {
			return true
		}
	}
	return false
}

// CategoryTypes returns the diagram element types belonging to a rendering
// category, or nil when the category is unknown.
func CategoryTypes(category string) []string {
	return cfg.Categories[category]
}

// Boundary element types: nodes of these types are external ports, not
// process steps.
var boundaryTypes = map[string]bool{
	"feed":    true,
	"product": true,
}

// Boundary reports whether a diagram element type denotes a boundary
// (external-port) node rather than a process step.
func Boundary(elementType string) bool {
	return boundaryTypes[elementType]
}

// InferMode guesses the diagram mode from the taxonomy classes present in a
// document. Instrumentation or valve classes imply pid; any equipment class
// implies pfd; otherwise block.
func InferMode(classes []string) graph.Mode {
	mode := graph.ModeBlock
	for _, class := range classes {
		t, ok := ElementType(class, graph.ModeInstrument)
		if !ok {
			continue
		}
		switch t {
		case "valve", "instrument":
			return graph.ModeInstrument
		case "processStep", "mixing", "reaction", "separation", "heating", "cooling", "storage":
			// block-level step, no upgrade
		default:
			mode = graph.ModeProcess
		}
	}
	return mode
}
