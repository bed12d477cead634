package taxonomy

import (
	"strings"

	"github.com/skarven/flowsheet/pkg/graph"
	"github.com/skarven/flowsheet/pkg/model"
)

// =============================================================================
// Class Constants
// =============================================================================

// Generic fallback classes used when an element type has no mapping.
const (
	// ClassGenericStep is the fallback class for block diagrams.
	ClassGenericStep = "ProcessStep"
	// ClassGenericVessel is the fallback class for equipment diagrams.
	ClassGenericVessel = "Vessel"
	// ClassMaterialFlow is the fallback class for connections.
	ClassMaterialFlow = "MaterialFlow"
)

// =============================================================================
// Static Tables
// =============================================================================

// classForType maps diagram element types to current-schema class names.
// This is the forward direction of the export path.
var classForType = map[string]string{
	// Block flow diagram steps
	"processStep": "ProcessStep",
	"mixing":      "MixingStep",
	"reaction":    "ReactionStep",
	"separation":  "SeparationStep",
	"heating":     "HeatingStep",
	"cooling":     "CoolingStep",
	"storage":     "StorageStep",

	// Equipment (PFD and P&ID)
	"reactor":       "Reactor",
	"tank":          "StorageTank",
	"vessel":        "Vessel",
	"pump":          "Pump",
	"compressor":    "Compressor",
	"heatExchanger": "HeatExchanger",
	"column":        "DistillationColumn",
	"mixer":         "Mixer",
	"splitter":      "Splitter",
	"filter":        "Filter",

	// P&ID detail
	"valve":      "Valve",
	"instrument": "Instrument",
}

// typeForClass maps current-schema class names back to diagram types.
// Built as the exact inverse of classForType.
var typeForClass = invert(classForType)

// typeForLegacyClass maps legacy 1.x equipment-class names to diagram types.
// Many legacy classes collapse onto one diagram type.
var typeForLegacyClass = map[string]string{
	// Pumps
	"CentrifugalPump":   "pump",
	"ReciprocatingPump": "pump",
	"RotaryPump":        "pump",
	"GearPump":          "pump",

	// Vessels and tanks
	"PressureVessel": "vessel",
	"Drum":           "vessel",
	"StorageTank":    "tank",
	"Tank":           "tank",
	"Silo":           "tank",

	// Heat transfer
	"ShellTubeHeatExchanger": "heatExchanger",
	"PlateHeatExchanger":     "heatExchanger",
	"AirCooledExchanger":     "heatExchanger",
	"Condenser":              "heatExchanger",
	"Reboiler":               "heatExchanger",

	// Reactors
	"StirredTankReactor": "reactor",
	"TubularReactor":     "reactor",
	"FixedBedReactor":    "reactor",

	// Columns
	"TrayColumn":         "column",
	"PackedColumn":       "column",
	"DistillationColumn": "column",

	// Rotating equipment
	"CentrifugalCompressor":   "compressor",
	"ReciprocatingCompressor": "compressor",
	"Blower":                  "compressor",

	// Valves
	"GateValve":    "valve",
	"GlobeValve":   "valve",
	"BallValve":    "valve",
	"CheckValve":   "valve",
	"ControlValve": "valve",

	// Instrumentation
	"FlowTransmitter":        "instrument",
	"PressureTransmitter":    "instrument",
	"TemperatureTransmitter": "instrument",
	"LevelTransmitter":       "instrument",

	// Solids handling
	"Filter":      "filter",
	"Cyclone":     "filter",
	"Mixer":       "mixer",
	"StaticMixer": "mixer",
}

// categoryForLegacyClass maps legacy class names to rendering categories.
// Categories drive symbol selection in detailed (pid) rendering only.
var categoryForLegacyClass = map[string]string{
	"CentrifugalPump":   "pump",
	"ReciprocatingPump": "pump",
	"RotaryPump":        "pump",
	"GearPump":          "pump",

	"PressureVessel": "vessel",
	"Drum":           "vessel",
	"StorageTank":    "vessel",
	"Tank":           "vessel",
	"Silo":           "vessel",

	"ShellTubeHeatExchanger": "exchanger",
	"PlateHeatExchanger":     "exchanger",
	"AirCooledExchanger":     "exchanger",
	"Condenser":              "exchanger",
	"Reboiler":               "exchanger",

	"StirredTankReactor": "reactor",
	"TubularReactor":     "reactor",
	"FixedBedReactor":    "reactor",

	"TrayColumn":         "column",
	"PackedColumn":       "column",
	"DistillationColumn": "column",

	"CentrifugalCompressor":   "compressor",
	"ReciprocatingCompressor": "compressor",
	"Blower":                  "compressor",

	"GateValve":    "valve",
	"GlobeValve":   "valve",
	"BallValve":    "valve",
	"CheckValve":   "valve",
	"ControlValve": "valve",

	"FlowTransmitter":        "instrument",
	"PressureTransmitter":    "instrument",
	"TemperatureTransmitter": "instrument",
	"LevelTransmitter":       "instrument",

	"Filter":      "filter",
	"Cyclone":     "filter",
	"Mixer":       "mixer",
	"StaticMixer": "mixer",
}

// symbolVariant maps class names to a symbol variant index within their
// rendering category. Classes without an entry use variant 0.
var symbolVariant = map[string]int{
	"CentrifugalPump":   0,
	"ReciprocatingPump": 1,
	"RotaryPump":        2,
	"GearPump":          3,

	"PressureVessel": 0,
	"Drum":           1,
	"StorageTank":    2,
	"Tank":           2,
	"Silo":           3,

	"ShellTubeHeatExchanger": 0,
	"PlateHeatExchanger":     1,
	"AirCooledExchanger":     2,
	"Condenser":              3,
	"Reboiler":               4,

	"StirredTankReactor": 0,
	"TubularReactor":     1,
	"FixedBedReactor":    2,

	"TrayColumn":   0,
	"PackedColumn": 1,

	"CentrifugalCompressor":   0,
	"ReciprocatingCompressor": 1,
	"Blower":                  2,

	"GateValve":    0,
	"GlobeValve":   1,
	"BallValve":    2,
	"CheckValve":   3,
	"ControlValve": 4,

	"FlowTransmitter":        0,
	"PressureTransmitter":    1,
	"TemperatureTransmitter": 2,
	"LevelTransmitter":       3,

	"Filter":      0,
	"Cyclone":     1,
	"Mixer":       0,
	"StaticMixer": 1,
}

// classForEdgeType maps diagram edge types to connection classes.
var classForEdgeType = map[string]string{
	"stream":        "MaterialFlow",
	"energyStream":  "EnergyFlow",
	"utilityStream": "UtilityFlow",
	"signal":        "InformationFlow",
}

// edgeTypeForClass maps connection classes back to diagram edge types.
var edgeTypeForClass = invert(classForEdgeType)

// flowForConnectionClass maps connection classes to flow types.
var flowForConnectionClass = map[string]model.FlowType{
	"MaterialFlow":    model.FlowMaterial,
	"EnergyFlow":      model.FlowEnergy,
	"UtilityFlow":     model.FlowUtility,
	"InformationFlow": model.FlowInformation,
}

// lowerTypeIndex supports the case-insensitive leg of reverse lookups.
// Keys are lowercase class or legacy-class names.
var lowerTypeIndex = buildLowerIndex()

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

func buildLowerIndex() map[string]string {
	out := make(map[string]string, len(typeForClass)+len(typeForLegacyClass))
	for class, typ := range typeForClass {
		out[strings.ToLower(class)] = typ
	}
	for class, typ := range typeForLegacyClass {
		out[strings.ToLower(class)] = typ
	}
	return out
}

// =============================================================================
// Lookups
// =============================================================================

// ClassFor returns the current-schema class for a diagram element type.
// The second return is false when the type has no mapping; callers apply
// FallbackClass for the active mode instead of failing.
func ClassFor(elementType string) (string, bool) {
	c, ok := classForType[elementType]
	return c, ok
}

// ConnectionClassFor returns the connection class for a diagram edge type,
// falling back to ClassMaterialFlow. The second return is false when the
// fallback was used.
func ConnectionClassFor(edgeType string) (string, bool) {
	if c, ok := classForEdgeType[edgeType]; ok {
		return c, true
	}
	return ClassMaterialFlow, false
}

// EdgeTypeFor returns the diagram edge type for a connection class,
// case-insensitively, falling back to "stream".
func EdgeTypeFor(connectionClass string) string {
	if t, ok := edgeTypeForClass[connectionClass]; ok {
		return t
	}
	for class, t := range edgeTypeForClass {
		if strings.EqualFold(class, connectionClass) {
			return t
		}
	}
	return "stream"
}

// FlowTypeFor returns the flow type implied by a connection class,
// defaulting to material.
func FlowTypeFor(connectionClass string) model.FlowType {
	if f, ok := flowForConnectionClass[connectionClass]; ok {
		return f
	}
	return model.FlowMaterial
}

// ElementType resolves a current-schema class or legacy equipment-class name
// to a diagram element type for the given mode. Resolution order: exact
// match, case-insensitive match, then the mode fallback. The second return
// is false when the fallback was used.
func ElementType(name string, mode graph.Mode) (string, bool) {
	if t, ok := typeForClass[name]; ok {
		return t, true
	}
	if t, ok := typeForLegacyClass[name]; ok {
		return t, true
	}
	if t, ok := lowerTypeIndex[strings.ToLower(name)]; ok {
		return t, true
	}
	return FallbackType(mode), false
}

// FallbackType returns the generic diagram type for a mode: a bare process
// step for block diagrams, a generic vessel otherwise.
func FallbackType(mode graph.Mode) string {
	if mode == graph.ModeBlock {
		return "processStep"
	}
	return "vessel"
}

// FallbackClass returns the generic class for a mode, mirroring
// FallbackType on the document side.
func FallbackClass(mode graph.Mode) string {
	if mode == graph.ModeBlock {
		return ClassGenericStep
	}
	return ClassGenericVessel
}

// Category returns the rendering category for a legacy class name,
// case-insensitively. The second return is false when unmapped.
func Category(legacyClass string) (string, bool) {
	if c, ok := categoryForLegacyClass[legacyClass]; ok {
		return c, true
	}
	for class, cat := range categoryForLegacyClass {
		if strings.EqualFold(class, legacyClass) {
			return cat, true
		}
	}
	return "", false
}

// SymbolVariant returns the symbol variant index for a class,
// case-insensitively. Unmapped classes use variant 0.
func SymbolVariant(class string) int {
	if v, ok := symbolVariant[class]; ok {
		return v
	}
	for c, v := range symbolVariant {
		if strings.EqualFold(c, class) {
			return v
		}
	}
	return 0
}

// LegacyClass reports whether name is a known legacy equipment class,
// case-insensitively.
func LegacyClass(name string) bool {
	if _, ok := typeForLegacyClass[name]; ok {
		return true
	}
	for c := range typeForLegacyClass {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}
