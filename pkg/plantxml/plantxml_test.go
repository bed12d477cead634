package plantxml

import (
	"strings"
	"testing"

	"github.com/skarven/flowsheet/pkg/errors"
	"github.com/skarven/flowsheet/pkg/graph"
	"github.com/skarven/flowsheet/pkg/model"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		wantErr        bool
		wantKind       FormatKind
		wantVersion    string
		wantDiscipline string
	}{
		{
			name:        "Current",
			input:       `<ProcessInterchange xmlns="urn:flowsheet:procxml:2" version="2.0"></ProcessInterchange>`,
			wantKind:    FormatCurrent,
			wantVersion: "2.0",
		},
		{
			name:           "Legacy",
			input:          `<PlantModel Version="1.3" Discipline="PID"></PlantModel>`,
			wantKind:       FormatLegacy,
			wantVersion:    "1.3",
			wantDiscipline: "PID",
		},
		{
			name:        "LegacyDefaultVersion",
			input:       `<PlantModel></PlantModel>`,
			wantKind:    FormatLegacy,
			wantVersion: "1.0",
		},
		{name: "UnknownRoot", input: `<Blueprint/>`, wantErr: true},
		{name: "Malformed", input: `<PlantModel`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Detect([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, errors.ErrCodeFatalParse) {
					t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.ErrCodeFatalParse)
				}
				return
			}
			if err != nil {
				t.Fatalf("Detect: %v", err)
			}
			if f.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", f.Kind, tt.wantKind)
			}
			if f.Version != tt.wantVersion {
				t.Errorf("version = %q, want %q", f.Version, tt.wantVersion)
			}
			if f.Discipline != tt.wantDiscipline {
				t.Errorf("discipline = %q, want %q", f.Discipline, tt.wantDiscipline)
			}
		})
	}
}

// A pump whose nozzle id names a discharge and carries no explicit direction
// must still come out as an outlet.
func TestParsePumpNozzles(t *testing.T) {
	input := `<PlantModel Version="1.2" Discipline="PID">
  <PlantInformation Project="demo" Site="north"/>
  <Equipment ID="P-101" ComponentClass="CentrifugalPump" TagName="Feed Pump">
    <Position X="4" Y="2" Width="3" Height="2"/>
    <Nozzle ID="P101-Discharge"/>
    <Nozzle ID="N2" Name="Inlet" Direction="suction"/>
  </Equipment>
</PlantModel>`

	doc, warnings, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if doc.SchemaVersion != "1.2" {
		t.Errorf("version = %q", doc.SchemaVersion)
	}
	if doc.Model.DiagramType != graph.ModeInstrument {
		t.Errorf("diagram type = %s, want pid", doc.Model.DiagramType)
	}
	if got := doc.Model.Metadata["Site"]; got != "north" {
		t.Errorf("metadata Site = %q", got)
	}

	if len(doc.Model.Steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(doc.Model.Steps))
	}
	pump := doc.Model.Steps[0]
	if pump.Type != "CentrifugalPump" {
		t.Errorf("type = %q", pump.Type)
	}
	if pump.Name != "Feed Pump" {
		t.Errorf("name = %q", pump.Name)
	}
	if pump.Layout == nil || pump.Layout.X != 4 || pump.Layout.W != 3 {
		t.Errorf("layout = %+v", pump.Layout)
	}

	if len(pump.Ports) != 2 {
		t.Fatalf("ports = %d, want 2", len(pump.Ports))
	}
	if pump.Ports[0].Direction != model.DirectionOutlet {
		t.Error("discharge nozzle should resolve to an outlet")
	}
	if pump.Ports[1].Direction != model.DirectionInlet {
		t.Error("suction nozzle should resolve to an inlet")
	}
}

func TestParseUnknownClassDegrades(t *testing.T) {
	input := `<PlantModel Discipline="PFD">
  <PlantInformation/>
  <Equipment ID="X1" ComponentClass="Frobulator"/>
</PlantModel>`

	doc, warnings, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Model.Steps[0].Type != "Vessel" {
		t.Errorf("type = %q, want generic Vessel", doc.Model.Steps[0].Type)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "Frobulator") {
		t.Errorf("warnings = %v, want unknown-class warning", warnings)
	}
}

func TestParseMissingIDs(t *testing.T) {
	input := `<PlantModel Discipline="PFD">
  <PlantInformation/>
  <Equipment ComponentClass="StorageTank"/>
</PlantModel>`

	doc, warnings, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Model.Steps[0].ID != "equipment-1" {
		t.Errorf("id = %q, want positional fallback", doc.Model.Steps[0].ID)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestParseGenericAttributes(t *testing.T) {
	input := `<PlantModel Discipline="PFD">
  <PlantInformation/>
  <Equipment ID="T1" ComponentClass="StorageTank">
    <GenericAttributes>
      <GenericAttribute Name="DesignPressureValue" Value="3.50" Units="bar"/>
      <GenericAttribute Name="FlowRateAttribute" Value="100 kg/hr"/>
      <GenericAttribute Name="Material" Value="SS316"/>
      <GenericAttribute Name="" Value="ignored"/>
    </GenericAttributes>
  </Equipment>
</PlantModel>`

	doc, _, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	params := doc.Model.Steps[0].Parameters
	want := []model.Parameter{
		{Name: "DesignPressure", Value: "3.5", Unit: "bar"},
		{Name: "FlowRate", Value: "100", Unit: "kg/hr"},
		{Name: "Material", Value: "SS316"},
	}
	if len(params) != len(want) {
		t.Fatalf("parameters = %+v, want %d", params, len(want))
	}
	for i := range want {
		if params[i] != want[i] {
			t.Errorf("parameter %d = %+v, want %+v", i, params[i], want[i])
		}
	}
}

func TestParsePipingNetworks(t *testing.T) {
	input := `<PlantModel Discipline="PFD">
  <PlantInformation/>
  <Equipment ID="R1" ComponentClass="StirredTankReactor"/>
  <Equipment ID="T1" ComponentClass="StorageTank"/>
  <PipingNetworkSystem ID="PN1">
    <PipingNetworkSegment ID="S1">
      <Connection ID="C1" FromNode="R1" ToNode="T1" TagName="product"/>
    </PipingNetworkSegment>
    <BoundaryConnector ID="B1" ComponentClass="PipeFlowIn" TagName="Feed"/>
    <BoundaryConnector ID="B2" ComponentClass="PipeFlowOut"/>
    <BoundaryConnector ID="B3" ComponentClass="Unmarked"/>
  </PipingNetworkSystem>
  <PipingNetworkSystem ID="PN2">
    <Connection FromID="T1" ToID="R1"/>
  </PipingNetworkSystem>
</PlantModel>`

	doc, warnings, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	conns := doc.Model.Connections
	if len(conns) != 2 {
		t.Fatalf("connections = %d, want 2", len(conns))
	}
	if conns[0].ID != "C1" || conns[0].FromPort != "R1" || conns[0].ToPort != "T1" {
		t.Errorf("connection 0 = %+v", conns[0])
	}
	if conns[0].Label != "product" {
		t.Errorf("label = %q", conns[0].Label)
	}
	// Segment-less connection with FromID/ToID attributes and no ID.
	if conns[1].ID != "connection-2" || conns[1].FromPort != "T1" || conns[1].ToPort != "R1" {
		t.Errorf("connection 1 = %+v", conns[1])
	}

	ext := doc.Model.ExternalPorts
	if len(ext) != 2 {
		t.Fatalf("external ports = %d, want 2", len(ext))
	}
	if ext[0].Name != "Feed" || ext[0].Direction != model.DirectionInlet {
		t.Errorf("external port 0 = %+v", ext[0])
	}
	if ext[1].ID != "B2" || ext[1].Direction != model.DirectionOutlet {
		t.Errorf("external port 1 = %+v", ext[1])
	}

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "B3") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want skipped-connector warning for B3", warnings)
	}
}

func TestClassifyDiagramType(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     graph.Mode
		warnings int
	}{
		{
			name:  "ExplicitPID",
			input: `<PlantModel Discipline="P&amp;ID"><PlantInformation/></PlantModel>`,
			want:  graph.ModeInstrument,
		},
		{
			name:  "ExplicitPFD",
			input: `<PlantModel Discipline="PFD"><PlantInformation/></PlantModel>`,
			want:  graph.ModeProcess,
		},
		{
			name:  "ExplicitBFD",
			input: `<PlantModel Discipline="BFD"><PlantInformation/></PlantModel>`,
			want:  graph.ModeBlock,
		},
		{
			name: "NozzlesImplyPID",
			input: `<PlantModel><PlantInformation/>
				<Equipment ID="P1" ComponentClass="CentrifugalPump"><Nozzle ID="N1"/></Equipment>
			</PlantModel>`,
			want:     graph.ModeInstrument,
			warnings: 1,
		},
		{
			name: "ValveClassImpliesPID",
			input: `<PlantModel><PlantInformation/>
				<Equipment ID="V1" ComponentClass="GateValve"/>
			</PlantModel>`,
			want:     graph.ModeInstrument,
			warnings: 1,
		},
		{
			name:     "NoDetailImpliesBlock",
			input:    `<PlantModel><PlantInformation/><Equipment ID="S1" ComponentClass="StorageTank"/></PlantModel>`,
			want:     graph.ModeBlock,
			warnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, warnings, err := Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if doc.Model.DiagramType != tt.want {
				t.Errorf("mode = %s, want %s", doc.Model.DiagramType, tt.want)
			}
			if len(warnings) != tt.warnings {
				t.Errorf("warnings = %v, want %d", warnings, tt.warnings)
			}
		})
	}
}

func TestParseMissingPlantInformation(t *testing.T) {
	doc, warnings, err := Parse([]byte(`<PlantModel Discipline="PFD"></PlantModel>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Model.Metadata != nil {
		t.Errorf("metadata = %v, want none", doc.Model.Metadata)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "PlantInformation") {
		t.Errorf("warnings = %v, want missing PlantInformation", warnings)
	}
	// Root without an ID gets a stable synthetic one.
	if doc.Model.ID != "plant-model" {
		t.Errorf("model id = %q", doc.Model.ID)
	}
}

func TestParseRejectsCurrentSchema(t *testing.T) {
	_, _, err := Parse([]byte(`<ProcessInterchange version="2.0"></ProcessInterchange>`))
	if err == nil {
		t.Fatal("expected error for current-schema document")
	}
	if !errors.Is(err, errors.ErrCodeFatalParse) {
		t.Errorf("error code = %s", errors.GetCode(err))
	}
}
