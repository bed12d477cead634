package convert

import (
	"math"
	"strings"
	"testing"

	"github.com/skarven/flowsheet/pkg/graph"
	"github.com/skarven/flowsheet/pkg/model"
)

// sampleSnapshot is a minimal pfd: reactor feeding a tank over a labeled
// material stream.
func sampleSnapshot() graph.Snapshot {
	return graph.Snapshot{
		Nodes: []graph.Node{
			{ID: "reactorA", Type: "reactor", Label: "R-1", X: 100, Y: 100, Width: 80, Height: 60},
			{ID: "tankB", Type: "tank", Label: "T-1", X: 300, Y: 100, Width: 80, Height: 60},
		},
		Edges: []graph.Edge{
			{
				ID: "e1", Type: "stream", Source: "reactorA", Target: "tankB",
				Label:      "100 kg/hr",
				Properties: map[string]string{"flowRate": "100 kg/hr"},
			},
		},
	}
}

func TestExport(t *testing.T) {
	doc, warnings := Export(sampleSnapshot(), ExportOptions{
		Mode:    graph.ModeProcess,
		ModelID: "pm-1",
		Name:    "Plant",
	})
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	m := doc.Model
	if m.ID != "pm-1" || m.Name != "Plant" || m.DiagramType != graph.ModeProcess {
		t.Errorf("model header = %+v", m)
	}

	if len(m.Steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(m.Steps))
	}
	if m.Steps[0].Type != "Reactor" || m.Steps[1].Type != "StorageTank" {
		t.Errorf("classes = %q, %q", m.Steps[0].Type, m.Steps[1].Type)
	}
	if m.Steps[0].OriginalElementType != "reactor" {
		t.Errorf("original type = %q", m.Steps[0].OriginalElementType)
	}
	if m.Steps[0].Layout == nil || m.Steps[0].Layout.X != 100 || m.Steps[0].Layout.W != 80 {
		t.Errorf("layout = %+v", m.Steps[0].Layout)
	}

	// Ports exist only because the edge touches both nodes.
	if len(m.Steps[0].Ports) != 1 || m.Steps[0].Ports[0].ID != "reactorA_out_default" {
		t.Errorf("reactor ports = %+v", m.Steps[0].Ports)
	}
	if m.Steps[0].Ports[0].Direction != model.DirectionOutlet {
		t.Error("source port should be an outlet")
	}
	if len(m.Steps[1].Ports) != 1 || m.Steps[1].Ports[0].ID != "tankB_in_default" {
		t.Errorf("tank ports = %+v", m.Steps[1].Ports)
	}

	if len(m.Connections) != 1 {
		t.Fatalf("connections = %d, want 1", len(m.Connections))
	}
	c := m.Connections[0]
	if c.Type != "MaterialFlow" || c.FromPort != "reactorA_out_default" || c.ToPort != "tankB_in_default" {
		t.Errorf("connection = %+v", c)
	}
	if c.Label != "100 kg/hr" {
		t.Errorf("label = %q", c.Label)
	}
	if c.Stream == nil || c.Stream.FlowRate == nil ||
		c.Stream.FlowRate.Value != 100 || c.Stream.FlowRate.Unit != "kg/hr" {
		t.Errorf("stream = %+v", c.Stream)
	}
}

// Export must always produce a document: unsupported node and edge types
// degrade to the generic classes with a warning each.
func TestExportDegradation(t *testing.T) {
	s := graph.Snapshot{
		Nodes: []graph.Node{{ID: "n1", Type: "doohickey"}},
		Edges: []graph.Edge{{ID: "e1", Type: "teleport", Source: "n1", Target: "n1"}},
	}
	doc, warnings := Export(s, ExportOptions{Mode: graph.ModeProcess})

	if doc.Model.Steps[0].Type != "Vessel" {
		t.Errorf("class = %q, want generic Vessel", doc.Model.Steps[0].Type)
	}
	if doc.Model.Connections[0].Type != "MaterialFlow" {
		t.Errorf("connection class = %q", doc.Model.Connections[0].Type)
	}
	if len(warnings) != 2 {
		t.Errorf("warnings = %v, want 2", warnings)
	}
}

func TestExportBoundaryDirection(t *testing.T) {
	s := graph.Snapshot{
		Nodes: []graph.Node{
			{ID: "f1", Type: "feed", X: 0, Y: 100},
			{ID: "r1", Type: "reactor", X: 200, Y: 100},
			{ID: "p1", Type: "product", X: 400, Y: 100},
			{ID: "x1", Type: "feed", X: 0, Y: 200,
				Properties: map[string]string{graph.PropDirection: "outlet"}},
		},
	}
	doc, _ := Export(s, ExportOptions{Mode: graph.ModeProcess})

	ext := doc.Model.ExternalPorts
	if len(ext) != 3 {
		t.Fatalf("external ports = %d, want 3", len(ext))
	}
	byID := make(map[string]model.ExternalPort, len(ext))
	for _, p := range ext {
		byID[p.ID] = p
	}
	// Positional heuristic: left of the midline feeds in, right feeds out.
	if byID["f1"].Direction != model.DirectionInlet {
		t.Error("left boundary should default to inlet")
	}
	if byID["p1"].Direction != model.DirectionOutlet {
		t.Error("right boundary should default to outlet")
	}
	// An explicit direction property wins over position.
	if byID["x1"].Direction != model.DirectionOutlet {
		t.Error("explicit direction should override position")
	}
}

func TestExportSynthesizesModelID(t *testing.T) {
	doc, _ := Export(graph.Snapshot{}, ExportOptions{Mode: graph.ModeProcess})
	if !strings.HasPrefix(doc.Model.ID, "pm-") {
		t.Errorf("id = %q, want pm- prefix", doc.Model.ID)
	}
	if doc.Model.Name != doc.Model.ID {
		t.Errorf("name = %q, want defaulted to id", doc.Model.Name)
	}
}

func TestPortID(t *testing.T) {
	tests := []struct {
		node   string
		dir    model.Direction
		handle string
		want   string
	}{
		{"r1", model.DirectionOutlet, "", "r1_out_default"},
		{"r1", model.DirectionInlet, "", "r1_in_default"},
		{"r1", model.DirectionOutlet, "top", "r1_out_top"},
		{"my_node", model.DirectionInlet, "3", "my_node_in_3"},
	}
	for _, tt := range tests {
		if got := PortID(tt.node, tt.dir, tt.handle); got != tt.want {
			t.Errorf("PortID(%q, %s, %q) = %q, want %q", tt.node, tt.dir, tt.handle, got, tt.want)
		}
	}
}

// =============================================================================
// Coordinate Transform
// =============================================================================

func TestSpaceTransform(t *testing.T) {
	space := NewSpace(20)
	if space.OffsetY != 250 {
		t.Fatalf("offset = %v, want 250", space.OffsetY)
	}
	x, y := space.ToCanvas(10, 20)
	if x != 100 || y != 50 {
		t.Errorf("ToCanvas(10, 20) = (%v, %v), want (100, 50)", x, y)
	}
}

func TestSpaceInverse(t *testing.T) {
	space := NewSpace(37.5)
	coords := [][2]float64{{0, 0}, {10, 20}, {-3.5, 37.5}, {123.456, 0.001}}
	for _, c := range coords {
		cx, cy := space.ToCanvas(c[0], c[1])
		x, y := space.FromCanvas(cx, cy)
		if math.Abs(x-c[0]) > 1e-9 || math.Abs(y-c[1]) > 1e-9 {
			t.Errorf("round trip (%v, %v) = (%v, %v)", c[0], c[1], x, y)
		}
	}
}

// =============================================================================
// Import
// =============================================================================

func TestImport(t *testing.T) {
	doc := &model.Document{
		SchemaVersion: model.SchemaVersion,
		Model: model.ProcessModel{
			ID:          "pm-1",
			DiagramType: graph.ModeProcess,
			Steps: []model.ProcessStep{
				{
					ID: "r1", Type: "Reactor", Name: "R-1",
					Ports: []model.Port{
						{ID: "r1_out_default", Direction: model.DirectionOutlet, StepID: "r1"},
					},
					Parameters: []model.Parameter{{Name: "volume", Value: "5", Unit: "m3"}},
					Layout:     &model.Layout{X: 10, Y: 20, W: 8, H: 6},
				},
				{ID: "t1", Type: "StorageTank", Layout: &model.Layout{X: 30, Y: 20, W: 8, H: 6}},
			},
			Connections: []model.ProcessConnection{
				{
					ID: "c1", Type: "MaterialFlow",
					FromPort: "r1_out_default", ToPort: "t1_in_default",
					Label:  "product",
					Stream: &model.StreamProperties{FlowRate: &model.Quantity{Value: 100, Unit: "kg/hr"}},
				},
			},
		},
	}

	s, mode, warnings := Import(doc)
	if mode != graph.ModeProcess {
		t.Errorf("mode = %s", mode)
	}

	if len(s.Nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(s.Nodes))
	}
	r1 := s.Nodes[0]
	if r1.Type != "reactor" || r1.Label != "R-1" {
		t.Errorf("node = %+v", r1)
	}
	if r1.Properties["volume"] != "5 m3" {
		t.Errorf("volume property = %q", r1.Properties["volume"])
	}

	// maxY 20 gives offset (20+5)*10 = 250.
	if r1.X != 100 || r1.Y != 50 {
		t.Errorf("position = (%v, %v), want (100, 50)", r1.X, r1.Y)
	}
	if r1.Width != 80 || r1.Height != 60 {
		t.Errorf("size = (%v, %v)", r1.Width, r1.Height)
	}

	if len(s.Edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(s.Edges))
	}
	e := s.Edges[0]
	if e.Source != "r1" || e.Target != "t1" {
		t.Errorf("endpoints = %s -> %s", e.Source, e.Target)
	}
	if e.SourceHandle != "" || e.TargetHandle != "" {
		t.Errorf("handles = %q, %q, want default stripped", e.SourceHandle, e.TargetHandle)
	}
	if e.Type != "stream" || e.Label != "product" {
		t.Errorf("edge = %+v", e)
	}
	if e.Properties["flowRate"] != "100 kg/hr" {
		t.Errorf("flowRate = %q", e.Properties["flowRate"])
	}

	// t1_in_default resolves by pattern, it was never declared as a port.
	if len(warnings) != 1 || !strings.Contains(warnings[0], "t1_in_default") {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestResolvePortFallbacks(t *testing.T) {
	m := &model.ProcessModel{
		Steps: []model.ProcessStep{{ID: "nodeX", Type: "Reactor"}},
	}
	var warnings []string
	table := buildPortTable(m, &warnings)
	ref := resolvePort("nodeX_out_3", table, &warnings)
	if ref.node != "nodeX" || ref.handle != "3" {
		t.Errorf("pattern resolution = %+v", ref)
	}

	ref = resolvePort("mystery", table, &warnings)
	if ref.node != "mystery" || ref.handle != "" {
		t.Errorf("raw-id resolution = %+v", ref)
	}

	// Table hits warn nothing.
	ref = resolvePort("nodeX", table, &warnings)
	if ref.node != "nodeX" {
		t.Errorf("table resolution = %+v", ref)
	}

	if len(warnings) != 2 {
		t.Errorf("warnings = %v, want one per fallback", warnings)
	}
}

// Handle names may contain underscores; they must survive an export and
// re-import byte for byte.
func TestUnderscoreHandleRoundTrip(t *testing.T) {
	s := graph.Snapshot{
		Nodes: []graph.Node{
			{ID: "r1", Type: "reactor", X: 100, Y: 100},
			{ID: "t1", Type: "tank", X: 300, Y: 100},
		},
		Edges: []graph.Edge{
			{ID: "e1", Type: "stream", Source: "r1", Target: "t1",
				SourceHandle: "top_left", TargetHandle: "in_2"},
		},
	}

	doc, warnings := Export(s, ExportOptions{Mode: graph.ModeProcess, ModelID: "pm-1"})
	if len(warnings) != 0 {
		t.Fatalf("export warnings: %v", warnings)
	}
	if got := doc.Model.Connections[0].FromPort; got != "r1_out_top_left" {
		t.Errorf("from port = %q", got)
	}

	back, _, warnings := Import(doc)
	if len(warnings) != 0 {
		t.Fatalf("import warnings: %v", warnings)
	}
	e := back.Edges[0]
	if e.SourceHandle != "top_left" || e.TargetHandle != "in_2" {
		t.Errorf("handles = %q, %q, want top_left, in_2", e.SourceHandle, e.TargetHandle)
	}
}

// Declared port ids that do not encode owner and direction (legacy nozzle
// ids) stay usable as handles, but the fallback is reported.
func TestImportNozzleIDHandles(t *testing.T) {
	doc := &model.Document{
		Model: model.ProcessModel{
			DiagramType: graph.ModeProcess,
			Steps: []model.ProcessStep{
				{ID: "P1", Type: "Pump", Ports: []model.Port{
					{ID: "P101-Discharge", Direction: model.DirectionOutlet, StepID: "P1"},
				}},
				{ID: "T1", Type: "StorageTank"},
			},
			Connections: []model.ProcessConnection{
				{ID: "c1", Type: "MaterialFlow", FromPort: "P101-Discharge", ToPort: "T1"},
			},
		},
	}

	s, _, warnings := Import(doc)
	e := s.Edges[0]
	if e.Source != "P1" || e.SourceHandle != "P101-Discharge" {
		t.Errorf("edge = %+v", e)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "P101-Discharge") {
		t.Errorf("warnings = %v, want full-id handle fallback reported", warnings)
	}
}

// A connection and the ports synthesized for it must agree on the flow
// implied by the edge's class when no stream property is set.
func TestExportFlowTypeAgreement(t *testing.T) {
	s := graph.Snapshot{
		Nodes: []graph.Node{
			{ID: "ft1", Type: "instrument", X: 100, Y: 100},
			{ID: "v1", Type: "valve", X: 300, Y: 100},
		},
		Edges: []graph.Edge{
			{ID: "e1", Type: "signal", Source: "ft1", Target: "v1"},
		},
	}

	doc, warnings := Export(s, ExportOptions{Mode: graph.ModeInstrument})
	if len(warnings) != 0 {
		t.Fatalf("warnings: %v", warnings)
	}
	if got := doc.Model.Connections[0].FlowType; got != model.FlowInformation {
		t.Errorf("connection flow = %s, want information", got)
	}
	for _, step := range doc.Model.Steps {
		for _, p := range step.Ports {
			if p.FlowType != model.FlowInformation {
				t.Errorf("port %s flow = %s, want information", p.ID, p.FlowType)
			}
		}
	}
}

func TestImportExternalPorts(t *testing.T) {
	doc := &model.Document{
		Model: model.ProcessModel{
			DiagramType: graph.ModeProcess,
			ExternalPorts: []model.ExternalPort{
				{ID: "feed1", Name: "Feed", Direction: model.DirectionInlet, Layout: &model.Layout{X: 0, Y: 10}},
				{ID: "prod1", Name: "Product", Direction: model.DirectionOutlet, FlowType: model.FlowEnergy},
			},
		},
	}

	s, _, _ := Import(doc)
	if len(s.Nodes) != 2 {
		t.Fatalf("nodes = %d", len(s.Nodes))
	}
	if s.Nodes[0].Type != "feed" || s.Nodes[1].Type != "product" {
		t.Errorf("types = %q, %q", s.Nodes[0].Type, s.Nodes[1].Type)
	}
	if s.Nodes[0].Property(graph.PropDirection) != "inlet" {
		t.Errorf("direction = %q", s.Nodes[0].Property(graph.PropDirection))
	}
	if s.Nodes[1].Property(graph.PropStream) != "energy" {
		t.Errorf("stream = %q", s.Nodes[1].Property(graph.PropStream))
	}
}

func TestImportRenderProperties(t *testing.T) {
	doc := &model.Document{
		Model: model.ProcessModel{
			DiagramType: graph.ModeInstrument,
			Steps: []model.ProcessStep{
				{ID: "v1", Type: "GlobeValve"},
			},
		},
	}

	s, _, warnings := Import(doc)
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	n := s.Nodes[0]
	if n.Type != "valve" {
		t.Errorf("type = %q", n.Type)
	}
	if n.Properties[PropRenderCategory] != "valve" {
		t.Errorf("category = %q", n.Properties[PropRenderCategory])
	}
	if n.Properties[PropSymbolVariant] != "1" {
		t.Errorf("variant = %q", n.Properties[PropSymbolVariant])
	}
}

func TestImportInfersMode(t *testing.T) {
	doc := &model.Document{
		Model: model.ProcessModel{
			Steps: []model.ProcessStep{{ID: "v1", Type: "Valve"}},
		},
	}
	_, mode, warnings := Import(doc)
	if mode != graph.ModeInstrument {
		t.Errorf("mode = %s, want pid", mode)
	}
	if len(warnings) == 0 || !strings.Contains(warnings[0], "inferred") {
		t.Errorf("warnings = %v, want inference notice", warnings)
	}
}

func TestAutoLayout(t *testing.T) {
	t.Run("Grid", func(t *testing.T) {
		doc := &model.Document{
			Model: model.ProcessModel{
				DiagramType: graph.ModeBlock,
				Steps: []model.ProcessStep{
					{ID: "a", Type: "ProcessStep"}, {ID: "b", Type: "ProcessStep"},
					{ID: "c", Type: "ProcessStep"}, {ID: "d", Type: "ProcessStep"},
					{ID: "e", Type: "ProcessStep"},
				},
			},
		}
		s, _, _ := Import(doc)
		if s.Nodes[1].X != 200 || s.Nodes[1].Y != 0 {
			t.Errorf("node 1 = (%v, %v)", s.Nodes[1].X, s.Nodes[1].Y)
		}
		// Fifth node wraps to the second row.
		if s.Nodes[4].X != 0 || s.Nodes[4].Y != 150 {
			t.Errorf("node 4 = (%v, %v)", s.Nodes[4].X, s.Nodes[4].Y)
		}
	})

	t.Run("Column", func(t *testing.T) {
		doc := &model.Document{
			Model: model.ProcessModel{
				DiagramType: graph.ModeProcess,
				Steps: []model.ProcessStep{
					{ID: "a", Type: "Reactor", Layout: &model.Layout{X: 10, Y: 10, W: 8, H: 6}},
					{ID: "b", Type: "Reactor"},
					{ID: "c", Type: "Reactor"},
				},
			},
		}
		s, _, _ := Import(doc)
		// Positioned node: offset (10+5)*10 = 150, so a = (100, 50).
		a := s.Nodes[0]
		if a.X != 100 || a.Y != 50 {
			t.Fatalf("positioned node = (%v, %v)", a.X, a.Y)
		}
		// Unpositioned nodes stack beside the bounding box of positioned ones.
		wantX := a.X + 200
		if s.Nodes[1].X != wantX || s.Nodes[1].Y != a.Y {
			t.Errorf("node b = (%v, %v), want (%v, %v)", s.Nodes[1].X, s.Nodes[1].Y, wantX, a.Y)
		}
		if s.Nodes[2].Y != a.Y+150 {
			t.Errorf("node c y = %v, want stacked", s.Nodes[2].Y)
		}
	})
}

// Export then import must preserve element types, labels, and connectivity.
func TestRoundTrip(t *testing.T) {
	snapshot := sampleSnapshot()
	doc, warnings := Export(snapshot, ExportOptions{Mode: graph.ModeProcess, ModelID: "pm-1"})
	if len(warnings) != 0 {
		t.Fatalf("export warnings: %v", warnings)
	}

	back, mode, warnings := Import(doc)
	if mode != graph.ModeProcess {
		t.Errorf("mode = %s", mode)
	}
	if len(warnings) != 0 {
		t.Errorf("import warnings: %v", warnings)
	}

	if len(back.Nodes) != len(snapshot.Nodes) || len(back.Edges) != len(snapshot.Edges) {
		t.Fatalf("shape = %d nodes, %d edges", len(back.Nodes), len(back.Edges))
	}
	for i, n := range back.Nodes {
		if n.ID != snapshot.Nodes[i].ID || n.Type != snapshot.Nodes[i].Type || n.Label != snapshot.Nodes[i].Label {
			t.Errorf("node %d = %+v, want %+v", i, n, snapshot.Nodes[i])
		}
	}
	e, orig := back.Edges[0], snapshot.Edges[0]
	if e.Source != orig.Source || e.Target != orig.Target || e.Type != orig.Type || e.Label != orig.Label {
		t.Errorf("edge = %+v, want %+v", e, orig)
	}
	if e.SourceHandle != "" || e.TargetHandle != "" {
		t.Errorf("handles = %q, %q", e.SourceHandle, e.TargetHandle)
	}
	if e.Properties["flowRate"] != "100 kg/hr" {
		t.Errorf("flowRate = %q", e.Properties["flowRate"])
	}
}
