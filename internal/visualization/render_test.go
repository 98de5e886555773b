package visualization

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nvandessel/neurosim/internal/engine"
	"github.com/nvandessel/neurosim/internal/network"
)

// newTestEngine builds a small unwired engine with a handful of edges.
func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e, err := engine.New(engine.DefaultParams().Quiet(), engine.WithSeed(1), engine.WithoutWiring())
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	edges := []struct {
		from, to int
		w        float64
	}{
		{0, 250, 0.4},
		{250, 300, 0.3},
		{700, 200, -0.5},
		{425, 200, 0.01},
	}
	for _, ed := range edges {
		if _, err := e.AddConnection(ed.from, ed.to, ed.w); err != nil {
			t.Fatalf("AddConnection: %v", err)
		}
	}
	return e
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"dot", FormatDOT, false},
		{"JSON", FormatJSON, false},
		{"html", FormatHTML, false},
		{"svg", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestRenderDOT(t *testing.T) {
	e := newTestEngine(t)
	dot := RenderDOT(e.Snapshot(), DOTOptions{})

	for _, want := range []string{
		"digraph neurosim {",
		"subgraph cluster_sensory {",
		"subgraph cluster_inhibitory {",
		"n0 -> n250",
		"n700 -> n200 [style=dashed, color=red",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q", want)
		}
	}
	if !strings.HasSuffix(dot, "}\n") {
		t.Error("DOT output not closed")
	}
}

func TestRenderDOT_Filters(t *testing.T) {
	e := newTestEngine(t)

	dot := RenderDOT(e.Snapshot(), DOTOptions{MinWeight: 0.1})
	if strings.Contains(dot, "n425 -> n200") {
		t.Error("weak edge not filtered")
	}
	if !strings.Contains(dot, "n700 -> n200") {
		t.Error("strong inhibitory edge filtered by magnitude")
	}

	dot = RenderDOT(e.Snapshot(), DOTOptions{Roles: []network.Role{network.RoleFeatureEdge, network.RoleFeatureAngle}})
	if strings.Contains(dot, "cluster_sensory") || strings.Contains(dot, "n0 -> n250") {
		t.Error("role filter kept sensory nodes")
	}
	if !strings.Contains(dot, "n250 -> n300") {
		t.Error("role filter dropped feature edge")
	}
}

func TestRenderDOT_ConceptLabels(t *testing.T) {
	e, err := engine.New(engine.DefaultParams().Quiet(), engine.WithSeed(1))
	if err != nil {
		t.Fatal(err)
	}
	dot := RenderDOT(e.Snapshot(), DOTOptions{Roles: []network.Role{network.RoleConcept}})
	if !strings.Contains(dot, `n425 [label="CIRCLE"`) {
		t.Error("canonical concept not labelled")
	}
	if !strings.Contains(dot, `n426 [label="426"`) {
		t.Error("unlabelled concept should show its id")
	}
}

func TestRenderJSON(t *testing.T) {
	e := newTestEngine(t)
	graph := RenderJSON(e.Snapshot(), e.Patterns())

	data, err := json.Marshal(graph)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Nodes []struct {
			ID   int    `json:"id"`
			Role string `json:"role"`
		} `json:"nodes"`
		Edges    []map[string]any `json:"edges"`
		Patterns []any            `json:"patterns"`
		Roles    map[string]int   `json:"roles"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded.Nodes) != 800 || len(decoded.Edges) != 4 {
		t.Errorf("nodes = %d, edges = %d", len(decoded.Nodes), len(decoded.Edges))
	}
	if decoded.Patterns == nil {
		t.Error("patterns should be an empty array, not null")
	}
	if decoded.Roles["SENSORY"] != 200 || decoded.Roles["CONCEPT"] != 50 {
		t.Errorf("role counts = %v", decoded.Roles)
	}
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML("neurosim", "http://localhost:1234")
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	s := string(html)
	if !strings.Contains(s, "<title>neurosim</title>") {
		t.Error("missing title")
	}
	if !strings.Contains(s, `"http://localhost:1234"`) {
		t.Error("API base URL not injected as a JS string")
	}
	if !strings.Contains(s, `"SENSORY"`) {
		t.Error("role colors not injected")
	}
}
