// Package visualization renders simulation snapshots for external viewers
// and serves them, together with the pointer gesture endpoints, over HTTP.
package visualization

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/nvandessel/neurosim/internal/engine"
	"github.com/nvandessel/neurosim/internal/memory"
	"github.com/nvandessel/neurosim/internal/network"
)

// Format specifies the output format for graph rendering.
type Format string

const (
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatDOT, FormatJSON, FormatHTML:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (valid: dot, json, html)", s)
}

// roleColors maps roles to DOT and canvas colors.
var roleColors = map[network.Role]string{
	network.RoleSensory:      "#4f9dde",
	network.RoleMotor:        "#f2a541",
	network.RoleFeatureEdge:  "#6cc070",
	network.RoleFeatureAngle: "#3f8f4a",
	network.RoleAssociation:  "#9a7fd1",
	network.RoleMemory:       "#c678dd",
	network.RoleConcept:      "#e06c75",
	network.RoleInhibitory:   "#7f848e",
}

func colorOf(r network.Role) string {
	if c, ok := roleColors[r]; ok {
		return c
	}
	return "lightgray"
}

// DOTOptions filters what RenderDOT emits.
type DOTOptions struct {
	// Roles limits nodes (and edges between them) to these roles. Empty
	// means every role.
	Roles []network.Role

	// MinWeight drops edges whose absolute weight is below it.
	MinWeight float64
}

func (o DOTOptions) includes(r network.Role) bool {
	if len(o.Roles) == 0 {
		return true
	}
	for _, want := range o.Roles {
		if want == r {
			return true
		}
	}
	return false
}

// RenderDOT produces a Graphviz DOT representation of a snapshot. Each role
// is a cluster; inhibitory edges are dashed and red.
func RenderDOT(snap engine.Snapshot, opts DOTOptions) string {
	var b strings.Builder
	b.WriteString("digraph neurosim {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=circle, style=filled, fontname=\"Helvetica\", fontsize=8, width=0.3];\n")
	b.WriteString("  edge [arrowsize=0.4];\n\n")

	byRole := make(map[network.Role][]engine.NeuronView)
	for _, n := range snap.Neurons {
		if opts.includes(n.Role) {
			byRole[n.Role] = append(byRole[n.Role], n)
		}
	}

	for _, role := range network.Roles {
		nodes := byRole[role]
		if len(nodes) == 0 {
			continue
		}
		fmt.Fprintf(&b, "  subgraph cluster_%s {\n", strings.ToLower(role.String()))
		fmt.Fprintf(&b, "    label=%q;\n", role.String())
		for _, n := range nodes {
			label := fmt.Sprintf("%d", n.ID)
			if n.Label != role.String() {
				label = n.Label
			}
			fmt.Fprintf(&b, "    n%d [label=%q, fillcolor=%q, tooltip=\"potential=%.3f\"];\n",
				n.ID, label, colorOf(role), n.Potential)
		}
		b.WriteString("  }\n")
	}
	b.WriteString("\n")

	for _, c := range snap.Connections {
		if c.Weight < opts.MinWeight && -c.Weight < opts.MinWeight {
			continue
		}
		if c.From >= len(snap.Neurons) || c.To >= len(snap.Neurons) {
			continue
		}
		if !opts.includes(snap.Neurons[c.From].Role) || !opts.includes(snap.Neurons[c.To].Role) {
			continue
		}
		style := "solid"
		color := "gray40"
		if c.Weight < 0 {
			style, color = "dashed", "red"
		}
		fmt.Fprintf(&b, "  n%d -> n%d [style=%s, color=%s, weight=\"%.2f\"];\n",
			c.From, c.To, style, color, c.Weight)
	}

	b.WriteString("}\n")
	return b.String()
}

// RenderJSON produces a JSON-ready graph with nodes, edges, patterns and
// per-role counts.
func RenderJSON(snap engine.Snapshot, patterns []memory.Pattern) map[string]any {
	nodes := make([]map[string]any, 0, len(snap.Neurons))
	roleCounts := make(map[string]int)
	for _, n := range snap.Neurons {
		roleCounts[n.Role.String()]++
		nodes = append(nodes, map[string]any{
			"id":        n.ID,
			"role":      n.Role.String(),
			"label":     n.Label,
			"x":         n.Position.X(),
			"y":         n.Position.Y(),
			"z":         n.Position.Z(),
			"potential": n.Potential,
		})
	}

	edges := make([]map[string]any, 0, len(snap.Connections))
	for _, c := range snap.Connections {
		edges = append(edges, map[string]any{
			"source":   c.From,
			"target":   c.To,
			"weight":   c.Weight,
			"activity": c.Activity,
		})
	}

	if patterns == nil {
		patterns = []memory.Pattern{}
	}
	return map[string]any{
		"tick":     snap.Tick,
		"nodes":    nodes,
		"edges":    edges,
		"patterns": patterns,
		"roles":    roleCounts,
	}
}

// RenderHTML renders the canvas viewer that polls apiBaseURL.
func RenderHTML(title, apiBaseURL string) ([]byte, error) {
	tmpl, err := template.ParseFS(templates, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	colors := make(map[string]string, len(roleColors))
	for r, c := range roleColors {
		colors[r.String()] = c
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]any{
		"Title":      title,
		"APIBaseURL": apiBaseURL,
		"RoleColors": colors,
	})
	if err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}
	return buf.Bytes(), nil
}
