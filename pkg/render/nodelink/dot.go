package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/blockseg/pkg/render"
)

// Options configures region diagram rendering.
type Options struct {
	// Detailed adds block counts to node labels and scores to edges.
	Detailed bool

	// MinScore hides edges whose score is below it.
	MinScore float64
}

// ToDOT converts a region graph to Graphviz DOT source.
func ToDOT(rg *render.RegionGraph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, r := range rg.Regions {
		attrs := []string{
			fmt.Sprintf("label=%q", fmtLabel(r, opts.Detailed)),
			fmt.Sprintf("fillcolor=%q", r.Hex),
			fmt.Sprintf("fontcolor=%q", fontColor(r)),
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(r.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range rg.Edges {
		if e.Score < opts.MinScore {
			continue
		}
		if opts.Detailed {
			fmt.Fprintf(&buf, "  %q -- %q [label=%q];\n", nodeID(e.From), nodeID(e.To), strconv.FormatFloat(e.Score, 'f', 4, 64))
		} else {
			fmt.Fprintf(&buf, "  %q -- %q;\n", nodeID(e.From), nodeID(e.To))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(id int) string {
	return fmt.Sprintf("R%d", id)
}

func fmtLabel(r render.Region, detailed bool) string {
	if !detailed {
		return nodeID(r.ID)
	}
	return fmt.Sprintf("%s\n%s\nblocks: %d", nodeID(r.ID), r.Hex, len(r.Blocks))
}

// fontColor picks black or white text for legibility on the fill color.
func fontColor(r render.Region) string {
	luma := 0.299*float64(r.Color.R) + 0.587*float64(r.Color.G) + 0.114*float64(r.Color.B)
	if luma > 140 {
		return "black"
	}
	return "white"
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
