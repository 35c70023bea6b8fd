package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/poiesic/grag/core"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("invalid format %q: must be one of text, json, yaml", format)
	}
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("format %q is not structured", format)
	}
}

// writeResults renders a ranked result list.
func writeResults(w io.Writer, format string, results []*core.SearchResult) error {
	if format != formatText {
		return writeStructured(w, format, results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No results")
		return nil
	}

	title := color.New(color.Bold)
	score := color.New(color.FgGreen)
	faint := color.New(color.Faint)

	for i, r := range results {
		fmt.Fprintf(w, "%2d. %s %s %s\n", i+1, score.Sprintf("[%.3f]", r.Score), title.Sprint(r.NodeID), r.Text)
		if r.RichText != "" {
			fmt.Fprintf(w, "    %s\n", truncate(r.RichText, 120))
		}

		ctx := r.GraphContext
		if ctx.SeedNode != "" {
			fmt.Fprintln(w, faint.Sprintf("    seed=%s hop=%d subgraph=%.3f similarity=%.3f",
				ctx.SeedNode, ctx.HopDistance, ctx.SubgraphScore, ctx.LocalSimilarity))
		}
		for _, n := range ctx.Neighbors {
			fmt.Fprintln(w, faint.Sprintf("    - %s (%s)", n.NodeID, strings.Join(n.Relations, ", ")))
		}
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
