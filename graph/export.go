package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// WriteJSON writes the graph as indented JSON.
func (g *KnowledgeGraph) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encoding graph: %w", err)
	}
	return nil
}

// WriteDOT writes the graph in Graphviz DOT format. Nodes are
// labelled with name and type, edges with the relation type.
func (g *KnowledgeGraph) WriteDOT(w io.Writer) error {
	var b strings.Builder
	b.WriteString("digraph knowledge_graph {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=rounded];\n")

	for _, e := range g.Entities {
		fmt.Fprintf(&b, "  %q [label=%q];\n", e.ID, e.Name+"\n("+e.Type+")")
	}
	for _, r := range g.Relations {
		fmt.Fprintf(&b, "  %q -> %q [label=%q];\n", r.Source, r.Target, r.Type)
	}
	b.WriteString("}\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing dot: %w", err)
	}
	return nil
}

// ExportXLSX writes the graph to an Excel workbook with one sheet of
// entities and one of relations.
func (g *KnowledgeGraph) ExportXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const entitySheet = "Entities"
	f.SetSheetName("Sheet1", entitySheet)
	headers := []string{"ID", "Name", "Type", "Aliases", "Mentions", "Provenance"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(entitySheet, cell, h)
	}
	for row, e := range g.Entities {
		values := []interface{}{
			e.ID, e.Name, e.Type,
			strings.Join(e.Aliases, ", "),
			e.Mentions,
			strings.Join(e.Provenance, ", "),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(entitySheet, cell, v)
		}
	}

	const relationSheet = "Relations"
	if _, err := f.NewSheet(relationSheet); err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	headers = []string{"ID", "Type", "Source", "Target", "Confidence", "Provenance"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(relationSheet, cell, h)
	}
	for row, r := range g.Relations {
		values := []interface{}{
			r.ID, r.Type, r.Source, r.Target, r.Confidence,
			strings.Join(r.Provenance, ", "),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(relationSheet, cell, v)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}
