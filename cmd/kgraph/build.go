package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	kgraph "github.com/kgraphdev/kgraph"
	"github.com/kgraphdev/kgraph/graph"
	"github.com/kgraphdev/kgraph/lexicon"
	"github.com/kgraphdev/kgraph/ontology"
)

var (
	buildOut        string
	buildFormat     string
	buildOntology   string
	buildLexicon    string
	buildLexiconDim int
	buildReport     string
)

var buildCmd = &cobra.Command{
	Use:   "build [files...]",
	Short: "Build a knowledge graph from document files",
	Long: `Build parses the given files (txt, md, pdf, xlsx), runs the pipeline
and writes the graph in the chosen format.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringVarP(&buildOut, "out", "o", "graph.json", "output path")
	f.StringVarP(&buildFormat, "format", "f", "", "output format: json, dot, xlsx (default from extension)")
	f.StringVar(&buildOntology, "ontology", "", "ontology file (YAML or JSON); default built-in")
	f.StringVar(&buildLexicon, "lexicon", "", "embedding lexicon database for semantic similarity")
	f.IntVar(&buildLexiconDim, "lexicon-dim", 768, "embedding dimension of the lexicon")
	f.StringVar(&buildReport, "report", "", "also write the run report as JSON to this path")

	f.Int("max-nodes", 0, "cap graph size, dropping lowest-degree nodes")
	f.Int("concurrency", 0, "parallel document workers")
	f.Float64("entity-fusion-threshold", 0, "override fusion.entity_fusion_threshold")
	viper.BindPFlag("visualization.max_nodes", f.Lookup("max-nodes"))
	viper.BindPFlag("concurrency", f.Lookup("concurrency"))
	viper.BindPFlag("fusion.entity_fusion_threshold", f.Lookup("entity-fusion-threshold"))

	rootCmd.AddCommand(buildCmd)
}

func pipelineConfig() (kgraph.Config, error) {
	cfg := kgraph.DefaultConfig()

	if file := viper.ConfigFileUsed(); file != "" {
		loaded, err := kgraph.LoadConfig(file)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	// Flag and environment overrides; zero means unset.
	if v := viper.GetInt("concurrency"); v > 0 {
		cfg.Concurrency = v
	}
	if v := viper.GetInt("visualization.max_nodes"); v > 0 {
		cfg.Visualization.MaxNodes = v
	}
	if v := viper.GetFloat64("fusion.entity_fusion_threshold"); v > 0 {
		cfg.Fusion.EntityFusionThreshold = v
	}
	return cfg, cfg.Validate()
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	opts := []kgraph.Option{}
	if buildOntology != "" {
		reg, err := ontology.Load(buildOntology)
		if err != nil {
			return err
		}
		opts = append(opts, kgraph.WithOntology(reg))
	}
	if buildLexicon != "" {
		lex, err := lexicon.New(buildLexicon, buildLexiconDim)
		if err != nil {
			return err
		}
		defer lex.Close()
		opts = append(opts, kgraph.WithSemanticScorer(lex))
	}
	opts = append(opts, kgraph.WithProgress(func(p kgraph.Progress) {
		slog.Debug("progress", "stage", p.Stage,
			"stages", fmt.Sprintf("%d/%d", p.StagesDone, p.StagesTotal),
			"items", fmt.Sprintf("%d/%d", p.ItemsDone, p.ItemsTotal))
	}))

	pipe, err := kgraph.New(cfg, opts...)
	if err != nil {
		return err
	}

	g, report, err := pipe.RunFiles(cmd.Context(), args)
	if err != nil {
		return err
	}

	if err := writeGraph(outputFormat(), g); err != nil {
		return err
	}

	if buildReport != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		if err := os.WriteFile(buildReport, data, 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}

	slog.Info("graph written",
		"path", buildOut,
		"entities", g.Statistics.EntityCount,
		"relations", g.Statistics.RelationCount,
		"skipped_documents", len(report.DocumentFailures))
	return nil
}

// outputFormat derives the output format from the flag or, failing
// that, the output path's extension.
func outputFormat() string {
	if buildFormat != "" {
		return strings.ToLower(buildFormat)
	}
	switch strings.ToLower(filepath.Ext(buildOut)) {
	case ".dot", ".gv":
		return "dot"
	case ".xlsx":
		return "xlsx"
	default:
		return "json"
	}
}

func writeGraph(format string, g *graph.KnowledgeGraph) error {
	switch format {
	case "json":
		f, err := os.Create(buildOut)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		return g.WriteJSON(f)
	case "dot":
		f, err := os.Create(buildOut)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		return g.WriteDOT(f)
	case "xlsx":
		return g.ExportXLSX(buildOut)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
