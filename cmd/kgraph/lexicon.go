package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kgraphdev/kgraph/lexicon"
)

var (
	lexiconDB  string
	lexiconDim int
)

var lexiconCmd = &cobra.Command{
	Use:   "lexicon",
	Short: "Manage the embedding lexicon used for semantic similarity",
}

var lexiconImportCmd = &cobra.Command{
	Use:   "import [vectors.json]",
	Short: "Load term vectors from a JSON file into the lexicon",
	Long: `Import reads a JSON object mapping terms to float vectors and stores
them in the lexicon database. All vectors must match --dim.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading vectors: %w", err)
		}
		var vectors map[string][]float32
		if err := json.Unmarshal(data, &vectors); err != nil {
			return fmt.Errorf("parsing vectors: %w", err)
		}

		lex, err := lexicon.New(lexiconDB, lexiconDim)
		if err != nil {
			return err
		}
		defer lex.Close()

		ctx := cmd.Context()
		for term, vec := range vectors {
			if err := lex.Put(ctx, term, vec); err != nil {
				return err
			}
		}
		slog.Info("lexicon updated", "db", lexiconDB, "terms", len(vectors))
		return nil
	},
}

var lexiconNearestCmd = &cobra.Command{
	Use:   "nearest [term]",
	Short: "Show the stored terms closest to a term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lex, err := lexicon.New(lexiconDB, lexiconDim)
		if err != nil {
			return err
		}
		defer lex.Close()

		matches, err := lex.Nearest(cmd.Context(), args[0], 10)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, m := range matches {
			fmt.Fprintf(out, "%-24s %.4f\n", m.Term, m.Distance)
		}
		return nil
	},
}

func init() {
	pf := lexiconCmd.PersistentFlags()
	pf.StringVar(&lexiconDB, "db", "lexicon.db", "lexicon database path")
	pf.IntVar(&lexiconDim, "dim", 768, "embedding dimension")
	lexiconCmd.AddCommand(lexiconImportCmd, lexiconNearestCmd)
	rootCmd.AddCommand(lexiconCmd)
}
