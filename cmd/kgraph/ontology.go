package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kgraphdev/kgraph/ontology"
)

var ontologyOut string

var ontologyCmd = &cobra.Command{
	Use:   "ontology",
	Short: "Inspect and export ontologies",
}

var ontologyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the built-in ontology to a file",
	Long:  `Export writes the built-in ontology as YAML or JSON, as a starting point for a custom one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ontology.Default().Export(ontologyOut); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ontology written to", ontologyOut)
		return nil
	},
}

var ontologyShowCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "List the types of an ontology file, or the built-in one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := ontology.Default()
		if len(args) == 1 {
			loaded, err := ontology.Load(args[0])
			if err != nil {
				return err
			}
			reg = loaded
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "entity types:")
		for _, name := range reg.EntityTypeNames() {
			et, _ := reg.EntityType(name)
			fmt.Fprintf(out, "  %-16s %s\n", name, et.Description)
		}
		fmt.Fprintln(out, "relation types:")
		for _, name := range reg.RelationTypeNames() {
			rt, _ := reg.RelationType(name)
			fmt.Fprintf(out, "  %-16s %v -> %v\n", name, rt.Domain, rt.Range)
		}
		return nil
	},
}

func init() {
	ontologyExportCmd.Flags().StringVarP(&ontologyOut, "out", "o", "ontology.yaml", "output path")
	ontologyCmd.AddCommand(ontologyExportCmd, ontologyShowCmd)
	rootCmd.AddCommand(ontologyCmd)
}
