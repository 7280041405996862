package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verdant-bio/taxon-cli/internal/report"
	"github.com/verdant-bio/taxon-cli/internal/species"
)

var namesCmd = &cobra.Command{
	Use:   "names <species.csv> <output.txt>",
	Short: "Generate a species-names file for coverage analysis",
	Long:  "Extracts the unique accepted names from the species table and writes them sorted, one per line, in the format the coverage tooling expects.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := species.Load(args[0])
		if err != nil {
			return err
		}

		count, err := report.WriteSpeciesNames(args[1], records)
		if err != nil {
			return err
		}

		fmt.Printf("Wrote %d species names to %s\n", count, args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(namesCmd)
}
