package cmd

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/ardanlabs/provenance/foundation/generator"
	"github.com/spf13/cobra"
)

var (
	products int
	seed     int64
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Print synthetic supply chain transactions as JSON.",
	Run:   generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().IntVarP(&products, "products", "n", 5, "Number of products to generate.")
	generateCmd.Flags().Int64VarP(&seed, "seed", "s", 0, "Seed for the generator, 0 uses the current time.")
}

func generateRun(cmd *cobra.Command, args []string) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	trans := generator.New(seed).Products(products)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(trans); err != nil {
		log.Fatal(err)
	}
}
