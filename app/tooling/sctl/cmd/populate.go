package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/ardanlabs/provenance/foundation/blockchain/database"
	"github.com/ardanlabs/provenance/foundation/generator"
	"github.com/spf13/cobra"
)

var (
	batchSize int
	pause     time.Duration
)

var populateCmd = &cobra.Command{
	Use:   "populate",
	Short: "Feed synthetic supply chain data through the service.",
	Run:   populateRun,
}

func init() {
	rootCmd.AddCommand(populateCmd)
	populateCmd.Flags().IntVarP(&products, "products", "n", 5, "Number of products to generate.")
	populateCmd.Flags().Int64VarP(&seed, "seed", "s", 0, "Seed for the generator, 0 uses the current time.")
	populateCmd.Flags().IntVarP(&batchSize, "batch", "b", 5, "Transactions submitted before each mine.")
	populateCmd.Flags().DurationVar(&pause, "pause", 0, "Pause between blocks.")
}

func populateRun(cmd *cobra.Command, args []string) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	trans := generator.New(seed).Products(products)
	if len(trans) > 0 {
		first := time.Unix(0, int64(trans[0].Timestamp*float64(time.Second)))
		last := time.Unix(0, int64(trans[len(trans)-1].Timestamp*float64(time.Second)))
		fmt.Printf("Generated %d transactions spanning %s\n", len(trans), last.Sub(first).Round(time.Minute))
	}

	c := newClient(url, timeout)
	if err := c.do(cmd.Context(), http.MethodGet, "/", nil, nil); err != nil {
		log.Fatalf("could not connect to the tracer service at %s: %s", url, err)
	}

	sum := populate(cmd.Context(), c, trans, batchSize, pause, os.Stdout)

	fmt.Println()
	fmt.Println("Population completed")
	fmt.Println("Successfully added:", sum.Added)
	fmt.Println("Failed to add     :", sum.Failed)
	fmt.Println("Blocks mined      :", sum.Blocks)
	fmt.Println("Still pending     :", sum.Pending)
}

// =============================================================================

// summary reports the outcome of a population run. Added counts the
// transactions sealed into blocks mined by this run.
type summary struct {
	Added   int
	Failed  int
	Blocks  int
	Pending int
}

// populate submits the transactions in batches and asks the service to mine
// after each batch. Transactions of a batch that fails to mine stay pending
// on the service and are sealed by the next successful mine.
func populate(ctx context.Context, c *client, trans []database.Transaction, batch int, pause time.Duration, w io.Writer) summary {
	if batch <= 0 {
		batch = 1
	}

	var sum summary
	var submitted int
	for start := 0; start < len(trans); start += batch {
		end := min(start+batch, len(trans))

		for _, tx := range trans[start:end] {
			if err := c.do(ctx, http.MethodPost, "/v1/transactions/new", tx, nil); err != nil {
				fmt.Fprintf(w, "Failed to add transaction: %s\n", err)
				sum.Failed++
				continue
			}

			fmt.Fprintf(w, "Added: %s - %s\n", tx.ProductID, tx.Status)
			submitted++
		}

		var mined struct {
			BlockIndex   uint64            `json:"block_index"`
			Hash         string            `json:"hash"`
			Transactions []json.RawMessage `json:"transactions"`
		}
		if err := c.do(ctx, http.MethodPost, "/v1/mine", nil, &mined); err != nil {
			fmt.Fprintf(w, "Failed to mine block: %s\n", err)
			continue
		}

		fmt.Fprintf(w, "Mined block %d with %d transactions: %s\n", mined.BlockIndex, len(mined.Transactions), mined.Hash)
		sum.Added += len(mined.Transactions)
		sum.Blocks++

		if pause > 0 {
			time.Sleep(pause)
		}
	}

	sum.Pending = max(submitted-sum.Added, 0)

	return sum
}
