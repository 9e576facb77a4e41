package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/ardanlabs/provenance/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the blocks of the ledger.",
	Run:   chainRun,
}

func init() {
	rootCmd.AddCommand(chainCmd)
}

func chainRun(cmd *cobra.Command, args []string) {
	var chain struct {
		Chain  []database.Block `json:"chain"`
		Length int              `json:"length"`
	}

	if err := newClient(url, timeout).do(cmd.Context(), http.MethodGet, "/v1/chain", nil, &chain); err != nil {
		log.Fatal(err)
	}

	for _, block := range chain.Chain {
		fmt.Printf("block %d: txs[%d] prev[%s] hash[%s]\n", block.Index, len(block.Transactions), block.PrevHash, block.Hash)
	}
	fmt.Println("length:", chain.Length)
}
