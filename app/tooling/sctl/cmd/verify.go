package cmd

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the integrity of the ledger.",
	Run:   verifyRun,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func verifyRun(cmd *cobra.Command, args []string) {
	var resp struct {
		Valid      bool `json:"valid"`
		Length     int  `json:"length"`
		Violations []struct {
			Index  uint64 `json:"index"`
			Reason string `json:"reason"`
		} `json:"violations"`
	}

	if err := newClient(url, timeout).do(cmd.Context(), http.MethodGet, "/v1/chain/verify", nil, &resp); err != nil {
		log.Fatal(err)
	}

	if resp.Valid {
		fmt.Printf("ledger intact: %d blocks\n", resp.Length)
		return
	}

	for _, v := range resp.Violations {
		fmt.Printf("block %d: %s\n", v.Index, v.Reason)
	}
	os.Exit(1)
}
