package cmd

import (
	"fmt"
	"log"
	"net/http"
	neturl "net/url"
	"time"

	"github.com/ardanlabs/provenance/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <product-id>",
	Short: "Print the chronological history of a product.",
	Args:  cobra.ExactArgs(1),
	Run:   historyRun,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func historyRun(cmd *cobra.Command, args []string) {
	var resp struct {
		History []database.HistoryEntry `json:"history"`
	}

	path := "/v1/product/" + neturl.PathEscape(args[0])
	if err := newClient(url, timeout).do(cmd.Context(), http.MethodGet, path, nil, &resp); err != nil {
		log.Fatal(err)
	}

	if len(resp.History) == 0 {
		fmt.Println("no history for", args[0])
		return
	}

	for _, e := range resp.History {
		at := time.Unix(0, int64(e.Timestamp*float64(time.Second))).UTC()
		fmt.Printf("%s  block[%d]  %-24s %s -> %s\n", at.Format(time.DateTime), e.BlockIndex, e.Status, e.From, e.To)
	}
}
