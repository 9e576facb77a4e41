package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ardanlabs/provenance/app/services/tracer/handlers"
	"github.com/ardanlabs/provenance/foundation/blockchain/state"
	"github.com/ardanlabs/provenance/foundation/events"
	"github.com/ardanlabs/provenance/foundation/generator"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestPopulate(t *testing.T) {
	t.Log("Given the need to feed generated data through the service.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen populating 2 products in batches of 5.", testID)
		{
			st, err := state.New(state.Config{})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the state: %v", failed, testID, err)
			}

			srv := httptest.NewServer(handlers.PublicMux(handlers.MuxConfig{
				Shutdown: make(chan os.Signal, 1),
				Log:      zap.NewNop().Sugar(),
				State:    st,
				Evts:     events.New(),
			}))
			defer srv.Close()

			trans := generator.New(3).Products(2)

			var out bytes.Buffer
			sum := populate(context.Background(), newClient(srv.URL, 5*time.Second), trans, 5, 0, &out)

			if sum.Added != len(trans) || sum.Failed != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould add every transaction: %+v\n%s", failed, testID, sum, out.String())
			}
			t.Logf("\t%s\tTest %d:\tShould add every transaction.", success, testID)

			// 14 transactions in batches of 5 is 3 blocks.
			if sum.Blocks != 3 || len(st.RetrieveChain()) != 4 {
				t.Fatalf("\t%s\tTest %d:\tShould mine 3 blocks: %+v", failed, testID, sum)
			}
			t.Logf("\t%s\tTest %d:\tShould mine 3 blocks.", success, testID)

			history := st.QueryProductHistory(trans[0].ProductID)
			if len(history) != len(generator.StatusFlow) {
				t.Fatalf("\t%s\tTest %d:\tShould have the full journey of the product, got %d.", failed, testID, len(history))
			}
			for i, e := range history {
				if e.Status != generator.StatusFlow[i] {
					t.Fatalf("\t%s\tTest %d:\tShould follow the status flow, got %s at %d.", failed, testID, e.Status, i)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould have the full journey of the product.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the service is not reachable.", testID)
		{
			trans := generator.New(3).Products(1)

			var out bytes.Buffer
			sum := populate(context.Background(), newClient("http://127.0.0.1:1", time.Second), trans, 5, 0, &out)

			if sum.Added != 0 || sum.Failed != len(trans) || sum.Blocks != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould count every transaction as failed: %+v", failed, testID, sum)
			}
			t.Logf("\t%s\tTest %d:\tShould count every transaction as failed.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a mine request fails part way.", testID)
		{
			st, err := state.New(state.Config{})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the state: %v", failed, testID, err)
			}

			app := handlers.PublicMux(handlers.MuxConfig{
				Shutdown: make(chan os.Signal, 1),
				Log:      zap.NewNop().Sugar(),
				State:    st,
				Evts:     events.New(),
			})

			// Reject the first mine so its batch stays pending.
			var mines atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/v1/mine" {
					if mines.Add(1) == 1 {
						http.Error(w, `{"error":"unavailable"}`, http.StatusServiceUnavailable)
						return
					}
				}
				app.ServeHTTP(w, r)
			}))
			defer srv.Close()

			trans := generator.New(3).Products(2)

			var out bytes.Buffer
			sum := populate(context.Background(), newClient(srv.URL, 5*time.Second), trans, 5, 0, &out)

			if sum.Added != len(trans) || sum.Failed != 0 || sum.Pending != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould report every transaction as sealed: %+v\n%s", failed, testID, sum, out.String())
			}
			t.Logf("\t%s\tTest %d:\tShould report every transaction as sealed.", success, testID)

			// The second block carries the first batch along with its own.
			chain := st.RetrieveChain()
			if sum.Blocks != 2 || len(chain) != 3 || len(chain[1].Transactions) != 10 {
				t.Fatalf("\t%s\tTest %d:\tShould seal the stranded batch with the next block: %+v\n%s", failed, testID, sum, out.String())
			}
			if !strings.Contains(out.String(), "Mined block 1 with 10 transactions") {
				t.Fatalf("\t%s\tTest %d:\tShould print the sealed count:\n%s", failed, testID, out.String())
			}
			t.Logf("\t%s\tTest %d:\tShould seal the stranded batch with the next block.", success, testID)
		}
	}
}
