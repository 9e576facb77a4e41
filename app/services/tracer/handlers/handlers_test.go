package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/provenance/app/services/tracer/handlers"
	"github.com/ardanlabs/provenance/business/web/errs"
	"github.com/ardanlabs/provenance/foundation/blockchain/merkle"
	"github.com/ardanlabs/provenance/foundation/blockchain/state"
	"github.com/ardanlabs/provenance/foundation/events"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// tracerTests holds methods for each tracer subtest. This type allows
// passing dependencies for tests while still providing a convenient syntax
// when subtests are registered.
type tracerTests struct {
	app http.Handler
}

func TestTracer(t *testing.T) {
	st, err := state.New(state.Config{})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %v", err)
	}

	tests := tracerTests{
		app: handlers.PublicMux(handlers.MuxConfig{
			Shutdown: make(chan os.Signal, 1),
			Log:      zap.NewNop().Sugar(),
			State:    st,
			Evts:     events.New(),
		}),
	}

	t.Run("mineEmpty", tests.mineEmpty)
	t.Run("submitInvalid", tests.submitInvalid)
	t.Run("scenario", tests.scenario)
	t.Run("notFound", tests.notFound)
}

func (tt *tracerTests) do(method string, path string, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}

	w := httptest.NewRecorder()
	tt.app.ServeHTTP(w, r)

	return w
}

func (tt *tracerTests) mineEmpty(t *testing.T) {
	t.Log("Given the need to reject mining with nothing pending.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen calling mine on an empty pool.", testID)
		{
			w := tt.do(http.MethodGet, "/v1/mine", "")

			if w.Code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest %d:\tShould receive a status code of 400, got %d.", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould receive a status code of 400.", success, testID)

			var resp errs.Response
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil || resp.Error != state.ErrNoTransactions.Error() {
				t.Fatalf("\t%s\tTest %d:\tShould get the no transactions message: %v %+v", failed, testID, err, resp)
			}
			t.Logf("\t%s\tTest %d:\tShould get the no transactions message.", success, testID)
		}
	}
}

func (tt *tracerTests) submitInvalid(t *testing.T) {
	t.Log("Given the need to validate submitted transactions.")
	{
		tests := []struct {
			name   string
			body   string
			fields int
		}{
			{name: "missing", body: `{"product_id":"P1","to":"B","status":"manufactured"}`, fields: 1},
			{name: "empty", body: `{}`, fields: 4},
			{name: "malformed", body: `{"product_id":`, fields: 0},
		}

		for testID, tst := range tests {
			t.Logf("\tTest %d:\tWhen submitting a %s transaction.", testID, tst.name)
			{
				w := tt.do(http.MethodPost, "/v1/transactions/new", tst.body)

				if w.Code != http.StatusBadRequest {
					t.Fatalf("\t%s\tTest %d:\tShould receive a status code of 400, got %d.", failed, testID, w.Code)
				}
				t.Logf("\t%s\tTest %d:\tShould receive a status code of 400.", success, testID)

				var resp errs.Response
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to decode the response: %v", failed, testID, err)
				}

				if len(resp.Fields) != tst.fields {
					t.Fatalf("\t%s\tTest %d:\tShould get %d field errors, got %+v.", failed, testID, tst.fields, resp.Fields)
				}
				t.Logf("\t%s\tTest %d:\tShould get %d field errors.", success, testID, tst.fields)
			}
		}

		testID := len(tests)
		t.Logf("\tTest %d:\tWhen checking the pool.", testID)
		{
			w := tt.do(http.MethodGet, "/v1/tx/uncommitted/list", "")

			var resp struct {
				Pending int `json:"pending"`
			}
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil || resp.Pending != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould have nothing pending: %v %d", failed, testID, err, resp.Pending)
			}
			t.Logf("\t%s\tTest %d:\tShould have nothing pending.", success, testID)
		}
	}
}

func (tt *tracerTests) scenario(t *testing.T) {
	t.Log("Given the need to record and query a product through the api.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen submitting and mining one transaction.", testID)
		{
			body := `{"product_id":"P1","from":"A","to":"B","status":"manufactured","timestamp":1000,"location":{"lat":31.2304},"additional_data":{}}`

			w := tt.do(http.MethodPost, "/v1/transactions/new", body)
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould be able to submit, got %d: %s", failed, testID, w.Code, w.Body.String())
			}
			t.Logf("\t%s\tTest %d:\tShould be able to submit.", success, testID)

			w = tt.do(http.MethodPost, "/v1/mine", "")
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine, got %d: %s", failed, testID, w.Code, w.Body.String())
			}

			var mined struct {
				BlockIndex   uint64           `json:"block_index"`
				Hash         string           `json:"hash"`
				Transactions []map[string]any `json:"transactions"`
			}
			if err := json.NewDecoder(w.Body).Decode(&mined); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to decode the block: %v", failed, testID, err)
			}
			if mined.BlockIndex != 1 || len(mined.Transactions) != 1 || !strings.HasPrefix(mined.Hash, "00") {
				t.Fatalf("\t%s\tTest %d:\tShould mine block 1 with one transaction: %+v", failed, testID, mined)
			}
			t.Logf("\t%s\tTest %d:\tShould mine block 1 with one transaction.", success, testID)

			w = tt.do(http.MethodGet, "/v1/chain", "")

			var chain struct {
				Chain []struct {
					Index    uint64 `json:"index"`
					PrevHash string `json:"previous_hash"`
					Hash     string `json:"hash"`
				} `json:"chain"`
				Length int `json:"length"`
			}
			if err := json.NewDecoder(w.Body).Decode(&chain); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to decode the chain: %v", failed, testID, err)
			}
			if chain.Length != 2 || chain.Chain[1].PrevHash != chain.Chain[0].Hash {
				t.Fatalf("\t%s\tTest %d:\tShould have a linked chain of length 2: %+v", failed, testID, chain)
			}
			t.Logf("\t%s\tTest %d:\tShould have a linked chain of length 2.", success, testID)

			w = tt.do(http.MethodGet, "/v1/product/P1", "")

			var hist struct {
				History []struct {
					BlockIndex uint64         `json:"block_index"`
					Status     string         `json:"status"`
					Location   map[string]any `json:"location"`
				} `json:"history"`
			}
			if err := json.NewDecoder(w.Body).Decode(&hist); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to decode the history: %v", failed, testID, err)
			}
			if len(hist.History) != 1 || hist.History[0].BlockIndex != 1 || hist.History[0].Location["lat"] != 31.2304 {
				t.Fatalf("\t%s\tTest %d:\tShould have one entry in block 1: %+v", failed, testID, hist)
			}
			t.Logf("\t%s\tTest %d:\tShould have one entry in block 1.", success, testID)

			w = tt.do(http.MethodGet, "/v1/product/unknown", "")
			if got := strings.TrimSpace(w.Body.String()); got != `{"history":[]}` {
				t.Fatalf("\t%s\tTest %d:\tShould get an empty history, got %s.", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould get an empty history for an unknown product.", success, testID)

			w = tt.do(http.MethodGet, "/v1/chain/verify", "")

			var ver struct {
				Valid  bool `json:"valid"`
				Length int  `json:"length"`
			}
			if err := json.NewDecoder(w.Body).Decode(&ver); err != nil || !ver.Valid || ver.Length != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould verify the chain: %v %+v", failed, testID, err, ver)
			}
			t.Logf("\t%s\tTest %d:\tShould verify the chain.", success, testID)

			w = tt.do(http.MethodGet, "/v1/tx/proof/1/0", "")

			var txp state.TxProof
			if err := json.NewDecoder(w.Body).Decode(&txp); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to decode the proof: %v", failed, testID, err)
			}
			if err := merkle.VerifyProof(txp.LeafHash, txp.Proof, txp.Order, txp.MerkleRoot); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould verify the proof: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould verify the transaction proof.", success, testID)
		}
	}
}

func (tt *tracerTests) notFound(t *testing.T) {
	t.Log("Given the need to report missing resources.")
	{
		tests := []struct {
			path   string
			status int
		}{
			{path: "/v1/blocks/99", status: http.StatusNotFound},
			{path: "/v1/blocks/abc", status: http.StatusBadRequest},
			{path: "/v1/blocks/0", status: http.StatusOK},
			{path: "/v1/tx/proof/0/0", status: http.StatusNotFound},
			{path: "/v1/tx/proof/1/x", status: http.StatusBadRequest},
			{path: "/", status: http.StatusOK},
		}

		for testID, tst := range tests {
			t.Logf("\tTest %d:\tWhen calling %s.", testID, tst.path)
			{
				w := tt.do(http.MethodGet, tst.path, "")
				if w.Code != tst.status {
					t.Fatalf("\t%s\tTest %d:\tShould receive a status code of %d, got %d.", failed, testID, tst.status, w.Code)
				}
				t.Logf("\t%s\tTest %d:\tShould receive a status code of %d.", success, testID, tst.status)
			}
		}

		testID := len(tests)
		t.Logf("\tTest %d:\tWhen sending a preflight request.", testID)
		{
			w := tt.do(http.MethodOptions, "/v1/preflight", "")
			if w.Code != http.StatusNoContent {
				t.Fatalf("\t%s\tTest %d:\tShould receive a status code of 204, got %d.", failed, testID, w.Code)
			}
			if w.Header().Get("Access-Control-Allow-Origin") != "*" {
				t.Fatalf("\t%s\tTest %d:\tShould set the allowed origin.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould answer the preflight request.", success, testID)
		}
	}
}
