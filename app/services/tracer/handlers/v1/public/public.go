// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/provenance/business/web/errs"
	"github.com/ardanlabs/provenance/foundation/blockchain/database"
	"github.com/ardanlabs/provenance/foundation/blockchain/state"
	"github.com/ardanlabs/provenance/foundation/events"
	"github.com/ardanlabs/provenance/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Root identifies the service.
func (h Handlers) Root(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, message{Message: "Supply Chain Provenance API"}, http.StatusOK)
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitTransaction adds a new transaction to the pool of pending
// transactions.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx database.Transaction
	if err := web.Decode(r, &tx); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	h.Log.Infow("submit tran", "traceid", web.GetTraceID(ctx), "product", tx.ProductID, "status", tx.Status, "from", tx.From, "to", tx.To)

	n, err := h.State.SubmitTransaction(tx)
	if err != nil {
		if errors.Is(err, database.ErrInvalidTransaction) {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return fmt.Errorf("submit: %w", err)
	}

	resp := submitted{
		Message: "Transaction added successfully",
		Pending: n,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	trans := h.State.RetrieveMempool()

	resp := mempool{
		Pending:      len(trans),
		Transactions: trans,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mine seals the pending transactions into a new block.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.State.MineNewBlock(ctx)
	if err != nil {
		switch {
		case errors.Is(err, state.ErrNoTransactions):
			return errs.NewTrusted(err, http.StatusBadRequest)

		case errors.Is(err, database.ErrMiningTimeout):
			return errs.NewTrusted(err, http.StatusServiceUnavailable)

		case errors.Is(err, database.ErrChainLinkage), errors.Is(err, database.ErrInvalidBlockHash):
			return web.NewShutdownError(fmt.Sprintf("mined block rejected by the ledger: %s", err))
		}

		return fmt.Errorf("mine: %w", err)
	}

	resp := mined{
		Message:      "New block mined",
		BlockIndex:   block.Index,
		Hash:         block.Hash,
		Transactions: block.Transactions,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ProductHistory returns the chronological history of a product.
func (h Handlers) ProductHistory(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	entries := h.State.QueryProductHistory(web.Param(r, "id"))
	return web.Respond(ctx, w, history{History: entries}, http.StatusOK)
}

// Chain returns every block in the ledger.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks := h.State.RetrieveChain()

	out := make([]chainBlock, len(blocks))
	for i, block := range blocks {
		out[i] = chainBlock{
			Index:        block.Index,
			Timestamp:    block.Timestamp,
			Transactions: block.Transactions,
			PrevHash:     block.PrevHash,
			Hash:         block.Hash,
		}
	}

	return web.Respond(ctx, w, chain{Chain: out, Length: len(out)}, http.StatusOK)
}

// VerifyChain walks the ledger and reports any integrity violations.
func (h Handlers) VerifyChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	found := h.State.VerifyIntegrity()

	violations := make([]violation, len(found))
	for i, v := range found {
		violations[i] = violation{Index: v.Index, Reason: v.Reason}
	}

	resp := verification{
		Valid:      len(violations) == 0,
		Length:     len(h.State.RetrieveChain()),
		Violations: violations,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Block returns the block at the specified index.
func (h Handlers) Block(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := strconv.ParseUint(web.Param(r, "index"), 10, 64)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid block index: %w", err), http.StatusBadRequest)
	}

	block, err := h.State.RetrieveBlock(index)
	if err != nil {
		if errors.Is(err, database.ErrBlockNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return err
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// TransactionProof returns the merkle proof that a transaction is part of
// a block.
func (h Handlers) TransactionProof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := strconv.ParseUint(web.Param(r, "block"), 10, 64)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid block index: %w", err), http.StatusBadRequest)
	}

	position, err := strconv.Atoi(web.Param(r, "position"))
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid position: %w", err), http.StatusBadRequest)
	}

	txp, err := h.State.QueryTransactionProof(index, position)
	if err != nil {
		if errors.Is(err, database.ErrBlockNotFound) || errors.Is(err, state.ErrTransactionNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return err
	}

	return web.Respond(ctx, w, txp, http.StatusOK)
}
