package database

import "sort"

// HistoryEntry is one event in the provenance of a product along with the
// index of the block that recorded it.
type HistoryEntry struct {
	BlockIndex      uint64         `json:"block_index"`
	Timestamp       float64        `json:"timestamp"`
	From            string         `json:"from"`
	To              string         `json:"to"`
	Status          string         `json:"status"`
	Location        map[string]any `json:"location"`
	AdditionalData  map[string]any `json:"additional_data"`
	ProductID       string         `json:"product_id"`
	ProductName     string         `json:"product_name"`
	ProductSKU      string         `json:"product_sku"`
	ProductCategory string         `json:"product_category"`
}

// History scans the blocks in order, and the transactions of each block in
// order, returning every event for the product sorted by the event
// timestamp. Events with the same timestamp keep their chain order. A
// product with no events returns an empty slice.
func History(blocks []Block, productID string) []HistoryEntry {
	history := []HistoryEntry{}

	for _, block := range blocks {
		for _, tx := range block.Transactions {
			if tx.ProductID != productID {
				continue
			}

			tx = tx.Clone()
			history = append(history, HistoryEntry{
				BlockIndex:      block.Index,
				Timestamp:       tx.Timestamp,
				From:            tx.From,
				To:              tx.To,
				Status:          tx.Status,
				Location:        emptyIfNil(tx.Location),
				AdditionalData:  emptyIfNil(tx.AdditionalData),
				ProductID:       tx.ProductID,
				ProductName:     tx.ProductName,
				ProductSKU:      tx.ProductSKU,
				ProductCategory: tx.ProductCategory,
			})
		}
	}

	// The entries were collected in (block, position) order so a stable sort
	// on the timestamp breaks ties by chain order.
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Timestamp < history[j].Timestamp
	})

	return history
}

func emptyIfNil(obj map[string]any) map[string]any {
	if obj == nil {
		return map[string]any{}
	}
	return obj
}
