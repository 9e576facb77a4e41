package public

import "github.com/ardanlabs/provenance/foundation/blockchain/database"

type message struct {
	Message string `json:"message"`
}

type submitted struct {
	Message string `json:"message"`
	Pending int    `json:"pending"`
}

type mined struct {
	Message      string                 `json:"message"`
	BlockIndex   uint64                 `json:"block_index"`
	Hash         string                 `json:"hash"`
	Transactions []database.Transaction `json:"transactions"`
}

type history struct {
	History []database.HistoryEntry `json:"history"`
}

type chainBlock struct {
	Index        uint64                 `json:"index"`
	Timestamp    float64                `json:"timestamp"`
	Transactions []database.Transaction `json:"transactions"`
	PrevHash     string                 `json:"previous_hash"`
	Hash         string                 `json:"hash"`
}

type chain struct {
	Chain  []chainBlock `json:"chain"`
	Length int          `json:"length"`
}

type violation struct {
	Index  uint64 `json:"index"`
	Reason string `json:"reason"`
}

type verification struct {
	Valid      bool        `json:"valid"`
	Length     int         `json:"length"`
	Violations []violation `json:"violations"`
}

type mempool struct {
	Pending      int                    `json:"pending"`
	Transactions []database.Transaction `json:"transactions"`
}
