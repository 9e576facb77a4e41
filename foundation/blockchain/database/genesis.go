package database

import "time"

// GenesisPrevHash is the previous hash recorded in the genesis block.
const GenesisPrevHash = "0"

// Genesis constructs the fixed first block of a ledger. It holds no
// transactions and is sealed without proof of work.
func Genesis(sealed time.Time) Block {
	return NewBlock(0, nil, ToEpoch(sealed), GenesisPrevHash)
}
