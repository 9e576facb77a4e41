// Package canonical provides the deterministic encoding used as the preimage
// for every hash computed on the ledger.
package canonical

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// HashLength is the number of hex characters in a hash produced by Hash.
const HashLength = 64

// Encode returns the canonical form of the value. The value is marshaled to
// JSON and decoded back into generic maps and slices so every object, no
// matter if it came from a struct or a map, is emitted with its keys sorted.
// Numbers are kept verbatim, HTML escaping is off and there is no
// insignificant whitespace. Array order is preserved.
func Encode(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var generic any
	if err := decoder.Decode(&generic); err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(generic); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	// The encoder always terminates the document with a newline.
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// Hash returns the lowercase hex SHA-256 digest of the canonical encoding
// of the value.
func Hash(value any) (string, error) {
	data, err := Encode(value)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}
