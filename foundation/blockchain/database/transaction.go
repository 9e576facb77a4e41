package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/ardanlabs/provenance/foundation/blockchain/canonical"
	"github.com/ardanlabs/provenance/foundation/validate"
)

// Transaction represents one supply chain event for one product. The status
// field is an open vocabulary such as "manufactured" or "shipped_to_retail".
type Transaction struct {
	ProductID       string         `json:"product_id" validate:"required"`
	ProductName     string         `json:"product_name,omitempty"`
	ProductSKU      string         `json:"product_sku,omitempty"`
	ProductCategory string         `json:"product_category,omitempty"`
	From            string         `json:"from" validate:"required"`
	To              string         `json:"to" validate:"required"`
	Status          string         `json:"status" validate:"required"`
	Timestamp       float64        `json:"timestamp" validate:"gte=0"` // Epoch seconds of the event.
	Location        map[string]any `json:"location"`
	AdditionalData  map[string]any `json:"additional_data"`
}

// NewTransaction validates the transaction and returns the version of it that
// is accepted into the pending pool. The caller's timestamp is preserved; a
// transaction submitted without one is stamped with the acceptance time. The
// free-form objects are normalized into plain JSON values and the result
// shares no memory with the provided value.
func NewTransaction(tx Transaction, acceptedAt time.Time) (Transaction, error) {
	if err := validate.Check(tx); err != nil {
		return Transaction{}, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}

	if err := tx.checkText(); err != nil {
		return Transaction{}, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}

	location, err := normalize(tx.Location)
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: location: %w", ErrInvalidTransaction, err)
	}

	additional, err := normalize(tx.AdditionalData)
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: additional_data: %w", ErrInvalidTransaction, err)
	}

	tx.Location = location
	tx.AdditionalData = additional

	if tx.Timestamp == 0 {
		tx.Timestamp = ToEpoch(acceptedAt)
	}

	// The transaction will become part of a block hash preimage.
	if _, err := canonical.Encode(tx); err != nil {
		return Transaction{}, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}

	return tx, nil
}

// Clone returns a deep copy of the transaction.
func (tx Transaction) Clone() Transaction {
	tx.Location = cloneObject(tx.Location)
	tx.AdditionalData = cloneObject(tx.AdditionalData)
	return tx
}

// Hash returns the sha256 digest of the canonical encoding of the
// transaction. This is the leaf value used by the merkle tree.
func (tx Transaction) Hash() ([]byte, error) {
	data, err := canonical.Encode(tx)
	if err != nil {
		return nil, err
	}

	return sum(data), nil
}

// String implements the Stringer interface for logging.
func (tx Transaction) String() string {
	return fmt.Sprintf("%s:%s:%s->%s", tx.ProductID, tx.Status, tx.From, tx.To)
}

// ToEpoch converts the time into epoch seconds with sub-second precision.
func ToEpoch(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// =============================================================================

// checkText returns an error for the first string, object key or nested
// string value that is not valid UTF-8. The JSON encoder replaces invalid
// bytes with U+FFFD, so two such strings could share a hash.
func (tx Transaction) checkText() error {
	fields := []struct {
		name  string
		value string
	}{
		{"product_id", tx.ProductID},
		{"product_name", tx.ProductName},
		{"product_sku", tx.ProductSKU},
		{"product_category", tx.ProductCategory},
		{"from", tx.From},
		{"to", tx.To},
		{"status", tx.Status},
	}

	for _, f := range fields {
		if !utf8.ValidString(f.value) {
			return fmt.Errorf("%s: invalid utf-8", f.name)
		}
	}

	if err := checkValue("location", tx.Location); err != nil {
		return err
	}

	return checkValue("additional_data", tx.AdditionalData)
}

// checkValue walks a free-form value looking for invalid UTF-8.
func checkValue(path string, v any) error {
	switch val := v.(type) {
	case string:
		if !utf8.ValidString(val) {
			return fmt.Errorf("%s: invalid utf-8", path)
		}

	case map[string]any:
		for k, item := range val {
			if !utf8.ValidString(k) {
				return fmt.Errorf("%s: invalid utf-8 key", path)
			}
			if err := checkValue(path+"."+k, item); err != nil {
				return err
			}
		}

	case map[string]string:
		for k, item := range val {
			if !utf8.ValidString(k) {
				return fmt.Errorf("%s: invalid utf-8 key", path)
			}
			if err := checkValue(path+"."+k, item); err != nil {
				return err
			}
		}

	case []any:
		for i, item := range val {
			if err := checkValue(fmt.Sprintf("%s[%d]", path, i), item); err != nil {
				return err
			}
		}

	case []string:
		for i, item := range val {
			if err := checkValue(fmt.Sprintf("%s[%d]", path, i), item); err != nil {
				return err
			}
		}
	}

	return nil
}

// normalize round trips the object through JSON so only maps, slices,
// strings, json.Number, bools and nil remain. A nil object becomes empty.
func normalize(obj map[string]any) (map[string]any, error) {
	if obj == nil {
		return map[string]any{}, nil
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	out := map[string]any{}
	if err := decoder.Decode(&out); err != nil {
		return nil, err
	}

	return out, nil
}

// cloneObject deep copies a free-form object.
func cloneObject(obj map[string]any) map[string]any {
	if obj == nil {
		return nil
	}

	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = cloneValue(v)
	}

	return out
}

// cloneValue deep copies any value that can appear in decoded JSON.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneObject(val)

	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out

	default:
		return val
	}
}
