// Package astjson renders parser output in the canonical fixture form.
//
// Regenerated fixtures are diffed byte-for-byte against committed baselines,
// so the serialization must be fully deterministic: object keys sorted,
// two-space indentation, numeric literals preserved exactly as the parser
// emitted them, and exactly one trailing newline.
package astjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Canonical re-encodes a raw JSON document into the canonical fixture form.
// Numbers are decoded as json.Number so their source text survives the round
// trip; Go's encoder sorts map keys, which gives the stable field ordering.
func Canonical(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid AST JSON: %w", err)
	}
	if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid AST JSON: trailing data after document")
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize AST: %w", err)
	}
	return append(out, '\n'), nil
}
