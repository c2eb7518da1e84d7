// Package tick decodes wire payloads from the tick topic into typed
// price updates.
package tick

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Tick 单条价格更新，解码后不可变。
type Tick struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Source string  `json:"source"`
}

// DecodeError marks a malformed payload. The consumer treats it as a
// skippable per-message failure, never a reason to stop the loop.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode tick: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode tick: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// wireTick uses pointers so missing fields are distinguishable from
// zero values.
type wireTick struct {
	Symbol *string  `json:"symbol"`
	Price  *float64 `json:"price"`
	Source *string  `json:"source"`
}

// Decode parses a UTF-8 JSON payload holding exactly the fields
// symbol (string), price (number) and source (string). Any other
// shape — missing field, wrong type, unknown field, trailing data —
// yields a *DecodeError. No defaults are substituted.
func Decode(payload []byte) (Tick, error) {
	var w wireTick
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return Tick{}, &DecodeError{Reason: "unparsable payload", Err: err}
	}
	if dec.More() {
		return Tick{}, &DecodeError{Reason: "trailing data after object"}
	}
	switch {
	case w.Symbol == nil:
		return Tick{}, &DecodeError{Reason: "missing field symbol"}
	case w.Price == nil:
		return Tick{}, &DecodeError{Reason: "missing field price"}
	case w.Source == nil:
		return Tick{}, &DecodeError{Reason: "missing field source"}
	}
	return Tick{Symbol: *w.Symbol, Price: *w.Price, Source: *w.Source}, nil
}
