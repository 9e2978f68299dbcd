package llmjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"compliance-coursegen/internal/domain"
)

// Decode parses s into a generic JSON value. Numbers stay json.Number so integer
// checks can be made later. Trailing content after the first value is an error.
func Decode(s string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, domain.NewParseError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, domain.NewParseError(errors.New("unexpected data after JSON value"))
	}
	return v, nil
}
