package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/shopspring/decimal"
)

// objectWriter builds a JSON object whose keys keep the order they were
// appended in. Its zero value is ready to use.
type objectWriter struct {
	bytes.Buffer
	err error
}

// newObject starts an object with its "object" type tag.
func newObject(tag string) *objectWriter {
	w := &objectWriter{}
	return w.Append("object", tag)
}

// Append adds key with value marshaled by encoding/json.
func (w *objectWriter) Append(key string, value any) *objectWriter {
	if w.err != nil {
		return w
	}

	valBytes, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("failed to marshal value for key %q: %w", key, err)
		return w
	}

	w.WriteString(fmt.Sprintf("%q:", key))
	w.Write(valBytes)
	w.WriteString(",")
	return w
}

// Optional appends key only when value is not its type's zero value.
func (w *objectWriter) Optional(key string, value any) *objectWriter {
	if w.err != nil {
		return w
	}
	v := reflect.ValueOf(value)
	if !v.IsValid() || v.IsZero() {
		return w
	}
	return w.Append(key, value)
}

// Decimal appends d as a bare JSON number.
func (w *objectWriter) Decimal(key string, d decimal.Decimal) *objectWriter {
	return w.Append(key, json.Number(d.String()))
}

// MarshalJSON closes the object.
func (w *objectWriter) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}

	content := bytes.TrimSuffix(w.Bytes(), []byte(","))
	final := make([]byte, 0, len(content)+2)
	final = append(final, '{')
	final = append(final, content...)
	final = append(final, '}')

	return final, nil
}
