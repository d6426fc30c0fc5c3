package encoding

import (
	"bytes"
	"encoding/json"
	"io"
)

// Marshal encodes v without HTML escaping and without the trailing newline
// json.Encoder adds. Buyer and supplier names keep their ampersands.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	data := buf.Bytes()
	if len(data) > 0 && data[len(data)-1] == '\n' {
		data = data[:len(data)-1]
	}
	return data, nil
}

// Decode reads one JSON document from r. Numbers stay json.Number so
// amounts reach the table without float rounding.
func Decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec.Decode(v)
}

// Unmarshal is Decode over a byte slice
func Unmarshal(data []byte, v any) error {
	return Decode(bytes.NewReader(data), v)
}
