package jsonutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// MarshalNoEscape encodes v into JSON without HTML-escaping <, > and &.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeNoEscape(&buf, v); err != nil {
		return nil, err
	}
	// Remove trailing newline from json.Encoder.Encode
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// EncodeNoEscape writes v followed by a newline.
func EncodeNoEscape(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteJSON sends v with the given status. Metadata carries URLs and
// markdown, so HTML escaping is disabled.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return EncodeNoEscape(w, v)
}
