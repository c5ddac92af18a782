package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes bounds request bodies. The largest legitimate body is a
// suggestion scan over a year of completed tasks.
const maxBodyBytes = 1 << 20

// ParseJSON decodes JSON from the request body into the given destination.
// It limits the request body size to prevent abuse and provides clear error messages.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

// ParseOptionalJSON is ParseJSON for endpoints whose body is entirely
// optional. An empty or malformed body leaves dest untouched and reports false.
func ParseOptionalJSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	return ParseJSON(w, r, dest) == nil
}
