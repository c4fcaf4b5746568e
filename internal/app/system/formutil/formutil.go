// Package formutil reads request payloads: size-limited JSON bodies and
// ObjectID path parameters.
package formutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrEmptyBody = errors.New("request body is empty")
	ErrBadID     = errors.New("invalid id")
)

// DecodeJSON decodes at most limit bytes of r's body into dst. Unknown
// fields are ignored. Trailing data after the first value is an error.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, limit int64) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return fmt.Errorf("request body exceeds %d bytes", mbe.Limit)
		}
		return fmt.Errorf("malformed JSON: %w", err)
	}
	if dec.More() {
		return errors.New("malformed JSON: unexpected data after body")
	}
	return nil
}

// ObjectID parses the chi URL parameter name as an ObjectID.
func ObjectID(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(chi.URLParam(r, name)))
	if err != nil {
		return primitive.NilObjectID, ErrBadID
	}
	return id, nil
}
