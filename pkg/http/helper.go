package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	apperrors "slotter/pkg/errors"
)

// DecodeBody decodes a JSON request body into dst. An empty body decodes to the zero
// value so that required-field validation can name the missing field.
func DecodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.InvalidInput("Invalid request body")
	}
	return nil
}
