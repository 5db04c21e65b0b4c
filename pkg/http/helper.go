package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "parkspot/pkg/errors"
)

// DecodeJSONBody decodes the request body into dst. Malformed or empty bodies
// and bodies rejected by MaxBytesReader surface as InvalidInput.
func DecodeJSONBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperrors.InvalidInput("Request body is required")
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperrors.InvalidInput("Request body is required")
		case errors.As(err, &maxBytesErr):
			return apperrors.New(apperrors.CodeBadRequest, "Request body too large", http.StatusRequestEntityTooLarge)
		default:
			return apperrors.InvalidInput("Invalid request body")
		}
	}
	return nil
}
