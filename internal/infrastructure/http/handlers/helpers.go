// Package handlers provides the HTTP handlers of the /api/v1 surface
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/pantrysense/v2/internal/infrastructure/http/middleware"
	"github.com/pantrysense/v2/internal/ports/inbound"
	"github.com/pantrysense/v2/pkg/errors"
)

const maxJSONBody = 1 << 20

// decodeJSON reads a bounded JSON body into v. An empty body leaves v as is.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	switch {
	case err == nil, stderrors.Is(err, io.EOF):
		return nil
	default:
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.NewAppError(errors.CodePayloadTooLarge, "Request body too large", "")
		}
		return errors.NewBadRequestError("Invalid JSON payload").WithCause(err)
	}
}

// claims returns the verified session; routes behind Authenticate always have one
func claims(r *http.Request) (*inbound.SessionClaims, error) {
	c, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return nil, errors.NewUnauthorizedError("")
	}
	return c, nil
}

// sessionKey scopes per-user state such as the cart and the latest recipe batch
func sessionKey(r *http.Request) (string, error) {
	c, err := claims(r)
	if err != nil {
		return "", err
	}
	return c.User.UID, nil
}
