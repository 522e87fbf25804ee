package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gymdesk/backend/internal/middleware"
	"github.com/gymdesk/backend/internal/services"
)

const maxBodyBytes = 1_048_576

var errMultipleObjects = errors.New("request body must only contain a single JSON object")

// decodeJSON reads exactly one JSON object with no unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errMultipleObjects
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// actorOrUnauthorized writes a 401 when the request carries no actor.
func actorOrUnauthorized(w http.ResponseWriter, r *http.Request) (middleware.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok || actor.UserID == "" || actor.TenantID == "" {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return middleware.Actor{}, false
	}
	return actor, true
}

func sendDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errMultipleObjects) {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}
	services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
}
