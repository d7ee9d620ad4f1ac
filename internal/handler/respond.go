package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ontohin26/ontohin/internal/middleware"
	"github.com/ontohin26/ontohin/internal/publicform"
	"github.com/ontohin26/ontohin/internal/service"
	"github.com/ontohin26/ontohin/internal/store"
	"go.uber.org/zap"
)

const maxJSONBody = 1 << 20

var errBadBody = fmt.Errorf("%w: invalid request body", service.ErrInvalidInput)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var verr *publicform.ValidationError
	switch {
	case errors.Is(err, service.ErrFormNotFound),
		errors.Is(err, service.ErrSubmissionNotFound),
		errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrRegistrationNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrAnnouncementNotFound),
		errors.Is(err, service.ErrGalleryItemNotFound),
		errors.Is(err, service.ErrLinkNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput), errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, publicform.ErrSubmitInFlight), errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail answers with the status err maps to. Server errors are logged and
// their detail is kept out of the response.
func fail(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("request_id", middleware.RequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}
