package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"growthlog/internal/service"
	"growthlog/internal/store"
	"growthlog/internal/validation"
)

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	writeJSON(w, status, map[string]string{"error": userMsg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// writeDomainError maps service and validation failures onto HTTP
// responses. Forbidden is reported as not found so the existence of
// another guardian's records is never confirmed.
func writeDomainError(w http.ResponseWriter, err error) {
	var verr validation.Error
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": verr.Message,
			"field": verr.Field,
			"code":  string(verr.Code),
		})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrForbidden):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, store.ErrUnavailable):
		respondWithError(w, http.StatusServiceUnavailable, "storage unavailable", "storage fault", err)
	default:
		respondWithError(w, http.StatusInternalServerError, "internal error", "unexpected failure", err)
	}
}
