package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yourusername/rugby-predictor/internal/models"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// statusFor maps an error onto its HTTP status
func statusFor(err error) int {
	switch models.Kind(err) {
	case "validation":
		return http.StatusBadRequest
	case "not_found":
		return http.StatusNotFound
	case "league_mismatch":
		return http.StatusConflict
	case "upstream":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	kind := models.Kind(err)
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).WithField("kind", kind).Error("Request failed")
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// validationError converts validator failures into a single ValidationError
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &models.ValidationError{Field: "request", Reason: err.Error()}
	}

	fields := make([]string, 0, len(verrs))
	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
		reasons = append(reasons, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
	}
	return &models.ValidationError{Field: strings.Join(fields, ","), Reason: strings.Join(reasons, "; ")}
}
