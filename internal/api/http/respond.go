package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rentaltracker-backend/internal/domain"
	"rentaltracker-backend/internal/logger"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Code     domain.Code       `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError renders err using its domain code. Errors without a code are
// logged and reported as an opaque internal error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		logger.FromContext(r.Context()).Error("Unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: errorBody{
			Code:    domain.CodeUnknown,
			Message: "internal server error",
		}})
		return
	}

	status := statusForCode(derr.Code)
	message := derr.Message
	if derr.Code == domain.CodeConsistency {
		message = "the operation could not be completed and was rolled back"
	}
	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:     derr.Code,
		Message:  message,
		Metadata: derr.Metadata,
	}})
}

func statusForCode(code domain.Code) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeNotFound, domain.CodeNotFoundOrAlreadyReturned:
		return http.StatusNotFound
	case domain.CodeDuplicateSerial, domain.CodeDuplicateIdentity,
		domain.CodeHasActiveRentals, domain.CodeSelfDeletion,
		domain.CodeQuotaExceeded, domain.CodeInsufficientStock:
		return http.StatusConflict
	case domain.CodeInvalidSubmission, domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeInvalidCredentials, domain.CodeUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ValidationError("request body is required")
		}
		return domain.ValidationError("invalid request body: " + err.Error())
	}
	return nil
}

func pathID(r *http.Request) (int32, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.ValidationError("invalid id").WithMeta("id", raw)
	}
	return int32(id), nil
}
