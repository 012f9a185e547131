package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/AnshRaj112/afterthedoll-backend/internal/services"
	"github.com/AnshRaj112/afterthedoll-backend/pkg/utils"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

var validate = validator.New()

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, success bool, message string) {
	writeJSON(w, status, Response{Success: success, Message: message})
}

// writeError maps a service error onto a status code and message. Store
// failures are logged and reported with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var verr *utils.ValidationError
	switch {
	case errors.As(err, &verr):
		writeMessage(w, http.StatusBadRequest, false, verr.Message)
	case errors.Is(err, services.ErrNotFound):
		writeMessage(w, http.StatusNotFound, false, "Not found")
	case errors.Is(err, services.ErrInvalidTarget):
		writeMessage(w, http.StatusBadRequest, false, "You cannot send a friend request to yourself")
	case errors.Is(err, services.ErrUnauthorized):
		writeMessage(w, http.StatusForbidden, false, "You do not have permission to do that")
	case errors.Is(err, services.ErrInvalidTransition):
		writeMessage(w, http.StatusConflict, false, "This request has already been answered")
	case errors.Is(err, services.ErrUsernameTaken):
		writeMessage(w, http.StatusConflict, false, "Username is already taken")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, false, "Invalid username or password")
	case errors.Is(err, services.ErrArchiveNotEmpty):
		writeMessage(w, http.StatusConflict, false, "Archive still has entries")
	case errors.Is(err, services.ErrUnsupportedImage), errors.Is(err, services.ErrImageTooLarge):
		writeMessage(w, http.StatusBadRequest, false, err.Error())
	case errors.Is(err, services.ErrStoreUnavailable):
		log.Error("store failure", zap.String("path", r.URL.Path), zap.Error(err))
		writeMessage(w, http.StatusServiceUnavailable, false, "Action failed, please try again")
	default:
		log.Error("unhandled error", zap.String("path", r.URL.Path), zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, false, "Action failed, please try again")
	}
}

// decodeJSON reads and validates a request body into dst. It writes the 400
// response itself and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, false, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	}
	return fmt.Sprintf("%s is invalid", field)
}
