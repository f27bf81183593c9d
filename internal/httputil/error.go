package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AdamBeresnev/op-bracket/internal/apperrors"
	"github.com/AdamBeresnev/op-bracket/internal/logger"
)

type ErrorResponse struct {
	Code    apperrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError maps err onto its HTTP status. Internal details never leave the
// process, they are only logged.
func WriteError(w http.ResponseWriter, log *logger.Logger, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Internal(err, "unexpected error")
	}

	status := apperrors.HTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		log.Error(appErr.Message, "error", err)
		WriteJSON(w, status, ErrorResponse{Code: appErr.Code, Message: "Internal Server Error"})
		return
	}

	log.Warn(appErr.Message, "code", string(appErr.Code))
	WriteJSON(w, status, ErrorResponse{Code: appErr.Code, Message: appErr.Message})
}

func BadRequest(w http.ResponseWriter, log *logger.Logger, msg string, err error) {
	if err != nil {
		WriteError(w, log, apperrors.Wrap(err, apperrors.CodeInvalidInput, msg))
		return
	}
	WriteError(w, log, apperrors.InvalidInput(msg))
}
