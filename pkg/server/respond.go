package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"polaris-hq/polaris/pkg/lifecycle"
	"polaris-hq/polaris/pkg/lifecycle/store"
)

// errorResponse is the JSON error body. Code is machine-readable; clients
// branch on it rather than on Message.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var resp errorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	writeJSON(w, status, resp)
}

// writeLifecycleError maps a lifecycle failure onto an HTTP status keyed by
// its activation reason code.
func writeLifecycleError(w http.ResponseWriter, err error) {
	var actErr *lifecycle.ActivationError
	if errors.As(err, &actErr) {
		writeError(w, activationStatus(actErr.Reason), string(actErr.Reason), actErr.Error())
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, string(lifecycle.ReasonBundleNotFound), err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
}

func activationStatus(reason lifecycle.ActivationReason) int {
	switch reason {
	case lifecycle.ReasonApprovalRequired, lifecycle.ReasonInvalidPercentage:
		return http.StatusBadRequest
	case lifecycle.ReasonBundleNotFound:
		return http.StatusNotFound
	case lifecycle.ReasonNotActive, lifecycle.ReasonAlreadyAtTarget, lifecycle.ReasonNoPreviousVersion:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
