package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/xraph/bonding"
)

const maxBodyBytes = 1 << 16

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // headers already sent
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func uintParam(w http.ResponseWriter, q url.Values, name string) (uint64, bool) {
	n, err := strconv.ParseUint(q.Get(name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("query %s: must be an unsigned integer", name))
		return 0, false
	}
	return n, true
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, bonding.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, bonding.ErrProviderNotReady), errors.Is(err, bonding.ErrUninitializedCurve):
		return http.StatusConflict
	case errors.Is(err, bonding.ErrInsufficientBalance), errors.Is(err, bonding.ErrOverflow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, bonding.ErrTransferFailed):
		return http.StatusPaymentRequired
	case errors.Is(err, bonding.ErrStoreNotReady), errors.Is(err, bonding.ErrStoreClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
