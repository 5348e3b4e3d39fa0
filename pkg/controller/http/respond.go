package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/usecase"
	"github.com/secops-lab/magerisk/pkg/utils/errutil"
	"github.com/secops-lab/magerisk/pkg/utils/safe"
)

func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return goerr.Wrap(model.ErrValidation, "invalid request body", goerr.V("decode_error", err.Error()))
	}
	return nil
}

// statusFor maps domain and use case errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound),
		errors.Is(err, usecase.ErrAssetNotFound),
		errors.Is(err, usecase.ErrThreatNotFound),
		errors.Is(err, usecase.ErrVulnerabilityNotFound),
		errors.Is(err, usecase.ErrRiskNotFound),
		errors.Is(err, usecase.ErrSafeguardNotFound),
		errors.Is(err, usecase.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, model.ErrConflict),
		errors.Is(err, usecase.ErrAssetHasDependents),
		errors.Is(err, usecase.ErrDuplicateEntity):
		return http.StatusConflict

	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest

	case errors.Is(err, usecase.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, usecase.ErrUserInactive):
		return http.StatusForbidden

	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
}
