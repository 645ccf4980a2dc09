package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/yndnr/pixmesh-go/internal/core/domain"
	"github.com/yndnr/pixmesh-go/internal/telemetry/logger"
)

// errorStatus maps a domain error code to an HTTP status.
func errorStatus(code string) int {
	switch code {
	case domain.ErrInvalidJSON.Code,
		domain.ErrBadPayload.Code,
		domain.ErrOutOfBounds.Code,
		domain.ErrInvalidColor.Code:
		return http.StatusBadRequest
	case domain.ErrCooldown.Code:
		return http.StatusTooManyRequests
	case domain.ErrNotFound.Code:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the status and plain-text message for err.
// Cooldown rejections carry Retry-After.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var cd *domain.CooldownError
	if errors.As(err, &cd) {
		w.Header().Set("Retry-After", strconv.Itoa(cd.RetryAfterSeconds()))
		w.Header().Set("X-Error-Code", domain.ErrCooldown.Code)
		writeText(w, http.StatusTooManyRequests, cd.Error())
		return
	}

	var de *domain.DomainError
	if errors.As(err, &de) {
		status := errorStatus(de.Code)
		if status >= http.StatusInternalServerError {
			logger.L(r.Context()).Error("request failed", "code", de.Code, "error", err)
		}
		w.Header().Set("X-Error-Code", de.Code)
		writeText(w, status, de.Message)
		return
	}

	logger.L(r.Context()).Error("internal error", "error", err)
	w.Header().Set("X-Error-Code", domain.ErrInternal.Code)
	writeText(w, http.StatusInternalServerError, domain.ErrInternal.Message)
}
