package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/yndnr/pixmesh-go/internal/core/domain"
)

// setRequest is a decoded POST /set body.
type setRequest struct {
	X     int
	Y     int
	Color string

	// outOfRange is set when a coordinate is an integer too large for int.
	outOfRange bool
}

// parseSetRequest decodes body strictly: x and y must be JSON integers and
// color a JSON string. Floats, booleans, numeric strings and null are
// rejected as a bad payload.
func parseSetRequest(body []byte) (setRequest, error) {
	var req setRequest

	// 1. Syntax
	if !json.Valid(body) {
		return req, domain.ErrInvalidJSON
	}

	// 2. Shape
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return req, domain.ErrBadPayload
	}

	// 3. Fields
	var err error
	var xRange, yRange bool
	if req.X, xRange, err = parseInt(fields["x"]); err != nil {
		return req, domain.ErrBadPayload
	}
	if req.Y, yRange, err = parseInt(fields["y"]); err != nil {
		return req, domain.ErrBadPayload
	}
	raw := fields["color"]
	if len(raw) == 0 || raw[0] != '"' {
		return req, domain.ErrBadPayload
	}
	if err := json.Unmarshal(raw, &req.Color); err != nil {
		return req, domain.ErrBadPayload
	}

	req.outOfRange = xRange || yRange
	return req, nil
}

// parseInt accepts a JSON integer literal. Integers that overflow int are
// reported through outOfRange rather than as an error.
func parseInt(raw json.RawMessage) (v int, outOfRange bool, err error) {
	if len(raw) == 0 {
		return 0, false, errors.New("missing")
	}
	v, err = strconv.Atoi(string(raw))
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, true, nil
		}
		return 0, false, err
	}
	return v, false, nil
}

// handleSet handles POST /set.
func (h *Handler) handleSet(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSetBody))
	if err != nil {
		h.writeError(w, r, domain.ErrInvalidJSON)
		return
	}

	req, err := parseSetRequest(body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.outOfRange {
		h.writeError(w, r, domain.ErrOutOfBounds)
		return
	}

	if err := h.svc.SetPixel(r.Context(), identity(r), req.X, req.Y, req.Color); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, "OK")
}

// handleClear handles POST /clear.
func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Clear(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, "OK")
}
