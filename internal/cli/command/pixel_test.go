package command

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/yndnr/pixmesh-go/internal/cli/connection"
)

func TestSet(t *testing.T) {
	server := newMockServer(t)

	var body map[string]any
	server.handle("POST /set", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
	})

	out, _, err := runApp(t, "-s", server.URL, "set", "--x", "2", "--y", "1", "--color", "#00AAFF")
	if err != nil {
		t.Fatalf("set error = %v", err)
	}
	if !strings.Contains(out, "(2,1) set to #00AAFF") {
		t.Errorf("output = %q", out)
	}
	if body["x"] != float64(2) || body["y"] != float64(1) || body["color"] != "#00AAFF" {
		t.Errorf("request body = %v", body)
	}
}

func TestSet_Rejected(t *testing.T) {
	server := newMockServer(t)
	server.handle("POST /set", func(w http.ResponseWriter, r *http.Request) {
		textResponse(w, http.StatusBadRequest, "Invalid color")
	})

	_, _, err := runApp(t, "-s", server.URL, "set", "--x", "0", "--y", "0", "--color", "red")

	var apiErr *connection.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("set error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "Invalid color" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestSet_CooldownWithoutWait(t *testing.T) {
	server := newMockServer(t)
	server.handle("POST /set", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "4")
		textResponse(w, http.StatusTooManyRequests, "Cooldown: wait 3s")
	})

	_, _, err := runApp(t, "-s", server.URL, "set", "--x", "0", "--y", "0", "--color", "#000000")
	if !connection.IsCooldown(err) {
		t.Errorf("set error = %v, want cooldown", err)
	}
	if n := server.count("POST /set"); n != 1 {
		t.Errorf("POST /set count = %d, want 1", n)
	}
}

func TestSet_WaitRetries(t *testing.T) {
	server := newMockServer(t)

	var calls atomic.Int32
	server.handle("POST /set", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			textResponse(w, http.StatusTooManyRequests, "Cooldown: wait 0s")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
	})

	out, errOut, err := runApp(t, "-s", server.URL, "set", "--x", "0", "--y", "0", "--color", "#000000", "--wait")
	if err != nil {
		t.Fatalf("set --wait error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("POST /set calls = %d, want 2", calls.Load())
	}
	if !strings.Contains(errOut, "cooldown, retrying") {
		t.Errorf("stderr = %q", errOut)
	}
	if !strings.Contains(out, "set to #000000") {
		t.Errorf("stdout = %q", out)
	}
}

func TestClear(t *testing.T) {
	server := newMockServer(t)
	server.handle("POST /clear", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
	})

	if _, _, err := runApp(t, "-s", server.URL, "clear"); err == nil {
		t.Error("clear without --yes should fail")
	}
	if n := server.count("POST /clear"); n != 0 {
		t.Errorf("POST /clear count = %d, want 0", n)
	}

	out, _, err := runApp(t, "-s", server.URL, "clear", "--yes")
	if err != nil {
		t.Fatalf("clear error = %v", err)
	}
	if !strings.Contains(out, "board cleared") {
		t.Errorf("output = %q", out)
	}
	if n := server.count("POST /clear"); n != 1 {
		t.Errorf("POST /clear count = %d, want 1", n)
	}
}
