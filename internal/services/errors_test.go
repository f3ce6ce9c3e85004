package services_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"animeverse/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransient, "conversation", "reply", "model call failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"conversation", "reply", "model call failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		marker error
		status int
		kind   string
	}{
		{services.ErrValidation, http.StatusBadRequest, "validation"},
		{services.ErrNotFound, http.StatusNotFound, "not_found"},
		{services.ErrConflict, http.StatusConflict, "conflict"},
		{services.ErrConfiguration, http.StatusServiceUnavailable, "configuration"},
		{services.ErrTimeout, http.StatusGatewayTimeout, "timeout"},
		{services.ErrTransient, http.StatusBadGateway, "transient"},
	}
	for _, tc := range tests {
		err := services.Wrap(tc.marker, "api", "test", "", nil)
		if got := services.HTTPStatus(err); got != tc.status {
			t.Fatalf("%v: expected status %d, got %d", tc.marker, tc.status, got)
		}
		if got := services.Kind(fmt.Errorf("outer: %w", err)); got != tc.kind {
			t.Fatalf("%v: expected kind %q, got %q", tc.marker, tc.kind, got)
		}
	}
	if got := services.HTTPStatus(errors.New("plain")); got != http.StatusInternalServerError {
		t.Fatalf("expected 500 for unmarked error, got %d", got)
	}
	if got := services.HTTPStatus(nil); got != http.StatusOK {
		t.Fatalf("expected 200 for nil, got %d", got)
	}
}

func TestHTTPStatusClientDisconnect(t *testing.T) {
	err := fmt.Errorf("reply: %w", context.Canceled)
	if got := services.HTTPStatus(err); got != services.StatusClientClosedRequest {
		t.Fatalf("expected %d for canceled request, got %d", services.StatusClientClosedRequest, got)
	}
	if got := services.Kind(err); got != "canceled" {
		t.Fatalf("expected kind canceled, got %q", got)
	}
	if got := services.HTTPStatus(context.DeadlineExceeded); got != http.StatusInternalServerError {
		t.Fatalf("bare deadline errors stay unmarked, got %d", got)
	}
}
