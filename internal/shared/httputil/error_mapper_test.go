package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

var (
	errMissing = errors.New("missing")
	errBad     = errors.New("bad input")
)

func TestErrorMapperMap(t *testing.T) {
	mapper := NewErrorMapper().
		WithMapping(errMissing, http.StatusNotFound, "reservation not found").
		WithMapping(errBad, http.StatusBadRequest, "")

	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "nil", err: nil, status: http.StatusOK, message: ""},
		{name: "wrapped", err: fmt.Errorf("load: %w", errMissing), status: http.StatusNotFound, message: "reservation not found"},
		{name: "passthrough message", err: fmt.Errorf("%w: adults", errBad), status: http.StatusBadRequest, message: "bad input: adults"},
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), status: http.StatusGatewayTimeout, message: "request timeout"},
		{name: "unknown", err: errors.New("boom"), status: http.StatusInternalServerError, message: "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapper.Map(tc.err)
			if got.Status != tc.status || got.Message != tc.message {
				t.Fatalf("expected %d %q, got %d %q", tc.status, tc.message, got.Status, got.Message)
			}
		})
	}
}

func TestErrorMapperDefault(t *testing.T) {
	got := NewErrorMapper().WithDefault(http.StatusBadGateway, "upstream").Map(errors.New("x"))
	if got.Status != http.StatusBadGateway || got.Message != "upstream" {
		t.Fatalf("unexpected default %+v", got)
	}
}
