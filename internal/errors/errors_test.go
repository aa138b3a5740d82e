package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestConstructorCodesAndStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    *APIError
		code   ErrorCode
		status int
	}{
		{"collection not found", CollectionNotFound(), ErrCollectionNotFound, http.StatusNotFound},
		{"collection missing", CollectionMissing(), ErrCollectionNotFound, http.StatusNotFound},
		{"item not found", ItemNotFound(), ErrItemNotFound, http.StatusNotFound},
		{"email taken", EmailTaken(), ErrEmailTaken, http.StatusConflict},
		{"invalid credentials", InvalidCredentials(), ErrInvalidCredentials, http.StatusUnauthorized},
		{"unauthorized", Unauthorized(), ErrUnauthorized, http.StatusUnauthorized},
		{"internal", Internal("boom"), ErrorCode("INTERNAL"), http.StatusInternalServerError},
		{"storage", Storage(errors.New("disk")), ErrStorageError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code() != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, tt.err.Code())
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, tt.err.StatusCode())
			}
		})
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Storage(cause)
	if !errors.Is(err, cause) {
		t.Error("Wrapped cause must be reachable via errors.Is")
	}
	var apiErr *APIError
	if !errors.As(error(err), &apiErr) {
		t.Error("APIError must satisfy errors.As")
	}
}
