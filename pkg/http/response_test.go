package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "parkspot/pkg/errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "conflict keeps message and status",
			err:         apperrors.Conflict("Slot already booked"),
			wantStatus:  http.StatusConflict,
			wantCode:    apperrors.CodeConflict,
			wantMessage: "Slot already booked",
		},
		{
			name:        "already terminal is a bad request",
			err:         apperrors.AlreadyTerminal("Cannot cancel a booking that is already cancelled"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    apperrors.CodeAlreadyTerminal,
			wantMessage: "Cannot cancel a booking that is already cancelled",
		},
		{
			name:        "plain error is hidden",
			err:         errors.New("mongo: connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    apperrors.CodeInternal,
			wantMessage: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			if err := WriteError(w, tt.err); err != nil {
				t.Fatalf("WriteError() returned %v", err)
			}

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}

			var body ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("invalid body: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", body.Code, tt.wantCode)
			}
			if body.Error != tt.wantMessage {
				t.Errorf("error = %q, want %q", body.Error, tt.wantMessage)
			}
		})
	}
}

func TestDecodeJSONBody(t *testing.T) {
	type payload struct {
		SpotID string `json:"spotId"`
	}

	tests := []struct {
		name     string
		body     string
		wantErr  bool
		wantSpot string
	}{
		{name: "valid", body: `{"spotId":"abc"}`, wantSpot: "abc"},
		{name: "empty", body: ``, wantErr: true},
		{name: "malformed", body: `{"spotId":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := DecodeJSONBody(req, &p)
			if tt.wantErr {
				if !apperrors.IsAppError(err) {
					t.Fatalf("expected AppError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.SpotID != tt.wantSpot {
				t.Errorf("spotId = %q", p.SpotID)
			}
		})
	}
}
