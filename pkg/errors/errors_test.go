package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors_CodeAndStatus(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{name: "missing field", err: MissingField("spotId is required", "spotId"), wantCode: CodeMissingField, wantStatus: http.StatusBadRequest},
		{name: "invalid interval", err: InvalidInterval("end must be after start"), wantCode: CodeInvalidInterval, wantStatus: http.StatusBadRequest},
		{name: "not found", err: NotFound("Parking spot"), wantCode: CodeNotFound, wantStatus: http.StatusNotFound},
		{name: "spot unavailable", err: SpotUnavailable("spot is off"), wantCode: CodeSpotUnavailable, wantStatus: http.StatusBadRequest},
		{name: "conflict", err: Conflict("slot taken"), wantCode: CodeConflict, wantStatus: http.StatusConflict},
		{name: "forbidden", err: Forbidden("not yours"), wantCode: CodeForbidden, wantStatus: http.StatusForbidden},
		{name: "already terminal", err: AlreadyTerminal("already cancelled"), wantCode: CodeAlreadyTerminal, wantStatus: http.StatusBadRequest},
		{name: "invalid price", err: InvalidPrice("negative rate", cause), wantCode: CodeInvalidPrice, wantStatus: http.StatusInternalServerError},
		{name: "internal", err: Internal("storage failed", cause), wantCode: CodeInternal, wantStatus: http.StatusInternalServerError},
		{name: "invalid input", err: InvalidInput("bad id"), wantCode: CodeInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "unauthorized", err: Unauthorized("no token"), wantCode: CodeUnauthorized, wantStatus: http.StatusUnauthorized},
		{name: "timeout", err: Timeout("too slow"), wantCode: CodeTimeout, wantStatus: http.StatusGatewayTimeout},
		{name: "explicit status", err: New(CodeBadRequest, "too large", http.StatusRequestEntityTooLarge), wantCode: CodeBadRequest, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("StatusCode() = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestMissingField_Details(t *testing.T) {
	err := MissingField("missing", "spotId", "endTime")
	fields, ok := err.Details["fields"].([]string)
	if !ok {
		t.Fatalf("expected fields detail, got %v", err.Details)
	}
	if len(fields) != 2 || fields[0] != "spotId" || fields[1] != "endTime" {
		t.Errorf("unexpected fields %v", fields)
	}

	if noFields := MissingField("missing"); noFields.Details != nil {
		t.Errorf("expected nil details without fields, got %v", noFields.Details)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeNotFound, Message: "Booking not found"},
			expected: "NOT_FOUND: Booking not found",
		},
		{
			name:     "with underlying error",
			appErr:   &AppError{Code: CodeInternal, Message: "internal error", Err: errors.New("connection reset")},
			expected: "INTERNAL_ERROR: internal error (caused by: connection reset)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	original := errors.New("database connection failed")
	wrapped := Internal("internal error", original)

	if !errors.Is(wrapped, original) {
		t.Errorf("errors.Is should see through AppError")
	}
	if errors.Unwrap(wrapped) != original {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestAsAppError(t *testing.T) {
	conflict := Conflict("slot taken")

	if got := AsAppError(conflict); got != conflict {
		t.Errorf("AsAppError() should return the same AppError")
	}

	if got := AsAppError(fmt.Errorf("tx aborted: %w", conflict)); got != conflict {
		t.Errorf("AsAppError() should unwrap a wrapped AppError")
	}

	plain := errors.New("plain")
	got := AsAppError(plain)
	if got.Code != CodeInternal || got.Err != plain {
		t.Errorf("AsAppError() should wrap plain errors as internal, got %+v", got)
	}
}

func TestIsAppErrorAndHasCode(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", AlreadyTerminal("done"))

	if !IsAppError(wrapped) {
		t.Errorf("IsAppError() should find wrapped AppError")
	}
	if IsAppError(errors.New("regular")) {
		t.Errorf("IsAppError() should be false for regular errors")
	}
	if !HasCode(wrapped, CodeAlreadyTerminal) {
		t.Errorf("HasCode() should match wrapped code")
	}
	if HasCode(wrapped, CodeConflict) {
		t.Errorf("HasCode() should not match a different code")
	}
}

func TestStatusCode_FallsBackToCodeDefault(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{&AppError{Code: CodeConflict}, http.StatusConflict},
		{&AppError{Code: CodeRateLimited}, http.StatusTooManyRequests},
		{&AppError{Code: "SOMETHING_ELSE"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := tt.err.StatusCode(); got != tt.want {
			t.Errorf("StatusCode() for %s = %d, want %d", tt.err.Code, got, tt.want)
		}
	}
}

func TestNotFoundWithID_JSON(t *testing.T) {
	data, err := json.Marshal(NotFoundWithID("Booking", "abc"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded AppError
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Code != CodeNotFound || decoded.Message != "Booking not found" {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Details["id"] != "abc" || decoded.Details["resource"] != "Booking" {
		t.Errorf("details = %v", decoded.Details)
	}
}
