package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "parkspot/pkg/errors"
	httputil "parkspot/pkg/http"
	"parkspot/pkg/logger"
	"parkspot/pkg/middleware"
	"parkspot/pkg/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret-42"

type fakeService struct {
	err error

	gotRequester model.Requester
	gotID        string
	gotReq       *model.CreateBookingRequest
}

func (f *fakeService) Create(_ context.Context, requester model.Requester, req *model.CreateBookingRequest) (*model.Booking, error) {
	f.gotRequester, f.gotReq = requester, req
	if f.err != nil {
		return nil, f.err
	}
	return &model.Booking{ID: "b1", DriverID: requester.UserID, SpotID: req.SpotID, TotalCost: 20, Status: model.StatusConfirmed}, nil
}

func (f *fakeService) GetByID(_ context.Context, requester model.Requester, id string) (*model.BookingDetails, error) {
	f.gotRequester, f.gotID = requester, id
	if f.err != nil {
		return nil, f.err
	}
	return &model.BookingDetails{Booking: &model.Booking{ID: id}}, nil
}

func (f *fakeService) ListForDriver(_ context.Context, requester model.Requester) ([]*model.BookingDetails, error) {
	f.gotRequester = requester
	if f.err != nil {
		return nil, f.err
	}
	return []*model.BookingDetails{}, nil
}

func (f *fakeService) Cancel(_ context.Context, requester model.Requester, id string) (*model.Booking, error) {
	f.gotRequester, f.gotID = requester, id
	if f.err != nil {
		return nil, f.err
	}
	return &model.Booking{ID: id, Status: model.StatusCancelled}, nil
}

func (f *fakeService) ListBookedAndSuggestedSlots(_ context.Context, spotID string) (*model.SpotSlots, error) {
	f.gotID = spotID
	if f.err != nil {
		return nil, f.err
	}
	return &model.SpotSlots{BookedSlots: []model.BookedSlot{}, SuggestedSlots: []model.SuggestedSlot{}}, nil
}

func newMux(svc *fakeService) *http.ServeMux {
	auth := middleware.NewAuthenticator(testSecret, "jwt", nil, logger.Discard())
	store := middleware.NewInMemoryIdempotencyStore(time.Hour)
	h := NewBookingHandler(svc, logger.Discard(), auth.Authenticate, middleware.Idempotency(store, ""))
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func bearer(t *testing.T, userID string, role model.Role) string {
	t.Helper()
	token, err := middleware.SignToken(testSecret, userID, role, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	require.NoError(t, err)
	return "Bearer " + token
}

func do(mux http.Handler, method, path, body, authHeader string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// ──────────────────────────────────────────────────────────────────────────
// Routing and auth
// ──────────────────────────────────────────────────────────────────────────

func TestProtectedRoutesRequireToken(t *testing.T) {
	mux := newMux(&fakeService{})

	routes := []struct{ method, path, body string }{
		{http.MethodPost, "/api/bookings", `{"spotId":"s1"}`},
		{http.MethodGet, "/api/bookings/me", ""},
		{http.MethodGet, "/api/bookings/65f0c0ffee0000000000abcd", ""},
		{http.MethodPut, "/api/bookings/65f0c0ffee0000000000abcd/cancel", ""},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := do(mux, rt.method, rt.path, rt.body, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, apperrors.CodeUnauthorized, decodeError(t, rec).Code)
		})
	}
}

func TestSpotSlotsIsPublic(t *testing.T) {
	svc := &fakeService{}
	rec := do(newMux(svc), http.MethodGet, "/api/bookings/spot/spot-42", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "spot-42", svc.gotID)
	assert.JSONEq(t, `{"bookedSlots":[],"suggestedSlots":[]}`, rec.Body.String())
}

func TestMeIsNotTreatedAsID(t *testing.T) {
	svc := &fakeService{}
	rec := do(newMux(svc), http.MethodGet, "/api/bookings/me", "", bearer(t, "driver-1", model.RoleDriver))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
	assert.Empty(t, svc.gotID)
	assert.Equal(t, "driver-1", svc.gotRequester.UserID)
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(newMux(&fakeService{}), http.MethodDelete, "/api/bookings/abc", "", bearer(t, "u", model.RoleDriver))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// ──────────────────────────────────────────────────────────────────────────
// Handlers
// ──────────────────────────────────────────────────────────────────────────

func TestCreate(t *testing.T) {
	svc := &fakeService{}
	body := `{"spotId":"s1","startTime":"2030-03-10T09:00:00Z","endTime":"2030-03-10T11:00:00Z","notes":"gate code 12"}`

	rec := do(newMux(svc), http.MethodPost, "/api/bookings", body, bearer(t, "driver-1", model.RoleDriver))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.gotReq)
	assert.Equal(t, "s1", svc.gotReq.SpotID)
	assert.Equal(t, "2030-03-10T09:00:00Z", svc.gotReq.StartTime)
	assert.Equal(t, "gate code 12", svc.gotReq.Notes)
	assert.Equal(t, model.Requester{UserID: "driver-1", Role: model.RoleDriver}, svc.gotRequester)

	var created model.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "b1", created.ID)
	assert.Equal(t, model.StatusConfirmed, created.Status)
}

func TestCreate_MalformedBody(t *testing.T) {
	svc := &fakeService{}
	rec := do(newMux(svc), http.MethodPost, "/api/bookings", `{"spotId":`, bearer(t, "driver-1", model.RoleDriver))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.CodeInvalidInput, decodeError(t, rec).Code)
	assert.Nil(t, svc.gotReq)
}

func TestCreate_IdempotentReplay(t *testing.T) {
	svc := &fakeService{}
	mux := newMux(svc)
	token := bearer(t, "driver-1", model.RoleDriver)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{"spotId":"s1"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", token)
		req.Header.Set(middleware.DefaultIdempotencyHeader, "retry-1")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	svc.gotReq = nil
	second := send()

	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Nil(t, svc.gotReq, "service must not run for a replay")
}

func TestGetByID_PassesPathValue(t *testing.T) {
	svc := &fakeService{}
	rec := do(newMux(svc), http.MethodGet, "/api/bookings/65f0c0ffee0000000000abcd", "", bearer(t, "host-1", model.RoleHost))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "65f0c0ffee0000000000abcd", svc.gotID)
	assert.Equal(t, model.RoleHost, svc.gotRequester.Role)
}

func TestCancel(t *testing.T) {
	svc := &fakeService{}
	rec := do(newMux(svc), http.MethodPut, "/api/bookings/65f0c0ffee0000000000abcd/cancel", "", bearer(t, "driver-1", model.RoleDriver))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "65f0c0ffee0000000000abcd", svc.gotID)

	var cancelled model.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cancelled))
	assert.Equal(t, model.StatusCancelled, cancelled.Status)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"missing field", apperrors.MissingField("Missing required fields", "spotId"), http.StatusBadRequest, apperrors.CodeMissingField},
		{"invalid interval", apperrors.InvalidInterval("End time must be after start time"), http.StatusBadRequest, apperrors.CodeInvalidInterval},
		{"not found", apperrors.NotFound("Booking"), http.StatusNotFound, apperrors.CodeNotFound},
		{"spot unavailable", apperrors.SpotUnavailable("Spot is not available"), http.StatusBadRequest, apperrors.CodeSpotUnavailable},
		{"conflict", apperrors.Conflict("Slot already booked"), http.StatusConflict, apperrors.CodeConflict},
		{"forbidden", apperrors.Forbidden("Not authorized"), http.StatusForbidden, apperrors.CodeForbidden},
		{"already terminal", apperrors.AlreadyTerminal("Booking is already cancelled"), http.StatusBadRequest, apperrors.CodeAlreadyTerminal},
		{"invalid price", apperrors.InvalidPrice("Invalid price", nil), http.StatusInternalServerError, apperrors.CodeInvalidPrice},
		{"timeout", apperrors.Timeout("Timed out"), http.StatusGatewayTimeout, apperrors.CodeTimeout},
		{"plain error", context.Canceled, http.StatusInternalServerError, apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(newMux(&fakeService{err: tt.err}), http.MethodPut,
				"/api/bookings/65f0c0ffee0000000000abcd/cancel", "", bearer(t, "driver-1", model.RoleDriver))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestConflictDetailsReachClient(t *testing.T) {
	conflict := apperrors.Conflict("Slot already booked from 09:00 to 11:00. Please choose a different time.").
		WithDetails(map[string]any{"startTime": "2030-03-10T09:00:00Z", "endTime": "2030-03-10T11:00:00Z"})
	svc := &fakeService{err: conflict}

	rec := do(newMux(svc), http.MethodPost, "/api/bookings", `{"spotId":"s1"}`, bearer(t, "driver-1", model.RoleDriver))

	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "2030-03-10T09:00:00Z", body.Details["startTime"])
	assert.Equal(t, "2030-03-10T11:00:00Z", body.Details["endTime"])
}
