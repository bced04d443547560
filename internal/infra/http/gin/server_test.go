package ginserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingcore/internal/app/commands"
	"bookingcore/internal/app/dto"
	"bookingcore/internal/app/handlers/availability"
	bookingapp "bookingcore/internal/app/handlers/booking"
	"bookingcore/internal/app/locks"
	"bookingcore/internal/app/queries"
	domainavailability "bookingcore/internal/domain/availability"
	domainblock "bookingcore/internal/domain/block"
	domainbooking "bookingcore/internal/domain/booking"
	"bookingcore/internal/domain/shared/daterange"
	"bookingcore/internal/infra/obs"
	"bookingcore/internal/infra/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubCommands struct {
	last   commands.Command
	result any
	err    error
}

func (s *stubCommands) Dispatch(_ context.Context, cmd commands.Command) (any, error) {
	s.last = cmd
	return s.result, s.err
}

type stubQueries struct {
	last   queries.Query
	result any
	err    error
}

func (s *stubQueries) Ask(_ context.Context, q queries.Query) (any, error) {
	s.last = q
	return s.result, s.err
}

func newTestRouter(cmds *stubCommands, qs *stubQueries, rate gin.HandlerFunc) *gin.Engine {
	return NewRouter(obs.Middleware{}, obs.HealthHandlers{}, Handlers{
		Booking:   BookingHandler{Commands: cmds, Queries: qs},
		Block:     BlockHandler{Commands: cmds, Queries: qs},
		Property:  PropertyHandler{Admin: cmds, Commands: cmds, Queries: qs},
		RateLimit: rate,
	})
}

func do(router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domainbooking.ErrBookingNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", domainblock.ErrBlockNotFound), http.StatusNotFound},
		{daterange.ErrInvalidRange, http.StatusBadRequest},
		{&domainavailability.ConflictError{}, http.StatusBadRequest},
		{fmt.Errorf("%w: %w", domainbooking.ErrInvalidTransition, domainbooking.ErrCanceledUpdate), http.StatusBadRequest},
		{daterange.ErrMalformedDate, http.StatusBadRequest},
		{validation.ErrInvalidRequest, http.StatusBadRequest},
		{locks.ErrLockTimeout, http.StatusServiceUnavailable},
		{availability.ErrExportDisabled, http.StatusServiceUnavailable},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestCreateBookingForwardsIdempotencyKey(t *testing.T) {
	cmds := &stubCommands{result: &dto.Booking{ID: "b1", PropertyID: "p1", Status: "CREATED"}}
	router := newTestRouter(cmds, &stubQueries{}, nil)

	rec := do(router, http.MethodPost, "/api/v1/bookings",
		`{"property_id":"p1","start_date":"2024-02-01","end_date":"2024-02-05","guest_name":"Ada"}`,
		map[string]string{"Idempotency-Key": "abc"})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var got dto.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "b1", got.ID)

	cmd, ok := cmds.last.(bookingapp.CreateBookingCommand)
	require.True(t, ok)
	assert.Equal(t, "abc", cmd.IdempotencyKey())
	assert.Equal(t, "2024-02-05", cmd.EndDate)
	assert.NotEmpty(t, rec.Header().Get(obs.RequestIDHeader))
}

func TestCreateBookingRequiresDates(t *testing.T) {
	cmds := &stubCommands{}
	rec := do(newTestRouter(cmds, &stubQueries{}, nil), http.MethodPost, "/api/v1/bookings", `{"property_id":"p1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, cmds.last)
}

func TestOverlapIsBadRequest(t *testing.T) {
	cmds := &stubCommands{err: &domainavailability.ConflictError{Bookings: []domainbooking.BookingID{"b1"}}}
	rec := do(newTestRouter(cmds, &stubQueries{}, nil), http.MethodPost, "/api/v1/blocks",
		`{"property_id":"p1","start_date":"2024-02-01","end_date":"2024-02-05"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not available")
}

func TestLockTimeoutAsksToRetry(t *testing.T) {
	cmds := &stubCommands{err: fmt.Errorf("acquire: %w", locks.ErrLockTimeout)}
	rec := do(newTestRouter(cmds, &stubQueries{}, nil), http.MethodPut, "/api/v1/bookings/b1/cancel", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, retryAfterSeconds, rec.Header().Get("Retry-After"))
}

func TestLifecycleStatusCodes(t *testing.T) {
	cmds := &stubCommands{result: &dto.Booking{ID: "b1"}}
	router := newTestRouter(cmds, &stubQueries{}, nil)

	assert.Equal(t, http.StatusNoContent, do(router, http.MethodPut, "/api/v1/bookings/b1/cancel", "", nil).Code)
	assert.Equal(t, bookingapp.CancelBookingCommand{BookingID: "b1"}, cmds.last)
	assert.Equal(t, http.StatusNoContent, do(router, http.MethodPut, "/api/v1/bookings/b1/rebook", "", nil).Code)

	cmds.result = struct{}{}
	assert.Equal(t, http.StatusNoContent, do(router, http.MethodDelete, "/api/v1/bookings/b1", "", nil).Code)
	assert.Equal(t, http.StatusNoContent, do(router, http.MethodDelete, "/api/v1/blocks/k1", "", nil).Code)
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	qs := &stubQueries{err: errors.New("mongo: connection reset by peer")}
	rec := do(newTestRouter(&stubCommands{}, qs, nil), http.MethodGet, "/api/v1/bookings/b1", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "mongo")
}

func TestGetMissingBooking(t *testing.T) {
	qs := &stubQueries{err: domainbooking.ErrBookingNotFound}
	rec := do(newTestRouter(&stubCommands{}, qs, nil), http.MethodGet, "/api/v1/bookings/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, bookingapp.GetBookingQuery{BookingID: "nope"}, qs.last)
}

func TestAvailabilityQueryParams(t *testing.T) {
	qs := &stubQueries{result: dto.Availability{PropertyID: "p1", Available: true}}
	rec := do(newTestRouter(&stubCommands{}, qs, nil), http.MethodGet, "/api/v1/properties/p1/availability?start=2024-02-01&end=2024-02-03", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, availability.CheckAvailabilityQuery{PropertyID: "p1", StartDate: "2024-02-01", EndDate: "2024-02-03"}, qs.last)
}

func TestRateLimiterRejectsBurst(t *testing.T) {
	limit, err := NewRateLimiter("1-M", nil)
	require.NoError(t, err)
	qs := &stubQueries{result: dto.Booking{ID: "b1"}}
	router := newTestRouter(&stubCommands{}, qs, limit)

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/v1/bookings/b1", "", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(router, http.MethodGet, "/api/v1/bookings/b1", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/livez", "", nil).Code, "health is not limited")
}

func TestRateLimiterDisabledAndInvalid(t *testing.T) {
	limit, err := NewRateLimiter("", nil)
	require.NoError(t, err)
	assert.Nil(t, limit)

	_, err = NewRateLimiter("lots", nil)
	require.Error(t, err)
}
