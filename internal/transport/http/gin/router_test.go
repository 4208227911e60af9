package httpgin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/olexh/busline/internal/domain"
	"github.com/olexh/busline/internal/repository"
	"github.com/olexh/busline/internal/service"
	"github.com/olexh/busline/internal/service/admin"
	"github.com/olexh/busline/internal/service/auth"
	"github.com/olexh/busline/internal/service/query"
	"github.com/olexh/busline/internal/service/reservation"
	"github.com/stretchr/testify/assert"
)

func TestRespondErr(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"weak password", auth.ErrWeakPassword, http.StatusBadRequest},
		{"email taken", auth.ErrEmailTaken, http.StatusConflict},
		{"user not found", auth.ErrUserNotFound, http.StatusNotFound},
		{"bad credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"query bus not found", query.ErrBusNotFound, http.StatusNotFound},
		{"reserve bus not found", reservation.ErrBusNotFound, http.StatusNotFound},
		{"booking not found", reservation.ErrBookingNotFound, http.StatusNotFound},
		{"invalid seat", reservation.ErrInvalidSeat, http.StatusBadRequest},
		{"seat taken", reservation.ErrSeatTaken, http.StatusConflict},
		{"sold out", reservation.ErrSoldOut, http.StatusConflict},
		{"already cancelled", reservation.ErrAlreadyCancelled, http.StatusConflict},
		{"invalid bus", admin.ErrInvalidBus, http.StatusBadRequest},
		{"bus conflict", admin.ErrBusConflict, http.StatusConflict},
		{"storage fault", errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			// services wrap sentinels with an operation prefix
			respondErr(c, fmt.Errorf("service.test:%w", tt.err))

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestHandleSearch_MissingParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/search", handleSearch(nil))

	for _, target := range []string{"/search", "/search?source=Kyiv", "/search?destination=Lviv", "/search?source=%20"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

type busStoreStub struct {
	buses map[int64]*domain.Bus
}

func (s busStoreStub) GetBus(_ context.Context, id int64) (*domain.Bus, error) {
	b, ok := s.buses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return b, nil
}

func (s busStoreStub) ListBuses(context.Context) ([]domain.Bus, error)           { return nil, nil }
func (s busStoreStub) SearchBuses(context.Context, string, string) ([]domain.Bus, error) {
	return nil, nil
}
func (s busStoreStub) BookedSeats(context.Context, int64) ([]int, error) { return nil, nil }
func (s busStoreStub) ListUserBookings(context.Context, int64) ([]domain.BookingWithBus, error) {
	return nil, nil
}

func TestHandleGetBus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := busStoreStub{buses: map[int64]*domain.Bus{
		7: {ID: 7, Name: "Express 7", Source: "Kyiv", Destination: "Lviv", TotalSeats: 40, AvailableSeats: 12},
	}}
	svcs := &service.Services{Query: query.New(store, nil, query.Config{})}

	r := gin.New()
	r.GET("/buses/:bus_id", handleGetBus(svcs))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/buses/7", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"bus_name":"Express 7"`)
	assert.NotEmpty(t, w.Header().Get("ETag"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/buses/8", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/buses/x", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseInt64Param(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/seats/:bus_id", func(c *gin.Context) {
		id, ok := parseInt64Param(c, "bus_id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/seats/12", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/seats/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIsRateLimitedErr(t *testing.T) {
	assert.True(t, isRateLimitedErr(errors.New("service.auth.Login: rate limited, retry in 30s")))
	assert.False(t, isRateLimitedErr(errors.New("some other error")))
	assert.False(t, isRateLimitedErr(nil))
}
