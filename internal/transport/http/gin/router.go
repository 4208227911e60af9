package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/olexh/busline/internal/domain"
	redisrepo "github.com/olexh/busline/internal/repository/redis"
	"github.com/olexh/busline/internal/service"
	"github.com/olexh/busline/internal/service/admin"
	"github.com/olexh/busline/internal/service/auth"
	"github.com/olexh/busline/internal/service/query"
	"github.com/olexh/busline/internal/service/reservation"
	"github.com/olexh/busline/internal/token"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(
	svcs *service.Services,
	tokens *token.Service,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public API
	r.POST("/register", handleRegister(svcs))
	r.POST("/login", handleLogin(svcs))
	r.GET("/buses", handleListBuses(svcs))
	r.GET("/buses/:bus_id", handleGetBus(svcs))
	r.GET("/search", handleSearch(svcs))
	r.GET("/seats/:bus_id", handleBookedSeats(svcs))

	// Protected API
	authorized := r.Group("/", AuthMiddleware(tokens))
	{
		authorized.GET("/profile", handleProfile(svcs))
		authorized.POST("/bookings", handleCreateBooking(svcs, idem))
		authorized.GET("/bookings", handleListMyBookings(svcs))
		authorized.DELETE("/bookings/:id", handleCancelBooking(svcs))
	}

	// Admin API. Any authenticated user may operate the fleet; there is no
	// separate operator role.
	adminGroup := r.Group("/admin", AuthMiddleware(tokens))
	{
		adminGroup.POST("/buses", handleCreateBus(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Register a new user
// @Param    req body  RegisterRequest true "payload"
// @Success  201 {object} RegisterResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "email already registered"
// @Router   /register [post]
func handleRegister(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		u, err := svcs.Auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, RegisterResponse{
			User: UserResponse{ID: u.ID, Name: u.Name, Email: u.Email},
		})
	}
}

// @Summary  Log in and receive a bearer token
// @Param    req body  LoginRequest true "payload"
// @Success  200 {object} LoginResponse
// @Failure  401 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /login [post]
func handleLogin(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		rlKey := "login:ip:" + c.ClientIP()

		tok, u, err := svcs.Auth.Login(c.Request.Context(), req.Email, req.Password, rlKey)
		if err != nil {
			if isRateLimitedErr(err) {
				c.Header("Retry-After", "60")
				c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: err.Error()})
				return
			}
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, LoginResponse{
			Token: tok,
			User:  UserResponse{ID: u.ID, Name: u.Name, Email: u.Email},
		})
	}
}

// @Summary  List all buses
// @Success  200  {array}  domain.Bus
// @Router   /buses [get]
func handleListBuses(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		buses, err := svcs.Query.ListBuses(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 60s
		writeJSONWithCache(c, http.StatusOK, buses, "public, max-age=60", true)
	}
}

// @Summary  Get a single bus
// @Param    bus_id  path  int  true  "Bus ID"
// @Success  200  {object}  domain.Bus
// @Failure  404  {object}  ErrorResponse
// @Router   /buses/{bus_id} [get]
func handleGetBus(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		busID, ok := parseInt64Param(c, "bus_id")
		if !ok {
			return
		}

		b, err := svcs.Query.GetBus(c.Request.Context(), busID)
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 15s
		writeJSONWithCache(c, http.StatusOK, b, "public, max-age=15", true)
	}
}

// @Summary  Search buses by route
// @Param    source       query  string  true  "departure city"
// @Param    destination  query  string  true  "arrival city"
// @Success  200  {array}   domain.Bus
// @Failure  400  {object}  ErrorResponse
// @Router   /search [get]
func handleSearch(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		source := strings.TrimSpace(c.Query("source"))
		destination := strings.TrimSpace(c.Query("destination"))
		if source == "" || destination == "" {
			badRequest(c, "source and destination required")
			return
		}

		buses, err := svcs.Query.SearchBuses(c.Request.Context(), source, destination)
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 15s
		writeJSONWithCache(c, http.StatusOK, buses, "public, max-age=15", true)
	}
}

// @Summary  List booked seat numbers of a bus
// @Param    bus_id  path  int  true  "Bus ID"
// @Success  200  {object}  BookedSeatsResponse
// @Router   /seats/{bus_id} [get]
func handleBookedSeats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		busID, ok := parseInt64Param(c, "bus_id")
		if !ok {
			return
		}

		seats, err := svcs.Query.BookedSeats(c.Request.Context(), busID)
		if err != nil {
			respondErr(c, err)
			return
		}
		if seats == nil {
			seats = []int{}
		}
		// ETag + Cache-Control 15s
		writeJSONWithCache(c, http.StatusOK, BookedSeatsResponse{BookedSeats: seats}, "public, max-age=15", true)
	}
}

// @Summary  Get the authenticated user's profile
// @Security BearerAuth
// @Success  200 {object} UserResponse
// @Failure  401 {object} ErrorResponse
// @Router   /profile [get]
func handleProfile(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}

		u, err := svcs.Auth.Profile(c.Request.Context(), userID)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, UserResponse{ID: u.ID, Name: u.Name, Email: u.Email})
	}
}

// @Summary  Reserve a seat (idempotent)
// @Security BearerAuth
// @Param    req body  CreateBookingRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} CreateBookingResponse
// @Failure  400 {object} ErrorResponse "invalid seat"
// @Failure  404 {object} ErrorResponse "bus not found"
// @Failure  409 {object} ErrorResponse "seat taken / sold out / idem in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /bookings [post]
func handleCreateBooking(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}

		var req CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemBooking(userID, idemKey)

			if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
				return
			}

			locked, err := idem.AcquireLock(c.Request.Context(), idemStorageKey, 60*time.Second)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
				return
			}
		}

		rlKey := "book:ip:" + c.ClientIP()

		b, err := svcs.Reservation.Reserve(c.Request.Context(), domain.ReserveParams{
			BusID:         req.BusID,
			UserID:        userID,
			PassengerName: req.PassengerName,
			SeatNumber:    req.SeatNumber,
		}, rlKey)
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			if isRateLimitedErr(err) {
				c.Header("Retry-After", "60")
				c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: err.Error()})
				return
			}
			respondErr(c, err)
			return
		}

		resp := CreateBookingResponse{
			BookingID: b.ID.String(),
			Status:    string(b.Status),
		}

		if idemStorageKey != "" && idem != nil {
			raw, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(raw))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  List the authenticated user's bookings
// @Security BearerAuth
// @Success  200 {array} domain.BookingWithBus
// @Router   /bookings [get]
func handleListMyBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}

		bookings, err := svcs.Query.ListUserBookings(c.Request.Context(), userID)
		if err != nil {
			respondErr(c, err)
			return
		}
		if bookings == nil {
			bookings = []domain.BookingWithBus{}
		}

		c.JSON(http.StatusOK, bookings)
	}
}

// @Summary  Cancel a booking
// @Security BearerAuth
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {object} CancelBookingResponse
// @Failure  404 {object} ErrorResponse "booking not found"
// @Failure  409 {object} ErrorResponse "already cancelled"
// @Router   /bookings/{id} [delete]
func handleCancelBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}

		bookingID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			badRequest(c, "invalid booking id")
			return
		}

		if err := svcs.Reservation.Cancel(c.Request.Context(), bookingID, userID); err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, CancelBookingResponse{Status: string(domain.BookingCancelled)})
	}
}

// @Summary  Create a bus
// @Security BearerAuth
// @Param    req body  CreateBusRequest true "payload"
// @Success  201 {object} CreateBusResponse
// @Failure  409 {object} ErrorResponse
// @Router   /admin/buses [post]
func handleCreateBus(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateBusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		id, err := svcs.Admin.CreateBus(c.Request.Context(), domain.Bus{
			Name:        req.Name,
			Source:      req.Source,
			Destination: req.Destination,
			FareCents:   req.FareCents,
			TotalSeats:  req.TotalSeats,
		})
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, CreateBusResponse{BusID: id})
	}
}

// --- Helpers ---

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func isRateLimitedErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "rate limited")
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// auth service
	case errors.Is(err, auth.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "password must be at least 6 characters"})
		return
	case errors.Is(err, auth.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "email already registered"})
		return
	case errors.Is(err, auth.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "incorrect password"})
		return
	// query service
	case errors.Is(err, query.ErrBusNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "bus not found"})
		return
	// reservation service
	case errors.Is(err, reservation.ErrBusNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "bus not found"})
		return
	case errors.Is(err, reservation.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
		return
	case errors.Is(err, reservation.ErrInvalidSeat):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid seat number"})
		return
	case errors.Is(err, reservation.ErrSeatTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "seat already booked"})
		return
	case errors.Is(err, reservation.ErrSoldOut):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "no seats available"})
		return
	case errors.Is(err, reservation.ErrAlreadyCancelled):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "booking already cancelled"})
		return
	// admin service
	case errors.Is(err, admin.ErrInvalidBus):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid bus definition"})
		return
	case errors.Is(err, admin.ErrBusConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "bus already exists"})
		return
	}

	// anything else is a transient storage fault; the whole operation is
	// safe for the caller to retry
	c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "temporary storage failure"})
}
