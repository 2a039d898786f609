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
	"github.com/kirinyoku/resv-go/internal/domain"
	redisrepo "github.com/kirinyoku/resv-go/internal/repository/redis"
	"github.com/kirinyoku/resv-go/internal/service"
	"github.com/kirinyoku/resv-go/internal/service/inventory"
	"github.com/kirinyoku/resv-go/internal/service/query"
	"github.com/kirinyoku/resv-go/internal/service/reservation"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(
	svcs *service.Services,
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
	r.GET("/events/:id", handleGetEvent(svcs))
	r.GET("/events/:id/ticket-types", handleListTicketTypes(svcs))
	r.GET("/ticket-types/:id/availability", handleAvailability(svcs))

	r.POST("/events/:id/reservations", handleCreateReservation(svcs, idem))
	r.GET("/reservations/:id", handleGetReservation(svcs))
	r.POST("/reservations/:id/confirm", handleConfirmReservation(svcs))
	r.POST("/reservations/:id/cancel", handleCancelReservation(svcs))

	// Admin-API
	// TODO: add admin middleware
	admin := r.Group("/admin")
	{
		admin.POST("/venues", handleCreateVenue(svcs))
		admin.POST("/venues/:id/seats", handleBatchCreateSeats(svcs))
		admin.GET("/venues/:id/seats", handleListSeats(svcs))
		admin.POST("/events", handleCreateEvent(svcs))
		admin.POST("/events/:id/publish", handlePublishEvent(svcs))
		admin.POST("/ticket-types", handleCreateTicketType(svcs))
		admin.POST("/ticket-types/:id/windows", handleAddWindow(svcs))
		admin.PUT("/ticket-types/:id/limits", handleSetLimits(svcs))
		admin.PUT("/ticket-types/:id/capacity", handleAdjustCapacity(svcs))
		admin.POST("/ticket-types/:id/seats", handleAssignSeats(svcs))
		admin.POST("/allocations", handleCreateAllocation(svcs))
		admin.POST("/allocations/:id/seats", handleAllocateSeats(svcs))
		admin.PUT("/allocations/:id/quantity", handleAdjustAllocation(svcs))
		admin.POST("/allocations/:id/deactivate", handleDeactivateAllocation(svcs))
		admin.POST("/seats/:id/block", handleBlockSeat(svcs))
		admin.POST("/seats/:id/unblock", handleUnblockSeat(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Get event
// @Param    id  path  int  true  "Event ID"
// @Success  200  {object}  domain.Event
// @Failure  404  {object}  ErrorResponse
// @Router   /events/{id} [get]
func handleGetEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		e, err := svcs.Query.GetEvent(c.Request.Context(), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 60s
		writeJSONWithCache(c, http.StatusOK, e, "public, max-age=60", true)
	}
}

// @Summary  List ticket types with availability
// @Param    id  path  int  true  "Event ID"
// @Success  200  {array}  query.TicketTypeView
// @Router   /events/{id}/ticket-types [get]
func handleListTicketTypes(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		views, err := svcs.Query.ListTicketTypes(c.Request.Context(), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 15s
		writeJSONWithCache(c, http.StatusOK, views, "public, max-age=15", true)
	}
}

// @Summary  Get ticket type availability
// @Param    id  path  int  true  "Ticket type ID"
// @Success  200  {object}  map[string]int
// @Router   /ticket-types/{id}/availability [get]
func handleAvailability(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ttID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		n, err := svcs.Query.Availability(c.Request.Context(), ttID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, gin.H{"available": n}, "public, max-age=5", true)
	}
}

// @Summary  Create reservation (idempotent)
// @Param    id  path  int  true  "Event ID"
// @Param    req body  CreateReservationRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} ReservationResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "inventory unavailable / idem in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /events/{id}/reservations [post]
func handleCreateReservation(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req CreateReservationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemReservation(eventID, idemKey)

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

		items := make([]reservation.ItemInput, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, reservation.ItemInput{
				TicketTypeID: it.TicketTypeID,
				SeatID:       it.SeatID,
				Quantity:     it.Quantity,
				AllocationID: it.AllocationID,
			})
		}

		res, err := svcs.Reservation.Create(c.Request.Context(), reservation.CreateInput{
			UserID:       req.UserID,
			EventID:      eventID,
			Email:        req.Email,
			HoldTTL:      time.Duration(req.TTLSec) * time.Second,
			DiscountCode: req.DiscountCode,
			AccessCode:   req.AccessCode,
			Items:        items,
			RateLimitKey: "ip:" + c.ClientIP(),
		})
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			if errors.Is(err, reservation.ErrRateLimited) {
				c.Header("Retry-After", "60")
				c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
				return
			}
			respondErr(c, err)
			return
		}

		resp := toReservationResponse(res, time.Now())

		if idemStorageKey != "" && idem != nil {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  Get reservation
// @Param    id  path  string  true  "Reservation ID (uuid)"
// @Success  200 {object} ReservationResponse
// @Router   /reservations/{id} [get]
func handleGetReservation(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		r, err := svcs.Reservation.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toReservationResponse(r, time.Now()))
	}
}

// @Summary  Confirm reservation
// @Param    id  path  string  true  "Reservation ID (uuid)"
// @Success  200 {object} ReservationResponse
// @Failure  409 {object} ErrorResponse
// @Router   /reservations/{id}/confirm [post]
func handleConfirmReservation(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		r, err := svcs.Reservation.Confirm(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toReservationResponse(r, time.Now()))
	}
}

// @Summary  Cancel reservation
// @Param    id  path  string  true  "Reservation ID (uuid)"
// @Param    req body  CancelReservationRequest false "payload"
// @Success  200 {object} ReservationResponse
// @Router   /reservations/{id}/cancel [post]
func handleCancelReservation(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req CancelReservationRequest
		_ = c.ShouldBindJSON(&req)

		r, err := svcs.Reservation.Cancel(c.Request.Context(), id, req.Reason)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toReservationResponse(r, time.Now()))
	}
}

// @Summary  Create venue
// @Param    req body  CreateVenueRequest true "payload"
// @Success  201 {object} CreateVenueResponse
// @Router   /admin/venues [post]
func handleCreateVenue(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateVenueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		v, err := svcs.Inventory.CreateVenue(c.Request.Context(), req.Name)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreateVenueResponse{VenueID: v.ID})
	}
}

// @Summary  Batch create seats
// @Param    id  path  int  true  "Venue ID"
// @Param    req body  BatchCreateSeatsRequest true "payload"
// @Success  201 {object} map[string]int
// @Router   /admin/venues/{id}/seats [post]
func handleBatchCreateSeats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		venueID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req BatchCreateSeatsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		specs := make([]inventory.SeatSpec, 0, len(req.Seats))
		for _, s := range req.Seats {
			specs = append(specs, inventory.SeatSpec{
				Position: domain.SeatPosition{
					Section: s.Section,
					Row:     s.Row,
					Number:  s.Number,
				},
				Accessible:     s.Accessible,
				RestrictedView: s.RestrictedView,
				PriceCategory:  s.PriceCategory,
			})
		}
		seats, err := svcs.Inventory.CreateSeats(c.Request.Context(), venueID, specs)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"created": len(seats)})
	}
}

// @Summary  List venue seats
// @Param    id      path   int     true  "Venue ID"
// @Param    status  query  string  false "seat status filter"
// @Success  200  {array}  domain.Seat
// @Router   /admin/venues/{id}/seats [get]
func handleListSeats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		venueID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		seats, err := svcs.Query.ListSeats(c.Request.Context(), venueID, domain.SeatStatus(c.Query("status")))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, seats, "public, max-age=15", true)
	}
}

// @Summary  Create event
// @Param    req body  CreateEventRequest true "payload"
// @Success  201 {object} CreateEventResponse
// @Router   /admin/events [post]
func handleCreateEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		starts, err := parseRFC3339(req.StartsAt)
		if err != nil {
			badRequest(c, "invalid starts_at (RFC3339)")
			return
		}
		ends, err := parseRFC3339(req.EndsAt)
		if err != nil {
			badRequest(c, "invalid ends_at (RFC3339)")
			return
		}
		e, err := svcs.Inventory.CreateEvent(c.Request.Context(), req.VenueID, req.Title, starts, ends)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreateEventResponse{EventID: e.ID})
	}
}

// @Summary  Publish event
// @Param    id  path  int  true  "Event ID"
// @Success  200 {object} domain.Event
// @Router   /admin/events/{id}/publish [post]
func handlePublishEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		e, err := svcs.Inventory.PublishEvent(c.Request.Context(), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, e)
	}
}

// @Summary  Create ticket type
// @Param    req body  CreateTicketTypeRequest true "payload"
// @Success  201 {object} domain.TicketType
// @Failure  409 {object} ErrorResponse "duplicate code / event published"
// @Router   /admin/ticket-types [post]
func handleCreateTicketType(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTicketTypeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		tt, err := svcs.Inventory.CreateTicketType(c.Request.Context(), inventory.TicketTypeInput{
			EventID:       req.EventID,
			Code:          req.Code,
			Name:          req.Name,
			Price:         domain.Money(req.PriceCents),
			Inventory:     domain.InventoryType(req.Inventory),
			TotalCapacity: req.TotalCapacity,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, tt)
	}
}

// @Summary  Add on-sale window
// @Param    id  path  int  true  "Ticket type ID"
// @Param    req body  AddWindowRequest true "payload"
// @Success  200 {object} domain.TicketType
// @Failure  409 {object} ErrorResponse "overlapping window"
// @Router   /admin/ticket-types/{id}/windows [post]
func handleAddWindow(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ttID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req AddWindowRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		from, err := parseRFC3339(req.From)
		if err != nil {
			badRequest(c, "invalid from (RFC3339)")
			return
		}
		until, err := parseRFC3339(req.Until)
		if err != nil {
			badRequest(c, "invalid until (RFC3339)")
			return
		}
		tt, err := svcs.Inventory.AddOnSaleWindow(c.Request.Context(), ttID, domain.TimeRange{From: from, Until: until})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, tt)
	}
}

// @Summary  Set purchase limits
// @Param    id  path  int  true  "Ticket type ID"
// @Param    req body  SetLimitsRequest true "payload"
// @Success  200 {object} domain.TicketType
// @Router   /admin/ticket-types/{id}/limits [put]
func handleSetLimits(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ttID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req SetLimitsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		tt, err := svcs.Inventory.SetPurchaseLimits(c.Request.Context(), ttID, req.MinPerOrder, req.MaxPerOrder, req.MaxPerBuyer)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, tt)
	}
}

// @Summary  Adjust general-admission capacity
// @Param    id  path  int  true  "Ticket type ID"
// @Param    req body  AdjustCapacityRequest true "payload"
// @Success  200 {object} domain.TicketType
// @Failure  409 {object} ErrorResponse "below reserved count"
// @Router   /admin/ticket-types/{id}/capacity [put]
func handleAdjustCapacity(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ttID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req AdjustCapacityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		tt, err := svcs.Inventory.AdjustCapacity(c.Request.Context(), ttID, req.Total)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, tt)
	}
}

// @Summary  Assign seats to a reserved-seating ticket type
// @Param    id  path  int  true  "Ticket type ID"
// @Param    req body  SeatIDsRequest true "payload"
// @Success  204
// @Router   /admin/ticket-types/{id}/seats [post]
func handleAssignSeats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ttID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req SeatIDsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if err := svcs.Inventory.AssignSeatsToTicketType(c.Request.Context(), ttID, req.SeatIDs); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Create allocation
// @Param    req body  CreateAllocationRequest true "payload"
// @Success  201 {object} domain.Allocation
// @Router   /admin/allocations [post]
func handleCreateAllocation(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateAllocationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		from, err := parseRFC3339Ptr(req.AvailableFrom)
		if err != nil {
			badRequest(c, "invalid available_from (RFC3339)")
			return
		}
		until, err := parseRFC3339Ptr(req.AvailableUntil)
		if err != nil {
			badRequest(c, "invalid available_until (RFC3339)")
			return
		}
		expires, err := parseRFC3339Ptr(req.ExpiresAt)
		if err != nil {
			badRequest(c, "invalid expires_at (RFC3339)")
			return
		}
		a, err := svcs.Inventory.CreateAllocation(c.Request.Context(), inventory.AllocationInput{
			EventID:        req.EventID,
			TicketTypeID:   req.TicketTypeID,
			Name:           req.Name,
			TotalQuantity:  req.TotalQuantity,
			AccessCode:     req.AccessCode,
			AllowedUserIDs: req.AllowedUserIDs,
			AllowedDomains: req.AllowedDomains,
			AvailableFrom:  from,
			AvailableUntil: until,
			ExpiresAt:      expires,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, a)
	}
}

// @Summary  Carve seats into an allocation
// @Param    id  path  int  true  "Allocation ID"
// @Param    req body  SeatIDsRequest true "payload"
// @Success  200 {object} domain.Allocation
// @Router   /admin/allocations/{id}/seats [post]
func handleAllocateSeats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		allocID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req SeatIDsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		a, err := svcs.Inventory.AllocateSeats(c.Request.Context(), allocID, req.SeatIDs)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, a)
	}
}

// @Summary  Resize allocation
// @Param    id  path  int  true  "Allocation ID"
// @Param    req body  AdjustAllocationRequest true "payload"
// @Success  200 {object} AdjustAllocationResponse
// @Router   /admin/allocations/{id}/quantity [put]
func handleAdjustAllocation(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		allocID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req AdjustAllocationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		a, released, err := svcs.Inventory.AdjustAllocation(c.Request.Context(), allocID, req.Total)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, AdjustAllocationResponse{Allocation: a, ReleasedSeats: released})
	}
}

// @Summary  Deactivate allocation
// @Param    id  path  int  true  "Allocation ID"
// @Success  200 {object} domain.Allocation
// @Router   /admin/allocations/{id}/deactivate [post]
func handleDeactivateAllocation(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		allocID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		a, err := svcs.Inventory.DeactivateAllocation(c.Request.Context(), allocID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, a)
	}
}

// @Summary  Block seat
// @Param    id  path  int  true  "Seat ID"
// @Success  204
// @Router   /admin/seats/{id}/block [post]
func handleBlockSeat(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		seatID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		if err := svcs.Inventory.BlockSeat(c.Request.Context(), seatID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Unblock seat
// @Param    id  path  int  true  "Seat ID"
// @Success  204
// @Router   /admin/seats/{id}/unblock [post]
func handleUnblockSeat(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		seatID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		if err := svcs.Inventory.UnblockSeat(c.Request.Context(), seatID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
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

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// inventory service
	case errors.Is(err, inventory.ErrVenueNotFound),
		errors.Is(err, inventory.ErrEventNotFound),
		errors.Is(err, inventory.ErrTicketTypeNotFound),
		errors.Is(err, inventory.ErrSeatNotFound),
		errors.Is(err, inventory.ErrAllocationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, inventory.ErrEventPublished),
		errors.Is(err, inventory.ErrNoTicketTypes),
		errors.Is(err, inventory.ErrTicketTypeConflict),
		errors.Is(err, inventory.ErrSeatConflict),
		errors.Is(err, inventory.ErrSeatNotAvailable),
		errors.Is(err, inventory.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		return
	// query service
	case errors.Is(err, query.ErrEventNotFound),
		errors.Is(err, query.ErrTicketTypeNotFound),
		errors.Is(err, query.ErrVenueNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	// reservation service
	case errors.Is(err, reservation.ErrEventNotFound),
		errors.Is(err, reservation.ErrTicketTypeNotFound),
		errors.Is(err, reservation.ErrReservationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, reservation.ErrEventNotPublished),
		errors.Is(err, reservation.ErrNotOnSale),
		errors.Is(err, reservation.ErrAllocationDenied):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, reservation.ErrSeatsUnavailable),
		errors.Is(err, reservation.ErrSoldOut),
		errors.Is(err, reservation.ErrReservationExpired),
		errors.Is(err, reservation.ErrNotActive),
		errors.Is(err, reservation.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, reservation.ErrQuantityLimit),
		errors.Is(err, reservation.ErrBuyerLimit):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, domain.ErrInvalidInput):
		badRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
