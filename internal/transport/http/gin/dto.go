package httpgin

import (
	"time"

	"github.com/kirinyoku/resv-go/internal/domain"
)

type ReservationItemInput struct {
	TicketTypeID int64  `json:"ticket_type_id" binding:"required,gt=0"`
	SeatID       *int64 `json:"seat_id"`
	Quantity     int    `json:"quantity"`
	AllocationID *int64 `json:"allocation_id"`
}

type CreateReservationRequest struct {
	UserID       int64                  `json:"user_id" binding:"required,gt=0"`
	Email        string                 `json:"email"`
	TTLSec       int                    `json:"ttl_sec"`
	DiscountCode string                 `json:"discount_code"`
	AccessCode   string                 `json:"access_code"`
	Items        []ReservationItemInput `json:"items" binding:"required,min=1,dive"`
}

type CancelReservationRequest struct {
	Reason string `json:"reason"`
}

type ReservationItemResponse struct {
	TicketTypeID   int64  `json:"ticket_type_id"`
	SeatID         *int64 `json:"seat_id,omitempty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
}

type ReservationResponse struct {
	ID            string                    `json:"id"`
	Number        string                    `json:"number"`
	EventID       int64                     `json:"event_id"`
	UserID        int64                     `json:"user_id"`
	Status        string                    `json:"status"`
	ExpiresAt     time.Time                 `json:"expires_at"`
	RemainingSec  int64                     `json:"remaining_sec"`
	Items         []ReservationItemResponse `json:"items"`
	SubtotalCents int64                     `json:"subtotal_cents"`
	DiscountCents int64                     `json:"discount_cents"`
	TotalCents    int64                     `json:"total_cents"`
}

func toReservationResponse(r *domain.Reservation, now time.Time) ReservationResponse {
	items := make([]ReservationItemResponse, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, ReservationItemResponse{
			TicketTypeID:   it.TicketTypeID,
			SeatID:         it.SeatID,
			UnitPriceCents: int64(it.UnitPrice),
			Quantity:       it.Quantity,
		})
	}

	return ReservationResponse{
		ID:            r.ID.String(),
		Number:        r.Number,
		EventID:       r.EventID,
		UserID:        r.UserID,
		Status:        string(r.Status),
		ExpiresAt:     r.ExpiresAt,
		RemainingSec:  int64(r.TimeRemaining(now).Seconds()),
		Items:         items,
		SubtotalCents: int64(r.Subtotal),
		DiscountCents: int64(r.Discount),
		TotalCents:    int64(r.Total),
	}
}

type CreateVenueRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateVenueResponse struct {
	VenueID int64 `json:"venue_id"`
}

type SeatInput struct {
	Section        string `json:"section" binding:"required"`
	Row            string `json:"row" binding:"required"`
	Number         int    `json:"number" binding:"required,gt=0"`
	Accessible     bool   `json:"accessible"`
	RestrictedView bool   `json:"restricted_view"`
	PriceCategory  string `json:"price_category"`
}

type BatchCreateSeatsRequest struct {
	Seats []SeatInput `json:"seats" binding:"required,min=1,dive"`
}

type CreateEventRequest struct {
	VenueID  int64  `json:"venue_id" binding:"required"`
	Title    string `json:"title" binding:"required"`
	StartsAt string `json:"starts_at" binding:"required"`
	EndsAt   string `json:"ends_at" binding:"required"`
}

type CreateEventResponse struct {
	EventID int64 `json:"event_id"`
}

type CreateTicketTypeRequest struct {
	EventID       int64  `json:"event_id" binding:"required,gt=0"`
	Code          string `json:"code" binding:"required"`
	Name          string `json:"name" binding:"required"`
	PriceCents    int64  `json:"price_cents" binding:"gte=0"`
	Inventory     string `json:"inventory" binding:"required,oneof=general_admission reserved_seating"`
	TotalCapacity int    `json:"total_capacity"`
}

type AddWindowRequest struct {
	From  string `json:"from" binding:"required"`
	Until string `json:"until" binding:"required"`
}

type SetLimitsRequest struct {
	MinPerOrder int `json:"min_per_order" binding:"required,gt=0"`
	MaxPerOrder int `json:"max_per_order" binding:"required,gt=0"`
	MaxPerBuyer int `json:"max_per_buyer" binding:"gte=0"`
}

type AdjustCapacityRequest struct {
	Total int `json:"total" binding:"gte=0"`
}

type SeatIDsRequest struct {
	SeatIDs []int64 `json:"seat_ids" binding:"required,min=1,dive,gt=0"`
}

type CreateAllocationRequest struct {
	EventID        int64    `json:"event_id" binding:"required,gt=0"`
	TicketTypeID   *int64   `json:"ticket_type_id"`
	Name           string   `json:"name" binding:"required"`
	TotalQuantity  int      `json:"total_quantity" binding:"required,gt=0"`
	AccessCode     string   `json:"access_code"`
	AllowedUserIDs []int64  `json:"allowed_user_ids"`
	AllowedDomains []string `json:"allowed_domains"`
	AvailableFrom  *string  `json:"available_from"`
	AvailableUntil *string  `json:"available_until"`
	ExpiresAt      *string  `json:"expires_at"`
}

type AdjustAllocationRequest struct {
	Total int `json:"total" binding:"required,gt=0"`
}

type AdjustAllocationResponse struct {
	Allocation    any     `json:"allocation"`
	ReleasedSeats []int64 `json:"released_seats,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func parseRFC3339Ptr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
