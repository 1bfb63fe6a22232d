package projections

import (
	"context"
	"time"

	"fitstudio/internal/application/orchestrators"
	"fitstudio/internal/domain/booking"
)

// BookingSlot is one bookable start time on a date.
type BookingSlot struct {
	Time      string `json:"time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}

// GetBookingSlotsQuery carries the requested date as YYYY-MM-DD.
type GetBookingSlotsQuery struct {
	Date string
}

// GetBookingSlotsResult carries the slot grid for one date.
type GetBookingSlotsResult struct {
	Date  string        `json:"date"`
	Slots []BookingSlot `json:"slots"`
}

// GetBookingSlotsDeps holds dependencies for GetBookingSlots.
type GetBookingSlotsDeps struct {
	AppointmentStore BookedTimesStore
	Location         *time.Location
	Now              func() time.Time
}

// QueryGetBookingSlots lists the fixed slots for a date and marks which are still free.
// PRE: query.Date is YYYY-MM-DD
// POST: Slots follow the fixed grid for the weekday; a slot is unavailable when booked,
// when the date is in the past, or when it is today and the time has passed
func QueryGetBookingSlots(ctx context.Context, query GetBookingSlotsQuery, deps GetBookingSlotsDeps) (GetBookingSlotsResult, error) {
	date, err := booking.ParseDate(query.Date)
	if err != nil {
		return GetBookingSlotsResult{}, &orchestrators.ValidationError{
			Message: "validation failed",
			Fields:  map[string]string{"date": "must be YYYY-MM-DD"},
		}
	}
	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}
	today, clock := studioToday(now, deps.Location)

	booked, err := deps.AppointmentStore.BookedStartTimes(ctx, query.Date)
	if err != nil {
		return GetBookingSlotsResult{}, err
	}
	taken := make(map[string]bool, len(booked))
	for _, t := range booked {
		taken[t] = true
	}

	result := GetBookingSlotsResult{Date: query.Date}
	for _, t := range booking.TimeSlotsForDate(date) {
		end, _ := booking.CalculateEndTime(t)
		available := !taken[t]
		switch {
		case query.Date < today:
			available = false
		case query.Date == today && t <= clock:
			available = false
		}
		result.Slots = append(result.Slots, BookingSlot{Time: t, EndTime: end, Available: available})
	}
	return result, nil
}
