package booking_test

import (
	"testing"
	"time"

	"fitstudio/internal/domain/booking"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := booking.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

// TestTimeSlotsForDate_Sunday verifies every Sunday gets exactly the four morning slots.
func TestTimeSlotsForDate_Sunday(t *testing.T) {
	want := []string{"09:00", "09:20", "09:40", "10:00"}
	for _, day := range []string{"2026-10-18", "2026-10-25", "2027-01-03"} {
		got := booking.TimeSlotsForDate(mustDate(t, day))
		if len(got) != 4 {
			t.Fatalf("%s: got %d slots, want 4", day, len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s: slot[%d] = %s, want %s", day, i, got[i], want[i])
			}
		}
	}
}

// TestTimeSlotsForDate_Weekdays verifies Monday through Saturday get ten slots 10:00..13:00.
func TestTimeSlotsForDate_Weekdays(t *testing.T) {
	want := []string{"10:00", "10:20", "10:40", "11:00", "11:20", "11:40", "12:00", "12:20", "12:40", "13:00"}
	// 2026-10-19 is a Monday
	start := mustDate(t, "2026-10-19")
	for i := 0; i < 6; i++ {
		day := start.AddDate(0, 0, i)
		got := booking.TimeSlotsForDate(day)
		if len(got) != 10 {
			t.Fatalf("%s: got %d slots, want 10", day.Weekday(), len(got))
		}
		for j := range want {
			if got[j] != want[j] {
				t.Errorf("%s: slot[%d] = %s, want %s", day.Weekday(), j, got[j], want[j])
			}
		}
	}
}

// TestTimeSlotsForDate_ReturnsCopy verifies callers cannot corrupt the Sunday table.
func TestTimeSlotsForDate_ReturnsCopy(t *testing.T) {
	sunday := mustDate(t, "2026-10-18")
	got := booking.TimeSlotsForDate(sunday)
	got[0] = "23:59"
	if again := booking.TimeSlotsForDate(sunday); again[0] != "09:00" {
		t.Errorf("slot table mutated: %v", again)
	}
}

// TestCalculateEndTime covers minute and hour carry.
func TestCalculateEndTime(t *testing.T) {
	tests := []struct {
		start   string
		want    string
		wantErr bool
	}{
		{"10:50", "11:10", false},
		{"12:40", "13:00", false},
		{"10:00", "10:20", false},
		{"09:40", "10:00", false},
		{"23:50", "00:10", false},
		{"bad", "", true},
		{"25:00", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			got, err := booking.CalculateEndTime(tt.start)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CalculateEndTime(%q) error = %v, wantErr %v", tt.start, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CalculateEndTime(%q) = %q, want %q", tt.start, got, tt.want)
			}
		})
	}
}

// TestIsValidTimeSlot checks membership for both weekday classes.
func TestIsValidTimeSlot(t *testing.T) {
	sunday := mustDate(t, "2026-10-18")
	monday := mustDate(t, "2026-10-19")
	tests := []struct {
		name string
		date time.Time
		time string
		want bool
	}{
		{"sunday first", sunday, "09:00", true},
		{"sunday last", sunday, "10:00", true},
		{"sunday weekday slot", sunday, "10:20", false},
		{"sunday off grid", sunday, "09:10", false},
		{"monday first", monday, "10:00", true},
		{"monday last", monday, "13:00", true},
		{"monday sunday slot", monday, "09:40", false},
		{"monday after window", monday, "13:20", false},
		{"monday off grid", monday, "11:05", false},
		{"garbage", monday, "noon", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := booking.IsValidTimeSlot(tt.date, tt.time); got != tt.want {
				t.Errorf("IsValidTimeSlot(%s, %s) = %v, want %v", tt.date.Format(booking.DateLayout), tt.time, got, tt.want)
			}
		})
	}
}

// TestIsValidTimeSlot_RejectsEverythingOutsideSet sweeps every minute of the day.
func TestIsValidTimeSlot_RejectsEverythingOutsideSet(t *testing.T) {
	for _, date := range []time.Time{mustDate(t, "2026-10-18"), mustDate(t, "2026-10-21")} {
		allowed := map[string]bool{}
		for _, s := range booking.TimeSlotsForDate(date) {
			allowed[s] = true
		}
		accepted := 0
		for m := 0; m < 24*60; m++ {
			hhmm, _ := booking.AddMinutes("00:00", m)
			if booking.IsValidTimeSlot(date, hhmm) {
				accepted++
				if !allowed[hhmm] {
					t.Errorf("%s accepted %s outside slot set", date.Weekday(), hhmm)
				}
			}
		}
		if accepted != len(allowed) {
			t.Errorf("%s accepted %d times, want %d", date.Weekday(), accepted, len(allowed))
		}
	}
}
