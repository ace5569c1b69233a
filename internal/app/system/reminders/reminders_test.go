package reminders

import (
	"testing"
	"time"

	"github.com/harmonykeys/lessonhub/internal/domain/models"
)

func TestSendTimeOutsideQuietHours(t *testing.T) {
	settings := models.DefaultNotificationSettings()
	// Lesson Tuesday 16:00; 1440 min lead puts the send at Monday
	// 16:00, well outside 22-7 quiet hours.
	start := time.Date(2026, time.October, 6, 16, 0, 0, 0, time.UTC)

	got := SendTime(start, settings, time.UTC)
	want := time.Date(2026, time.October, 5, 16, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("send time: got %v, want %v", got, want)
	}
}

func TestSendTimeShiftsOutOfQuietHoursMorning(t *testing.T) {
	settings := models.DefaultNotificationSettings()
	// Lesson at 02:00; day-before lead lands at 02:00, inside the
	// morning half of the 22-7 window. Shifted to 07:00 same day.
	start := time.Date(2026, time.October, 6, 2, 0, 0, 0, time.UTC)

	got := SendTime(start, settings, time.UTC)
	want := time.Date(2026, time.October, 5, 7, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("send time: got %v, want %v", got, want)
	}
}

func TestSendTimeShiftsOutOfQuietHoursEvening(t *testing.T) {
	settings := models.DefaultNotificationSettings()
	// Send lands at 23:00, in the evening half of the window that
	// spans midnight. Shifted to 07:00 the next day.
	start := time.Date(2026, time.October, 6, 23, 0, 0, 0, time.UTC)

	got := SendTime(start, settings, time.UTC)
	want := time.Date(2026, time.October, 6, 7, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("send time: got %v, want %v", got, want)
	}
}

func TestSendTimeRespectsStudentTimezone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	settings := models.NotificationSettings{
		Enabled:     true,
		LeadMinutes: 120,
		QuietHours:  models.QuietHours{Start: 22, End: 7},
	}
	// Lesson at 08:00 New York; 2h lead lands at 06:00 local, still
	// quiet. Shifted to 07:00 New York.
	start := time.Date(2026, time.October, 6, 8, 0, 0, 0, ny)

	got := SendTime(start, settings, ny)
	want := time.Date(2026, time.October, 6, 7, 0, 0, 0, ny)
	if !got.Equal(want) {
		t.Errorf("send time: got %v, want %v", got, want)
	}
}

func TestInQuietHours(t *testing.T) {
	span := models.QuietHours{Start: 22, End: 7}
	for _, tc := range []struct {
		hour int
		want bool
	}{
		{21, false}, {22, true}, {23, true}, {0, true}, {6, true}, {7, false}, {12, false},
	} {
		if got := inQuietHours(tc.hour, span); got != tc.want {
			t.Errorf("inQuietHours(%d, 22-7): got %v, want %v", tc.hour, got, tc.want)
		}
	}

	day := models.QuietHours{Start: 9, End: 17}
	if !inQuietHours(12, day) {
		t.Errorf("12 should be inside 9-17")
	}
	if inQuietHours(8, day) {
		t.Errorf("8 should be outside 9-17")
	}

	if inQuietHours(5, models.QuietHours{Start: 6, End: 6}) {
		t.Errorf("zero-width window should never match")
	}
}
