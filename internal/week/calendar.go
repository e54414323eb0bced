package week

import (
	"fmt"
	"time"
)

// DateLayout is the user-facing date format
const DateLayout = "02/01/2006"

// InputLayout is the format of start dates posted by the admin UI
const InputLayout = "2006-01-02"

var weekdayNames = [7]string{
	"Chủ nhật",
	"Thứ hai",
	"Thứ ba",
	"Thứ tư",
	"Thứ năm",
	"Thứ sáu",
	"Thứ bảy",
}

// WeekdayName returns the Vietnamese name of d
func WeekdayName(d time.Weekday) string {
	return weekdayNames[d]
}

// FormatDate renders t as dd/MM/yyyy
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseStartDate parses a yyyy-MM-dd date as midnight in loc
func ParseStartDate(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, ErrStartDateRequired
	}
	t, err := time.ParseInLocation(InputLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidStartDate, value)
	}
	return t, nil
}

// ValidateStart rejects start dates that are not Mondays, naming the weekday found
func ValidateStart(start time.Time) error {
	if day := start.Weekday(); day != time.Monday {
		return fmt.Errorf("%w: selected day is %s", ErrNotMonday, WeekdayName(day))
	}
	return nil
}

// EndOf returns the Friday closing a week that starts on start, at 23:59:59.999
func EndOf(start time.Time) time.Time {
	friday := start.AddDate(0, 0, 4)
	return time.Date(friday.Year(), friday.Month(), friday.Day(), 23, 59, 59, int(999*time.Millisecond), friday.Location())
}

// DayWindow returns [00:00, 23:59:59.999] of the calendar day containing t
func DayWindow(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	to := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
	return from, to
}
