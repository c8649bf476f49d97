package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Weekday is one of the five delivery days. Stored and serialized in its
// canonical lowercase English form.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
)

// Weekdays lists the delivery days in week order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

// ErrUnknownWeekday is returned for day keys outside the delivery week.
var ErrUnknownWeekday = errors.New("unknown weekday")

// weekdayAliases maps every accepted external spelling to its canonical day.
// Older clients send Russian day names; the bot sent three-letter keys.
var weekdayAliases = map[string]Weekday{
	"monday":      Monday,
	"mon":         Monday,
	"понедельник": Monday,
	"tuesday":     Tuesday,
	"tue":         Tuesday,
	"вторник":     Tuesday,
	"wednesday":   Wednesday,
	"wed":         Wednesday,
	"среда":       Wednesday,
	"thursday":    Thursday,
	"thu":         Thursday,
	"четверг":     Thursday,
	"friday":      Friday,
	"fri":         Friday,
	"пятница":     Friday,
}

// ParseWeekday normalizes an external day key.
func ParseWeekday(raw string) (Weekday, error) {
	day, ok := weekdayAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownWeekday, raw)
	}
	return day, nil
}

// Valid reports whether d is one of the canonical delivery days.
func (d Weekday) Valid() bool {
	return d.Index() >= 0
}

// Index returns the offset of d from Monday, or -1 for an invalid day.
func (d Weekday) Index() int {
	for i, day := range Weekdays {
		if day == d {
			return i
		}
	}
	return -1
}

// DateIn returns the calendar date of d within the week starting at weekStart.
func (d Weekday) DateIn(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, d.Index())
}

// UnmarshalBSONValue accepts legacy localized spellings so old documents
// still decode after the day keys were normalized.
func (d *Weekday) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null:
		*d = ""
		return nil
	case bsontype.String:
		var value string
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		parsed, err := ParseWeekday(value)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("cannot decode %s into Weekday", t)
	}
}

// MarshalBSONValue always writes the canonical form.
func (d Weekday) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(string(d))
}

// DayIndex returns the weekday index of t counted from Monday (0..6).
func DayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// DateOf strips the clock from t, keeping the calendar date as seen in t's
// own location. The result is midnight UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MondayOf returns the Monday of the week containing t.
func MondayOf(t time.Time) time.Time {
	return DateOf(t).AddDate(0, 0, -DayIndex(t))
}

// DateKey formats a calendar date for use as a map key or query parameter.
func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(raw string) (time.Time, error) {
	return time.Parse(time.DateOnly, strings.TrimSpace(raw))
}
