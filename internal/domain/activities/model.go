package activities

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPlanned   Status = "planned"
	StatusDone      Status = "done"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPlanned:
		return StatusPlanned, true
	case StatusDone:
		return StatusDone, true
	case StatusCancelled:
		return StatusCancelled, true
	default:
		return "", false
	}
}

// Formatos de fecha/hora de entrada (date + time por separado) y de salida.
const (
	DateLayout     = "2006-01-02"
	ClockLayout    = "15:04"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Activity: status == done <=> DoneAt != nil && DoneBy != "".
type Activity struct {
	ID              string
	CatID           string
	CatName         string // proyección (join con cats), no se persiste
	Title           string
	Description     string
	StartsAt        time.Time
	Status          Status
	DoneAt          *time.Time
	DoneBy          string
	DoneDescription string
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (a Activity) IsDone() bool {
	return a.Status == StatusDone
}

// markDone (re)escribe los datos de cierre con el actor y el momento actuales.
func (a *Activity) markDone(by string, at time.Time, description string) {
	a.Status = StatusDone
	a.DoneAt = &at
	a.DoneBy = by
	a.DoneDescription = strings.TrimSpace(description)
}

// ParseStartsAt combina fecha y hora en loc, con precisión de segundos.
// Acepta "HH:MM" y "HH:MM:SS".
func ParseStartsAt(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	raw := strings.TrimSpace(date) + " " + strings.TrimSpace(clock)

	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, raw, loc)
	if err != nil {
		var err2 error
		t, err2 = time.ParseInLocation(DateTimeLayout, raw, loc)
		if err2 != nil {
			return time.Time{}, err
		}
	}
	return t.Truncate(time.Second), nil
}

type Dashboard struct {
	Recent  []Activity
	Planned []Activity
}
