package inventory

import (
	"fmt"
	"time"
)

const nightLayout = "2006-01-02"

// maxStayNights bounds a single reservation.
const maxStayNights = 365

// ExpandNights lists the nights of the stay [checkIn, checkOut) as YYYY-MM-DD strings.
func ExpandNights(checkIn, checkOut string) ([]string, error) {
	start, err := time.Parse(nightLayout, checkIn)
	if err != nil {
		return nil, fmt.Errorf("%w: check-in %q is not a date", ErrInvalidRange, checkIn)
	}
	end, err := time.Parse(nightLayout, checkOut)
	if err != nil {
		return nil, fmt.Errorf("%w: check-out %q is not a date", ErrInvalidRange, checkOut)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: check-in must precede check-out", ErrInvalidRange)
	}

	var nights []string
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if len(nights) == maxStayNights {
			return nil, fmt.Errorf("%w: stay longer than %d nights", ErrInvalidRange, maxStayNights)
		}
		nights = append(nights, d.Format(nightLayout))
	}
	return nights, nil
}
