package trips

import "fmt"

// MissingAircraftError reports a trip whose tail number has no aircraft row.
// Cost fields of the affected trip are unknown.
type MissingAircraftError struct {
	TripID *int64
	TailNo string
	Date   string
}

func (e *MissingAircraftError) Error() string {
	if e.TripID != nil {
		return fmt.Sprintf("trip %d on %s: no aircraft with tail number %q", *e.TripID, e.Date, e.TailNo)
	}
	return fmt.Sprintf("trip on %s: no aircraft with tail number %q", e.Date, e.TailNo)
}
