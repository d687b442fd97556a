package trips

import "github.com/wvflights/flightlog-api/pkg/pax"

// Enrich joins each trip with its aircraft by exact tail number, attaches the
// parsed passenger list and computes the invoiced cost.
//
// Trips whose tail number matches no aircraft are still returned, with a nil
// Aircraft and an unknown (nil) cost, and a MissingAircraftError is collected
// for each of them. The input slices are not modified.
func Enrich(rows []Trip, fleet []Aircraft) ([]FleetTrip, []error) {
	byTail := make(map[string]*Aircraft, len(fleet))
	for i := range fleet {
		a := fleet[i]
		byTail[a.TailNo] = &a
	}

	out := make([]FleetTrip, 0, len(rows))
	var errs []error
	for _, t := range rows {
		ft := FleetTrip{
			Trip: t,
			Pax:  pax.Parse(t.Passengers),
		}
		ft.Unknown = t.Unknown || t.ID == nil

		if a, ok := byTail[t.TailNo]; ok {
			ft.Aircraft = a
			cost := t.FlightHours * a.Rate
			ft.InvoicedCost = &cost
		} else if t.TailNo != "" {
			errs = append(errs, &MissingAircraftError{TripID: t.ID, TailNo: t.TailNo, Date: t.Date})
		}
		out = append(out, ft)
	}
	return out, errs
}
