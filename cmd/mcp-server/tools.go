package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wvflights/flightlog-api/pkg/geo"
	"github.com/wvflights/flightlog-api/pkg/pax"
	"github.com/wvflights/flightlog-api/service"
	"github.com/wvflights/flightlog-api/trips"
)

const maxToolTrips = 100

func filterOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("search",
			mcp.Description("Case-insensitive text matched against route, passengers, department, division and comments"),
		),
		mcp.WithString("aircraft",
			mcp.Description("Tail number (e.g., N1WV)"),
		),
		mcp.WithString("department",
			mcp.Description("Exact department name"),
		),
		mcp.WithString("division",
			mcp.Description("Exact division name"),
		),
		mcp.WithString("start_date",
			mcp.Description("Earliest trip date (YYYY-MM-DD), inclusive"),
		),
		mcp.WithString("end_date",
			mcp.Description("Latest trip date (YYYY-MM-DD), inclusive"),
		),
	}
}

func newTool(name, description string, extra ...mcp.ToolOption) mcp.Tool {
	opts := append([]mcp.ToolOption{mcp.WithDescription(description)}, filterOptions()...)
	return mcp.NewTool(name, append(opts, extra...)...)
}

func registerTools(s *server.MCPServer, svc service.FlightLog) {
	s.AddTool(newTool("search_trips", "Search state aircraft trips, newest first",
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum trips to return (default and max %d)", maxToolTrips)),
		),
	), searchTrips(svc))

	s.AddTool(newTool("passenger_profile", "Summarize every trip taken by one passenger",
		mcp.WithString("passenger",
			mcp.Required(),
			mcp.Description("Passenger name or slug (e.g., 'Jim Justice' or 'jim-justice')"),
		),
	), passengerProfile(svc))

	s.AddTool(newTool("aggregate_trips", "Group trips and total their count, flight hours and invoiced cost",
		mcp.WithString("by",
			mcp.Required(),
			mcp.Description("Grouping: passenger, department, division, month or aircraft"),
		),
		mcp.WithString("sort",
			mcp.Description("Ordering: trips, hours, cost or key. Default trips"),
		),
		mcp.WithString("order",
			mcp.Description("asc or desc. Default desc"),
		),
		mcp.WithBoolean("distance",
			mcp.Description("Include flown distance per group"),
		),
		mcp.WithString("units",
			mcp.Description("Distance units: nauticalmiles or kilometers. Default nauticalmiles"),
		),
	), aggregateTrips(svc))
}

func arguments(request mcp.CallToolRequest) (map[string]interface{}, error) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, nil
	}
	argsMap, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, errors.New("Invalid arguments format")
	}
	return argsMap, nil
}

func str(argsMap map[string]interface{}, key string) string {
	v, _ := argsMap[key].(string)
	return strings.TrimSpace(v)
}

func searchParams(argsMap map[string]interface{}) trips.SearchParams {
	return trips.SearchParams{
		Search:     str(argsMap, "search"),
		Aircraft:   str(argsMap, "aircraft"),
		Department: str(argsMap, "department"),
		Division:   str(argsMap, "division"),
		StartDate:  str(argsMap, "start_date"),
		EndDate:    str(argsMap, "end_date"),
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error marshaling response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func errorResult(what string, err error) *mcp.CallToolResult {
	if errors.Is(err, service.ErrInvalidArgument) || errors.Is(err, service.ErrNotFound) {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(fmt.Sprintf("Error %s: %v", what, err))
}

// TripSummary is the compact trip form returned to tool callers.
type TripSummary struct {
	Date         string   `json:"date"`
	TailNo       string   `json:"tail_no"`
	Route        string   `json:"route"`
	Department   string   `json:"department"`
	Division     string   `json:"division,omitempty"`
	Passengers   []string `json:"passengers"`
	Duration     string   `json:"duration"`
	InvoicedCost string   `json:"invoiced_cost"`
}

func summarizeTrip(t trips.FleetTrip) TripSummary {
	s := TripSummary{
		Date:         t.Date,
		TailNo:       t.TailNo,
		Route:        trips.FormatRoute(t.Route),
		Department:   t.Department,
		Division:     t.Division,
		Passengers:   t.Pax,
		Duration:     trips.FormatDuration(t.FlightHours),
		InvoicedCost: "unknown",
	}
	if cost, known := t.Cost(); known {
		s.InvoicedCost = trips.FormatCurrency(cost)
	}
	return s
}

func summarizeTrips(all []trips.FleetTrip, limit int) []TripSummary {
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]TripSummary, len(all))
	for i, t := range all {
		out[i] = summarizeTrip(t)
	}
	return out
}

func searchTrips(svc service.FlightLog) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, err := arguments(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		limitVal, _ := argsMap["limit"].(float64)
		limit := int(limitVal)
		if limit <= 0 || limit > maxToolTrips {
			limit = maxToolTrips
		}

		all, err := svc.Trips(ctx, searchParams(argsMap))
		if err != nil {
			return errorResult("searching trips", err), nil
		}

		return jsonResult(map[string]interface{}{
			"total":        len(all),
			"flight_hours": trips.FormatDuration(trips.TotalHours(all)),
			"trips":        summarizeTrips(all, limit),
		})
	}
}

func passengerProfile(svc service.FlightLog) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, err := arguments(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		slug := pax.Slugify(str(argsMap, "passenger"))
		if slug == "" {
			return mcp.NewToolResultError("passenger is required"), nil
		}

		profile, err := svc.Passenger(ctx, slug, searchParams(argsMap))
		if err != nil {
			return errorResult("loading passenger", err), nil
		}

		return jsonResult(map[string]interface{}{
			"slug":               profile.Slug,
			"name":               profile.Name,
			"trip_count":         profile.TripCount,
			"flight_hours":       trips.FormatDuration(profile.FlightHours),
			"distance_nm":        profile.DistanceNM,
			"distance_km":        profile.DistanceKM,
			"passenger_cost":     trips.FormatCurrency(profile.PassengerCost),
			"unknown_cost_trips": profile.UnknownCostTrips,
			"trips":              summarizeTrips(profile.Trips, maxToolTrips),
		})
	}
}

func aggregateTrips(svc service.FlightLog) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, err := arguments(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		opts := trips.AggregateOptions{
			By:         trips.GroupBy(strings.ToLower(str(argsMap, "by"))),
			Sort:       trips.SortBy(strings.ToLower(str(argsMap, "sort"))),
			Descending: !strings.EqualFold(str(argsMap, "order"), "asc"),
			Units:      geo.ParseUnits(strings.ToLower(str(argsMap, "units"))),
		}
		opts.IncludeDistance, _ = argsMap["distance"].(bool)
		if opts.Sort == "" {
			opts.Sort = trips.SortTrips
		}

		groups, err := svc.Aggregate(ctx, searchParams(argsMap), opts)
		if err != nil {
			return errorResult("aggregating trips", err), nil
		}
		return jsonResult(map[string]interface{}{
			"by":     opts.By,
			"units":  opts.Units,
			"groups": groups,
		})
	}
}
