package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wvflights/flightlog-api/pkg/geo"
	"github.com/wvflights/flightlog-api/service"
	"github.com/wvflights/flightlog-api/trips"
)

// ListQuery is the query string accepted by the paginated list endpoints.
type ListQuery struct {
	trips.SearchParams
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// AggregateQuery is the query string accepted by the aggregate endpoints.
type AggregateQuery struct {
	ListQuery
	By       string `form:"by"`
	Sort     string `form:"sort"`
	Order    string `form:"order"`
	Distance bool   `form:"distance"`
	Units    string `form:"units"`
}

// Options converts the query into aggregation options. Sort defaults to trip
// count, descending unless order=asc.
func (q AggregateQuery) Options() (trips.AggregateOptions, error) {
	opts := trips.AggregateOptions{
		By:              trips.GroupBy(strings.ToLower(q.By)),
		Sort:            trips.SortBy(strings.ToLower(q.Sort)),
		IncludeDistance: q.Distance,
		Units:           geo.ParseUnits(strings.ToLower(q.Units)),
	}
	if opts.Sort == "" {
		opts.Sort = trips.SortTrips
	}
	switch strings.ToLower(q.Order) {
	case "", "desc":
		opts.Descending = true
	case "asc":
		opts.Descending = false
	default:
		return opts, fmt.Errorf("%w: order must be asc or desc, got %q", service.ErrInvalidArgument, q.Order)
	}
	return opts, nil
}

func bindList(c *gin.Context) (ListQuery, error) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return q, fmt.Errorf("%w: %v", service.ErrInvalidArgument, err)
	}
	q.SearchParams = normalize(q.SearchParams)
	return q, nil
}

func bindAggregate(c *gin.Context) (AggregateQuery, error) {
	var q AggregateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return q, fmt.Errorf("%w: %v", service.ErrInvalidArgument, err)
	}
	q.SearchParams = normalize(q.SearchParams)
	return q, nil
}

func normalize(p trips.SearchParams) trips.SearchParams {
	p.Search = strings.TrimSpace(p.Search)
	p.Aircraft = strings.TrimSpace(p.Aircraft)
	p.Department = strings.TrimSpace(p.Department)
	p.Division = strings.TrimSpace(p.Division)
	p.StartDate = strings.TrimSpace(p.StartDate)
	p.EndDate = strings.TrimSpace(p.EndDate)
	return p
}
