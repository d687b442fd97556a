package db

import (
	"fmt"
	"strings"

	"github.com/wvflights/flightlog-api/trips"
)

// searchExpr mirrors trips.SearchText: present fields joined by one space.
// NULLIF keeps empty columns from contributing a separator.
const searchExpr = `concat_ws(' ', NULLIF(route, ''), NULLIF(passengers, ''), NULLIF(department, ''), NULLIF(division, ''), NULLIF(comments, ''))`

// BuildTripWhere renders the predicates of p as a SQL WHERE body with
// positional parameters, so that the rows it selects are exactly those
// trips.Matches accepts. An empty p yields "TRUE".
func BuildTripWhere(p trips.SearchParams) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	add := func(format string, v interface{}) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf(format, len(args)))
	}

	if p.Aircraft != "" {
		add("tail_no = $%d", p.Aircraft)
	}
	if p.Department != "" {
		add("department = $%d", p.Department)
	}
	if p.Division != "" {
		add("division = $%d", p.Division)
	}
	if p.StartDate != "" {
		add("date >= $%d", p.StartDate)
	}
	if p.EndDate != "" {
		add("date <= $%d", p.EndDate)
	}
	if p.Search != "" {
		add(searchExpr+` ILIKE $%d ESCAPE '\'`, "%"+EscapeLike(p.Search)+"%")
	}

	if len(clauses) == 0 {
		return "TRUE", nil
	}
	return strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE metacharacters so s matches literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
