package trips

import (
	"errors"
	"math"
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func id(n int64) *int64 { return &n }

func fleet() []Aircraft {
	return []Aircraft{
		{TailNo: "N1WV", Name: "King Air 350", Rate: 100, Type: TypeAirplane, Status: StatusActive},
		{TailNo: "N2WV", Name: "Bell 407", Rate: 50, Type: TypeHelicopter, Status: StatusActive},
	}
}

func sampleTrips() []Trip {
	return []Trip{
		{ID: id(1), Date: "2023-01-05", TailNo: "N1WV", Route: "CRW-LWB-CRW", Passengers: "A, B", Department: "Governor", Division: "Office of the Governor", FlightHours: 2},
		{ID: id(2), Date: "2023-01-31", TailNo: "N1WV", Route: "CRW-PKB", Passengers: "A", Department: "Commerce", FlightHours: 1, Comments: "Economic development visit"},
		{ID: id(3), Date: "2023-02-01", TailNo: "N2WV", Route: "CRW-MGW", Passengers: "Jane Doe (Sec.); C", Department: "Governor", Division: "Office of the Governor", FlightHours: 1.5},
		{ID: id(4), Date: "2022-12-31", TailNo: "N9XX", Route: "CRW-HTS", Department: "Health", FlightHours: 1},
	}
}

func enriched(t *testing.T) []FleetTrip {
	t.Helper()
	out, _ := Enrich(sampleTrips(), fleet())
	return out
}

func TestEnrich(t *testing.T) {
	out, errs := Enrich(sampleTrips(), fleet())
	require.Len(t, out, 4)

	require.NotNil(t, out[0].InvoicedCost)
	assert.Equal(t, 200.0, *out[0].InvoicedCost)
	assert.Equal(t, []string{"A", "B"}, out[0].Pax)
	assert.Equal(t, "King Air 350", out[0].Aircraft.Name)

	assert.Equal(t, 75.0, *out[2].InvoicedCost)
	assert.Equal(t, []string{"Jane Doe (Sec.)", "C"}, out[2].Pax)

	assert.Nil(t, out[3].Aircraft)
	assert.Nil(t, out[3].InvoicedCost)
	assert.Equal(t, []string{}, out[3].Pax)

	require.Len(t, errs, 1)
	var missing *MissingAircraftError
	require.True(t, errors.As(errs[0], &missing))
	assert.Equal(t, "N9XX", missing.TailNo)
	assert.Equal(t, int64(4), *missing.TripID)
}

func TestEnrich_UnknownTrips(t *testing.T) {
	out, errs := Enrich([]Trip{{Date: "2023-03-01", TailNo: "N1WV", FlightHours: 1, FlightPath: "LINESTRING(1 2, 3 4)"}}, fleet())
	assert.Empty(t, errs)
	require.Len(t, out, 1)
	assert.True(t, out[0].Unknown)
	assert.Equal(t, 100.0, *out[0].InvoicedCost)
}

func TestEnrich_ScenarioCostAndPassengers(t *testing.T) {
	rows := []Trip{{ID: id(1), TailNo: "N1WV", Passengers: "A, B", FlightHours: 2, Department: "X"}}
	out, errs := Enrich(rows, []Aircraft{{TailNo: "N1WV", Rate: 100}})
	require.Empty(t, errs)
	assert.Equal(t, 200.0, *out[0].InvoicedCost)

	groups, err := Aggregate(out, AggregateOptions{By: ByPassenger, Sort: SortKey})
	require.NoError(t, err)
	require.Len(t, groups, 2)
	for _, g := range groups {
		assert.Equal(t, 1, g.Trips)
		assert.Equal(t, 100.0, g.InvoicedCost)
	}
}

func TestFilter(t *testing.T) {
	all := enriched(t)

	tests := []struct {
		name     string
		params   SearchParams
		expected []int64
	}{
		{"no filters", SearchParams{}, []int64{1, 2, 3, 4}},
		{"aircraft", SearchParams{Aircraft: "N1WV"}, []int64{1, 2}},
		{"aircraft is case sensitive", SearchParams{Aircraft: "n1wv"}, nil},
		{"department", SearchParams{Department: "Governor"}, []int64{1, 3}},
		{"division", SearchParams{Division: "Office of the Governor"}, []int64{1, 3}},
		{"date range inclusive", SearchParams{StartDate: "2023-01-01", EndDate: "2023-01-31"}, []int64{1, 2}},
		{"start only", SearchParams{StartDate: "2023-02-01"}, []int64{3}},
		{"end only", SearchParams{EndDate: "2022-12-31"}, []int64{4}},
		{"search route", SearchParams{Search: "mgw"}, []int64{3}},
		{"search comments", SearchParams{Search: "ECONOMIC"}, []int64{2}},
		{"search passengers", SearchParams{Search: "jane doe"}, []int64{3}},
		{"search skips missing fields", SearchParams{Search: "undefined"}, nil},
		{"combined", SearchParams{Aircraft: "N1WV", Department: "Governor", Search: "lwb"}, []int64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(all, tt.params)
			var ids []int64
			for _, trip := range got {
				ids = append(ids, *trip.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestFilter_Idempotent(t *testing.T) {
	all := enriched(t)
	params := SearchParams{Department: "Governor", StartDate: "2023-01-01"}

	once := Filter(all, params)
	twice := Filter(once, params)
	assert.Equal(t, once, twice)
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	all := enriched(t)
	before := make([]FleetTrip, len(all))
	copy(before, all)

	_ = Filter(all, SearchParams{Aircraft: "N2WV"})
	assert.Equal(t, before, all)
}

func TestSearchText(t *testing.T) {
	trip := Trip{Route: "CRW-LWB", Department: "Governor"}
	assert.Equal(t, "CRW-LWB Governor", SearchText(trip))
}

func TestSearchParams(t *testing.T) {
	assert.True(t, SearchParams{}.IsZero())
	assert.False(t, SearchParams{Search: "x"}.IsZero())
	assert.NotEqual(t, SearchParams{Department: "a"}.Key(), SearchParams{Division: "a"}.Key())
	assert.Equal(t, "", SearchParams{}.Key())
	assert.Equal(t, "aircraft=N1WV&search=crw", SearchParams{Search: "crw", Aircraft: "N1WV"}.Key())
}

func TestSearchParams_KeyDistinguishesSeparators(t *testing.T) {
	cases := [][2]SearchParams{
		{{Search: "crw", Aircraft: "lwb|N1WV"}, {Search: "crw|lwb", Aircraft: "N1WV"}},
		{{Search: "crw|N1WV", Aircraft: "Governor"}, {Search: "crw", Aircraft: "N1WV", Department: "Governor"}},
		{{Department: "a&division=b"}, {Department: "a", Division: "b"}},
	}
	for _, c := range cases {
		assert.NotEqual(t, c[0].Key(), c[1].Key(), "%+v vs %+v", c[0], c[1])
	}
}

func TestAircraft_ParseContent(t *testing.T) {
	a := Aircraft{TailNo: "N1WV", Content: `{"image":"https://example.com/a.jpg","resources":{"FAA Registry":"https://registry.faa.gov/N1WV"}}`}
	require.NoError(t, a.ParseContent())
	require.NotNil(t, a.ContentJSON)
	assert.Equal(t, "https://example.com/a.jpg", a.ContentJSON.Image)
	assert.Equal(t, "https://registry.faa.gov/N1WV", a.ContentJSON.Resources["FAA Registry"])

	empty := Aircraft{TailNo: "N2WV"}
	require.NoError(t, empty.ParseContent())
	assert.Nil(t, empty.ContentJSON)

	bad := Aircraft{TailNo: "N3WV", Content: `{"image":`}
	assert.Error(t, bad.ParseContent())
	assert.Nil(t, bad.ContentJSON)
}

func TestDataSource_Cites(t *testing.T) {
	ds := DataSource{TripIDs: []int64{1, 3}}
	assert.True(t, ds.Cites(3))
	assert.False(t, ds.Cites(2))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	p := Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, p.Data)
	assert.Equal(t, 5, p.Total)
	assert.Equal(t, 3, p.TotalPages)

	last := Paginate(items, 3, 2)
	assert.Equal(t, []int{5}, last.Data)

	beyond := Paginate(items, 10, 2)
	assert.Empty(t, beyond.Data)
	assert.NotNil(t, beyond.Data)

	defaults := Paginate(items, 0, 0)
	assert.Equal(t, 1, defaults.Page)
	assert.Equal(t, DefaultPageSize, defaults.PageSize)
	assert.Len(t, defaults.Data, 5)

	if diff := deep.Equal(Paginate([]int{}, 1, 10), Page[int]{Data: []int{}, Page: 1, PageSize: 10}); diff != nil {
		t.Error(diff)
	}
}

func TestPaginate_HugePage(t *testing.T) {
	for _, size := range []int{1, 50, MaxPageSize} {
		p := Paginate([]int{1, 2, 3}, math.MaxInt, size)
		assert.Empty(t, p.Data)
		assert.Equal(t, 3, p.Total)
		assert.Equal(t, math.MaxInt, p.Page)
	}
}
