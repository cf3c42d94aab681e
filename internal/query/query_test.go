package query

import (
	"math"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/suite"
)

func ptr[V any](v V) *V { return &v }

type QuerySuite struct {
	suite.Suite
	rows []jobRow
}

func TestQuerySuite(t *testing.T) {
	suite.Run(t, new(QuerySuite))
}

func (s *QuerySuite) SetupTest() {
	base := time.Date(2025, 2, 12, 0, 0, 0, 0, time.UTC)
	prusa := &vendorRow{ID: 1, Name: "Prusament"}
	generic := &vendorRow{ID: 2, Name: "Generic"}
	pla := &spoolRow{ID: 1, Name: ptr("PLA Galaxy"), VendorID: ptr(int64(1)), Vendor: prusa}
	petg := &spoolRow{ID: 2, Name: ptr("PETG"), VendorID: ptr(int64(2)), Vendor: generic}

	s.rows = []jobRow{
		{ID: 1, Created: base, Name: ptr("Exact Name"), PowerWatts: ptr(250.0), SpoolID: ptr(int64(1)), Spool: pla},
		{ID: 2, Created: base.Add(time.Hour), Name: ptr("Exact Name Pro"), PowerWatts: ptr(120.0), SpoolID: ptr(int64(2)), Spool: petg},
		{ID: 3, Created: base.Add(2 * time.Hour), Name: ptr("bench"), PowerWatts: ptr(250.0)},
		{ID: 4, Created: base.Add(3 * time.Hour), Name: ptr("Apex"), PowerWatts: ptr(120.0), SpoolID: ptr(int64(1)), Spool: pla},
		{ID: 5, Created: base.Add(4 * time.Hour), PowerWatts: nil},
	}
}

func ids(rows []jobRow) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

// TestPagination verifies total count is computed before limit/offset.
func (s *QuerySuite) TestPagination() {
	s.Run("limit 2 over 5 rows reports total 5", func() {
		res, err := New(jobTable).Paginate(Page{Limit: ptr(2)}).Apply(s.rows)
		s.Require().NoError(err)
		s.Len(res.Items, 2)
		s.Equal(5, res.TotalCount)
		s.Equal([]int64{1, 2}, ids(res.Items))
	})

	s.Run("offset past the end returns no items", func() {
		res, err := New(jobTable).Paginate(Page{Limit: ptr(2), Offset: 10}).Apply(s.rows)
		s.Require().NoError(err)
		s.Empty(res.Items)
		s.Equal(5, res.TotalCount)
	})

	s.Run("largest limit with an offset does not overflow", func() {
		res, err := New(jobTable).Paginate(Page{Limit: ptr(math.MaxInt), Offset: 1}).Apply(s.rows)
		s.Require().NoError(err)
		s.Equal([]int64{2, 3, 4, 5}, ids(res.Items))
		s.Equal(5, res.TotalCount)
	})

	s.Run("no limit returns everything and ignores offset", func() {
		res, err := New(jobTable).Paginate(Page{Offset: 3}).Apply(s.rows)
		s.Require().NoError(err)
		s.Len(res.Items, 5)
		s.Equal(5, res.TotalCount)
	})

	s.Run("total counts filtered rows only", func() {
		f, err := ParseIDs("1")
		s.Require().NoError(err)
		res, err := New(jobTable).WhereIDs("filament_id", f).Paginate(Page{Limit: ptr(1)}).Apply(s.rows)
		s.Require().NoError(err)
		s.Len(res.Items, 1)
		s.Equal(2, res.TotalCount)
	})

	s.Run("negative limit is invalid", func() {
		_, err := New(jobTable).Paginate(Page{Limit: ptr(-1)}).Apply(s.rows)
		s.ErrorIs(err, ErrBadPage)
	})
}

// TestIDFilter verifies set membership and the null sentinel.
func (s *QuerySuite) TestIDFilter() {
	s.Run("-1 matches absent only", func() {
		f, err := ParseIDs("-1")
		s.Require().NoError(err)
		res, err := New(jobTable).WhereIDs("filament_id", f).Apply(s.rows)
		s.Require().NoError(err)
		s.Equal([]int64{3, 5}, ids(res.Items))
	})

	s.Run("1,-1 matches id 1 or absent", func() {
		f, err := ParseIDs("1,-1")
		s.Require().NoError(err)
		res, err := New(jobTable).WhereIDs("filament_id", f).Apply(s.rows)
		s.Require().NoError(err)
		s.Equal([]int64{1, 3, 4, 5}, ids(res.Items))
	})

	s.Run("nested id field", func() {
		f, err := ParseIDs("2")
		s.Require().NoError(err)
		res, err := New(jobTable).WhereIDs("filament.vendor.id", f).Apply(s.rows)
		s.Require().NoError(err)
		s.Equal([]int64{2}, ids(res.Items))
	})

	s.Run("malformed list", func() {
		_, err := ParseIDs("1,abc")
		s.ErrorIs(err, ErrBadFilter)
		_, err = ParseIDs(" , ")
		s.ErrorIs(err, ErrBadFilter)
	})

	s.Run("id filter on a string field", func() {
		f, _ := ParseIDs("1")
		_, err := New(jobTable).WhereIDs("name", f).Apply(s.rows)
		s.ErrorIs(err, ErrBadFilter)
	})
}

// TestTermFilter verifies substring, exact and empty terms.
func (s *QuerySuite) TestTermFilter() {
	s.Run("quoted term is exact and case-insensitive", func() {
		res, err := New(jobTable).WhereTerms("name", ParseTerms(`"exact name"`)).Apply(s.rows)
		s.Require().NoError(err)
		s.Equal([]int64{1}, ids(res.Items))
	})

	s.Run("unquoted term is substring", func() {
		res, err := New(jobTable).WhereTerms("name", ParseTerms("EXACT")).Apply(s.rows)
		s.Require().NoError(err)
		s.Equal([]int64{1, 2}, ids(res.Items))
	})

	s.Run("terms are OR'd", func() {
		res, err := New(jobTable).WhereTerms("name", ParseTerms(`"exact name",ben`)).Apply(s.rows)
		s.Require().NoError(err)
		s.Equal([]int64{1, 3}, ids(res.Items))
	})

	s.Run("empty term matches absent", func() {
		res, err := New(jobTable).WhereTerms("name", ParseTerms("")).Apply(s.rows)
		s.Require().NoError(err)
		s.Equal([]int64{5}, ids(res.Items))
	})

	s.Run("term filter through a relation", func() {
		res, err := New(jobTable).WhereTerms("filament.vendor.name", ParseTerms("prusa")).Apply(s.rows)
		s.Require().NoError(err)
		s.Equal([]int64{1, 4}, ids(res.Items))
	})

	s.Run("term filter on a numeric field", func() {
		_, err := New(jobTable).WhereTerms("power_watts", ParseTerms("1")).Apply(s.rows)
		s.ErrorIs(err, ErrBadFilter)
	})
}

// TestSort verifies multi-key precedence and stability.
func (s *QuerySuite) TestSort() {
	s.Run("power asc then name desc", func() {
		keys, err := ParseSort("power_watts:asc,name:desc")
		s.Require().NoError(err)
		res, err := New(jobTable).OrderBy(keys...).Apply(s.rows)
		s.Require().NoError(err)
		// 120: "Exact Name Pro"(2) > "Apex"(4); 250: "bench"(3) > "Exact Name"(1); null power last.
		s.Equal([]int64{2, 4, 3, 1, 5}, ids(res.Items))
	})

	s.Run("descending puts absent values first", func() {
		keys, err := ParseSort("power_watts:DESC")
		s.Require().NoError(err)
		res, err := New(jobTable).OrderBy(keys...).Apply(s.rows)
		s.Require().NoError(err)
		s.Equal([]int64{5, 1, 3, 2, 4}, ids(res.Items))
	})

	s.Run("sort through relation", func() {
		keys, err := ParseSort("filament.vendor.name:asc,id:desc")
		s.Require().NoError(err)
		res, err := New(jobTable).OrderBy(keys...).Apply(s.rows)
		s.Require().NoError(err)
		s.Equal([]int64{2, 4, 1, 5, 3}, ids(res.Items))
	})

	s.Run("repeated runs give the same order", func() {
		q := New(jobTable)
		first, err := q.Apply(s.rows)
		s.Require().NoError(err)
		second, err := q.Apply(s.rows)
		s.Require().NoError(err)
		s.Equal(ids(first.Items), ids(second.Items))
	})

	s.Run("unknown direction", func() {
		_, err := ParseSort("name:up")
		s.ErrorIs(err, ErrBadSort)
	})

	s.Run("missing direction", func() {
		_, err := ParseSort("name")
		s.ErrorIs(err, ErrBadSort)
	})

	s.Run("unknown field is reported before execution", func() {
		q := New(jobTable).OrderBy(SortKey{Path: "nope"})
		s.ErrorIs(q.Err(), ErrUnknownField)
		_, err := q.SQL("*", "job")
		s.ErrorIs(err, ErrUnknownField)
	})
}

// TestSQL verifies rendered statements.
func (s *QuerySuite) TestSQL() {
	idf, err := ParseIDs("1,2,-1")
	s.Require().NoError(err)
	keys, err := ParseSort("filament.vendor.name:desc")
	s.Require().NoError(err)

	stmt, err := New(jobTable).
		WhereIDs("filament_id", idf).
		WhereTerms("name", ParseTerms(`50%,"Exact",`)).
		OrderBy(keys...).
		Paginate(Page{Limit: ptr(10), Offset: 20}).
		SQL("job.*", "job LEFT JOIN filament ON filament.id = job.filament_id LEFT JOIN vendor ON vendor.id = filament.vendor_id")
	s.Require().NoError(err)

	s.Equal("SELECT job.* FROM job LEFT JOIN filament ON filament.id = job.filament_id LEFT JOIN vendor ON vendor.id = filament.vendor_id"+
		" WHERE (job.filament_id IS NULL OR job.filament_id = ANY($1))"+
		" AND (job.name ILIKE $2 OR LOWER(job.name) = LOWER($3) OR (job.name IS NULL OR job.name = ''))"+
		" ORDER BY vendor.name COLLATE \"C\" DESC, job.id ASC LIMIT 10 OFFSET 20", stmt.Select)
	s.Equal("SELECT COUNT(*) FROM job LEFT JOIN filament ON filament.id = job.filament_id LEFT JOIN vendor ON vendor.id = filament.vendor_id"+
		" WHERE (job.filament_id IS NULL OR job.filament_id = ANY($1))"+
		" AND (job.name ILIKE $2 OR LOWER(job.name) = LOWER($3) OR (job.name IS NULL OR job.name = ''))", stmt.Count)
	s.Equal([]any{pq.Int64Array{1, 2}, `%50\%%`, "Exact"}, stmt.Args)
	s.True(stmt.Paged)

	plain, err := New(jobTable).SQL("job.*", "job")
	s.Require().NoError(err)
	s.Equal("SELECT job.* FROM job ORDER BY job.id ASC", plain.Select)
	s.False(plain.Paged)
	s.Empty(plain.Args)
}
