// Package integration checks grid query results against DuckDB.
// Every filter is evaluated twice: by the engine over an Arrow table, and
// by DuckDB over the same rows with a hand-written WHERE clause expressing
// the expected null-safe semantics.
package integration_test

import (
	"context"
	"database/sql"
	"slices"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/gridfilter"
	"github.com/hugr-lab/gridfilter/query"
	"github.com/hugr-lab/gridfilter/source"

	_ "github.com/duckdb/duckdb-go/v2"
)

type person struct {
	ID     int64      `grid:"id"`
	Name   *string    `grid:"name"`
	Age    *int64     `grid:"age"`
	Score  *float64   `grid:"score"`
	Active *bool      `grid:"active"`
	Born   *time.Time `grid:"born,local"`
	Seen   *time.Time `grid:"seen"`
}

func ptr[T any](v T) *T { return &v }

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func testPeople() []person {
	return []person{
		{ID: 1},
		{ID: 2, Name: ptr("Philipp Wagner"), Age: ptr[int64](2), Score: ptr(71.5), Active: ptr(true), Born: ts("2022-03-14T08:00:00Z"), Seen: ts("2024-05-01T10:00:00Z")},
		{ID: 3, Name: ptr("Ben Statham"), Age: ptr[int64](3), Score: ptr(64.0), Active: ptr(false), Born: ts("2021-07-02T17:30:00Z"), Seen: ts("2024-05-03T09:15:00Z")},
		{ID: 4, Name: ptr("Max Powers"), Age: ptr[int64](4), Score: ptr(88.25), Active: ptr(false), Born: ts("2020-01-20T12:00:00Z")},
		{ID: 5, Name: ptr("JSON Bourne"), Age: ptr[int64](5), Score: ptr(93.0), Active: ptr(false), Born: ts("2019-11-11T23:45:00Z"), Seen: ts("2024-04-28T22:00:00Z")},
		{ID: 6, Name: ptr(""), Age: ptr[int64](36), Score: ptr(99.5), Active: ptr(true), Seen: ts("2024-05-02T12:30:00Z")},
		{ID: 7, Name: ptr("   "), Age: ptr[int64](41), Active: ptr(true), Born: ts("1912-06-23T00:00:00Z")},
		{ID: 8, Name: ptr("Grace Hopper"), Score: ptr(95.5), Born: ts("1906-12-09T00:00:00Z"), Seen: ts("2024-05-04T07:45:00Z")},
	}
}

// openDuckDB opens an in-memory DuckDB database holding testPeople.
func openDuckDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("DuckDB not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// one connection, so the session time zone applies to every query
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("SET TimeZone = 'UTC'"); err != nil {
		t.Logf("Failed to set time zone: %v", err)
	}

	_, err = db.Exec(`CREATE TABLE people (
		id BIGINT,
		name VARCHAR,
		age BIGINT,
		score DOUBLE,
		active BOOLEAN,
		born TIMESTAMP,
		seen TIMESTAMPTZ
	)`)
	if err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	for _, p := range testPeople() {
		var born, seen any
		if p.Born != nil {
			born = p.Born.UTC()
		}
		if p.Seen != nil {
			seen = p.Seen.UTC()
		}
		_, err := db.Exec(`INSERT INTO people VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Age, p.Score, p.Active, born, seen)
		if err != nil {
			t.Fatalf("Failed to insert row %d: %v", p.ID, err)
		}
	}
	return db
}

// duckIDs runs query and returns the first column of every row.
func duckIDs(t *testing.T, db *sql.DB, query string) []int64 {
	t.Helper()

	rows, err := db.Query(query)
	if err != nil {
		t.Fatalf("DuckDB query failed: %v\n%s", err, query)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("Rows failed: %v", err)
	}
	return ids
}

// pageIDs returns the id column of a page.
func pageIDs(t *testing.T, page *query.Page) []int64 {
	t.Helper()

	idx := source.FindField(page.Records.Schema(), "id")
	if idx < 0 {
		t.Fatal("id column not found")
	}
	col := page.Records.Column(idx).(*array.Int64)
	ids := make([]int64, col.Len())
	for i := range ids {
		ids[i] = col.Value(i)
	}
	return ids
}

type fixture struct {
	db     *sql.DB
	table  *source.StaticTable
	engine *gridfilter.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	alloc := memory.NewCheckedAllocator(memory.NewGoAllocator())
	t.Cleanup(func() { alloc.AssertSize(t, 0) })

	tbl, err := source.FromStructs("people", testPeople(), alloc)
	if err != nil {
		t.Fatalf("FromStructs failed: %v", err)
	}
	t.Cleanup(tbl.Release)

	engine, err := gridfilter.New(gridfilter.Config{Allocator: alloc})
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	return &fixture{db: openDuckDB(t), table: tbl, engine: engine}
}

func (f *fixture) check(t *testing.T, ctx context.Context, page *query.Page, oracle string) {
	t.Helper()
	defer page.Release()

	want := duckIDs(t, f.db, oracle)
	got := pageIDs(t, page)
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v\nfilter: %s\noracle: %s", want, got, page.Plan.Fragment.Text, oracle)
	}
}
