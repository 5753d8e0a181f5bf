// Package testutil provides an in-process database/sql driver that understands
// the statements issued by the postgres region store.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync/atomic"
)

// RegionRow is one row of the relational regions table.
type RegionRow struct {
	Name       string
	OrganismID string
	Contig     string
	LocalID    int64
	Score      float64
	Start      int64
	Stop       int64
	Genes      []byte
}

// StubConn keeps the state buckets and region rows written by the store.
// Failure switches make the matching driver call return an error.
type StubConn struct {
	Execs   []string
	State   map[string][]byte
	Regions []RegionRow

	FailPing   bool
	FailBegin  bool
	FailCommit bool
	// FailBucket makes the upsert of that state bucket fail.
	FailBucket string
}

var registered atomic.Int64

// NewStubDB opens a sql.DB whose single connection is the returned StubConn.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{State: make(map[string][]byte)}
	name := fmt.Sprintf("panrgp-stubpg-%d", registered.Add(1))
	sql.Register(name, stubDriver{conn: conn})
	db, err := sql.Open(name, "")
	if err != nil {
		panic(err)
	}
	return db, conn
}

type stubDriver struct{ conn *StubConn }

func (d stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

// Prepare implements driver.Conn; every statement goes through ExecContext
// or QueryContext instead.
func (c *StubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("stub: prepared statements unsupported")
}

// Close implements driver.Conn.
func (c *StubConn) Close() error { return nil }

// Begin implements driver.Conn.
func (c *StubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// Ping implements driver.Pinger.
func (c *StubConn) Ping(context.Context) error {
	if c.FailPing {
		return errors.New("stub: ping failed")
	}
	return nil
}

// BeginTx implements driver.ConnBeginTx.
func (c *StubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	if c.FailBegin {
		return nil, errors.New("stub: begin failed")
	}
	return stubTx{conn: c}, nil
}

// ExecContext implements driver.ExecerContext.
func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.Execs = append(c.Execs, query)
	stmt := strings.ToLower(strings.Join(strings.Fields(query), " "))
	switch {
	case strings.HasPrefix(stmt, "create table"):
		return driver.RowsAffected(0), nil
	case stmt == "truncate table regions":
		c.Regions = nil
		return driver.RowsAffected(0), nil
	case strings.HasPrefix(stmt, "insert into state"):
		if len(args) != 2 {
			return nil, fmt.Errorf("stub: state upsert wants 2 args, got %d", len(args))
		}
		bucket, _ := args[0].Value.(string)
		if bucket == c.FailBucket {
			return nil, fmt.Errorf("stub: upsert of %s failed", bucket)
		}
		payload, _ := args[1].Value.([]byte)
		c.State[bucket] = payload
		return driver.RowsAffected(1), nil
	case strings.HasPrefix(stmt, "insert into regions"):
		return c.insertRegion(args)
	default:
		return nil, fmt.Errorf("stub: unsupported statement %q", query)
	}
}

func (c *StubConn) insertRegion(args []driver.NamedValue) (driver.Result, error) {
	if len(args) != 8 {
		return nil, fmt.Errorf("stub: region insert wants 8 args, got %d", len(args))
	}
	var row RegionRow
	dest := []any{&row.Name, &row.OrganismID, &row.Contig, &row.LocalID, &row.Score, &row.Start, &row.Stop, &row.Genes}
	for i, arg := range args {
		if err := assign(dest[i], arg.Value); err != nil {
			return nil, fmt.Errorf("stub: region column %d: %w", i, err)
		}
	}
	for _, existing := range c.Regions {
		if existing.Name == row.Name {
			return nil, fmt.Errorf("stub: duplicate region %s", row.Name)
		}
	}
	c.Regions = append(c.Regions, row)
	return driver.RowsAffected(1), nil
}

func assign(dest any, v driver.Value) error {
	ok := false
	switch d := dest.(type) {
	case *string:
		*d, ok = v.(string)
	case *int64:
		*d, ok = v.(int64)
	case *float64:
		*d, ok = v.(float64)
	case *[]byte:
		*d, ok = v.([]byte)
	}
	if !ok {
		return fmt.Errorf("unexpected %T", v)
	}
	return nil
}

// QueryContext implements driver.QueryerContext. Only the state snapshot is
// ever read back; buckets are returned in name order.
func (c *StubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	stmt := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if stmt != "select bucket, payload from state" {
		return nil, fmt.Errorf("stub: unsupported query %q", query)
	}
	buckets := make([]string, 0, len(c.State))
	for b := range c.State {
		buckets = append(buckets, b)
	}
	sort.Strings(buckets)
	rows := &stubRows{}
	for _, b := range buckets {
		rows.values = append(rows.values, []driver.Value{b, c.State[b]})
	}
	return rows, nil
}

type stubTx struct{ conn *StubConn }

func (t stubTx) Commit() error {
	if t.conn.FailCommit {
		return errors.New("stub: commit failed")
	}
	return nil
}

func (t stubTx) Rollback() error { return nil }

type stubRows struct {
	values [][]driver.Value
	next   int
}

func (r *stubRows) Columns() []string { return []string{"bucket", "payload"} }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.next >= len(r.values) {
		return io.EOF
	}
	copy(dest, r.values[r.next])
	r.next++
	return nil
}
