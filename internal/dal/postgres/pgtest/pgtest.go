// Package pgtest provides a connection double that records the statements
// repositories send, so query shapes can be checked without a database.
package pgtest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNoDatabase is returned by Query and by row scans unless Err is set.
var ErrNoDatabase = errors.New("pgtest: no database")

// Statement is one recorded call.
type Statement struct {
	SQL  string
	Args []any
}

// Conn records every statement it receives. It satisfies postgres.GenericConn.
type Conn struct {
	// Err is returned by Query and by Scan on rows from QueryRow.
	Err error
	// Tag is returned by Exec.
	Tag pgconn.CommandTag

	mu         sync.Mutex
	statements []Statement
}

func (c *Conn) record(sql string, args []any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.statements = append(c.statements, Statement{SQL: sql, Args: args})
}

func (c *Conn) err() error {
	if c.Err != nil {
		return c.Err
	}

	return ErrNoDatabase
}

// Query implements postgres.GenericConn.
func (c *Conn) Query(_ context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	c.record(sql, args)

	return nil, c.err()
}

// QueryRow implements postgres.GenericConn.
func (c *Conn) QueryRow(_ context.Context, sql string, args ...interface{}) pgx.Row {
	c.record(sql, args)

	return row{err: c.err()}
}

// Exec implements postgres.GenericConn.
func (c *Conn) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.record(sql, args)

	return c.Tag, nil
}

// Statements returns what has been recorded so far.
func (c *Conn) Statements() []Statement {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Statement(nil), c.statements...)
}

// Last returns the most recent statement with whitespace collapsed.
func (c *Conn) Last() Statement {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.statements) == 0 {
		return Statement{}
	}
	s := c.statements[len(c.statements)-1]
	s.SQL = strings.Join(strings.Fields(s.SQL), " ")

	return s
}

type row struct {
	err error
}

func (r row) Scan(...any) error {
	return r.err
}
