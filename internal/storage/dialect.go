package storage

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Dialect captures the SQL differences between the supported engines.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// Source is a parsed DATABASE_URL.
type Source struct {
	Dialect Dialect
	Driver  string // database/sql driver name
	DSN     string
	Path    string // sqlite file path, empty for postgres
}

// sqlite connection settings: wait on locks, LIKE is case-sensitive, and
// time.Time values are written in a format date() understands.
const sqliteParams = "_pragma=busy_timeout(5000)&_pragma=case_sensitive_like(1)&_time_format=sqlite"

// ParseDatabaseURL understands sqlite:///relative/or/absolute paths
// (sqlite:///./expense.db, sqlite:////var/lib/expense.db) and postgres URLs.
func ParseDatabaseURL(raw string) (Source, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "sqlite:///"):
		path := strings.TrimPrefix(raw, "sqlite:///")
		if path == "" {
			return Source{}, fmt.Errorf("sqlite url %q has no database path", raw)
		}
		return Source{
			Dialect: SQLite,
			Driver:  "sqlite",
			DSN:     "file:" + path + "?" + sqliteParams,
			Path:    path,
		}, nil
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		if _, err := url.Parse(raw); err != nil {
			return Source{}, fmt.Errorf("parse postgres url: %w", err)
		}
		return Source{Dialect: Postgres, Driver: "postgres", DSN: raw}, nil
	default:
		return Source{}, fmt.Errorf("unsupported database url %q: must start with sqlite:/// or postgres://", raw)
	}
}

// ensureDir creates the parent directory of a sqlite file.
func (s Source) ensureDir() error {
	if s.Dialect != SQLite {
		return nil
	}
	dir := filepath.Dir(s.Path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

// Rebind rewrites ? placeholders into the dialect's bind syntax.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DayExpr is the UTC calendar day of spent_at as YYYY-MM-DD text.
// sqlite stores spent_at already normalized to UTC.
func (d Dialect) DayExpr() string {
	if d == Postgres {
		return "to_char(spent_at AT TIME ZONE 'UTC', 'YYYY-MM-DD')"
	}
	return "date(spent_at)"
}
