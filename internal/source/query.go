package source

import (
	"fmt"
	"strings"

	"github.com/freightdesk/gridkit/internal/grid"
)

// Dialect selects placeholder and pattern-match syntax.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// Query describes one fetch. Filters are matched as case-insensitive
// substrings; Limit <= 0 means no limit.
type Query struct {
	Table   string
	Columns []string
	Filters []grid.FilterSpec
	Sort    *grid.SortSpec
	Limit   int
}

// QuoteIdent quotes a possibly schema-qualified identifier.
func QuoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

// escapeLike makes value match literally inside a LIKE pattern.
func escapeLike(value string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(value)
}

// BuildSelect renders q for dialect d and returns the SQL with its
// bound arguments.
func BuildSelect(q Query, d Dialect) (string, []any, error) {
	if q.Table == "" {
		return "", nil, fmt.Errorf("query has no table")
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if len(q.Columns) == 0 {
		sb.WriteString("*")
	} else {
		cols := make([]string, len(q.Columns))
		for i, c := range q.Columns {
			cols[i] = QuoteIdent(c)
		}
		sb.WriteString(strings.Join(cols, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(QuoteIdent(q.Table))

	var args []any
	var where []string
	for _, f := range q.Filters {
		if f.Value == "" {
			continue
		}
		args = append(args, "%"+escapeLike(f.Value)+"%")
		col := QuoteIdent(f.Column)
		switch d {
		case Postgres:
			where = append(where, fmt.Sprintf(`%s::text ILIKE $%d ESCAPE '\'`, col, len(args)))
		default:
			where = append(where, fmt.Sprintf(`LOWER(CAST(%s AS TEXT)) LIKE LOWER(?) ESCAPE '\'`, col))
		}
	}
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}

	if q.Sort != nil && q.Sort.Column != "" {
		dir := "ASC"
		if q.Sort.Direction == grid.Descending {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s", QuoteIdent(q.Sort.Column), dir)
	}
	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	}
	return sb.String(), args, nil
}
