// Package source loads grid rows from a database table. Server-mode
// filters become WHERE clauses; everything else stays with the engine.
package source

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/freightdesk/gridkit/internal/grid"
	"github.com/freightdesk/gridkit/internal/util"
)

// Driver names accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Backend fetches rows for a query.
type Backend interface {
	Fetch(ctx context.Context, q Query) ([]grid.Row, error)
	Dialect() Dialect
	Close()
}

// Open connects to driver at url.
func Open(ctx context.Context, driverName, url string) (Backend, error) {
	switch driverName {
	case DriverPostgres, "postgresql", "pgx":
		return OpenPostgres(ctx, url)
	case DriverSQLite, "sqlite3":
		return OpenSQLite(ctx, url)
	case "":
		return nil, util.ErrNoSource
	default:
		return nil, fmt.Errorf("%w: %q", util.ErrUnknownDriver, driverName)
	}
}

// normalizeValue turns driver values into the handful of types the
// engine formats and sorts: string, int64, float64, bool, time.Time
// and nil.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil, string, bool, int64, float64, time.Time:
		return val
	case []byte:
		return util.ToValidUTF8(string(val))
	case int:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case float32:
		return float64(val)
	case [16]byte:
		return fmt.Sprintf("%x-%x-%x-%x-%x", val[0:4], val[4:6], val[6:8], val[8:10], val[10:16])
	case driver.Valuer:
		dv, err := val.Value()
		if err != nil || dv == nil {
			return nil
		}
		if _, again := dv.(driver.Valuer); again {
			return fmt.Sprintf("%v", dv)
		}
		return normalizeValue(dv)
	default:
		return fmt.Sprintf("%v", v)
	}
}
