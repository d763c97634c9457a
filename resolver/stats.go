package resolver

import (
	sqldialect "github.com/the-devoyage/subgraph-go/dialect/sql"
)

// WrapSQLDriversWithStats wraps every SQLDrivers entry backed by a
// *sqldialect.Driver with a sqldialect.StatsDriver, replacing it in place,
// and returns the per-data-source QueryStats so a caller can poll or
// export them (slow-query counts, totals, errors). Entries that aren't a
// *sqldialect.Driver are left untouched and absent from the returned map —
// this covers test doubles and any data source already wrapped by a prior
// call. Call once after populating SQLDrivers, before serving traffic.
func (d *Dispatcher) WrapSQLDriversWithStats(opts ...sqldialect.StatsOption) map[string]*sqldialect.QueryStats {
	stats := make(map[string]*sqldialect.QueryStats, len(d.SQLDrivers))
	for name, drv := range d.SQLDrivers {
		plain, ok := drv.(*sqldialect.Driver)
		if !ok {
			continue
		}
		sd := sqldialect.NewStatsDriver(plain, opts...)
		d.SQLDrivers[name] = sd
		stats[name] = sd.QueryStats()
	}
	return stats
}

// WrapSQLDriversWithDebug wraps every SQLDrivers entry backed by a
// *sqldialect.Driver with a sqldialect.DebugDriver, replacing it in place.
// Intended for local development: every query/exec issued through the
// Dispatcher's SQL path is logged before it runs.
func (d *Dispatcher) WrapSQLDriversWithDebug(opts ...sqldialect.DebugOption) {
	for name, drv := range d.SQLDrivers {
		plain, ok := drv.(*sqldialect.Driver)
		if !ok {
			continue
		}
		d.SQLDrivers[name] = sqldialect.NewDebugDriver(plain, opts...)
	}
}
