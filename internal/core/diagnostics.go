package core

import (
	"context"

	"gwi.com/project-chat/internal/store"
)

const (
	maxReportedCollections = 10
	maxReportedErrorLen    = 50
)

type DiagnosticsReport struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	Driver           string   `json:"driver,omitempty"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

// Diagnostics reports whether the store is configured and reachable.
type Diagnostics struct {
	dbStore         store.Store
	databaseURLSet  bool
	databaseNameSet bool
}

func NewDiagnostics(db store.Store, databaseURLSet, databaseNameSet bool) *Diagnostics {
	return &Diagnostics{dbStore: db, databaseURLSet: databaseURLSet, databaseNameSet: databaseNameSet}
}

func (d *Diagnostics) Report(ctx context.Context) DiagnosticsReport {
	report := DiagnosticsReport{
		Backend:          "✅ Running",
		Database:         "❌ Not Available",
		DatabaseURL:      setOrNot(d.databaseURLSet),
		DatabaseName:     setOrNot(d.databaseNameSet),
		ConnectionStatus: "Not Connected",
		Collections:      []string{},
	}
	if d.dbStore == nil {
		report.Database = "⚠️  Available but not initialized"
		return report
	}

	report.Database = "✅ Available"
	report.ConnectionStatus = "Connected"

	info, err := d.dbStore.Info(ctx)
	if err != nil {
		report.Database = "⚠️  Connected but Error: " + truncate(err.Error(), maxReportedErrorLen)
		return report
	}
	report.Driver = info.Driver
	if len(info.Collections) > maxReportedCollections {
		info.Collections = info.Collections[:maxReportedCollections]
	}
	if info.Collections != nil {
		report.Collections = info.Collections
	}
	report.Database = "✅ Connected & Working"
	return report
}

func setOrNot(set bool) string {
	if set {
		return "✅ Set"
	}
	return "❌ Not Set"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
