package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// Diagnostics is the connectivity snapshot served on /test.
type Diagnostics struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      *string  `json:"database_url"`
	DatabaseName     *string  `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

const maxListedCollections = 10

// Diagnose never fails: store errors are folded into the status strings.
// urlConfigured tells whether the connection string came from the
// environment rather than the built-in default.
func (s *Store) Diagnose(ctx context.Context, urlConfigured bool) Diagnostics {
	d := Diagnostics{
		Backend:          "✅ Running",
		Database:         "❌ Not Available",
		ConnectionStatus: "Not Connected",
		Collections:      []string{},
	}

	if s == nil || s.db == nil {
		d.Database = "⚠️  Available but not initialized"
		return d
	}

	urlStatus := "❌ Not Set"
	if urlConfigured {
		urlStatus = "✅ Set"
	}
	name := s.db.Name()
	d.Database = "✅ Available"
	d.DatabaseURL = &urlStatus
	d.DatabaseName = &name
	d.ConnectionStatus = "Connected"

	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		d.Database = "⚠️  Connected but Error: " + truncate(err.Error(), 80)
		return d
	}
	if len(names) > maxListedCollections {
		names = names[:maxListedCollections]
	}
	d.Collections = names
	d.Database = "✅ Connected & Working"
	return d
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
