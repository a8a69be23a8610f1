package main

import (
	"database/sql"

	"github.com/jonboulle/clockwork"
	"github.com/splitcast/splitcast/go/internal/broadcast"
	"github.com/splitcast/splitcast/go/internal/ingest"
	ingestdb "github.com/splitcast/splitcast/go/internal/ingest/db"
)

func setupIngestService(database *sql.DB, broadcaster broadcast.Broadcaster, secret string) *ingest.Service {
	// Database layer → Repository layer → App layer → Service layer
	queries := ingestdb.New(database)
	repo := ingest.NewRepository(queries)
	resolver := ingest.NewResolver(repo)
	dedupe := ingest.NewDeduplicator(repo)
	app := ingest.NewApp(resolver, dedupe, repo, broadcaster, clockwork.NewRealClock())
	return ingest.NewService(app, secret)
}
