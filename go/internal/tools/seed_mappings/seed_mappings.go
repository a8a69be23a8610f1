package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/splitcast/splitcast/go/internal/dbconfig"
)

// Snapshot mirrors the mapping export produced at event setup time.
type Snapshot struct {
	ChipMappings   []ChipMapping   `json:"chip_mappings"`
	ReaderMappings []ReaderMapping `json:"reader_mappings"`
}

type ChipMapping struct {
	ID        string `json:"id"`
	EventID   int64  `json:"event_id"`
	ChipID    string `json:"chip_id"`
	BibNumber string `json:"bib_number"`
}

type ReaderMapping struct {
	ID           string `json:"id"`
	EventID      int64  `json:"event_id"`
	ReaderID     string `json:"reader_id"`
	CheckpointID string `json:"checkpoint_id"`
}

func main() {
	path := "go/internal/assets/mappings.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	// 1) Load the JSON snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read JSON: %v\n", err)
		os.Exit(1)
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal JSON: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(context.Background(), cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Upsert and count
	var inserted, skipped, errs int

	for _, m := range snapshot.ChipMappings {
		cmdTag, err := pool.Exec(context.Background(), `
            INSERT INTO chip_mappings (id, event_id, chip_id, bib_number, created_at)
            VALUES ($1, $2, $3, $4, now())
            ON CONFLICT (event_id, chip_id) DO NOTHING
        `, m.ID, m.EventID, m.ChipID, m.BibNumber)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting chip mapping %s: %v\n", m.ChipID, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	for _, m := range snapshot.ReaderMappings {
		cmdTag, err := pool.Exec(context.Background(), `
            INSERT INTO reader_mappings (id, event_id, reader_id, checkpoint_id, created_at)
            VALUES ($1, $2, $3, $4, now())
            ON CONFLICT (event_id, reader_id) DO NOTHING
        `, m.ID, m.EventID, m.ReaderID, m.CheckpointID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting reader mapping %s: %v\n", m.ReaderID, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	// 4) Print summary
	total := len(snapshot.ChipMappings) + len(snapshot.ReaderMappings)
	fmt.Printf(
		"Mappings seed complete: %d total, %d inserted, %d skipped, %d errors\n",
		total, inserted, skipped, errs,
	)
}
