// sync-backfill runs one synchronization pass against the IGA payment
// gateway from the command line. Useful after downtime or when seeding a
// fresh environment: the worker resumes from the newest stored collection
// date, so repeated runs converge.
//
// Usage:
//   IGA_API_URL=... IGA_API_KEY=... go run ./cmd/sync-backfill
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/igasync"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	config.ConnectRedisWithRetry()
	if config.GetRedisDB() == nil {
		fmt.Fprintln(os.Stderr, "redis not initialized (config.GetRedisDB returned nil). Set REDIS_* env vars.")
		os.Exit(1)
	}

	result, err := igasync.RunSync(ctx, "backfill")
	if err != nil {
		if errors.Is(err, igasync.ErrSyncRunning) {
			fmt.Fprintln(os.Stderr, "another sync run holds the lock, try again later")
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "sync failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("cursor sent: %s\n", result.CursorSent)
	fmt.Printf("fetched: %d inserted: %d updated: %d skipped: %d\n",
		result.Fetched, result.Inserted, result.Updated, result.Skipped)
	fmt.Printf("duration: %s\n", result.FinishedAt.Sub(result.StartedAt))
}
