// seed runs migrations and loads the baseline data: GFS codes, departments,
// the admin user and the machine API keys. Safe to rerun; every seeder
// checks before inserting.
//
// Usage:
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/models"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	models.MigrateTable()

	if err := models.SeedAll(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "seeding failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("seeding complete")
}
