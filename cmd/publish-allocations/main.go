// publish-allocations computes and stores the official distribution
// snapshot for one calendar month. The dashboard computes distributions on
// the fly; this stores the month-end figures that remittance letters are
// cut from.
//
// Usage:
//   go run ./cmd/publish-allocations -year 2026 -month 8
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/workflow"
)

func main() {
	now := time.Now()
	year := flag.Int("year", now.Year(), "calendar year to publish")
	month := flag.Int("month", int(now.Month()), "calendar month to publish (1-12)")
	flag.Parse()

	if *month < 1 || *month > 12 {
		fmt.Fprintf(os.Stderr, "invalid month %d, expected 1-12\n", *month)
		os.Exit(1)
	}

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	if err := workflow.SaveMonthlyAllocations(ctx, *year, time.Month(*month)); err != nil {
		fmt.Fprintf(os.Stderr, "publishing allocations for %d-%02d failed: %v\n", *year, *month, err)
		os.Exit(1)
	}
	fmt.Printf("allocations for %d-%02d published\n", *year, *month)
}
