package igasync

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/models"
	"bitbucket.org/vetadata/iga_backend/utils"
)

// defaultCursor is the fetch floor used when the collections table is empty.
var defaultCursor = time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

// cursorOverlap is subtracted from the cursor so rows committed upstream
// while the previous run was in flight are not missed. Re-fetched rows are
// deduplicated by the upsert key.
const cursorOverlap = 5 * time.Minute

const syncLockKey = "Lock:iga-sync"

var ErrSyncRunning = errors.New("sync already running")

type gatewayRow struct {
	CentreName    string `json:"centreName"`
	CustomerName  string `json:"customerName"`
	GfsCode       string `json:"gfsCode"`
	Description   string `json:"description"`
	AmountBilled  string `json:"amountBilled"`
	AmountPaid    string `json:"amountPaid"`
	ControlNumber string `json:"controlNumber"`
	PaymentType   string `json:"paymentType"`
	Date          string `json:"date"`
}

type SyncResult struct {
	CursorSent string    `json:"cursor_sent"`
	Fetched    int       `json:"fetched"`
	Inserted   int       `json:"inserted"`
	Updated    int       `json:"updated"`
	Skipped    int       `json:"skipped"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// parseRow validates one gateway row. The reason is empty when the row is
// usable.
func parseRow(raw json.RawMessage) (*parsedRow, string) {
	var row gatewayRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, "malformed row"
	}
	if row.CentreName == "" {
		return nil, "missing centre name"
	}
	if row.GfsCode == "" {
		return nil, "missing gfs code"
	}
	date, ok := utils.ParseFlexibleTime(row.Date)
	if !ok {
		return nil, "missing or unparseable date"
	}

	amountBilled, err := utils.ParseDecimal(row.AmountBilled)
	if err != nil {
		return nil, "bad amount billed"
	}
	amountPaid, err := utils.ParseDecimal(row.AmountPaid)
	if err != nil {
		return nil, "bad amount paid"
	}

	customerName := row.CustomerName
	if customerName == "" {
		customerName = "UNKNOWN CUSTOMER"
	}

	p := parsedRow{gatewayRow: row, date: date}
	p.CustomerName = customerName
	p.amountBilled = amountBilled
	p.amountPaid = amountPaid
	return &p, ""
}

type parsedRow struct {
	gatewayRow
	date         time.Time
	amountBilled decimal.Decimal
	amountPaid   decimal.Decimal
}

// applyRow reconciles one parsed row. Returns whether a new collection was
// inserted or an existing one refreshed.
func applyRow(ctx context.Context, row *parsedRow, fetchedAt time.Time) (bool, error) {
	centre, err := models.FindOrCreateCentre(ctx, row.CentreName)
	if err != nil {
		return false, err
	}
	customer, err := models.FindOrCreateCustomer(ctx, row.CustomerName, centre.ID)
	if err != nil {
		return false, err
	}
	gfs, err := models.FindOrCreateGfsCode(ctx, row.GfsCode)
	if err != nil {
		return false, err
	}

	existing, err := models.FindExistingCollection(ctx,
		row.ControlNumber, row.CustomerName, row.GfsCode, centre.ID, row.date, row.Description)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, utils.ErrorRecordNotFound) {
		return false, err
	}

	if existing != nil {
		existing.AmountBilled = row.amountBilled
		existing.AmountPaid = row.amountPaid
		existing.PaymentType = row.PaymentType
		existing.LastFetched = &fetchedAt
		return false, existing.Save(ctx)
	}

	collection := &models.Collection{
		CustomerId:    customer.ID,
		CentreId:      centre.ID,
		GfsCodeId:     gfs.ID,
		AmountBilled:  row.amountBilled,
		AmountPaid:    row.amountPaid,
		Description:   row.Description,
		ControlNumber: row.ControlNumber,
		PaymentType:   row.PaymentType,
		Date:          row.date,
		LastFetched:   &fetchedAt,
	}
	if err := collection.Save(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// syncCursor returns the point to fetch from: the newest stored date, or the
// default floor for a fresh database, pulled back by the overlap window.
func syncCursor(ctx context.Context) (time.Time, error) {
	maxDate, err := models.CollectionMaxDate(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if maxDate.IsZero() {
		maxDate = defaultCursor
	}
	return maxDate.Add(-cursorOverlap), nil
}

// RunSync performs one fetch-and-reconcile pass. A Redis lock keeps
// concurrent triggers (scheduler, push endpoint, ops endpoint) from running
// two passes at once.
func RunSync(ctx context.Context, triggeredBy string) (*SyncResult, error) {
	logger := config.GetLogger()

	lock, err := config.GetRedisLock().Obtain(ctx, syncLockKey, 10*time.Minute, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrSyncRunning
	}
	if err != nil {
		return nil, err
	}
	defer lock.Release(ctx)

	client, err := newGatewayClient()
	if err != nil {
		return nil, err
	}

	cursor, err := syncCursor(ctx)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{
		CursorSent: cursor.Format(cursorLayout),
		StartedAt:  time.Now(),
	}

	rows, err := client.fetchSince(ctx, cursor)
	if err != nil {
		config.LogError(logger, "igasync", "RunSync", "fetch from gateway", result.CursorSent, err)
		return nil, err
	}
	result.Fetched = len(rows)

	archiveRawBatch(ctx, result.CursorSent, rows)

	fetchedAt := time.Now()
	for _, raw := range rows {
		row, reason := parseRow(raw)
		if reason != "" {
			result.Skipped++
			logger.WithFields(map[string]interface{}{
				"module": "igasync", "reason": reason,
			}).Warn("skipping gateway row")
			continue
		}

		inserted, err := applyRow(ctx, row, fetchedAt)
		if err != nil {
			result.Skipped++
			config.LogError(logger, "igasync", "RunSync", "apply row", row.ControlNumber, err)
			continue
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}
	result.FinishedAt = time.Now()

	logger.WithFields(map[string]interface{}{
		"module":   "igasync",
		"cursor":   result.CursorSent,
		"fetched":  result.Fetched,
		"inserted": result.Inserted,
		"updated":  result.Updated,
		"skipped":  result.Skipped,
	}).Info("sync run completed")

	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	event := config.SyncEvent{
		Action:        config.SyncActionCompleted,
		TriggeredBy:   triggeredBy,
		CursorSent:    result.CursorSent,
		Inserted:      result.Inserted,
		Updated:       result.Updated,
		Skipped:       result.Skipped,
		CompletedAt:   result.FinishedAt,
		CorrelationId: correlationId,
	}
	if _, err := config.PublishSyncEvent(ctx, event); err != nil {
		logger.WithField("module", "igasync").Warnf("publish sync event: %v", err)
	}

	return result, nil
}
