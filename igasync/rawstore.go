package igasync

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"bitbucket.org/vetadata/iga_backend/config"
)

const rawBatchCollection = "sync_batches"

// archiveRawBatch stores the untouched gateway payload before any row is
// parsed, so disputed reconciliations can be replayed against the original
// data. Best effort: archival failures never fail the sync run.
func archiveRawBatch(ctx context.Context, cursorSent string, rows []json.RawMessage) {
	if !config.RawArchiveEnabled() || len(rows) == 0 {
		return
	}

	db := config.GetMongoDatabase(ctx)
	if db == nil {
		return
	}

	payload := make([]interface{}, 0, len(rows))
	for _, raw := range rows {
		var doc interface{}
		if err := bson.UnmarshalExtJSON(raw, true, &doc); err != nil {
			doc = string(raw)
		}
		payload = append(payload, doc)
	}

	doc := bson.M{
		"cursor_sent": cursorSent,
		"row_count":   len(rows),
		"fetched_at":  time.Now(),
		"rows":        payload,
	}

	insertCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if _, err := db.Collection(rawBatchCollection).InsertOne(insertCtx, doc); err != nil {
		config.LogError(config.GetLogger(), "igasync", "archiveRawBatch", "insert raw batch", cursorSent, err)
	}
}
