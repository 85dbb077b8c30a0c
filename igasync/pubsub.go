package igasync

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"bitbucket.org/vetadata/iga_backend/config"
)

type pushEnvelope struct {
	Message struct {
		Data []byte `json:"data"`
		ID   string `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// PubSubPushHandler accepts Pub/Sub push deliveries carrying a RUN_SYNC
// event. Malformed envelopes are acknowledged with 204 so the subscription
// does not redeliver garbage forever.
func PubSubPushHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusNoContent)
			return
		}

		var envelope pushEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			c.Status(http.StatusNoContent)
			return
		}

		var event config.SyncEvent
		if err := json.Unmarshal(envelope.Message.Data, &event); err != nil || event.Action != config.SyncActionRun {
			c.Status(http.StatusNoContent)
			return
		}

		if _, err := RunSync(c.Request.Context(), "pubsub"); err != nil && !errors.Is(err, ErrSyncRunning) {
			config.LogError(config.GetLogger(), "igasync", "PubSubPushHandler", "triggered run", event, err)
		}
		c.Status(http.StatusNoContent)
	}
}
