package config

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

// SyncEvent is the message published after each upstream sync run and the
// payload accepted on the /pubsub push endpoint to trigger one on demand.
type SyncEvent struct {
	Action        string    `json:"action"`
	TriggeredBy   string    `json:"triggered_by"`
	CursorSent    string    `json:"cursor_sent"`
	Inserted      int       `json:"inserted"`
	Updated       int       `json:"updated"`
	Skipped       int       `json:"skipped"`
	CompletedAt   time.Time `json:"completed_at"`
	CorrelationId string    `json:"correlation_id"`
}

const (
	SyncActionRun       = "RUN_SYNC"
	SyncActionCompleted = "SYNC_COMPLETED"
)

var (
	pubsubClient   *pubsub.Client
	pubsubClientMu sync.Mutex
)

func init() {
	godotenv.Load()
}

func getPubSubProjectID() string {
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		return v
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	if v := os.Getenv("GCP_PROJECT"); v != "" {
		return v
	}
	return ""
}

// GetPubSubClient returns a Pub/Sub client, initializing with retries if
// needed. It uses Application Default Credentials unless
// PUBSUB_CREDENTIALS_JSON is provided.
func GetPubSubClient(ctx context.Context) (*pubsub.Client, error) {
	pubsubClientMu.Lock()
	if pubsubClient != nil {
		c := pubsubClient
		pubsubClientMu.Unlock()
		return c, nil
	}
	pubsubClientMu.Unlock()

	projectID := getPubSubProjectID()
	if projectID == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}

	credJSON := os.Getenv("PUBSUB_CREDENTIALS_JSON")

	var attempt int
	for {
		attempt++

		var (
			c   *pubsub.Client
			err error
		)
		if credJSON != "" {
			c, err = pubsub.NewClient(ctx, projectID, option.WithCredentialsJSON([]byte(credJSON)))
		} else {
			c, err = pubsub.NewClient(ctx, projectID)
		}
		if err == nil {
			pubsubClientMu.Lock()
			if pubsubClient == nil {
				pubsubClient = c
			} else {
				// Another goroutine won the race; close ours.
				_ = c.Close()
			}
			c2 := pubsubClient
			pubsubClientMu.Unlock()

			log.Printf("pubsub client ready (project_id=%s attempt=%d)", projectID, attempt)
			return c2, nil
		}

		if attempt >= 5 {
			return nil, err
		}
		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		log.Printf("failed to init pubsub client (project_id=%s attempt=%d): %v; retrying in %s", projectID, attempt, err, sleep)
		time.Sleep(sleep)
	}
}

func CreateTopicIfNotExists(c *pubsub.Client, topic string) (*pubsub.Topic, error) {
	if c == nil {
		return nil, errors.New("pubsub client is nil")
	}
	if topic == "" {
		return nil, errors.New("topic is required")
	}

	ctx := context.Background()
	t := c.Topic(topic)
	ok, err := t.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		return t, nil
	}
	return c.CreateTopic(ctx, topic)
}

// PublishSyncEvent publishes to PUBSUB_SYNC_TOPIC. Best effort: callers treat
// a publish failure as a log-and-continue condition, never as a sync failure.
func PublishSyncEvent(ctx context.Context, event SyncEvent) (string, error) {
	client, err := GetPubSubClient(ctx)
	if err != nil {
		return "", err
	}

	topicName := os.Getenv("PUBSUB_SYNC_TOPIC")
	if topicName == "" {
		return "", errors.New("PUBSUB_SYNC_TOPIC is required")
	}

	t, err := CreateTopicIfNotExists(client, topicName)
	if err != nil {
		return "", err
	}
	msgJSON, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	result := t.Publish(ctx, &pubsub.Message{Data: msgJSON})
	return result.Get(ctx)
}
