package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// getGoogleClient initializes a Google Cloud Storage client
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	// Prefer ADC (GOOGLE_APPLICATION_CREDENTIALS). Explicit JSON via
	// GCS_CREDENTIALS_JSON for local runs.
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		client, err := storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func UploadBytesToGCS(ctx context.Context, objectName string, data []byte, contentType string) error {
	client, err := getGoogleClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	bucketName := os.Getenv("GCS_BUCKET")
	if bucketName == "" {
		return errors.New("GCS_BUCKET is required")
	}

	wc := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := wc.Write(data); err != nil {
		return fmt.Errorf("failed to upload bytes to Google Cloud Storage: %v", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %v", err)
	}
	return nil
}

// DownloadBytesFromGCS reads an object back, capped at limit bytes when
// limit is positive.
func DownloadBytesFromGCS(ctx context.Context, objectName string, limit int64) ([]byte, error) {
	client, err := getGoogleClient(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	bucketName := os.Getenv("GCS_BUCKET")
	if bucketName == "" {
		return nil, errors.New("GCS_BUCKET is required")
	}

	reader, err := client.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var r io.Reader = reader
	if limit > 0 {
		r = io.LimitReader(reader, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("object exceeds %d byte limit", limit)
	}
	return data, nil
}

// DeleteObjectFromGCS removes an object, treating missing objects as done.
func DeleteObjectFromGCS(ctx context.Context, objectName string) error {
	client, err := getGoogleClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	bucketName := os.Getenv("GCS_BUCKET")

	err = client.Bucket(bucketName).Object(objectName).Delete(ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return nil
		}
		return err
	}

	return nil
}
