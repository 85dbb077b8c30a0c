package utils

import (
	"net/url"
	"os"
	"strings"
)

func BuildObjectAccessURL(objectKey string) string {
	base := strings.TrimSpace(os.Getenv("STORAGE_ACCESS_BASE_URL"))
	if base != "" {
		if strings.Contains(base, "{objectKey}") {
			escaped := objectKey
			if strings.Contains(base, "?") {
				escaped = url.QueryEscape(objectKey)
			}
			return strings.ReplaceAll(base, "{objectKey}", escaped)
		}
		if strings.Contains(base, "?") {
			return base + url.QueryEscape(objectKey)
		}
		return strings.TrimRight(base, "/") + "/" + objectKey
	}

	gcsURL := strings.TrimSpace(os.Getenv("GCS_URL"))
	gcsBucket := strings.TrimSpace(os.Getenv("GCS_BUCKET"))
	if gcsURL != "" && gcsBucket != "" {
		return "https://" + gcsURL + "/" + gcsBucket + "/" + objectKey
	}

	return objectKey
}

func ExtractObjectKeyFromURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}

	// Allow passing raw object keys directly (e.g. "avatars/42.jpg"),
	// rejecting path traversal.
	if !strings.Contains(rawURL, "://") && !strings.HasPrefix(rawURL, "/") && strings.Contains(rawURL, "/") {
		if strings.Contains(rawURL, "..") {
			return ""
		}
		return rawURL
	}

	if strings.HasPrefix(rawURL, "gs://") {
		rawURL = strings.TrimPrefix(rawURL, "gs://")
		parts := strings.SplitN(rawURL, "/", 2)
		if len(parts) == 2 {
			return parts[1]
		}
		return ""
	}

	parsed, err := url.Parse(rawURL)
	if err == nil {
		// Common Google Cloud Storage URL formats:
		// - https://storage.googleapis.com/<bucket>/<objectKey>
		// - https://<bucket>.storage.googleapis.com/<objectKey>
		// - https://storage.cloud.google.com/<bucket>/<objectKey>
		host := strings.ToLower(strings.TrimSpace(parsed.Host))
		p := strings.TrimPrefix(parsed.Path, "/")
		if host == "storage.googleapis.com" || host == "storage.cloud.google.com" {
			parts := strings.SplitN(p, "/", 2)
			if len(parts) == 2 && parts[1] != "" {
				return parts[1]
			}
		}
		if strings.HasSuffix(host, ".storage.googleapis.com") {
			if p != "" {
				return p
			}
		}
	}

	gcsURL := strings.TrimSpace(os.Getenv("GCS_URL"))
	gcsBucket := strings.TrimSpace(os.Getenv("GCS_BUCKET"))
	if gcsURL != "" && gcsBucket != "" {
		for _, scheme := range []string{"https://", "http://"} {
			prefix := scheme + gcsURL + "/" + gcsBucket + "/"
			if strings.HasPrefix(rawURL, prefix) {
				return strings.TrimPrefix(rawURL, prefix)
			}
		}
	}

	return ""
}
