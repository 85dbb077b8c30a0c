package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/models"
	"bitbucket.org/vetadata/iga_backend/utils"
)

const maxAvatarSizeBytes int64 = 5 * 1024 * 1024

var avatarMimeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

type avatarSignRequest struct {
	MimeType string `json:"mimeType" binding:"required"`
	Size     int64  `json:"size" binding:"required"`
}

type avatarCompleteRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// signAvatarUploadHandler issues a short-lived signed PUT so the browser
// uploads the image straight to the bucket.
func signAvatarUploadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, ok := utils.GetUserIdFromContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req avatarSignRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "mimeType and size are required"})
			return
		}
		ext, ok := avatarMimeTypes[req.MimeType]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image type"})
			return
		}
		if req.Size <= 0 || req.Size > maxAvatarSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 5MB limit"})
			return
		}

		objectKey := path.Join("avatars", fmt.Sprint(userId), uuid.NewString()+ext)
		signed, err := utils.SignUpload(c.Request.Context(), objectKey, req.MimeType, 15*time.Minute)
		if err != nil {
			config.LogError(config.GetLogger(), "server", "signAvatarUploadHandler", "sign upload", objectKey, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign upload"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"uploadUrl": signed.UploadURL,
			"method":    signed.Method,
			"headers":   signed.Headers,
			"objectKey": signed.ObjectKey,
			"expiresAt": signed.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}
}

// avatarUploadHandler finalizes an avatar: reads the uploaded object back,
// renders a thumbnail, and points the user record at the thumbnail URL.
func avatarUploadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		userId, ok := utils.GetUserIdFromContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req avatarCompleteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "objectKey is required"})
			return
		}
		expectedPrefix := path.Join("avatars", fmt.Sprint(userId)) + "/"
		if !strings.HasPrefix(req.ObjectKey, expectedPrefix) || strings.Contains(req.ObjectKey, "..") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid object key"})
			return
		}

		thumbnailKey, err := createAvatarThumbnail(c.Request.Context(), req.ObjectKey)
		if err != nil {
			config.LogError(logger, "server", "avatarUploadHandler", "thumbnail", req.ObjectKey, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process image"})
			return
		}

		// Drop the previous thumbnail before pointing the user at the new one.
		if current, err := models.GetUser(c.Request.Context(), userId); err == nil && current.AvatarUrl != "" {
			if oldKey := utils.ExtractObjectKeyFromURL(current.AvatarUrl); oldKey != "" && oldKey != thumbnailKey {
				if err := utils.DeleteObjectFromGCS(c.Request.Context(), oldKey); err != nil {
					config.LogError(logger, "server", "avatarUploadHandler", "delete old avatar", oldKey, err)
				}
			}
		}

		avatarUrl := utils.BuildObjectAccessURL(thumbnailKey)
		update := models.User{AvatarUrl: avatarUrl}
		if _, err := update.UpdateUser(c.Request.Context(), userId); err != nil {
			respondModelError(c, err)
			return
		}

		logger.WithFields(logrus.Fields{
			"object_key": req.ObjectKey,
			"user_id":    userId,
		}).Info("[avatar.complete]")

		c.JSON(http.StatusOK, gin.H{
			"avatarUrl":    avatarUrl,
			"imageUrl":     utils.BuildObjectAccessURL(req.ObjectKey),
			"thumbnailKey": thumbnailKey,
		})
	}
}

func createAvatarThumbnail(ctx context.Context, objectKey string) (string, error) {
	data, err := utils.DownloadBytesFromGCS(ctx, objectKey, maxAvatarSizeBytes)
	if err != nil {
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	thumbnail := imaging.Resize(img, 200, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumbnail, imaging.JPEG); err != nil {
		return "", err
	}

	thumbnailKey := path.Join(path.Dir(objectKey), "thumbnails", path.Base(objectKey))
	if err := utils.UploadBytesToGCS(ctx, thumbnailKey, buf.Bytes(), "image/jpeg"); err != nil {
		return "", err
	}
	return thumbnailKey, nil
}
