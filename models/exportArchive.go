package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/utils"
)

// ExportArchive tracks generated report documents uploaded to object
// storage, so past exports can be re-downloaded via signed URLs.
type ExportArchive struct {
	ID         int       `gorm:"primary_key" json:"id"`
	ReportName string    `gorm:"size:100;not null" json:"report_name"`
	Format     string    `gorm:"size:10;not null" json:"format"`
	ObjectKey  string    `gorm:"size:255;not null" json:"object_key"`
	SizeBytes  int64     `json:"size_bytes"`
	UserId     *int      `gorm:"index" json:"user_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ArchiveExport uploads the document and records it. The object key embeds
// report name, timestamp and format.
func ArchiveExport(ctx context.Context, reportName, format string, data []byte, userId *int) (*ExportArchive, error) {
	objectKey := fmt.Sprintf("exports/%s/%s.%s", reportName, time.Now().UTC().Format("20060102T150405"), format)

	contentType := "application/octet-stream"
	switch format {
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		contentType = "application/pdf"
	}

	if err := utils.UploadBytesToGCS(ctx, objectKey, data, contentType); err != nil {
		return nil, err
	}

	archive := ExportArchive{
		ReportName: reportName,
		Format:     format,
		ObjectKey:  objectKey,
		SizeBytes:  int64(len(data)),
		UserId:     userId,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&archive).Error; err != nil {
		return nil, err
	}
	return &archive, nil
}

func GetExportArchives(ctx context.Context, limit int) ([]*ExportArchive, error) {
	db := config.GetDB()

	var results []*ExportArchive
	query := db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// SignArchiveDownload returns a time-limited download URL for an archived
// export.
func SignArchiveDownload(ctx context.Context, id int) (*utils.SignedDownload, error) {
	archive, err := utils.FetchSingleModel[ExportArchive](ctx, id)
	if err != nil {
		return nil, err
	}
	return utils.SignDownload(ctx, archive.ObjectKey, 15*time.Minute)
}
