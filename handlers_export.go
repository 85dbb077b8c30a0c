package main

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/models"
	"bitbucket.org/vetadata/iga_backend/models/reports"
	"bitbucket.org/vetadata/iga_backend/utils"
)

// serveExport writes the rendered report as an attachment and archives a
// copy in object storage. Archival is best effort.
func serveExport(c *gin.Context, reportName, format, contentType string, data []byte) {
	userId, _ := utils.GetUserIdFromContext(c.Request.Context())
	userIdPtr := &userId
	if userId == 0 {
		userIdPtr = nil
	}
	if _, err := models.ArchiveExport(c.Request.Context(), reportName, format, data, userIdPtr); err != nil {
		config.LogError(config.GetLogger(), "server", "serveExport", "archive export", reportName, err)
	}

	filename := fmt.Sprintf("%s_%s.%s", reportName, time.Now().Format("20060102_150405"), format)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}

func exportCollectionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reports.CollectionsReportRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
			return
		}

		switch c.DefaultQuery("format", "xlsx") {
		case "pdf":
			data, err := reports.ExportCollectionsPdf(c.Request.Context(), req)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			serveExport(c, "collections", "pdf", reports.PdfContentType, data)
		case "xlsx":
			data, err := reports.ExportCollectionsExcel(c.Request.Context(), req)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			serveExport(c, "collections", "xlsx", reports.ExcelContentType, data)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "format must be xlsx or pdf"})
		}
	}
}

func exportDistributionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reports.DistributionReportRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
			return
		}

		switch c.DefaultQuery("format", "xlsx") {
		case "pdf":
			data, err := reports.ExportDistributionPdf(c.Request.Context(), req)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			serveExport(c, "distribution", "pdf", reports.PdfContentType, data)
		case "xlsx":
			data, err := reports.ExportDistributionExcel(c.Request.Context(), req)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			serveExport(c, "distribution", "xlsx", reports.ExcelContentType, data)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "format must be xlsx or pdf"})
		}
	}
}

func exportArchivesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		archives, err := models.GetExportArchives(c.Request.Context(), limit)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, archives)
	}
}

func exportArchiveDownloadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c)
		if !ok {
			return
		}
		signed, err := models.SignArchiveDownload(c.Request.Context(), id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, signed)
	}
}
