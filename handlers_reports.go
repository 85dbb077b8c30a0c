package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"bitbucket.org/vetadata/iga_backend/igasync"
	"bitbucket.org/vetadata/iga_backend/models"
	"bitbucket.org/vetadata/iga_backend/models/reports"
	"bitbucket.org/vetadata/iga_backend/utils"
	"bitbucket.org/vetadata/iga_backend/workflow"
)

func dashboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reports.DashboardRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
			return
		}
		report, err := reports.GetDashboardReport(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func collectionsReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reports.CollectionsReportRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
			return
		}
		report, err := reports.GetCollectionsReport(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func distributionReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reports.DistributionReportRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
			return
		}
		report, err := reports.GetDistributionReport(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func apposhmentReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reports.ApposhmentReportRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
			return
		}
		report, err := reports.GetApposhmentReport(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func collectionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c)
		if !ok {
			return
		}
		collection, err := reports.GetCollectionForViewer(c.Request.Context(), id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, collection)
	}
}

// --- apposhments ---

func listApposhmentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if centreIdStr := c.Query("centreId"); centreIdStr != "" {
			centreId, err := strconv.Atoi(centreIdStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid centreId"})
				return
			}
			apposhments, err := models.GetApposhmentsByCentre(c.Request.Context(), centreId)
			if err != nil {
				respondModelError(c, err)
				return
			}
			c.JSON(http.StatusOK, apposhments)
			return
		}
		apposhments, err := models.GetAllApposhments(c.Request.Context())
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, apposhments)
	}
}

func getApposhmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c)
		if !ok {
			return
		}
		apposhment, err := models.GetApposhment(c.Request.Context(), id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, apposhment)
	}
}

type createApposhmentRequest struct {
	CentreId  int    `json:"centre_id" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Services  []struct {
		ServiceName         string          `json:"service_name" binding:"required"`
		ServiceReturnProfit decimal.Decimal `json:"service_return_profit"`
	} `json:"services" binding:"required,min=1"`
}

func createApposhmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createApposhmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}

		startDate, okStart := utils.ParseFlexibleTime(req.StartDate)
		endDate, okEnd := utils.ParseFlexibleTime(req.EndDate)
		if !okStart || !okEnd || endDate.Before(startDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date range"})
			return
		}

		services := make([]workflow.ServiceRequest, 0, len(req.Services))
		for _, s := range req.Services {
			services = append(services, workflow.ServiceRequest{
				ServiceName:         s.ServiceName,
				ServiceReturnProfit: s.ServiceReturnProfit,
			})
		}

		apposhment, err := workflow.SaveApposhment(c.Request.Context(), req.CentreId, startDate, endDate, services)
		if errors.Is(err, models.ErrApposhmentExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusCreated, apposhment)
	}
}

func deleteApposhmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c)
		if !ok {
			return
		}
		if err := models.DeleteApposhment(c.Request.Context(), id); err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

// --- allocations ---

type publishAllocationsRequest struct {
	Year  int `json:"year" binding:"required"`
	Month int `json:"month" binding:"required,min=1,max=12"`
}

// publishAllocationsHandler persists the computed allocation lines for one
// month as the official monthly snapshot.
func publishAllocationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req publishAllocationsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		if err := workflow.SaveMonthlyAllocations(c.Request.Context(), req.Year, time.Month(req.Month)); err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"published": true, "year": req.Year, "month": req.Month})
	}
}

// --- sync ---

func syncRunHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := igasync.RunSync(c.Request.Context(), "ops")
		if errors.Is(err, igasync.ErrSyncRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": "sync already running"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func syncStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := models.CountCollections(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		maxDate, err := models.CollectionMaxDate(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"storedCollections": count,
			"latestRecordDate":  maxDate,
		})
	}
}
