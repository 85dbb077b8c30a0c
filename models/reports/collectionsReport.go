package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"bitbucket.org/vetadata/iga_backend/models"
	"bitbucket.org/vetadata/iga_backend/reporting"
	"bitbucket.org/vetadata/iga_backend/utils"
)

type CollectionsReportRequest struct {
	StartDate string `form:"startDate" json:"startDate"`
	EndDate   string `form:"endDate" json:"endDate"`
	Service   string `form:"service" json:"service"`
	Centre    string `form:"centre" json:"centre"`
	Zone      string `form:"zone" json:"zone"`
	Page      int    `form:"page" json:"page"`
	PageSize  int    `form:"pageSize" json:"pageSize"`
}

type CollectionsReport struct {
	Total            decimal.Decimal                               `json:"total"`
	ServiceSummaries []reporting.Summary                           `json:"serviceSummaries"`
	CentreSummaries  []reporting.Summary                           `json:"centreSummaries"`
	ZoneSummaries    []reporting.Summary                           `json:"zoneSummaries"`
	Records          models.PagedResponse[reporting.TransactionRecord] `json:"records"`
}

// normalizeCollections flattens stored rows into the pipeline shape.
// Missing associations default to empty strings, never nil branches.
func normalizeCollections(collections []*models.Collection) []reporting.TransactionRecord {
	records := make([]reporting.TransactionRecord, 0, len(collections))
	for _, c := range collections {
		r := reporting.TransactionRecord{
			ID:     fmt.Sprint(c.ID),
			Amount: c.AmountBilled,
			Date:   c.Date.Format(reporting.DateLayout),
		}
		if c.Customer != nil {
			r.Subject = c.Customer.Name
		}
		if c.Centre != nil {
			r.Centre = c.Centre.Name
			if c.Centre.Zone != nil {
				r.Zone = c.Centre.Zone.Name
			}
		}
		if c.GfsCode != nil {
			r.ServiceCode = c.GfsCode.Code
			r.ServiceDescription = c.GfsCode.Description
		}
		records = append(records, r)
	}
	return records
}

// reportWindow resolves the request's date range, defaulting to the current
// calendar month.
func reportWindow(startDate, endDate string) (time.Time, time.Time, reporting.Criteria) {
	start, okStart := utils.ParseFlexibleTime(startDate)
	end, okEnd := utils.ParseFlexibleTime(endDate)
	if !okStart || !okEnd {
		start, end = utils.GetThisMonthRange()
		startDate = start.Format(reporting.DateLayout)
		endDate = end.Format(reporting.DateLayout)
	}
	criteria := reporting.Criteria{StartDate: startDate, EndDate: endDate}
	return start, end, criteria
}

// GetCollectionsReport runs the shared pipeline over the requested window.
// The viewer's scope is applied before the request's own filters, so a
// centre-scoped user can never widen visibility through the filter values.
func GetCollectionsReport(ctx context.Context, req CollectionsReportRequest) (*CollectionsReport, error) {
	started := time.Now()
	scope := scopeFromContext(ctx)

	key := cacheKey("collections", scope,
		req.StartDate, req.EndDate, req.Service, req.Centre, req.Zone,
		fmt.Sprint(req.Page), fmt.Sprint(req.PageSize))
	var cached CollectionsReport
	if ok, err := cacheGet(key, &cached); err == nil && ok {
		return &cached, nil
	}

	start, end, criteria := reportWindow(req.StartDate, req.EndDate)
	criteria.Service = req.Service
	criteria.Centre = req.Centre
	criteria.Zone = req.Zone

	collections, err := models.GetCollectionsInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	records := normalizeCollections(collections)
	scoped := reporting.ApplyScope(records, scope)
	filtered := reporting.ApplyFilter(scoped, criteria)

	page, pageSize := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = models.DefaultPageSize
	}

	report := &CollectionsReport{
		Total:            reporting.Total(filtered),
		ServiceSummaries: reporting.Aggregate(filtered, reporting.ByService),
		CentreSummaries:  reporting.Aggregate(filtered, reporting.ByCentre),
		ZoneSummaries:    reporting.Aggregate(filtered, reporting.ByZone),
		Records:          models.PageOf(filtered, page, pageSize),
	}

	cacheSet(key, report)
	logSlowReport(ctx, "collections", started, map[string]any{"rows": len(records)})
	return report, nil
}

// GetCollectionForViewer fetches one payment and hides it when the record
// falls outside the viewer's scope.
func GetCollectionForViewer(ctx context.Context, id int) (*models.Collection, error) {
	collection, err := utils.FetchSingleModel[models.Collection](ctx, id, "Customer", "Centre", "Centre.Zone", "GfsCode")
	if err != nil {
		return nil, err
	}

	scope := scopeFromContext(ctx)
	switch scope.Level {
	case reporting.ScopeCentre:
		if collection.Centre == nil || collection.Centre.Name != scope.Centre {
			return nil, utils.ErrorRecordNotFound
		}
	case reporting.ScopeZone:
		if collection.Centre == nil || collection.Centre.Zone == nil || collection.Centre.Zone.Name != scope.Zone {
			return nil, utils.ErrorRecordNotFound
		}
	}
	return collection, nil
}
