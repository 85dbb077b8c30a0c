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

const (
	dashboardTopServices    = 3
	dashboardTopCentres     = 3
	dashboardRecentPayments = 8
)

type DashboardRequest struct {
	StartDate string `form:"startDate" json:"startDate"`
	EndDate   string `form:"endDate" json:"endDate"`
}

type DashboardReport struct {
	TotalIncome       decimal.Decimal               `json:"totalIncome"`
	TotalTransactions int                           `json:"totalTransactions"`
	MonthIncome       decimal.Decimal               `json:"monthIncome"`
	PreviousMonth     decimal.Decimal               `json:"previousMonthIncome"`
	TopServices       []reporting.Summary           `json:"topServices"`
	TopCentres        []reporting.Summary           `json:"topCentres"`
	BottomCentres     []reporting.Summary           `json:"bottomCentres"`
	RecentPayments    []reporting.TransactionRecord `json:"recentPayments"`
}

func topN(summaries []reporting.Summary, n int) []reporting.Summary {
	if len(summaries) > n {
		summaries = summaries[:n]
	}
	return summaries
}

func bottomN(summaries []reporting.Summary, n int) []reporting.Summary {
	if len(summaries) > n {
		summaries = summaries[len(summaries)-n:]
	}
	out := make([]reporting.Summary, len(summaries))
	for i, s := range summaries {
		out[len(summaries)-1-i] = s
	}
	return out
}

// GetDashboardReport assembles the landing-page figures. Totals and recent
// payments follow the requested range; centre rankings always use the
// current calendar month so the leaderboard stays comparable day to day.
func GetDashboardReport(ctx context.Context, req DashboardRequest) (*DashboardReport, error) {
	started := time.Now()
	scope := scopeFromContext(ctx)

	key := cacheKey("dashboard", scope, req.StartDate, req.EndDate)
	var cached DashboardReport
	if ok, err := cacheGet(key, &cached); err == nil && ok {
		return &cached, nil
	}

	start, end, criteria := reportWindow(req.StartDate, req.EndDate)
	monthStart, monthEnd := utils.GetThisMonthRange()
	prevStart, prevEnd := utils.GetPreviousMonthRange()

	windowStart, windowEnd := start, end
	if prevStart.Before(windowStart) {
		windowStart = prevStart
	}
	if monthEnd.After(windowEnd) {
		windowEnd = monthEnd
	}

	collections, err := models.GetCollectionsInRange(ctx, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	scoped := reporting.ApplyScope(normalizeCollections(collections), scope)
	ranged := reporting.ApplyFilter(scoped, criteria)
	monthly := reporting.ApplyFilter(scoped, reporting.Criteria{
		StartDate: monthStart.Format(reporting.DateLayout),
		EndDate:   monthEnd.Format(reporting.DateLayout),
	})
	previous := reporting.ApplyFilter(scoped, reporting.Criteria{
		StartDate: prevStart.Format(reporting.DateLayout),
		EndDate:   prevEnd.Format(reporting.DateLayout),
	})

	centreSummaries := reporting.Aggregate(monthly, reporting.ByCentre)

	recent := ranged
	if len(recent) > dashboardRecentPayments {
		recent = recent[:dashboardRecentPayments]
	}

	report := &DashboardReport{
		TotalIncome:       reporting.Total(ranged),
		TotalTransactions: len(ranged),
		MonthIncome:       reporting.Total(monthly),
		PreviousMonth:     reporting.Total(previous),
		TopServices:       topN(reporting.Aggregate(ranged, reporting.ByService), dashboardTopServices),
		TopCentres:        topN(centreSummaries, dashboardTopCentres),
		BottomCentres:     bottomN(centreSummaries, dashboardTopCentres),
		RecentPayments:    recent,
	}

	cacheSet(key, report)
	logSlowReport(ctx, "dashboard", started, map[string]any{
		"rows": len(scoped), "range": fmt.Sprintf("%s..%s", criteria.StartDate, criteria.EndDate),
	})
	return report, nil
}
