package reports

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bitbucket.org/vetadata/iga_backend/models"
	"bitbucket.org/vetadata/iga_backend/reporting"
)

type ApposhmentReportRequest struct {
	StartDate string `form:"startDate" json:"startDate"`
	EndDate   string `form:"endDate" json:"endDate"`
	Centre    string `form:"centre" json:"centre"`
}

type ApposhmentReport struct {
	Apposhments []*models.Apposhment `json:"apposhments"`
	TotalProfit decimal.Decimal      `json:"totalProfit"`
	TotalPaid   decimal.Decimal      `json:"totalPaid"`
}

func apposhmentInScope(a *models.Apposhment, scope reporting.Scope) bool {
	if a.Centre == nil {
		return scope.Level == reporting.ScopeHQ
	}
	switch scope.Level {
	case reporting.ScopeCentre:
		return strings.EqualFold(a.Centre.Name, scope.Centre)
	case reporting.ScopeZone:
		return a.Centre.Zone != nil && strings.EqualFold(a.Centre.Zone.Name, scope.Zone)
	default:
		return true
	}
}

// GetApposhmentReport lists preparation-period payouts overlapping the
// requested window, with profit and payout totals across the visible rows.
func GetApposhmentReport(ctx context.Context, req ApposhmentReportRequest) (*ApposhmentReport, error) {
	started := time.Now()
	scope := scopeFromContext(ctx)

	key := cacheKey("apposhment", scope, req.StartDate, req.EndDate, req.Centre)
	var cached ApposhmentReport
	if ok, err := cacheGet(key, &cached); err == nil && ok {
		return &cached, nil
	}

	start, end, _ := reportWindow(req.StartDate, req.EndDate)

	apposhments, err := models.GetAllApposhments(ctx)
	if err != nil {
		return nil, err
	}

	report := &ApposhmentReport{Apposhments: make([]*models.Apposhment, 0, len(apposhments))}
	for _, a := range apposhments {
		if a.EndDate.Before(start) || a.StartDate.After(end) {
			continue
		}
		if !apposhmentInScope(a, scope) {
			continue
		}
		if req.Centre != "" && !strings.EqualFold(req.Centre, "ALL") {
			if a.Centre == nil || !strings.EqualFold(a.Centre.Name, req.Centre) {
				continue
			}
		}
		for _, s := range a.Services {
			report.TotalProfit = report.TotalProfit.Add(s.ServiceReturnProfit)
			report.TotalPaid = report.TotalPaid.Add(s.AmountPaid)
		}
		report.Apposhments = append(report.Apposhments, a)
	}

	cacheSet(key, report)
	logSlowReport(ctx, "apposhment", started, map[string]any{"rows": len(report.Apposhments)})
	return report, nil
}
