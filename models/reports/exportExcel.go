package reports

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"bitbucket.org/vetadata/iga_backend/models"
	"bitbucket.org/vetadata/iga_backend/reporting"
)

const ExcelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func writeSheetRow(f *excelize.File, sheet string, rowNo int, values ...interface{}) {
	col := 'A'
	for _, value := range values {
		f.SetCellValue(sheet, fmt.Sprintf("%c%d", col, rowNo), value)
		col++
	}
}

// ExportCollectionsExcel renders the collections report as a workbook with a
// transactions sheet and a per-service summary sheet.
func ExportCollectionsExcel(ctx context.Context, req CollectionsReportRequest) ([]byte, error) {
	req.Page = 1
	req.PageSize = 0
	report, err := GetCollectionsReport(ctx, req)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Collections"
	f.SetSheetName("Sheet1", sheet)

	writeSheetRow(f, sheet, 1, "Date", "Customer", "Centre", "Zone", "Gfs Code", "Service", "Amount")
	for i, r := range allPipelineRecords(ctx, req) {
		row := i + 2
		amount, _ := r.Amount.Float64()
		writeSheetRow(f, sheet, row, r.Date, r.Subject, r.Centre, r.Zone, r.ServiceCode, r.ServiceDescription, amount)
	}

	summary := "By Service"
	if _, err := f.NewSheet(summary); err != nil {
		return nil, err
	}
	writeSheetRow(f, summary, 1, "Gfs Code", "Service", "Amount")
	for i, s := range report.ServiceSummaries {
		amount, _ := s.Amount.Float64()
		writeSheetRow(f, summary, i+2, s.Key, s.Label, amount)
	}
	total, _ := report.Total.Float64()
	writeSheetRow(f, summary, len(report.ServiceSummaries)+2, "", "TOTAL", total)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// allPipelineRecords re-runs the scoped, filtered pipeline without paging so
// the export carries every visible row, not just the requested page.
func allPipelineRecords(ctx context.Context, req CollectionsReportRequest) []reporting.TransactionRecord {
	scope := scopeFromContext(ctx)

	start, end, criteria := reportWindow(req.StartDate, req.EndDate)
	criteria.Service = req.Service
	criteria.Centre = req.Centre
	criteria.Zone = req.Zone

	collections, err := models.GetCollectionsInRange(ctx, start, end)
	if err != nil {
		return nil
	}
	return reporting.ApplyFilter(reporting.ApplyScope(normalizeCollections(collections), scope), criteria)
}

// ExportDistributionExcel renders the allocation lines for a window.
func ExportDistributionExcel(ctx context.Context, req DistributionReportRequest) ([]byte, error) {
	report, err := GetDistributionReport(ctx, req)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Distribution"
	f.SetSheetName("Sheet1", sheet)

	writeSheetRow(f, sheet, 1,
		"Centre", "Gfs Code", "Description", "Original Amount", "Expenditure", "Profit",
		"Central IGA", "Facilitation Central", "Facilitation Zonal", "Facilitation Centre",
		"Centre Fund", "Remitted To Centre")

	row := 2
	for _, a := range report.Allocations {
		centreName := ""
		if a.Centre != nil {
			centreName = a.Centre.Name
		}
		original, _ := a.OriginalAmount.Float64()
		expenditure, _ := a.ExpenditureAmount.Float64()
		profit, _ := a.ProfitAmount.Float64()
		centralIGA, _ := a.ContributionToCentralIGA.Float64()
		facCentral, _ := a.FacilitationCentral.Float64()
		facZonal, _ := a.FacilitationZonal.Float64()
		facCentre, _ := a.FacilitationCentre.Float64()
		centreFund, _ := a.ContributionToCentreFund.Float64()
		remitted, _ := a.RemittedToCentre.Float64()
		writeSheetRow(f, sheet, row,
			centreName, a.GfsCode, a.GfsCodeDescription, original, expenditure, profit,
			centralIGA, facCentral, facZonal, facCentre, centreFund, remitted)
		row++
	}

	totalOriginal, _ := report.Totals.OriginalAmount.Float64()
	totalProfit, _ := report.Totals.ProfitAmount.Float64()
	totalRemitted, _ := report.Totals.RemittedToCentre.Float64()
	writeSheetRow(f, sheet, row, "TOTAL", "", "", totalOriginal, "", totalProfit, "", "", "", "", "", totalRemitted)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
