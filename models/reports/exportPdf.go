package reports

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const PdfContentType = "application/pdf"

func newReportPdf(title, subtitle string) *gofpdf.Fpdf {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, subtitle, "", 1, "C", false, 0, "")
	pdf.Ln(4)
	return pdf
}

func pdfTableHeader(pdf *gofpdf.Fpdf, widths []float64, headers []string) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
}

func pdfTableRow(pdf *gofpdf.Fpdf, widths []float64, values []string) {
	for i, v := range values {
		align := "L"
		if i == len(values)-1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 6, v, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

// ExportCollectionsPdf renders the collections report as a printable table
// of per-service totals followed by the grand total.
func ExportCollectionsPdf(ctx context.Context, req CollectionsReportRequest) ([]byte, error) {
	req.Page = 1
	req.PageSize = 0
	report, err := GetCollectionsReport(ctx, req)
	if err != nil {
		return nil, err
	}

	_, _, criteria := reportWindow(req.StartDate, req.EndDate)
	pdf := newReportPdf("Collections Report",
		fmt.Sprintf("%s to %s", criteria.StartDate, criteria.EndDate))

	widths := []float64{40, 180, 50}
	pdfTableHeader(pdf, widths, []string{"Gfs Code", "Service", "Amount"})
	for _, s := range report.ServiceSummaries {
		pdfTableRow(pdf, widths, []string{s.Key, s.Label, s.Amount.StringFixed(2)})
	}
	pdf.SetFont("Arial", "B", 9)
	pdfTableRow(pdf, widths, []string{"", "TOTAL", report.Total.StringFixed(2)})

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportDistributionPdf renders the allocation lines for a window.
func ExportDistributionPdf(ctx context.Context, req DistributionReportRequest) ([]byte, error) {
	report, err := GetDistributionReport(ctx, req)
	if err != nil {
		return nil, err
	}

	_, _, criteria := reportWindow(req.StartDate, req.EndDate)
	pdf := newReportPdf("Income Distribution Report",
		fmt.Sprintf("%s to %s", criteria.StartDate, criteria.EndDate))

	widths := []float64{55, 30, 70, 30, 30, 30, 30}
	pdfTableHeader(pdf, widths, []string{
		"Centre", "Gfs Code", "Description", "Original", "Expenditure", "Profit", "Remitted"})
	for _, a := range report.Allocations {
		centreName := ""
		if a.Centre != nil {
			centreName = a.Centre.Name
		}
		pdfTableRow(pdf, widths, []string{
			centreName, a.GfsCode, a.GfsCodeDescription,
			a.OriginalAmount.StringFixed(2),
			a.ExpenditureAmount.StringFixed(2),
			a.ProfitAmount.StringFixed(2),
			a.RemittedToCentre.StringFixed(2),
		})
	}
	pdf.SetFont("Arial", "B", 9)
	pdfTableRow(pdf, widths, []string{
		"TOTAL", "", "",
		report.Totals.OriginalAmount.StringFixed(2),
		report.Totals.ExpenditureAmount.StringFixed(2),
		report.Totals.ProfitAmount.StringFixed(2),
		report.Totals.RemittedToCentre.StringFixed(2),
	})

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
