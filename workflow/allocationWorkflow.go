// Package workflow holds the distribution math: splitting a centre's
// collections per GFS code into expenditure, profit and the contribution
// buckets, and deriving apposhment service shares.
package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/models"
)

const drivingGfsCode = "142301600001"

// Contribution bucket rates applied to profit. Remitted-to-centre
// intentionally overlaps the centre-side buckets (0.60 + 0.02 = 0.62).
var (
	rateCentralIGA       = decimal.NewFromFloat(0.30)
	rateCentralActivity  = decimal.NewFromFloat(0.04)
	rateZonalActivity    = decimal.NewFromFloat(0.04)
	rateCentreActivity   = decimal.NewFromFloat(0.02)
	rateProductionUnit   = decimal.NewFromFloat(0.00)
	rateCentreFund       = decimal.NewFromFloat(0.60)
	rateDepreciation     = decimal.NewFromFloat(0.00)
	rateRemittedToCentre = decimal.NewFromFloat(0.62)

	shortCoursesMarkup = decimal.NewFromFloat(0.30)
	one                = decimal.NewFromInt(1)
)

// AllocateAllCentres computes allocation lines for every centre over a date
// range. Centres without collections in the range get a single zeroed line
// so the view still shows them.
func AllocateAllCentres(ctx context.Context, start, end time.Time) ([]*models.Allocation, error) {
	collections, err := models.GetCollectionsInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	centres, err := models.GetAllCentres(ctx)
	if err != nil {
		return nil, err
	}

	byCentre := make(map[int][]*models.Collection)
	for _, c := range collections {
		byCentre[c.CentreId] = append(byCentre[c.CentreId], c)
	}

	var result []*models.Allocation
	for _, centre := range centres {
		centreCollections := byCentre[centre.ID]
		if len(centreCollections) > 0 {
			result = append(result, AllocateByGfsCode(centre, centreCollections)...)
		} else {
			result = append(result, emptyAllocation(centre))
		}
	}
	return result, nil
}

// AllocateByGfsCode groups one centre's collections per GFS code and builds
// a distribution line per group. Code 142301600001 is split into BASIC
// DRIVING and SHORT COURSES sublines.
func AllocateByGfsCode(centre *models.Centre, collections []*models.Collection) []*models.Allocation {
	var result []*models.Allocation

	type group struct {
		gfs   *models.GfsCode
		items []*models.Collection
	}
	grouped := make(map[int]*group)
	order := []int{}
	for _, c := range collections {
		if c.GfsCode == nil {
			continue
		}
		g, ok := grouped[c.GfsCodeId]
		if !ok {
			g = &group{gfs: c.GfsCode}
			grouped[c.GfsCodeId] = g
			order = append(order, c.GfsCodeId)
		}
		g.items = append(g.items, c)
	}

	for _, id := range order {
		g := grouped[id]

		if g.gfs.Code == drivingGfsCode {
			var driving, shortCourses []*models.Collection
			for _, item := range g.items {
				if isDriving(item.Description) {
					driving = append(driving, item)
				} else {
					shortCourses = append(shortCourses, item)
				}
			}
			if len(driving) > 0 {
				if a := buildAllocation(centre, driving, g.gfs.Markup(), "BASIC DRIVING", g.gfs.Code+"-DRIVING"); a != nil {
					result = append(result, a)
				}
			}
			if len(shortCourses) > 0 {
				if a := buildAllocation(centre, shortCourses, shortCoursesMarkup, "SHORT COURSES", g.gfs.Code+"-SHORT COURSES"); a != nil {
					result = append(result, a)
				}
			}
			continue
		}

		if a := buildAllocation(centre, g.items, g.gfs.Markup(), g.gfs.Description, g.gfs.Code); a != nil {
			result = append(result, a)
		}
	}
	return result
}

// SaveMonthlyAllocations recomputes and persists the lines for a calendar
// month.
func SaveMonthlyAllocations(ctx context.Context, year int, month time.Month) error {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	allocations, err := AllocateAllCentres(ctx, start, end)
	if err != nil {
		return err
	}
	if err := models.SaveAllocations(ctx, year, int(month), allocations); err != nil {
		config.LogError(config.GetLogger(), "allocationWorkflow.go", "SaveMonthlyAllocations", "SaveAllocations", map[string]int{"year": year, "month": int(month)}, err)
		return err
	}
	return nil
}

func isDriving(description string) bool {
	d := strings.ToUpper(strings.TrimSpace(description))
	return strings.Contains(d, "DRIVING") || strings.Contains(d, "PSV") || strings.Contains(d, "PVS")
}

func bucket(profit, rate decimal.Decimal) decimal.Decimal {
	return profit.Mul(rate).Round(2)
}

func emptyAllocation(centre *models.Centre) *models.Allocation {
	return &models.Allocation{
		CentreId:           centre.ID,
		Centre:             centre,
		GfsCode:            "N/A",
		GfsCodeDescription: "No Payments (Custom Range)",
	}
}

func buildAllocation(centre *models.Centre, items []*models.Collection, markup decimal.Decimal, label, code string) *models.Allocation {
	if len(items) == 0 {
		return nil
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.AmountBilled)
	}
	total = total.Round(2)

	var expenditure, profit, difference decimal.Decimal

	switch {
	case strings.EqualFold(label, "Receipts from Application Fee"):
		// no expenditure share, the whole amount is profit
		expenditure = decimal.Zero
		profit = total
		difference = total
	default:
		expenditure = total.DivRound(one.Add(markup), 4)
		profit = total.Sub(expenditure)
		difference = expenditure.Sub(profit)
	}

	allocation := &models.Allocation{
		OriginalAmount:     total,
		ExpenditureAmount:  expenditure,
		ProfitAmount:       profit,
		DifferenceOnMarkup: difference,
		CentreId:           centre.ID,
		Centre:             centre,
		GfsCode:            code,
		GfsCodeDescription: strings.TrimSpace(label),
		Date:               items[0].Date,
	}

	if strings.EqualFold(label, "Tuition Fees") {
		// tuition is remitted in full elsewhere, nothing is distributed
		allocation.ExpenditureAmount = decimal.Zero
		allocation.ProfitAmount = decimal.Zero
		return allocation
	}

	allocation.ContributionToCentralIGA = bucket(profit, rateCentralIGA)
	allocation.FacilitationCentral = bucket(profit, rateCentralActivity)
	allocation.FacilitationZonal = bucket(profit, rateZonalActivity)
	allocation.FacilitationCentre = bucket(profit, rateCentreActivity)
	allocation.SupportToProductionUnit = bucket(profit, rateProductionUnit)
	allocation.ContributionToCentreFund = bucket(profit, rateCentreFund)
	allocation.DepreciationIncentive = bucket(profit, rateDepreciation)
	allocation.RemittedToCentre = bucket(profit, rateRemittedToCentre)

	return allocation
}
