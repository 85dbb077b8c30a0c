package workflow

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"bitbucket.org/vetadata/iga_backend/models"
)

var (
	rateExecutors  = decimal.NewFromFloat(0.10)
	rateSupporters = decimal.NewFromFloat(0.05)
	rateAgencyFee  = decimal.NewFromFloat(0.05)
)

// ServiceRequest is one service line in an apposhment submission.
type ServiceRequest struct {
	ServiceName         string          `json:"service_name" binding:"required"`
	ServiceReturnProfit decimal.Decimal `json:"service_return_profit" binding:"required"`
}

// DeriveServiceItem computes the fixed shares from a service's return
// profit: executors 10%, supporters 5%, agency 5%; amount paid is executors
// plus supporters.
func DeriveServiceItem(req ServiceRequest) models.ServiceItem {
	executors := req.ServiceReturnProfit.Mul(rateExecutors).Round(2)
	supporters := req.ServiceReturnProfit.Mul(rateSupporters).Round(2)
	agency := req.ServiceReturnProfit.Mul(rateAgencyFee).Round(2)

	return models.ServiceItem{
		ServiceName:           req.ServiceName,
		ServiceReturnProfit:   req.ServiceReturnProfit,
		Executors:             executors,
		SupportersToExecutors: supporters,
		AgencyFee:             agency,
		AmountPaid:            executors.Add(supporters),
	}
}

// SaveApposhment validates the range is not already covered for the centre
// and persists the apposhment with its derived service items.
func SaveApposhment(ctx context.Context, centreId int, startDate, endDate time.Time, services []ServiceRequest) (*models.Apposhment, error) {
	exists, err := models.ApposhmentExists(ctx, centreId, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.ErrApposhmentExists
	}

	centre, err := models.GetCentre(ctx, centreId)
	if err != nil {
		return nil, err
	}

	apposhment := &models.Apposhment{
		StartDate: startDate,
		EndDate:   endDate,
		CentreId:  centre.ID,
	}
	for _, s := range services {
		apposhment.Services = append(apposhment.Services, DeriveServiceItem(s))
	}

	if err := models.CreateApposhment(ctx, apposhment); err != nil {
		return nil, err
	}
	apposhment.Centre = centre
	return apposhment, nil
}
