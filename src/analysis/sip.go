package analysis

import (
	"errors"
	"math"

	"stock-dashboard/src/analysis/core"
	"stock-dashboard/src/helpers"
	"stock-dashboard/src/models"

	"github.com/shopspring/decimal"
)

const (
	MaxSIPYears   = 60
	MaxSIPRatePct = 100.0
)

// ProjectSIP projects a monthly plan at a fixed annual rate, compounded
// monthly, with one schedule row per year. Money is rounded to cents.
func ProjectSIP(monthly, annualRatePct float64, years int) (models.MSIPProjection, error) {
	switch {
	case monthly <= 0 || math.IsNaN(monthly) || math.IsInf(monthly, 0):
		return models.MSIPProjection{}, helpers.InvalidInput("sip", "", errors.New("monthly contribution must be positive"))
	case years < 1 || years > MaxSIPYears:
		return models.MSIPProjection{}, helpers.InvalidInput("sip", "", errors.New("years must be between 1 and 60"))
	case annualRatePct < 0 || annualRatePct > MaxSIPRatePct || math.IsNaN(annualRatePct):
		return models.MSIPProjection{}, helpers.InvalidInput("sip", "", errors.New("annual rate must be between 0 and 100"))
	}

	monthlyRate := annualRatePct / 12 / 100
	contribution := decimal.NewFromFloat(monthly)

	proj := models.MSIPProjection{
		MonthlyContribution: monthly,
		AnnualRatePct:       annualRatePct,
		Years:               years,
		Schedule:            make([]models.MSIPYear, 0, years),
	}

	for y := 1; y <= years; y++ {
		fv, err := core.AnnuityFutureValue(monthly, monthlyRate, y*12)
		if err != nil {
			return models.MSIPProjection{}, err
		}
		value := decimal.NewFromFloat(fv).Round(2)
		invested := contribution.Mul(decimal.NewFromInt(int64(y * 12))).Round(2)
		proj.Schedule = append(proj.Schedule, models.MSIPYear{
			Year:     y,
			Invested: invested.InexactFloat64(),
			Value:    value.InexactFloat64(),
			Gains:    value.Sub(invested).InexactFloat64(),
		})
	}

	final := proj.Schedule[len(proj.Schedule)-1]
	proj.FutureValue = final.Value
	proj.Invested = final.Invested
	proj.Gains = final.Gains
	return proj, nil
}
