package core

import (
	"errors"
	"math"

	"stock-dashboard/src/helpers"
)

// AnnuityFutureValue is the annuity-due future value of a fixed monthly
// contribution: c * (((1+r)^n - 1) / r) * (1+r). At r == 0 it is c * n.
func AnnuityFutureValue(contribution, monthlyRate float64, months int) (float64, error) {
	switch {
	case months < 0:
		return 0, helpers.InvalidInput("annuity", "", errors.New("months must not be negative"))
	case contribution < 0 || math.IsNaN(contribution) || math.IsInf(contribution, 0):
		return 0, helpers.InvalidInput("annuity", "", errors.New("contribution must be a non-negative number"))
	case monthlyRate <= -1 || math.IsNaN(monthlyRate) || math.IsInf(monthlyRate, 0):
		return 0, helpers.InvalidInput("annuity", "", errors.New("rate must be greater than -100%"))
	}

	if monthlyRate == 0 {
		return contribution * float64(months), nil
	}
	growth := math.Pow(1+monthlyRate, float64(months))
	return contribution * ((growth - 1) / monthlyRate) * (1 + monthlyRate), nil
}
