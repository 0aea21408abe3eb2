package service

import (
	"math"

	"github.com/Freeeeeet/tutor_scheduler/internal/apperr"
	"github.com/Freeeeeet/tutor_scheduler/internal/timeutil"
)

// PricingCalculator считает стоимость занятия. Цена фиксируется в бронировании
// при создании, поэтому смена ставки на старые бронирования не влияет.
type PricingCalculator struct{}

func NewPricingCalculator() *PricingCalculator {
	return &PricingCalculator{}
}

// Price длительность в часах, умноженная на ставку, с округлением до центов
func (pc *PricingCalculator) Price(start, end string, hourlyRate float64) (float64, error) {
	if !validRate(hourlyRate) {
		return 0, apperr.ErrInvalidHourlyRate.WithDetail("hourlyRate", "Hourly rate must be a positive number")
	}

	s, e, err := timeutil.ParseRange(start, end)
	if err != nil {
		return 0, err
	}

	hours := float64(e-s) / 60
	return math.Round(hours*hourlyRate*100) / 100, nil
}

func validRate(rate float64) bool {
	return rate > 0 && !math.IsInf(rate, 0) && !math.IsNaN(rate)
}
