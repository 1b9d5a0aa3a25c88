// Package finance derives cost and return-on-investment figures from a
// printer's usage counters. Money math runs through decimals to keep the
// intermediate products exact; the snapshot exposes plain numbers and leaves
// all formatting to the caller.
package finance

import (
	"github.com/shopspring/decimal"

	"printfarm-backend/internal/model"
)

// Tariff defaults used when the configuration leaves them unset.
const (
	DefaultKwhPrice        = 0.85
	DefaultUsefulLifeHours = 5000.0
)

// Tariff is the energy price and depreciation horizon applied to a fleet.
type Tariff struct {
	KwhPrice        float64
	UsefulLifeHours float64
}

func (t Tariff) withDefaults() Tariff {
	if t.KwhPrice <= 0 {
		t.KwhPrice = DefaultKwhPrice
	}
	if t.UsefulLifeHours <= 0 {
		t.UsefulLifeHours = DefaultUsefulLifeHours
	}
	return t
}

// FinancialSnapshot is a derived, never-persisted view of a printer's
// economics.
type FinancialSnapshot struct {
	EnergyCost    float64 `json:"energyCost"`
	Depreciation  float64 `json:"depreciation"`
	OperatingCost float64 `json:"operatingCost"`
	NetProfit     float64 `json:"netProfit"`
	RoiPercent    float64 `json:"roiPercent"`
	PaidOff       bool    `json:"paidOff"`
}

var thousand = decimal.NewFromInt(1000)

// Analyze computes the financial snapshot for one printer under a tariff.
// Depreciation is capped at the acquisition price; a printer with no
// recorded price reports zero ROI and is never considered paid off.
func Analyze(p model.PrinterUnit, tariff Tariff) FinancialSnapshot {
	t := tariff.withDefaults()

	hours := decimal.NewFromFloat(p.TotalHours)
	watts := decimal.NewFromFloat(p.PowerWatts)
	price := decimal.NewFromFloat(p.Price)
	yield := decimal.NewFromFloat(p.YieldTotal)
	kwhPrice := decimal.NewFromFloat(t.KwhPrice)
	usefulLife := decimal.NewFromFloat(t.UsefulLifeHours)

	energyCost := hours.Mul(watts.Div(thousand)).Mul(kwhPrice)

	depreciation := decimal.Zero
	if price.IsPositive() {
		depreciation = price.Div(usefulLife).Mul(hours)
		if depreciation.GreaterThan(price) {
			depreciation = price
		}
	}

	operatingCost := energyCost.Add(depreciation)
	netProfit := yield.Sub(operatingCost)

	roiPercent := decimal.Zero
	paidOff := false
	if price.IsPositive() {
		roiPercent = netProfit.Div(price).Mul(decimal.NewFromInt(100))
		paidOff = netProfit.GreaterThanOrEqual(price)
	}

	return FinancialSnapshot{
		EnergyCost:    energyCost.InexactFloat64(),
		Depreciation:  depreciation.InexactFloat64(),
		OperatingCost: operatingCost.InexactFloat64(),
		NetProfit:     netProfit.InexactFloat64(),
		RoiPercent:    roiPercent.InexactFloat64(),
		PaidOff:       paidOff,
	}
}
