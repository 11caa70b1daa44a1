package normalize

import "math"

// Metric is the calibration for one numeric-with-unit question. PassThrough
// metrics are already expressed as percentages and are only clamped.
type Metric struct {
	ID          string
	Direction   Direction
	Points      Curve
	PassThrough bool
}

// Config carries every calibration table the Normalizer uses.
type Config struct {
	// RevenueCurve maps amount/revenue ratios to scores.
	RevenueCurve Curve
	// AbsoluteBands score amounts when revenue is unknown. They are
	// calibrated independently of RevenueCurve.
	AbsoluteBands []AmountBand
	Metrics       []Metric
}

// DefaultConfig returns the production calibration. Each call builds fresh
// slices, so callers may modify the result without affecting others.
func DefaultConfig() Config {
	return Config{
		RevenueCurve: Curve{
			{X: 0, Y: 0},
			{X: 0.001, Y: 10},
			{X: 0.005, Y: 35},
			{X: 0.01, Y: 55},
			{X: 0.02, Y: 72},
			{X: 0.03, Y: 82},
			{X: 0.05, Y: 87},
			{X: 0.10, Y: 92},
			{X: 0.20, Y: 97},
			{X: 0.50, Y: 100},
		},
		AbsoluteBands: []AmountBand{
			{Below: 1_000, Score: 10},
			{Below: 10_000, Score: 25},
			{Below: 50_000, Score: 40},
			{Below: 100_000, Score: 55},
			{Below: 250_000, Score: 65},
			{Below: 500_000, Score: 75},
			{Below: 1_000_000, Score: 85},
			{Below: math.Inf(1), Score: 95},
		},
		Metrics: []Metric{
			{
				ID:        "response_time_hours",
				Direction: LowerIsBetter,
				Points: Curve{
					{X: 0, Y: 100}, {X: 1, Y: 95}, {X: 4, Y: 85}, {X: 24, Y: 65},
					{X: 48, Y: 45}, {X: 72, Y: 30}, {X: 168, Y: 10}, {X: 336, Y: 0},
				},
			},
			{
				ID:        "inventory_turnover_rate",
				Direction: HigherIsBetter,
				Points: Curve{
					{X: 0, Y: 0}, {X: 2, Y: 30}, {X: 4, Y: 55}, {X: 6, Y: 70},
					{X: 8, Y: 80}, {X: 12, Y: 90}, {X: 20, Y: 100},
				},
			},
			{
				ID:        "average_sales_cycle_days",
				Direction: LowerIsBetter,
				Points: Curve{
					{X: 0, Y: 100}, {X: 7, Y: 95}, {X: 30, Y: 80}, {X: 60, Y: 65},
					{X: 90, Y: 50}, {X: 180, Y: 25}, {X: 365, Y: 5},
				},
			},
			{
				ID:        "employee_turnover_rate",
				Direction: LowerIsBetter,
				Points: Curve{
					{X: 0, Y: 100}, {X: 5, Y: 90}, {X: 10, Y: 80}, {X: 15, Y: 65},
					{X: 25, Y: 45}, {X: 40, Y: 20}, {X: 60, Y: 0},
				},
			},
			{
				ID:        "cash_runway_months",
				Direction: HigherIsBetter,
				Points: Curve{
					{X: 0, Y: 0}, {X: 1, Y: 10}, {X: 3, Y: 35}, {X: 6, Y: 60},
					{X: 12, Y: 80}, {X: 18, Y: 90}, {X: 24, Y: 100},
				},
			},
			{ID: "customer_retention_rate", PassThrough: true},
			{ID: "gross_margin_percent", PassThrough: true},
			{ID: "net_promoter_percent", PassThrough: true},
			{ID: "on_time_delivery_rate", PassThrough: true},
			{ID: "budget_adherence_percent", PassThrough: true},
		},
	}
}
