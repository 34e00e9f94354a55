// Package costs estimates the USD cost of analyzer usage.
//
// Prices are flat per-million-token rates for input and output. They are
// estimates used for budget control, not billing:
//
//	calc := costs.NewCalculator(costs.Pricing{InputPerMillion: 0.30, OutputPerMillion: 2.50})
//	usd := calc.Cost(1_000_000, 1_000_000) // 2.80
package costs
