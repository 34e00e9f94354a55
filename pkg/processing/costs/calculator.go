package costs

import "sync"

// Calculator turns token estimates into an estimated USD cost.
// It is thread-safe and supports hot-reload of pricing.
type Calculator struct {
	pricing Pricing

	// mu protects the calculator for concurrent access
	mu sync.RWMutex
}

// NewCalculator creates a new cost calculator with the given pricing.
func NewCalculator(pricing Pricing) *Calculator {
	return &Calculator{pricing: pricing}
}

// Estimate returns the cost breakdown for the given token counts.
func (c *Calculator) Estimate(tokensIn, tokensOut int64) CostEstimate {
	c.mu.RLock()
	p := c.pricing
	c.mu.RUnlock()

	in := calculateTokenCost(tokensIn, p.InputPerMillion)
	out := calculateTokenCost(tokensOut, p.OutputPerMillion)
	return CostEstimate{
		InputCost:  in,
		OutputCost: out,
		TotalCost:  in + out,
	}
}

// Cost returns the total estimated cost for the given token counts.
func (c *Calculator) Cost(tokensIn, tokensOut int64) float64 {
	return c.Estimate(tokensIn, tokensOut).TotalCost
}

// Pricing returns the pricing in effect.
func (c *Calculator) Pricing() Pricing {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pricing
}

// UpdatePricing replaces the pricing used for later calculations.
func (c *Calculator) UpdatePricing(p Pricing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pricing = p
}

// calculateTokenCost calculates the cost for a given number of tokens.
func calculateTokenCost(tokens int64, costPerMillion float64) float64 {
	if tokens <= 0 {
		return 0
	}
	return float64(tokens) / 1_000_000 * costPerMillion
}
