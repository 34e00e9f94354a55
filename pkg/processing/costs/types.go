package costs

// Pricing is the estimated price of analyzer tokens in USD per million.
type Pricing struct {
	// InputPerMillion is the price of one million prompt tokens.
	InputPerMillion float64

	// OutputPerMillion is the price of one million generated tokens.
	OutputPerMillion float64
}

// CostEstimate contains a cost breakdown in USD.
type CostEstimate struct {
	// InputCost is the cost of prompt tokens in USD.
	InputCost float64 `json:"input_cost"`

	// OutputCost is the cost of generated tokens in USD.
	OutputCost float64 `json:"output_cost"`

	// TotalCost is the total cost in USD.
	TotalCost float64 `json:"total_cost"`
}
