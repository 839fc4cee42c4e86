package tokens

// Usage holds token counts for one backend invocation, or the
// running total for a session.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates another invocation's counts into u.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// Pricing is the cost in USD per one million tokens.
type Pricing struct {
	Prompt     float64
	Completion float64
}

// modelPricing is a static price table for cost estimation.
// Models missing from the table report no cost estimate.
var modelPricing = map[string]Pricing{
	"gpt-4o":                                 {Prompt: 2.50, Completion: 10.00},
	"gpt-4o-mini":                            {Prompt: 0.15, Completion: 0.60},
	"gpt-4.1":                                {Prompt: 2.00, Completion: 8.00},
	"gpt-4.1-mini":                           {Prompt: 0.40, Completion: 1.60},
	"gryphe/mythomax-l2-13b:free":            {Prompt: 0, Completion: 0},
	"cloud-sambanova-llama-3-405b-instruct":  {Prompt: 0, Completion: 0},
	"meta-llama/llama-3.3-70b-instruct:free": {Prompt: 0, Completion: 0},
}

// Cost estimates the USD cost of the given usage for a model.
// The second return value is false when the model is not priced.
func Cost(model string, u Usage) (float64, bool) {
	p, ok := modelPricing[model]
	if !ok {
		return 0, false
	}
	cost := float64(u.PromptTokens)*p.Prompt/1e6 +
		float64(u.CompletionTokens)*p.Completion/1e6
	return cost, true
}
