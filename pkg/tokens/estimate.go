package tokens

import (
	"github.com/pkoukk/tiktoken-go"
)

// perMessageOverhead approximates the framing tokens the chat
// completion format adds around each message.
const perMessageOverhead = 4

// Estimate counts prompt tokens for the given message contents
// using the model's tokenizer. Used when a backend does not report
// usage. Falls back to a characters/4 heuristic when the tokenizer
// is unavailable for the model.
func Estimate(model string, contents ...string) int {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
	}
	total := 0
	for _, content := range contents {
		if err != nil {
			total += approximate(content)
		} else {
			total += len(enc.Encode(content, nil, nil))
		}
		total += perMessageOverhead
	}
	return total
}

// approximate is the usual ~4 characters per token heuristic.
func approximate(content string) int {
	return len(content) / 4
}
