package prompt

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Parameters are the sampling settings sent with a prompt.
type Parameters struct {
	Temperature      float64 `mapstructure:"temperature"`
	MaxTokens        int     `mapstructure:"max_tokens"`
	N                int     `mapstructure:"n"`
	PresencePenalty  float64 `mapstructure:"presence_penalty"`
	FrequencyPenalty float64 `mapstructure:"frequency_penalty"`
	BestOf           int     `mapstructure:"best_of"`
}

const (
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 150

	// Menu actions ask for longer answers.
	MenuMaxTokens = 500
)

// DefaultParameters are used for custom templates. temperature is the
// configured default.
func DefaultParameters(temperature float64) Parameters {
	return Parameters{
		Temperature: temperature,
		MaxTokens:   DefaultMaxTokens,
		N:           1,
		BestOf:      1,
	}
}

// MenuParameters are used for the fixed menu actions.
func MenuParameters() Parameters {
	p := DefaultParameters(DefaultTemperature)
	p.MaxTokens = MenuMaxTokens
	return p
}

// Override returns p with every non-zero field of the frontmatter applied.
// Zero or missing values keep the defaults. Numeric strings are accepted.
func (p Parameters) Override(front map[string]any) (Parameters, error) {
	if len(front) == 0 {
		return p, nil
	}

	var over Parameters
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &over,
	})
	if err != nil {
		return p, err
	}
	if err := dec.Decode(front); err != nil {
		return p, fmt.Errorf("decode parameters: %w", err)
	}

	if over.Temperature != 0 {
		p.Temperature = over.Temperature
	}
	if over.MaxTokens != 0 {
		p.MaxTokens = over.MaxTokens
	}
	if over.N != 0 {
		p.N = over.N
	}
	if over.PresencePenalty != 0 {
		p.PresencePenalty = over.PresencePenalty
	}
	if over.FrequencyPenalty != 0 {
		p.FrequencyPenalty = over.FrequencyPenalty
	}
	if over.BestOf != 0 {
		p.BestOf = over.BestOf
	}
	return p, nil
}
