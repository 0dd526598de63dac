package model

import "errors"

// Options overrides a descriptor's generation defaults for a single call.
// All fields are optional; a nil field means "use the registry default".
type Options struct {
	MaxTokens   *int     `json:"maxTokens,omitempty" validate:"omitempty,gt=0"`
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
}

// resolve merges o over the descriptor defaults. Set fields always win,
// including an explicit zero temperature.
func (o *Options) resolve(d Descriptor) (maxTokens int, temperature float64) {
	maxTokens, temperature = d.MaxTokens, d.Temperature
	if o == nil {
		return maxTokens, temperature
	}
	if o.MaxTokens != nil {
		maxTokens = *o.MaxTokens
	}
	if o.Temperature != nil {
		temperature = *o.Temperature
	}
	return maxTokens, temperature
}

// Custom errors for the library.
var (
	ErrUnknownModel    = errors.New("unsupported model")
	ErrUnknownProvider = errors.New("unknown provider")
	ErrGeneration      = errors.New("error during text generation")
	ErrConfiguration   = errors.New("failed to initialize client, please check configuration")
	ErrInvalidCatalog  = errors.New("invalid model catalog")
)
