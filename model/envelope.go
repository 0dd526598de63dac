package model

import "encoding/json"

// Metadata describes how a single call was served.
type Metadata struct {
	ResponseTimeMs int64          `json:"responseTimeMs"`
	WireModel      string         `json:"wireModelName,omitempty"`
	Strengths      []string       `json:"strengths,omitempty"`
	Weaknesses     []string       `json:"weaknesses,omitempty"`
	Usage          any            `json:"providerUsage,omitempty"`
	FinishReason   string         `json:"providerFinishReason,omitempty"`
	Extra          map[string]any `json:"providerExtra,omitempty"`
	Tokens         *TokenCount    `json:"tokens,omitempty"`
}

// Envelope is the normalized result of one generation call. Exactly one of
// Content and Error is meaningful, selected by Success.
type Envelope struct {
	Success  bool
	ModelID  string
	Provider Provider
	Content  string
	Error    string
	Metadata Metadata
}

type envelopeJSON struct {
	Success  bool     `json:"success"`
	ModelID  string   `json:"modelId"`
	Provider Provider `json:"provider"`
	Content  *string  `json:"content,omitempty"`
	Error    *string  `json:"error,omitempty"`
	Metadata Metadata `json:"metadata"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	out := envelopeJSON{
		Success:  e.Success,
		ModelID:  e.ModelID,
		Provider: e.Provider,
		Metadata: e.Metadata,
	}
	if e.Success {
		out.Content = &e.Content
	} else {
		out.Error = &e.Error
	}
	return json.Marshal(out)
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	var in envelopeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*e = Envelope{
		Success:  in.Success,
		ModelID:  in.ModelID,
		Provider: in.Provider,
		Metadata: in.Metadata,
	}
	if in.Content != nil {
		e.Content = *in.Content
	}
	if in.Error != nil {
		e.Error = *in.Error
	}
	return nil
}

func (e Envelope) failed(err error) Envelope {
	e.Success = false
	e.Content = ""
	e.Error = err.Error()
	if e.Error == "" {
		e.Error = ErrGeneration.Error()
	}
	return e
}
