package models

import (
	"strings"

	"github.com/sokinpui/maano.go/model"
)

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message   string         `json:"message" validate:"min=1,max=4000"`
	ModelID   string         `json:"modelId" validate:"required"`
	ContextID *string        `json:"contextId,omitempty"`
	Options   *model.Options `json:"options,omitempty"`
}

// Normalize trims the message the way the validator expects it.
func (r *ChatRequest) Normalize() {
	r.Message = strings.TrimSpace(r.Message)
}

// CompareRequest is the body of POST /compare.
type CompareRequest struct {
	Message string         `json:"message" validate:"min=1,max=4000"`
	Models  []string       `json:"models" validate:"required,min=1,max=4,dive,required"`
	Options *model.Options `json:"options,omitempty"`
}

func (r *CompareRequest) Normalize() {
	r.Message = strings.TrimSpace(r.Message)
}

// RecommendRequest is the body of POST /recommend.
type RecommendRequest struct {
	Prompt  string `json:"prompt" validate:"min=1,max=1000"`
	Subject string `json:"subject,omitempty"`
}

func (r *RecommendRequest) Normalize() {
	r.Prompt = strings.TrimSpace(r.Prompt)
}

// Export formats accepted by POST /export.
const (
	ExportPDF  = "pdf"
	ExportDOCX = "docx"
	ExportTXT  = "txt"
)

// ExportRequest is the body of POST /export.
type ExportRequest struct {
	ConversationID string `json:"conversationId" validate:"required"`
	Format         string `json:"format" validate:"required,oneof=pdf docx txt"`
}

func (r *ExportRequest) Normalize() {
	r.ConversationID = strings.TrimSpace(r.ConversationID)
	r.Format = strings.ToLower(strings.TrimSpace(r.Format))
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}
