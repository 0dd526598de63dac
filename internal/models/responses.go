package models

import (
	"github.com/sokinpui/maano.go/internal/history"
	"github.com/sokinpui/maano.go/model"
)

// Response is the JSON envelope every route answers with.
type Response struct {
	Success bool               `json:"success"`
	Data    any                `json:"data,omitempty"`
	Error   string             `json:"error,omitempty"`
	Model   string             `json:"model,omitempty"`
	Details []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes one rejected request field.
type ValidationDetail struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"msg"`
}

type ChatData struct {
	Message        string         `json:"message"`
	Model          string         `json:"model"`
	Provider       model.Provider `json:"provider"`
	Metadata       model.Metadata `json:"metadata"`
	ContextID      *string        `json:"contextId"`
	ConversationID string         `json:"conversationId"`
}

type CompareData struct {
	Message        string           `json:"message"`
	Responses      []model.Envelope `json:"responses"`
	Timestamp      string           `json:"timestamp"`
	ConversationID string           `json:"conversationId"`
}

type RecommendData struct {
	Prompt            string             `json:"prompt"`
	Subject           string             `json:"subject,omitempty"`
	RecommendedModels []model.Descriptor `json:"recommendedModels"`
	Reasoning         string             `json:"reasoning"`
}

type HistoryData struct {
	Conversations []history.Record `json:"conversations"`
}

// User is the identity carried in issued tokens.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}

type LoginData struct {
	User      User   `json:"user"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}
