package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/sokinpui/maano.go/internal/models"
)

var fieldMessages = map[string]string{
	"ChatRequest.Message":                "Message must be between 1 and 4000 characters",
	"ChatRequest.ModelID":                "Model ID is required",
	"CompareRequest.Message":             "Message must be between 1 and 4000 characters",
	"CompareRequest.Models":              "Must select 1-4 models to compare",
	"RecommendRequest.Prompt":            "Prompt must be between 1 and 1000 characters",
	"ExportRequest.ConversationID":       "Conversation ID is required",
	"ExportRequest.Format":               "Format must be pdf, docx, or txt",
	"LoginRequest.Email":                 "A valid email is required",
	"LoginRequest.Password":              "Password is required",
	"OpenAIChatRequest.Model":            "model is required",
	"OpenAIChatRequest.Messages":         "messages must contain at least one message",
	"ChatRequest.Options.MaxTokens":      "maxTokens must be greater than 0",
	"ChatRequest.Options.Temperature":    "temperature must be between 0 and 2",
	"CompareRequest.Options.MaxTokens":   "maxTokens must be greater than 0",
	"CompareRequest.Options.Temperature": "temperature must be between 0 and 2",
	"OpenAIChatRequest.MaxTokens":        "max_tokens must be greater than 0",
	"OpenAIChatRequest.Temperature":      "temperature must be between 0 and 2",
}

type normalizer interface {
	Normalize()
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode binds the JSON body into req, normalizes it and validates it. It
// returns nil when the request is acceptable.
func (s *Server) decode(c *gin.Context, req any) []models.ValidationDetail {
	if err := c.ShouldBindJSON(req); err != nil {
		return []models.ValidationDetail{{
			Field:   "body",
			Rule:    "json",
			Message: "Request body must be valid JSON",
		}}
	}
	if n, ok := req.(normalizer); ok {
		n.Normalize()
	}
	if err := s.validate.Struct(req); err != nil {
		return validationDetails(err)
	}
	return nil
}

func validationDetails(err error) []models.ValidationDetail {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []models.ValidationDetail{{Field: "body", Rule: "invalid", Message: err.Error()}}
	}

	details := make([]models.ValidationDetail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := fieldMessages[fe.StructNamespace()]
		if !ok {
			msg = fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag())
		}
		details = append(details, models.ValidationDetail{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: msg,
		})
	}
	return details
}
