package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sokinpui/maano.go/internal/history"
	"github.com/sokinpui/maano.go/internal/models"
	"github.com/sokinpui/maano.go/model"
)

func (s *Server) handleOpenAIListModels(c *gin.Context) {
	descs := s.registry.List()
	now := s.now().Unix()
	data := make([]models.OpenAIModel, len(descs))
	for i, d := range descs {
		data[i] = models.OpenAIModel{
			ID:      d.ID,
			Object:  "model",
			Created: now,
			OwnedBy: string(d.Provider),
		}
	}
	c.JSON(http.StatusOK, models.OpenAIModelList{Object: "list", Data: data})
}

func (s *Server) handleOpenAIChatCompletions(c *gin.Context) {
	var req models.OpenAIChatRequest
	if details := s.decode(c, &req); details != nil {
		openAIError(c, http.StatusBadRequest, "invalid_request_error", "", details[0].Message)
		return
	}
	if req.Stream {
		openAIError(c, http.StatusBadRequest, "invalid_request_error", "", "streaming is not supported")
		return
	}

	prompt := flattenMessages(req.Messages)
	opts := &model.Options{MaxTokens: req.MaxTokens, Temperature: req.Temperature}

	env, err := s.engine.Generate(c.Request.Context(), req.Model, prompt, opts)
	if err != nil {
		if errors.Is(err, model.ErrUnknownModel) {
			openAIError(c, http.StatusNotFound, "invalid_request_error", "model_not_found",
				fmt.Sprintf("The model '%s' does not exist", req.Model))
			return
		}
		openAIError(c, http.StatusInternalServerError, "server_error", "", "internal server error")
		return
	}

	s.record(c, history.KindChat, prompt, "", env)

	if !env.Success {
		openAIError(c, http.StatusBadGateway, "api_error", "", env.Error)
		return
	}

	finish := env.Metadata.FinishReason
	if finish == "" {
		finish = "stop"
	}
	resp := models.OpenAIChatResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: s.now().Unix(),
		Model:   env.ModelID,
		Choices: []models.Choice{{
			Index:        0,
			Message:      models.OpenAIChatMessage{Role: "assistant", Content: env.Content},
			FinishReason: finish,
		}},
	}
	if t := env.Metadata.Tokens; t != nil {
		resp.Usage = &models.OpenAIUsage{
			PromptTokens:     t.Input,
			CompletionTokens: t.Output,
			TotalTokens:      t.Input + t.Output,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// flattenMessages turns a chat transcript into a single prompt. A lone
// message is passed through as is.
func flattenMessages(msgs []models.OpenAIChatMessage) string {
	if len(msgs) == 1 {
		return msgs[0].Content
	}
	var b strings.Builder
	for _, msg := range msgs {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

func openAIError(c *gin.Context, status int, errType, code, message string) {
	c.JSON(status, models.OpenAIError{Error: models.OpenAIErrorBody{
		Message: message,
		Type:    errType,
		Code:    code,
	}})
}
