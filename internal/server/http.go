package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sokinpui/maano.go/internal/history"
	"github.com/sokinpui/maano.go/internal/models"
	"github.com/sokinpui/maano.go/model"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListModels(c *gin.Context) {
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data:    s.registry.List(),
	})
}

func (s *Server) handleChat(c *gin.Context) {
	var req models.ChatRequest
	if details := s.decode(c, &req); details != nil {
		validationFailed(c, details)
		return
	}

	env, err := s.engine.Generate(c.Request.Context(), req.ModelID, req.Message, req.Options)
	if err != nil {
		if errors.Is(err, model.ErrUnknownModel) {
			c.JSON(http.StatusBadRequest, models.Response{Success: false, Error: err.Error(), Model: req.ModelID})
			return
		}
		internalError(c, err)
		return
	}

	contextID := ""
	if req.ContextID != nil {
		contextID = *req.ContextID
	}
	conversationID := s.record(c, history.KindChat, req.Message, contextID, env)

	if !env.Success {
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   env.Error,
			Model:   env.ModelID,
		})
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data: models.ChatData{
			Message:        env.Content,
			Model:          env.ModelID,
			Provider:       env.Provider,
			Metadata:       env.Metadata,
			ContextID:      req.ContextID,
			ConversationID: conversationID,
		},
	})
}

func (s *Server) handleCompare(c *gin.Context) {
	var req models.CompareRequest
	if details := s.decode(c, &req); details != nil {
		validationFailed(c, details)
		return
	}

	var invalid []string
	for _, id := range req.Models {
		if !s.registry.Has(id) {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) > 0 {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "Invalid models: " + strings.Join(invalid, ", "),
		})
		return
	}

	responses := s.engine.CompareAll(c.Request.Context(), req.Message, req.Models, req.Options)
	conversationID := s.record(c, history.KindCompare, req.Message, "", responses...)

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data: models.CompareData{
			Message:        req.Message,
			Responses:      responses,
			Timestamp:      s.now().UTC().Format(timestampLayout),
			ConversationID: conversationID,
		},
	})
}

func (s *Server) handleRecommend(c *gin.Context) {
	var req models.RecommendRequest
	if details := s.decode(c, &req); details != nil {
		validationFailed(c, details)
		return
	}

	ids := s.registry.Recommend(req.Prompt, req.Subject)
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data: models.RecommendData{
			Prompt:            req.Prompt,
			Subject:           req.Subject,
			RecommendedModels: s.registry.Resolve(ids),
			Reasoning:         fmt.Sprintf("Based on your prompt about \"%s\", these models are recommended for their strengths in the relevant areas.", req.Prompt),
		},
	})
}

func (s *Server) handleListHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			validationFailed(c, []models.ValidationDetail{{
				Field:   "limit",
				Rule:    "gte=0",
				Message: "limit must be a non-negative integer",
			}})
			return
		}
		limit = n
	}

	userID := c.GetString(userIDKey)
	fetch := limit
	if userID != "" {
		// Filter by owner before truncating; stores are capped.
		fetch = 0
	}
	records, err := s.history.List(c.Request.Context(), fetch)
	if err != nil {
		internalError(c, err)
		return
	}

	visible := make([]history.Record, 0, len(records))
	for _, rec := range records {
		if limit > 0 && len(visible) == limit {
			break
		}
		if ownedBy(rec, userID) {
			visible = append(visible, rec)
		}
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data:    models.HistoryData{Conversations: visible},
	})
}

func (s *Server) handleGetHistory(c *gin.Context) {
	rec, ok := s.lookupConversation(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Data: rec})
}

func (s *Server) handleExport(c *gin.Context) {
	var req models.ExportRequest
	if details := s.decode(c, &req); details != nil {
		validationFailed(c, details)
		return
	}

	if req.Format != models.ExportTXT {
		c.JSON(http.StatusNotImplemented, models.Response{
			Success: false,
			Error:   fmt.Sprintf("%s export is not supported yet", req.Format),
		})
		return
	}

	rec, ok := s.lookupConversation(c, req.ConversationID)
	if !ok {
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "conversation-"+rec.ID+".txt"))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(renderText(rec)))
}

func (s *Server) handleLogin(c *gin.Context) {
	if !s.auth.LoginEnabled() {
		c.JSON(http.StatusNotFound, models.Response{Success: false, Error: "login is not enabled"})
		return
	}

	var req models.LoginRequest
	if details := s.decode(c, &req); details != nil {
		validationFailed(c, details)
		return
	}

	user, ok := s.auth.Login(req.Email, req.Password)
	if !ok {
		abortUnauthorized(c, "invalid email or password")
		return
	}

	token, expires, err := s.auth.Issue(user)
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data: models.LoginData{
			User:      user,
			Token:     token,
			ExpiresAt: expires.Unix(),
		},
	})
}

func (s *Server) lookupConversation(c *gin.Context, id string) (history.Record, bool) {
	rec, err := s.history.Get(c.Request.Context(), id)
	if errors.Is(err, history.ErrNotFound) || (err == nil && !ownedBy(rec, c.GetString(userIDKey))) {
		c.JSON(http.StatusNotFound, models.Response{Success: false, Error: history.ErrNotFound.Error()})
		return history.Record{}, false
	}
	if err != nil {
		internalError(c, err)
		return history.Record{}, false
	}
	return rec, true
}

// record submits the exchange for saving and returns its conversation id.
func (s *Server) record(c *gin.Context, kind history.Kind, prompt, contextID string, responses ...model.Envelope) string {
	rec := history.Record{
		ID:        uuid.NewString(),
		UserID:    c.GetString(userIDKey),
		Kind:      kind,
		Prompt:    prompt,
		ContextID: contextID,
		Responses: responses,
		CreatedAt: s.now().UTC(),
	}
	s.saver.Submit(rec)
	return rec.ID
}

// ownedBy reports whether userID may see rec. Anonymous records and
// anonymous callers see everything.
func ownedBy(rec history.Record, userID string) bool {
	return rec.UserID == "" || userID == "" || rec.UserID == userID
}

func validationFailed(c *gin.Context, details []models.ValidationDetail) {
	c.JSON(http.StatusBadRequest, models.Response{
		Success: false,
		Error:   "Validation failed",
		Details: details,
	})
}

func internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, models.Response{
		Success: false,
		Error:   "Internal server error",
	})
}
