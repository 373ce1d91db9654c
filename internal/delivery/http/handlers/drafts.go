package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aliskhannn/quizroom/internal/delivery/http/response"
	"github.com/aliskhannn/quizroom/internal/domain/entities"
	"github.com/aliskhannn/quizroom/internal/service"
)

// Defaults of the generate form.
const (
	DefaultDraftCount = 5
	DefaultDraftTopic = "General Knowledge"
)

type DraftHandler struct {
	authoring DraftEditor
	assistant DraftAssistant
}

func NewDraftHandler(authoring DraftEditor, assistant DraftAssistant) *DraftHandler {
	return &DraftHandler{authoring: authoring, assistant: assistant}
}

func (h *DraftHandler) Get(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	response.RespondOK(c, newDraftView(h.authoring.Draft(identity)))
}

func (h *DraftHandler) Update(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}

	var req struct {
		Title    *string `json:"title" validate:"omitempty,max=200"`
		Duration *int    `json:"duration" validate:"omitempty,min=0,max=1440"`
	}
	if !bindJSON(c, &req) {
		return
	}

	d := h.authoring.Update(identity, service.DraftUpdate{Title: req.Title, DurationMinutes: req.Duration})
	response.RespondOK(c, newDraftView(d))
}

func (h *DraftHandler) Reset(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	response.RespondOK(c, newDraftView(h.authoring.Reset(identity)))
}

func (h *DraftHandler) AppendQuestion(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	response.RespondCreated(c, newDraftView(h.authoring.AppendQuestion(identity)))
}

func (h *DraftHandler) UpdateQuestion(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}

	pos, err := strconv.Atoi(c.Param("pos"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("position must be an integer"))
		return
	}

	var req struct {
		Text    *string  `json:"text"`
		Options []string `json:"options"`
		Option  *struct {
			Index int    `json:"index"`
			Value string `json:"value"`
		} `json:"option"`
		CorrectAnswer *int `json:"correctAnswer"`
	}
	if !bindJSON(c, &req) {
		return
	}

	patch := entities.QuestionPatch{
		Text:               req.Text,
		Options:            req.Options,
		CorrectAnswerIndex: req.CorrectAnswer,
	}
	if req.Option != nil {
		patch.Option = &entities.OptionEdit{Index: req.Option.Index, Value: req.Option.Value}
	}

	d, err := h.authoring.UpdateQuestion(identity, pos, patch)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, newDraftView(d))
}

// Generate replaces the draft questions with generated ones.
func (h *DraftHandler) Generate(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}

	var req struct {
		Count  *int    `json:"count"`
		Topic  *string `json:"topic"`
		APIKey string  `json:"apiKey"`
	}
	if !bindJSON(c, &req) {
		return
	}

	dr := service.DraftRequest{Count: DefaultDraftCount, Topic: DefaultDraftTopic, APIKey: req.APIKey}
	if req.Count != nil {
		dr.Count = *req.Count
	}
	if req.Topic != nil {
		dr.Topic = *req.Topic
	}

	d, err := h.assistant.Generate(c.Request.Context(), identity, dr)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, newDraftView(d))
}

// Submit stores the draft as a test and resets it.
func (h *DraftHandler) Submit(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}

	def, err := h.authoring.Submit(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondCreated(c, gin.H{
		"test": testSummaryView{
			ID:            def.ID,
			Title:         def.Title,
			Duration:      def.DurationMinutes,
			QuestionCount: def.QuestionCount(),
			CreatedAt:     def.CreatedAt,
		},
		"message": "Test created successfully!",
	})
}
