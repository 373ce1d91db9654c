package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/aliskhannn/quizroom/internal/delivery/http/response"
)

type TestHandler struct {
	catalog TestCatalog
}

func NewTestHandler(catalog TestCatalog) *TestHandler {
	return &TestHandler{catalog: catalog}
}

func (h *TestHandler) List(c *gin.Context) {
	tests, err := h.catalog.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]testSummaryView, 0, len(tests))
	for _, t := range tests {
		out = append(out, testSummaryView{
			ID:            t.ID,
			Title:         t.Title,
			Duration:      t.DurationMinutes,
			QuestionCount: t.QuestionCount,
			CreatedAt:     t.CreatedAt,
		})
	}
	response.RespondOK(c, gin.H{"tests": out})
}

// Get returns a test without its correct answers.
func (h *TestHandler) Get(c *gin.Context) {
	test, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, newTestView(test))
}
