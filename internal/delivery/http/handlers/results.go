package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/aliskhannn/quizroom/internal/delivery/http/response"
)

type ResultHandler struct {
	results ResultsReader
}

func NewResultHandler(results ResultsReader) *ResultHandler {
	return &ResultHandler{results: results}
}

// List returns the caller's results, or everyone's for an admin.
func (h *ResultHandler) List(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}

	view, err := h.results.List(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	rows := make([]resultView, 0, len(view.Rows))
	for _, row := range view.Rows {
		rows = append(rows, newResultView(row.Result, row.Email))
	}
	response.RespondOK(c, gin.H{"role": view.Role, "results": rows})
}

func (h *ResultHandler) Dashboard(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}

	points, err := h.results.Dashboard(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	type pointView struct {
		ResultID string  `json:"resultId"`
		Label    string  `json:"label"`
		Value    float64 `json:"value"`
	}
	out := make([]pointView, 0, len(points))
	for _, p := range points {
		out = append(out, pointView{ResultID: p.ResultID, Label: p.Label, Value: p.Value})
	}
	response.RespondOK(c, gin.H{"points": out})
}
