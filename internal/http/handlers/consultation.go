package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/mindcheck-backend/internal/http/response"
	"github.com/yungbote/mindcheck-backend/internal/services"
)

type ConsultationHandler struct {
	consultations services.ConsultationService
}

func NewConsultationHandler(consultations services.ConsultationService) *ConsultationHandler {
	return &ConsultationHandler{consultations: consultations}
}

// POST /api/consultations
func (h *ConsultationHandler) Start(c *gin.Context) {
	cons, err := h.consultations.Start(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"consultation": cons})
}

// GET /api/consultations?limit=
func (h *ConsultationHandler) List(c *gin.Context) {
	list, err := h.consultations.List(c.Request.Context(), queryLimit(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"consultations": list})
}

// GET /api/consultations/:id/next-question
func (h *ConsultationHandler) NextQuestion(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.consultations.NextQuestion(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/consultations/:id/answers
// body: { "symptom_code": "G1", "severity": "none" | "mild" | "moderate" | "severe" }
func (h *ConsultationHandler) SubmitAnswer(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		SymptomCode string `json:"symptom_code"`
		Severity    string `json:"severity"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.consultations.SubmitAnswer(c.Request.Context(), id, req.SymptomCode, req.Severity)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/consultations/:id/abandon
func (h *ConsultationHandler) Abandon(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.consultations.Abandon(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/consultations/:id/summary
func (h *ConsultationHandler) Summary(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	sum, err := h.consultations.Summary(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, sum)
}

// GET /api/diagnoses?limit=
func (h *ConsultationHandler) ListDiagnoses(c *gin.Context) {
	list, err := h.consultations.ListDiagnoses(c.Request.Context(), queryLimit(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"diagnoses": list})
}
