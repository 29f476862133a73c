package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/mindcheck-backend/internal/domain"
	"github.com/yungbote/mindcheck-backend/internal/domain/knowledge"
	"github.com/yungbote/mindcheck-backend/internal/http/response"
	"github.com/yungbote/mindcheck-backend/internal/services"
)

type AdminHandler struct {
	kb services.KnowledgeBaseService
}

func NewAdminHandler(kb services.KnowledgeBaseService) *AdminHandler {
	return &AdminHandler{kb: kb}
}

type symptomView struct {
	*types.Symptom
	Category string `json:"category"`
}

type disorderView struct {
	*types.MentalDisorder
	Category string `json:"category"`
}

type ruleView struct {
	ID               uuid.UUID `json:"id"`
	RuleCode         string    `json:"rule_code"`
	MentalDisorderID uuid.UUID `json:"mental_disorder_id"`
	DisorderCode     string    `json:"disorder_code,omitempty"`
	DisorderName     string    `json:"disorder_name,omitempty"`
	SymptomCodes     []string  `json:"symptom_codes"`
	Variant          string    `json:"variant"`
	Complexity       string    `json:"complexity"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func newSymptomView(s *types.Symptom) symptomView {
	return symptomView{Symptom: s, Category: s.Category()}
}

func newDisorderView(d *types.MentalDisorder) disorderView {
	return disorderView{MentalDisorder: d, Category: d.Category()}
}

func newRuleView(r *types.DiagnosisRule, d *types.MentalDisorder) ruleView {
	v := ruleView{
		ID:               r.ID,
		RuleCode:         r.RuleCode,
		MentalDisorderID: r.MentalDisorderID,
		SymptomCodes:     append([]string{}, r.SymptomCodes...),
		Variant:          knowledge.RuleVariant(r.RuleCode),
		Complexity:       knowledge.RuleComplexity(len(r.SymptomCodes)),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if d != nil {
		v.DisorderCode = d.Code
		v.DisorderName = d.Name
	}
	return v
}

// ---------- symptoms ----------

// GET /api/admin/symptoms
func (h *AdminHandler) ListSymptoms(c *gin.Context) {
	list, err := h.kb.ListSymptoms(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	out := make([]symptomView, 0, len(list))
	for _, s := range list {
		out = append(out, newSymptomView(s))
	}
	response.RespondOK(c, gin.H{"symptoms": out})
}

// POST /api/admin/symptoms
func (h *AdminHandler) CreateSymptom(c *gin.Context) {
	var req services.SymptomInput
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.kb.CreateSymptom(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"symptom": newSymptomView(s)})
}

// PUT /api/admin/symptoms/:id
func (h *AdminHandler) UpdateSymptom(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req services.SymptomInput
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.kb.UpdateSymptom(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"symptom": newSymptomView(s)})
}

// DELETE /api/admin/symptoms/:id
func (h *AdminHandler) DeleteSymptom(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.kb.DeleteSymptom(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- disorders ----------

// GET /api/admin/disorders
func (h *AdminHandler) ListDisorders(c *gin.Context) {
	list, err := h.kb.ListDisorders(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	out := make([]disorderView, 0, len(list))
	for _, d := range list {
		out = append(out, newDisorderView(d))
	}
	response.RespondOK(c, gin.H{"disorders": out})
}

// POST /api/admin/disorders
func (h *AdminHandler) CreateDisorder(c *gin.Context) {
	var req services.DisorderInput
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.kb.CreateDisorder(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"disorder": newDisorderView(d)})
}

// PUT /api/admin/disorders/:id
func (h *AdminHandler) UpdateDisorder(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req services.DisorderInput
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.kb.UpdateDisorder(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"disorder": newDisorderView(d)})
}

// DELETE /api/admin/disorders/:id
func (h *AdminHandler) DeleteDisorder(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.kb.DeleteDisorder(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- rules ----------

// GET /api/admin/rules?disorder_id=
func (h *AdminHandler) ListRules(c *gin.Context) {
	var filter *uuid.UUID
	if raw := c.Query("disorder_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, services.CodeInvalidInput, fmt.Errorf("invalid disorder_id"))
			return
		}
		filter = &id
	}
	ctx := c.Request.Context()
	rules, err := h.kb.ListRules(ctx, filter)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	byID, err := h.disordersByID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	out := make([]ruleView, 0, len(rules))
	for _, r := range rules {
		out = append(out, newRuleView(r, byID[r.MentalDisorderID]))
	}
	response.RespondOK(c, gin.H{"rules": out})
}

// GET /api/admin/rules/:id
func (h *AdminHandler) GetRule(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	r, err := h.kb.GetRule(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	h.respondRule(c, http.StatusOK, r)
}

// POST /api/admin/rules
// body: { "rule_code": "R1A", "mental_disorder_id": "...", "symptom_codes": ["G1","G2"] }
func (h *AdminHandler) CreateRule(c *gin.Context) {
	var req services.RuleInput
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.kb.CreateRule(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	h.respondRule(c, http.StatusCreated, r)
}

// PUT /api/admin/rules/:id
func (h *AdminHandler) UpdateRule(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req services.RuleInput
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.kb.UpdateRule(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	h.respondRule(c, http.StatusOK, r)
}

// DELETE /api/admin/rules/:id
func (h *AdminHandler) DeleteRule(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.kb.DeleteRule(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/admin/rules/:id/test
// body: { "symptoms": ["G1","G2"] }
func (h *AdminHandler) TestRule(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Symptoms []string `json:"symptoms"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.kb.TestRule(c.Request.Context(), id, req.Symptoms)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/admin/categories
func (h *AdminHandler) Categories(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"symptom_categories":  knowledge.SymptomCategoryTable(),
		"disorder_categories": knowledge.DisorderCategoryTable(),
	})
}

func (h *AdminHandler) respondRule(c *gin.Context, status int, r *types.DiagnosisRule) {
	byID, err := h.disordersByID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(status, gin.H{"rule": newRuleView(r, byID[r.MentalDisorderID])})
}

func (h *AdminHandler) disordersByID(c *gin.Context) (map[uuid.UUID]*types.MentalDisorder, error) {
	list, err := h.kb.ListDisorders(c.Request.Context())
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*types.MentalDisorder, len(list))
	for _, d := range list {
		out[d.ID] = d
	}
	return out, nil
}
