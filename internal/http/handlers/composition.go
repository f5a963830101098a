package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/armory-backend/internal/http/response"
	"github.com/yungbote/armory-backend/internal/platform/logger"
	"github.com/yungbote/armory-backend/internal/services"
)

type CompositionHandler struct {
	log          *logger.Logger
	compositions services.CompositionService
}

func NewCompositionHandler(log *logger.Logger, compositions services.CompositionService) *CompositionHandler {
	return &CompositionHandler{
		log:          log.With("handler", "CompositionHandler"),
		compositions: compositions,
	}
}

type addCompositionRequest struct {
	MaterialID int64 `json:"material_id"`
	Qty        int64 `json:"qty"`
}

type updateCompositionRequest struct {
	Qty int64 `json:"qty"`
}

// GET /api/composition/:parentId/composition
func (h *CompositionHandler) ListCompositions(c *gin.Context) {
	parentID, err := parseMaterialID(c, "parentId")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	rows, err := h.compositions.List(c.Request.Context(), parentID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"compositions": rows})
}

// POST /api/composition/:parentId/composition
func (h *CompositionHandler) AddComposition(c *gin.Context) {
	parentID, err := parseMaterialID(c, "parentId")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var req addCompositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, services.CodeInvalidInput, err)
		return
	}
	if req.MaterialID <= 0 {
		response.RespondError(c, http.StatusBadRequest, services.CodeInvalidID, errMaterialIDRequired)
		return
	}
	res, err := h.compositions.Add(c.Request.Context(), parentID, req.MaterialID, req.Qty)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"newComposition": res.Composition,
		"updatedWeapons": res.UpdatedWeapons,
	})
}

// PUT /api/composition/:parentId/composition/:materialId
func (h *CompositionHandler) UpdateComposition(c *gin.Context) {
	parentID, materialID, err := h.edgeIDs(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var req updateCompositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, services.CodeInvalidInput, err)
		return
	}
	res, err := h.compositions.UpdateQty(c.Request.Context(), parentID, materialID, req.Qty)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"updatedComposition": res.Composition,
		"updatedWeapons":     res.UpdatedWeapons,
	})
}

// DELETE /api/composition/:parentId/composition/:materialId
func (h *CompositionHandler) DeleteComposition(c *gin.Context) {
	parentID, materialID, err := h.edgeIDs(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	res, err := h.compositions.Remove(c.Request.Context(), parentID, materialID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"deletedComposition": res.Composition,
		"updatedWeapons":     res.UpdatedWeapons,
	})
}

func (h *CompositionHandler) edgeIDs(c *gin.Context) (int64, int64, error) {
	parentID, err := parseMaterialID(c, "parentId")
	if err != nil {
		return 0, 0, err
	}
	materialID, err := parseMaterialID(c, "materialId")
	if err != nil {
		return 0, 0, err
	}
	return parentID, materialID, nil
}
