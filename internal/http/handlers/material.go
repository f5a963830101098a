package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/armory-backend/internal/http/response"
	"github.com/yungbote/armory-backend/internal/platform/apierr"
	"github.com/yungbote/armory-backend/internal/platform/logger"
	"github.com/yungbote/armory-backend/internal/services"
)

const maxBodyBytes = 1 << 20

type MaterialHandler struct {
	log       *logger.Logger
	materials services.MaterialService
}

func NewMaterialHandler(log *logger.Logger, materials services.MaterialService) *MaterialHandler {
	return &MaterialHandler{
		log:       log.With("handler", "MaterialHandler"),
		materials: materials,
	}
}

// GET /api/material
func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	f, err := parseMaterialFilter(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	rows, err := h.materials.List(c.Request.Context(), f)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"materials": rows})
}

// GET /api/material/:id
func (h *MaterialHandler) GetMaterial(c *gin.Context) {
	id, err := parseMaterialID(c, "id")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	inc, err := parseIncludes(c.Query("include"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	detail, err := h.materials.Get(c.Request.Context(), id, inc)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"material": detail})
}

// GET /api/material/:id/power
func (h *MaterialHandler) GetMaterialPower(c *gin.Context) {
	id, err := parseMaterialID(c, "id")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	power, err := h.materials.Power(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"power": power})
}

// GET /api/material/:id/maxBuildQuantity
func (h *MaterialHandler) GetMaterialMaxBuildQuantity(c *gin.Context) {
	id, err := parseMaterialID(c, "id")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	m, qty, err := h.materials.MaxBuildQuantity(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"material": m, "maxBuildQty": qty})
}

// POST /api/material
func (h *MaterialHandler) CreateMaterial(c *gin.Context) {
	var in services.MaterialInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, services.CodeInvalidInput, err)
		return
	}
	m, err := h.materials.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"material": m})
}

// PUT /api/material/:id
func (h *MaterialHandler) UpdateMaterial(c *gin.Context) {
	id, err := parseMaterialID(c, "id")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		response.RespondServiceError(c, apierr.BadRequest(services.CodeInvalidInput, "Invalid JSON body"))
		return
	}
	patch, err := decodeMaterialPatch(body)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	res, err := h.materials.Update(c.Request.Context(), id, patch)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// DELETE /api/material/:id
func (h *MaterialHandler) DeleteMaterial(c *gin.Context) {
	id, err := parseMaterialID(c, "id")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	res, err := h.materials.Delete(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}
