package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/armory-backend/internal/http/response"
	"github.com/yungbote/armory-backend/internal/platform/logger"
	"github.com/yungbote/armory-backend/internal/services"
)

type WeaponHandler struct {
	log     *logger.Logger
	weapons services.WeaponService
}

func NewWeaponHandler(log *logger.Logger, weapons services.WeaponService) *WeaponHandler {
	return &WeaponHandler{
		log:     log.With("handler", "WeaponHandler"),
		weapons: weapons,
	}
}

// GET /api/weapon
func (h *WeaponHandler) ListWeapons(c *gin.Context) {
	list, err := h.weapons.List(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"weapons": list})
}

// GET /api/weapon/:id
func (h *WeaponHandler) GetWeapon(c *gin.Context) {
	id, err := parseWeaponID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	w, err := h.weapons.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"weapon": w})
}

// POST /api/weapon
func (h *WeaponHandler) CreateWeapon(c *gin.Context) {
	var in services.WeaponInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, services.CodeInvalidInput, err)
		return
	}
	w, err := h.weapons.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"weapon": w})
}

// GET /api/weapon/:id/power
func (h *WeaponHandler) GetWeaponPower(c *gin.Context) {
	id, err := parseWeaponID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	power, err := h.weapons.Power(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"power": power})
}

// GET /api/weapon/:id/maxBuildQuantity
func (h *WeaponHandler) GetWeaponMaxBuildQuantity(c *gin.Context) {
	id, err := parseWeaponID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	w, qty, err := h.weapons.MaxBuildQuantity(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"weapon": w, "maxBuildQty": qty})
}
