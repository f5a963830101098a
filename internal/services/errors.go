package services

import (
	"errors"
	"net/http"

	"github.com/yungbote/armory-backend/internal/data/db"
	"github.com/yungbote/armory-backend/internal/modules/armory/composition"
	"github.com/yungbote/armory-backend/internal/platform/apierr"
)

// Error codes returned to API clients.
const (
	CodeInvalidID          = "invalid_id"
	CodeInvalidInput       = "invalid_input"
	CodeNoUpdateData       = "no_update_data"
	CodeInvalidInclude     = "invalid_include"
	CodeMaterialNotFound   = "material_not_found"
	CodeMaterialDeleted    = "material_deleted"
	CodeCompositionMissing = "composition_not_found"
	CodeCompositionExists  = "composition_exists"
	CodeSelfComposition    = "self_composition"
	CodeCompositionCycle   = "composition_cycle"
	CodeInvalidQuantity    = "invalid_quantity"
	CodeWeaponNotFound     = "weapon_not_found"
	CodeWeaponBroken       = "weapon_broken"
	CodeWeaponNoMaterial   = "weapon_no_material"
	CodeInvalidCost        = "invalid_material_cost"
	CodeInvalidGraph       = "invalid_composition"
	CodeConflict           = "conflict"
	CodeInternal           = "internal_error"
)

var (
	errMaterialNotFound = apierr.NotFound(CodeMaterialNotFound, "Material not found")
	errWeaponNotFound   = apierr.NotFound(CodeWeaponNotFound, "Weapon not found")
)

// mapComputeError translates graph computation failures into API errors.
func mapComputeError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apierr.As(err); ok {
		return err
	}
	var ce *composition.Error
	if errors.As(err, &ce) {
		switch ce.Kind {
		case composition.KindNotFound:
			return apierr.New(http.StatusNotFound, CodeMaterialNotFound, err)
		case composition.KindCycle:
			return apierr.New(http.StatusConflict, CodeCompositionCycle, err)
		default:
			return apierr.New(http.StatusBadRequest, CodeInvalidGraph, err)
		}
	}
	return mapDBError(err)
}

// mapDBError classifies persistence failures.
func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apierr.As(err); ok {
		return err
	}
	switch db.Classify(err) {
	case db.ClassNotFound:
		return apierr.New(http.StatusNotFound, CodeMaterialNotFound, err)
	case db.ClassConflict:
		return apierr.New(http.StatusConflict, CodeConflict, err)
	case db.ClassCheck, db.ClassForeignKey:
		return apierr.New(http.StatusBadRequest, CodeInvalidInput, err)
	case db.ClassRetryable:
		return apierr.New(http.StatusServiceUnavailable, "retryable", err)
	default:
		return apierr.Internal(CodeInternal, err)
	}
}
