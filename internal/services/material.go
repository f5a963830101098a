package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/armory-backend/internal/data/cache"
	"github.com/yungbote/armory-backend/internal/data/db"
	"github.com/yungbote/armory-backend/internal/data/graph"
	"github.com/yungbote/armory-backend/internal/data/repos"
	types "github.com/yungbote/armory-backend/internal/domain"
	"github.com/yungbote/armory-backend/internal/modules/armory/composition"
	"github.com/yungbote/armory-backend/internal/observability"
	"github.com/yungbote/armory-backend/internal/platform/apierr"
	"github.com/yungbote/armory-backend/internal/platform/dbctx"
	"github.com/yungbote/armory-backend/internal/platform/logger"
)

type MaterialInput struct {
	Name       string `json:"name"`
	PowerLevel *int64 `json:"power_level"`
	BasePower  *int64 `json:"base_power"`
	Qty        int64  `json:"qty"`
}

// OptionalInt distinguishes "absent" from "explicitly null" in a patch.
type OptionalInt struct {
	Set   bool
	Value *int64
}

type MaterialPatch struct {
	Name       *string
	PowerLevel OptionalInt
	BasePower  OptionalInt
	Qty        *int64
}

func (p MaterialPatch) empty() bool {
	return p.Name == nil && !p.PowerLevel.Set && !p.BasePower.Set && p.Qty == nil
}

type MaterialIncludes struct {
	Weapons      bool
	SubMaterials bool
}

// SubMaterial is a direct child of a material with the quantity one unit
// of the parent needs.
type SubMaterial struct {
	*types.Material
	RequiredQty int64 `json:"required_qty"`
}

type MaterialDetail struct {
	*types.Material
	Weapons      []*types.Weapon `json:"weapons,omitempty"`
	SubMaterials []SubMaterial   `json:"sub_materials,omitempty"`
}

// MaterialPower is a material with its aggregated power.
type MaterialPower struct {
	*types.Material
	Power int64 `json:"power"`
}

type MaterialUpdateResult struct {
	UpdatedMaterials []MaterialPower `json:"updated_materials"`
	UpdatedWeapons   []WeaponSummary `json:"updated_weapons"`
}

type MaterialDeleteResult struct {
	DeletedMaterials []*types.Material `json:"deleted_materials"`
	BrokenWeapons    []*types.Weapon   `json:"broken_weapons"`
}

type MaterialService interface {
	List(ctx context.Context, f repos.MaterialFilter) ([]*types.Material, error)
	Get(ctx context.Context, id int64, inc MaterialIncludes) (*MaterialDetail, error)
	Power(ctx context.Context, id int64) (int64, error)
	MaxBuildQuantity(ctx context.Context, id int64) (*types.Material, int64, error)
	Create(ctx context.Context, in MaterialInput) (*types.Material, error)
	Update(ctx context.Context, id int64, patch MaterialPatch) (*MaterialUpdateResult, error)
	Delete(ctx context.Context, id int64) (*MaterialDeleteResult, error)
}

type materialService struct {
	db         *gorm.DB
	log        *logger.Logger
	env        *computeEnv
	effects    writeEffects
	weaponRepo repos.WeaponRepo
}

func NewMaterialService(
	db *gorm.DB,
	baseLog *logger.Logger,
	txRunner db.TxRunner,
	materialRepo repos.MaterialRepo,
	compositionRepo repos.CompositionRepo,
	weaponRepo repos.WeaponRepo,
	resultCache cache.ResultCache,
	mirror graph.CompositionMirror,
	metrics *observability.Metrics,
) MaterialService {
	serviceLog := baseLog.With("service", "MaterialService")
	return &materialService{
		db:  db,
		log: serviceLog,
		env: &computeEnv{
			tx:           txRunner,
			materials:    materialRepo,
			compositions: compositionRepo,
			cache:        resultCache,
			metrics:      metrics,
			log:          serviceLog,
		},
		effects:    writeEffects{cache: resultCache, mirror: mirror, metrics: metrics, log: serviceLog},
		weaponRepo: weaponRepo,
	}
}

func (ms *materialService) List(ctx context.Context, f repos.MaterialFilter) ([]*types.Material, error) {
	rows, err := ms.env.materials.List(dbctx.New(ctx), f)
	if err != nil {
		ms.log.Error("List materials failed", "error", err)
		return nil, mapDBError(err)
	}
	return rows, nil
}

func (ms *materialService) Get(ctx context.Context, id int64, inc MaterialIncludes) (*MaterialDetail, error) {
	var out *MaterialDetail
	err := ms.env.read(ctx, func(rs *readScope) error {
		m, err := ms.env.materials.GetByID(rs.dbc, id)
		if err != nil {
			return err
		}
		if m == nil {
			return errMaterialNotFound
		}
		out = &MaterialDetail{Material: m}
		if inc.Weapons {
			weapons, err := ms.weaponRepo.ListByMaterialIDs(rs.dbc, []int64{id})
			if err != nil {
				return err
			}
			out.Weapons = weapons
		}
		if inc.SubMaterials {
			s, err := rs.snapshot()
			if err != nil {
				return err
			}
			out.SubMaterials = []SubMaterial{}
			for _, c := range s.graph.Children(id) {
				if child, ok := s.material(c.MaterialID); ok {
					out.SubMaterials = append(out.SubMaterials, SubMaterial{Material: child, RequiredQty: c.Qty})
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, mapDBError(err)
	}
	return out, nil
}

func (ms *materialService) Power(ctx context.Context, id int64) (int64, error) {
	var power int64
	err := ms.env.read(ctx, func(rs *readScope) error {
		var err error
		power, err = rs.value("material_power", cache.Key("material", id, "power"), func(s *snapshot) (int64, error) {
			if _, ok := s.material(id); !ok {
				return 0, errMaterialNotFound
			}
			return composition.Power(s.graph, id)
		})
		return err
	})
	if err != nil {
		return 0, mapComputeError(err)
	}
	return power, nil
}

func (ms *materialService) MaxBuildQuantity(ctx context.Context, id int64) (*types.Material, int64, error) {
	var (
		mat *types.Material
		qty int64
	)
	err := ms.env.read(ctx, func(rs *readScope) error {
		m, err := ms.env.materials.GetByID(rs.dbc, id)
		if err != nil {
			return err
		}
		if m == nil {
			return errMaterialNotFound
		}
		mat = m
		qty, err = rs.value("material_max_build", cache.Key("material", id, "max_build"), func(s *snapshot) (int64, error) {
			return composition.MaxBuildable(s.graph, id)
		})
		return err
	})
	if err != nil {
		return nil, 0, mapComputeError(err)
	}
	return mat, qty, nil
}

func (ms *materialService) Create(ctx context.Context, in MaterialInput) (*types.Material, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apierr.BadRequest(CodeInvalidInput, "Name is required")
	}
	if in.Qty < 0 {
		return nil, apierr.BadRequest(CodeInvalidQuantity, "Quantity cannot be negative")
	}
	m := &types.Material{Name: name, PowerLevel: in.PowerLevel, BasePower: in.BasePower, Qty: in.Qty}
	err := ms.env.tx.InTx(ctx, func(dbc dbctx.Context) error {
		_, err := ms.env.materials.Create(dbc, []*types.Material{m})
		return err
	})
	if err != nil {
		ms.log.Error("Create material failed", "name", name, "error", err)
		return nil, mapDBError(err)
	}
	ms.effects.invalidate(ctx)
	ms.effects.upsertMaterials(ctx, []*types.Material{m})
	return m, nil
}

// Update applies a partial update and reports every material whose
// aggregated power depends on it (itself and its ancestors) together with
// the weapons that consume any of them.
func (ms *materialService) Update(ctx context.Context, id int64, patch MaterialPatch) (*MaterialUpdateResult, error) {
	if patch.empty() {
		return nil, apierr.BadRequest(CodeNoUpdateData, "No update data provided")
	}
	updates := map[string]interface{}{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apierr.BadRequest(CodeInvalidInput, "Name is required")
		}
		updates["name"] = name
	}
	if patch.Qty != nil {
		if *patch.Qty < 0 {
			return nil, apierr.BadRequest(CodeInvalidQuantity, "Quantity cannot be negative")
		}
		updates["qty"] = *patch.Qty
	}
	if patch.PowerLevel.Set {
		updates["power_level"] = patch.PowerLevel.Value
	}
	if patch.BasePower.Set {
		updates["base_power"] = patch.BasePower.Value
	}

	var (
		out     *MaterialUpdateResult
		updated *types.Material
	)
	err := ms.env.tx.InTx(ctx, func(dbc dbctx.Context) error {
		m, err := ms.env.materials.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if m == nil {
			return errMaterialNotFound
		}
		if err := ms.env.materials.Update(dbc, id, updates); err != nil {
			return err
		}

		s, err := loadSnapshot(dbc, ms.env.materials, ms.env.compositions)
		if err != nil {
			return err
		}
		affected := append([]int64{id}, s.graph.Ancestors(id)...)
		out = &MaterialUpdateResult{UpdatedMaterials: make([]MaterialPower, 0, len(affected))}
		for _, mid := range affected {
			mat, ok := s.material(mid)
			if !ok {
				continue
			}
			power, err := composition.Power(s.graph, mid)
			if err != nil {
				return err
			}
			out.UpdatedMaterials = append(out.UpdatedMaterials, MaterialPower{Material: mat, Power: power})
			if mid == id {
				updated = mat
			}
		}

		weapons, err := ms.weaponRepo.ListByMaterialIDs(dbc, affected)
		if err != nil {
			return err
		}
		out.UpdatedWeapons = summarizeWeapons(s, weapons)
		return nil
	})
	if err != nil {
		ms.log.Warn("Update material failed", "material_id", id, "error", err)
		return nil, mapComputeError(err)
	}
	ms.effects.invalidate(ctx)
	ms.effects.upsertMaterials(ctx, []*types.Material{updated})
	return out, nil
}

// Delete soft-deletes the material and every descendant no surviving
// material still needs, then marks the weapons that consume any of them as
// broken. Everything happens in one transaction.
func (ms *materialService) Delete(ctx context.Context, id int64) (*MaterialDeleteResult, error) {
	var (
		out     *MaterialDeleteResult
		removed []int64
	)
	err := ms.env.tx.InTx(ctx, func(dbc dbctx.Context) error {
		m, err := ms.env.materials.GetByIDUnscoped(dbc, id)
		if err != nil {
			return err
		}
		if m == nil {
			return errMaterialNotFound
		}
		if m.DeletedAt.Valid {
			return apierr.NotFound(CodeMaterialDeleted, "Material already deleted")
		}

		s, err := loadSnapshot(dbc, ms.env.materials, ms.env.compositions)
		if err != nil {
			return err
		}
		removed = composition.CascadeDelete(s.graph, id)
		if err := ms.env.materials.SoftDeleteByIDs(dbc, removed); err != nil {
			return err
		}
		deleted, err := ms.env.materials.GetByIDsUnscoped(dbc, removed)
		if err != nil {
			return err
		}

		weapons, err := ms.weaponRepo.ListByMaterialIDs(dbc, removed)
		if err != nil {
			return err
		}
		var brokenIDs []int64
		for _, w := range weapons {
			if !w.IsBroken() {
				brokenIDs = append(brokenIDs, w.ID)
			}
			w.Status = types.WeaponStatusBroken
		}
		if err := ms.weaponRepo.UpdateStatusByIDs(dbc, brokenIDs, types.WeaponStatusBroken); err != nil {
			return err
		}
		out = &MaterialDeleteResult{DeletedMaterials: deleted, BrokenWeapons: weapons}
		return nil
	})
	if err != nil {
		ms.log.Warn("Delete material failed", "material_id", id, "error", err)
		return nil, mapDBError(err)
	}
	ms.effects.metrics.ObserveCascade(len(removed))
	ms.effects.invalidate(ctx)
	ms.effects.detachMaterials(ctx, removed)
	ms.log.Info("materials deleted", "material_id", id, "cascade", len(removed), "broken_weapons", len(out.BrokenWeapons))
	return out, nil
}
