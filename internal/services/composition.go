package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/armory-backend/internal/data/cache"
	"github.com/yungbote/armory-backend/internal/data/db"
	"github.com/yungbote/armory-backend/internal/data/graph"
	"github.com/yungbote/armory-backend/internal/data/repos"
	types "github.com/yungbote/armory-backend/internal/domain"
	"github.com/yungbote/armory-backend/internal/observability"
	"github.com/yungbote/armory-backend/internal/platform/apierr"
	"github.com/yungbote/armory-backend/internal/platform/dbctx"
	"github.com/yungbote/armory-backend/internal/platform/logger"
)

// CompositionChange is the edge a write touched plus every weapon whose
// requirement tree contains the parent, recomputed after the write.
type CompositionChange struct {
	Composition    *types.Composition
	UpdatedWeapons []WeaponSummary
}

type CompositionService interface {
	List(ctx context.Context, parentID int64) ([]*types.Composition, error)
	Add(ctx context.Context, parentID, materialID, qty int64) (*CompositionChange, error)
	UpdateQty(ctx context.Context, parentID, materialID, qty int64) (*CompositionChange, error)
	Remove(ctx context.Context, parentID, materialID int64) (*CompositionChange, error)
}

type compositionService struct {
	db         *gorm.DB
	log        *logger.Logger
	env        *computeEnv
	effects    writeEffects
	weaponRepo repos.WeaponRepo
}

func NewCompositionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	txRunner db.TxRunner,
	materialRepo repos.MaterialRepo,
	compositionRepo repos.CompositionRepo,
	weaponRepo repos.WeaponRepo,
	resultCache cache.ResultCache,
	mirror graph.CompositionMirror,
	metrics *observability.Metrics,
) CompositionService {
	serviceLog := baseLog.With("service", "CompositionService")
	return &compositionService{
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

var (
	errInvalidQuantity     = apierr.BadRequest(CodeInvalidQuantity, "Invalid quantity")
	errSelfComposition     = apierr.BadRequest(CodeSelfComposition, "Self-referential composition not allowed")
	errCompositionNotFound = apierr.NotFound(CodeCompositionMissing, "Composition not found")
	errCompositionExists   = apierr.Conflict(CodeCompositionExists, "Composition already exists")
	errCompositionCycle    = apierr.Conflict(CodeCompositionCycle, "Composition would create a cycle")
)

func (cs *compositionService) List(ctx context.Context, parentID int64) ([]*types.Composition, error) {
	var out []*types.Composition
	err := cs.env.read(ctx, func(rs *readScope) error {
		parent, err := cs.env.materials.GetByID(rs.dbc, parentID)
		if err != nil {
			return err
		}
		if parent == nil {
			return errMaterialNotFound
		}
		out, err = cs.env.compositions.ListByParentIDs(rs.dbc, []int64{parentID})
		return err
	})
	if err != nil {
		return nil, mapDBError(err)
	}
	return out, nil
}

// Add inserts parent -> material. The edge is refused when material can
// already reach parent, since it would close a cycle.
func (cs *compositionService) Add(ctx context.Context, parentID, materialID, qty int64) (*CompositionChange, error) {
	if qty <= 0 {
		return nil, errInvalidQuantity
	}
	if parentID == materialID {
		return nil, errSelfComposition
	}
	return cs.write(ctx, parentID, func(dbc dbctx.Context) (*types.Composition, error) {
		found, err := cs.env.materials.GetByIDs(dbc, []int64{parentID, materialID})
		if err != nil {
			return nil, err
		}
		if len(found) != 2 {
			return nil, errMaterialNotFound
		}
		existing, err := cs.env.compositions.Get(dbc, parentID, materialID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, errCompositionExists
		}
		s, err := loadSnapshot(dbc, cs.env.materials, cs.env.compositions)
		if err != nil {
			return nil, err
		}
		if s.graph.Reachable(materialID, parentID) {
			return nil, errCompositionCycle
		}
		row, err := cs.env.compositions.Create(dbc, &types.Composition{ParentID: parentID, MaterialID: materialID, Qty: qty})
		if db.IsConflict(err) {
			return nil, errCompositionExists
		}
		return row, err
	})
}

func (cs *compositionService) UpdateQty(ctx context.Context, parentID, materialID, qty int64) (*CompositionChange, error) {
	if qty <= 0 {
		return nil, errInvalidQuantity
	}
	return cs.write(ctx, parentID, func(dbc dbctx.Context) (*types.Composition, error) {
		ok, err := cs.env.compositions.UpdateQty(dbc, parentID, materialID, qty)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errCompositionNotFound
		}
		return cs.env.compositions.Get(dbc, parentID, materialID)
	})
}

func (cs *compositionService) Remove(ctx context.Context, parentID, materialID int64) (*CompositionChange, error) {
	return cs.write(ctx, parentID, func(dbc dbctx.Context) (*types.Composition, error) {
		row, err := cs.env.compositions.Get(dbc, parentID, materialID)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, errCompositionNotFound
		}
		if _, err := cs.env.compositions.Delete(dbc, parentID, materialID); err != nil {
			return nil, err
		}
		return row, nil
	})
}

// write runs mutate in a transaction, then recomputes the weapons affected
// by parentID on the post-write snapshot before committing.
func (cs *compositionService) write(ctx context.Context, parentID int64, mutate func(dbc dbctx.Context) (*types.Composition, error)) (*CompositionChange, error) {
	var (
		out      *CompositionChange
		children []*types.Composition
	)
	err := cs.env.tx.InTx(ctx, func(dbc dbctx.Context) error {
		row, err := mutate(dbc)
		if err != nil {
			return err
		}
		s, err := loadSnapshot(dbc, cs.env.materials, cs.env.compositions)
		if err != nil {
			return err
		}
		affected := append([]int64{parentID}, s.graph.Ancestors(parentID)...)
		weapons, err := cs.weaponRepo.ListByMaterialIDs(dbc, affected)
		if err != nil {
			return err
		}
		children, err = cs.env.compositions.ListByParentIDs(dbc, []int64{parentID})
		if err != nil {
			return err
		}
		out = &CompositionChange{Composition: row, UpdatedWeapons: summarizeWeapons(s, weapons)}
		return nil
	})
	if err != nil {
		cs.log.Warn("composition write failed", "parent_id", parentID, "error", err)
		return nil, mapDBError(err)
	}
	cs.effects.invalidate(ctx)
	cs.effects.replaceChildren(ctx, parentID, children)
	return out, nil
}
