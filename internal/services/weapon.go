package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"
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

// WeaponSummary is a weapon with its computed values. When either value
// cannot be computed Error carries the reason and MaxBuildQty is zero.
type WeaponSummary struct {
	*types.Weapon
	Power       int64  `json:"power"`
	MaxBuildQty int64  `json:"maxBuildQty"`
	Error       string `json:"error,omitempty"`
}

type WeaponMaterialInput struct {
	MaterialID int64 `json:"material_id"`
	Qty        int64 `json:"qty"`
}

type WeaponInput struct {
	Name        string                `json:"name"`
	MaterialID  *int64                `json:"material_id"`
	MaterialQty *int64                `json:"material_qty"`
	Materials   []WeaponMaterialInput `json:"materials"`
}

type WeaponService interface {
	List(ctx context.Context) ([]WeaponSummary, error)
	Get(ctx context.Context, id int64) (*types.Weapon, error)
	Create(ctx context.Context, in WeaponInput) (*types.Weapon, error)
	Power(ctx context.Context, id int64) (int64, error)
	MaxBuildQuantity(ctx context.Context, id int64) (*types.Weapon, int64, error)
}

type weaponService struct {
	db          *gorm.DB
	log         *logger.Logger
	env         *computeEnv
	effects     writeEffects
	weaponRepo  repos.WeaponRepo
	concurrency int
}

func NewWeaponService(
	db *gorm.DB,
	baseLog *logger.Logger,
	txRunner db.TxRunner,
	materialRepo repos.MaterialRepo,
	compositionRepo repos.CompositionRepo,
	weaponRepo repos.WeaponRepo,
	resultCache cache.ResultCache,
	mirror graph.CompositionMirror,
	metrics *observability.Metrics,
	concurrency int,
) WeaponService {
	serviceLog := baseLog.With("service", "WeaponService")
	if concurrency <= 0 {
		concurrency = 4
	}
	return &weaponService{
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
		effects:     writeEffects{cache: resultCache, mirror: mirror, metrics: metrics, log: serviceLog},
		weaponRepo:  weaponRepo,
		concurrency: concurrency,
	}
}

// List computes every weapon's summary on one snapshot. Summaries are
// independent, so they run concurrently; a weapon that cannot be computed
// reports its error instead of failing the list.
func (ws *weaponService) List(ctx context.Context) ([]WeaponSummary, error) {
	var out []WeaponSummary
	err := ws.env.read(ctx, func(rs *readScope) error {
		weapons, err := ws.weaponRepo.List(rs.dbc)
		if err != nil {
			return err
		}
		s, err := rs.snapshot()
		if err != nil {
			return err
		}
		out = make([]WeaponSummary, len(weapons))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(ws.concurrency)
		for i, w := range weapons {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				out[i] = summarizeWeapon(s, w)
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil {
		ws.log.Error("List weapons failed", "error", err)
		return nil, mapDBError(err)
	}
	return out, nil
}

func (ws *weaponService) Get(ctx context.Context, id int64) (*types.Weapon, error) {
	w, err := ws.weaponRepo.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, mapDBError(err)
	}
	if w == nil {
		return nil, errWeaponNotFound
	}
	return w, nil
}

func (ws *weaponService) Create(ctx context.Context, in WeaponInput) (*types.Weapon, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apierr.BadRequest(CodeInvalidInput, "Name is required")
	}
	if in.MaterialQty != nil && *in.MaterialQty <= 0 {
		return nil, apierr.BadRequest(CodeInvalidCost, "Invalid material cost")
	}
	if in.MaterialQty != nil && in.MaterialID == nil {
		return nil, apierr.BadRequest(CodeInvalidInput, "material_qty requires material_id")
	}

	w := &types.Weapon{
		Name:        name,
		MaterialID:  in.MaterialID,
		MaterialQty: in.MaterialQty,
		Status:      types.WeaponStatusActive,
	}
	ids := map[int64]bool{}
	if in.MaterialID != nil {
		ids[*in.MaterialID] = true
	}
	for _, m := range in.Materials {
		if m.Qty <= 0 {
			return nil, apierr.BadRequest(CodeInvalidCost, "Invalid material cost")
		}
		if ids[m.MaterialID] {
			return nil, apierr.BadRequest(CodeInvalidInput, "Duplicate material in weapon requirements")
		}
		ids[m.MaterialID] = true
		w.Materials = append(w.Materials, types.WeaponMaterial{MaterialID: m.MaterialID, Qty: m.Qty})
	}

	err := ws.env.tx.InTx(ctx, func(dbc dbctx.Context) error {
		want := make([]int64, 0, len(ids))
		for id := range ids {
			want = append(want, id)
		}
		found, err := ws.env.materials.GetByIDs(dbc, want)
		if err != nil {
			return err
		}
		if len(found) != len(want) {
			return errMaterialNotFound
		}
		_, err = ws.weaponRepo.Create(dbc, w)
		return err
	})
	if err != nil {
		ws.log.Warn("Create weapon failed", "name", name, "error", err)
		return nil, mapDBError(err)
	}
	ws.effects.invalidate(ctx)
	ws.log.Info("weapon created", "weapon_id", w.ID)
	return w, nil
}

func (ws *weaponService) Power(ctx context.Context, id int64) (int64, error) {
	var power int64
	err := ws.env.read(ctx, func(rs *readScope) error {
		w, err := ws.weaponRepo.GetByID(rs.dbc, id)
		if err != nil {
			return err
		}
		if w == nil {
			return errWeaponNotFound
		}
		power, err = rs.value("weapon_power", cache.Key("weapon", id, "power"), func(s *snapshot) (int64, error) {
			if err := requireMaterials(s, w.Requirements()); err != nil {
				return 0, err
			}
			return composition.WeaponPower(s.graph, w.MaterialIDs())
		})
		return err
	})
	if err != nil {
		return 0, mapComputeError(err)
	}
	return power, nil
}

// MaxBuildQuantity checks, in order: the weapon exists, is not broken, has
// a material, every cost is positive and every material is still active.
func (ws *weaponService) MaxBuildQuantity(ctx context.Context, id int64) (*types.Weapon, int64, error) {
	var (
		weapon *types.Weapon
		qty    int64
	)
	err := ws.env.read(ctx, func(rs *readScope) error {
		w, err := ws.weaponRepo.GetByID(rs.dbc, id)
		if err != nil {
			return err
		}
		if w == nil {
			return errWeaponNotFound
		}
		weapon = w
		if err := checkWeaponBuildable(w); err != nil {
			return err
		}
		qty, err = rs.value("weapon_max_build", cache.Key("weapon", id, "max_build"), func(s *snapshot) (int64, error) {
			reqs := w.Requirements()
			if err := requireMaterials(s, reqs); err != nil {
				return 0, err
			}
			return composition.WeaponMaxBuildable(s.graph, reqs)
		})
		return err
	})
	if err != nil {
		var ae *apierr.Error
		if errors.As(err, &ae) && ae.Status >= http.StatusInternalServerError {
			ws.log.Error("MaxBuildQuantity failed", "weapon_id", id, "error", err)
		}
		return nil, 0, mapComputeError(err)
	}
	return weapon, qty, nil
}

func checkWeaponBuildable(w *types.Weapon) error {
	if w.IsBroken() {
		return apierr.BadRequest(CodeWeaponBroken, "Weapon is broken")
	}
	reqs := w.Requirements()
	if len(reqs) == 0 {
		return apierr.BadRequest(CodeWeaponNoMaterial, "Weapon has no material")
	}
	for _, r := range reqs {
		if r.Qty <= 0 {
			return apierr.BadRequest(CodeInvalidCost, "Invalid material cost")
		}
	}
	return nil
}

func requireMaterials(s *snapshot, reqs []composition.Requirement) error {
	for _, r := range reqs {
		if _, ok := s.material(r.MaterialID); !ok {
			return apierr.NotFound(CodeMaterialDeleted, "Material is deleted")
		}
	}
	return nil
}

// summarizeWeapon is pure and safe to run concurrently on a shared snapshot.
// Build errors take precedence over power errors in Error.
func summarizeWeapon(s *snapshot, w *types.Weapon) WeaponSummary {
	out := WeaponSummary{Weapon: w}
	reqs := w.Requirements()
	missing := requireMaterials(s, reqs)

	var powerErr error
	if missing == nil {
		out.Power, powerErr = composition.WeaponPower(s.graph, w.MaterialIDs())
		if powerErr != nil {
			out.Power = 0
			powerErr = mapComputeError(powerErr)
		}
	}

	buildErr := checkWeaponBuildable(w)
	if buildErr == nil {
		buildErr = missing
	}
	if buildErr == nil {
		qty, err := composition.WeaponMaxBuildable(s.graph, reqs)
		if err != nil {
			buildErr = mapComputeError(err)
		} else {
			out.MaxBuildQty = qty
		}
	}

	switch {
	case buildErr != nil:
		out.Error = errorMessage(buildErr)
	case powerErr != nil:
		out.Error = errorMessage(powerErr)
	}
	return out
}

// summarizeWeapons is used by write paths to report affected weapons.
func summarizeWeapons(s *snapshot, weapons []*types.Weapon) []WeaponSummary {
	out := make([]WeaponSummary, 0, len(weapons))
	for _, w := range weapons {
		out = append(out, summarizeWeapon(s, w))
	}
	return out
}

func errorMessage(err error) string {
	if ae, ok := apierr.As(err); ok && ae.Err != nil {
		return ae.Err.Error()
	}
	return err.Error()
}
