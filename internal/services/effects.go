package services

import (
	"context"
	"time"

	"github.com/yungbote/armory-backend/internal/data/cache"
	"github.com/yungbote/armory-backend/internal/data/graph"
	types "github.com/yungbote/armory-backend/internal/domain"
	"github.com/yungbote/armory-backend/internal/observability"
	"github.com/yungbote/armory-backend/internal/platform/ctxutil"
	"github.com/yungbote/armory-backend/internal/platform/logger"
)

const mirrorTimeout = 3 * time.Second

// writeEffects runs after a write transaction commits. Nothing here can fail
// the request.
type writeEffects struct {
	cache   cache.ResultCache
	mirror  graph.CompositionMirror
	metrics *observability.Metrics
	log     *logger.Logger
}

func (e writeEffects) invalidate(ctx context.Context) {
	e.cache.Invalidate(ctx)
}

func (e writeEffects) mirrorCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), mirrorTimeout)
}

func (e writeEffects) upsertMaterials(ctx context.Context, rows []*types.Material) {
	mctx, cancel := e.mirrorCtx(ctx)
	defer cancel()
	if err := e.mirror.UpsertMaterials(mctx, rows); err != nil {
		e.metrics.IncMirrorFailure("upsert_materials")
		e.log.Warn("graph mirror upsert failed", append(ctxutil.LogFields(ctx), "error", err)...)
	}
}

func (e writeEffects) replaceChildren(ctx context.Context, parentID int64, edges []*types.Composition) {
	mctx, cancel := e.mirrorCtx(ctx)
	defer cancel()
	if err := e.mirror.ReplaceChildren(mctx, parentID, edges); err != nil {
		e.metrics.IncMirrorFailure("replace_children")
		e.log.Warn("graph mirror edge sync failed", append(ctxutil.LogFields(ctx), "parent_id", parentID, "error", err)...)
	}
}

func (e writeEffects) detachMaterials(ctx context.Context, ids []int64) {
	mctx, cancel := e.mirrorCtx(ctx)
	defer cancel()
	if err := e.mirror.DetachMaterials(mctx, ids); err != nil {
		e.metrics.IncMirrorFailure("detach_materials")
		e.log.Warn("graph mirror detach failed", append(ctxutil.LogFields(ctx), "error", err)...)
	}
}
