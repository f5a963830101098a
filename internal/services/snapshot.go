package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/armory-backend/internal/data/cache"
	"github.com/yungbote/armory-backend/internal/data/db"
	"github.com/yungbote/armory-backend/internal/data/repos"
	types "github.com/yungbote/armory-backend/internal/domain"
	"github.com/yungbote/armory-backend/internal/modules/armory/composition"
	"github.com/yungbote/armory-backend/internal/observability"
	"github.com/yungbote/armory-backend/internal/platform/dbctx"
	"github.com/yungbote/armory-backend/internal/platform/logger"
)

// snapshot is the active materials and their composition graph as seen by
// one transaction.
type snapshot struct {
	materials map[int64]*types.Material
	graph     *composition.Graph
}

func (s *snapshot) material(id int64) (*types.Material, bool) {
	m, ok := s.materials[id]
	return m, ok
}

// computeEnv bundles what every read path needs: a transaction runner, the
// repos a snapshot is built from, and the result cache.
type computeEnv struct {
	tx           db.TxRunner
	materials    repos.MaterialRepo
	compositions repos.CompositionRepo
	cache        cache.ResultCache
	metrics      *observability.Metrics
	log          *logger.Logger
}

func loadSnapshot(dbc dbctx.Context, materialRepo repos.MaterialRepo, compositionRepo repos.CompositionRepo) (*snapshot, error) {
	mats, err := materialRepo.ListAll(dbc)
	if err != nil {
		return nil, err
	}
	edges, err := compositionRepo.ListAll(dbc)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*types.Material, len(mats))
	for _, m := range mats {
		byID[m.ID] = m
	}
	return &snapshot{
		materials: byID,
		graph:     composition.NewGraph(types.MaterialNodes(mats), types.CompositionEdges(edges)),
	}, nil
}

// readScope is one snapshot transaction. The cache revision is captured
// before the transaction starts so a result computed from data older than a
// concurrent write is stored under a revision that write already retired.
type readScope struct {
	env      *computeEnv
	dbc      dbctx.Context
	rev      int64
	useCache bool
	snap     *snapshot
}

func (c *computeEnv) read(ctx context.Context, fn func(rs *readScope) error) error {
	rev, ok := c.cache.Revision(ctx)
	rs := &readScope{env: c, rev: rev, useCache: ok}
	return c.tx.InSnapshot(ctx, func(dbc dbctx.Context) error {
		rs.dbc = dbc
		return fn(rs)
	})
}

// snapshot loads the graph once per scope.
func (rs *readScope) snapshot() (*snapshot, error) {
	if rs.snap != nil {
		return rs.snap, nil
	}
	s, err := loadSnapshot(rs.dbc, rs.env.materials, rs.env.compositions)
	if err != nil {
		return nil, err
	}
	if skipped := s.graph.Skipped(); skipped > 0 {
		rs.env.log.Debug("snapshot skipped dangling compositions", "count", skipped)
	}
	rs.snap = s
	return s, nil
}

// value returns the cached result for name or computes it on the snapshot.
// Errors are never cached.
func (rs *readScope) value(kind, name string, fn func(s *snapshot) (int64, error)) (v int64, err error) {
	ctx, span := observability.StartSpan(rs.dbc.Ctx, "compute."+kind, attribute.String("armory.result_key", name))
	defer func() { observability.EndSpan(span, err) }()

	if rs.useCache {
		if v, ok := rs.env.cache.Get(ctx, rs.rev, name); ok {
			rs.env.metrics.IncCacheLookup(true)
			span.SetAttributes(attribute.Bool("armory.cache_hit", true))
			return v, nil
		}
		rs.env.metrics.IncCacheLookup(false)
	}

	start := time.Now()
	s, err := rs.snapshot()
	if err != nil {
		return 0, err
	}
	v, err = fn(s)
	status := "ok"
	if err != nil {
		status = "error"
	}
	rs.env.metrics.ObserveCompute(kind, status, time.Since(start))
	if err != nil {
		return 0, err
	}
	if rs.useCache {
		rs.env.cache.Set(ctx, rs.rev, name, v)
	}
	return v, nil
}
