package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	types "github.com/yungbote/armory-backend/internal/domain"
	"github.com/yungbote/armory-backend/internal/platform/logger"
	"github.com/yungbote/armory-backend/internal/platform/neo4jdb"
)

// CompositionMirror projects the composition graph into an external graph
// store. Implementations are best effort; callers log and drop errors.
type CompositionMirror interface {
	UpsertMaterials(ctx context.Context, materials []*types.Material) error
	ReplaceChildren(ctx context.Context, parentID int64, edges []*types.Composition) error
	DetachMaterials(ctx context.Context, ids []int64) error
}

type neo4jCompositionMirror struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

// NewCompositionMirror returns a Neo4j mirror, or a no-op when client is nil.
func NewCompositionMirror(client *neo4jdb.Client, baseLog *logger.Logger) CompositionMirror {
	if client == nil || client.Driver == nil {
		return NoopCompositionMirror{}
	}
	return &neo4jCompositionMirror{client: client, log: baseLog.With("graph", "CompositionMirror")}
}

func (m *neo4jCompositionMirror) UpsertMaterials(ctx context.Context, materials []*types.Material) error {
	return UpsertMaterialNodes(ctx, m.client, m.log, materials)
}

func (m *neo4jCompositionMirror) ReplaceChildren(ctx context.Context, parentID int64, edges []*types.Composition) error {
	return ReplaceCompositionEdges(ctx, m.client, m.log, parentID, edges)
}

func (m *neo4jCompositionMirror) DetachMaterials(ctx context.Context, ids []int64) error {
	return DetachMaterialNodes(ctx, m.client, ids)
}

type NoopCompositionMirror struct{}

func (NoopCompositionMirror) UpsertMaterials(context.Context, []*types.Material) error { return nil }
func (NoopCompositionMirror) ReplaceChildren(context.Context, int64, []*types.Composition) error {
	return nil
}
func (NoopCompositionMirror) DetachMaterials(context.Context, []int64) error { return nil }

func materialNodeRows(materials []*types.Material, now string) []map[string]any {
	out := make([]map[string]any, 0, len(materials))
	for _, mat := range materials {
		if mat == nil || mat.ID <= 0 || mat.DeletedAt.Valid {
			continue
		}
		row := map[string]any{
			"id":        mat.ID,
			"name":      mat.Name,
			"qty":       mat.Qty,
			"synced_at": now,
		}
		if mat.PowerLevel != nil {
			row["power_level"] = *mat.PowerLevel
		} else {
			row["power_level"] = nil
		}
		out = append(out, row)
	}
	return out
}

func compositionRelRows(parentID int64, edges []*types.Composition, now string) []map[string]any {
	out := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		if e == nil || e.ParentID != parentID || e.MaterialID <= 0 {
			continue
		}
		out = append(out, map[string]any{
			"parent_id":   e.ParentID,
			"material_id": e.MaterialID,
			"qty":         e.Qty,
			"synced_at":   now,
		})
	}
	return out
}

func UpsertMaterialNodes(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, materials []*types.Material) error {
	if client == nil || client.Driver == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	nodes := materialNodeRows(materials, time.Now().UTC().Format(time.RFC3339Nano))
	if len(nodes) == 0 {
		return nil
	}

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	// Best-effort schema init.
	if res, err := session.Run(ctx, `CREATE CONSTRAINT material_id_unique IF NOT EXISTS FOR (m:Material) REQUIRE m.id IS UNIQUE`, nil); err != nil {
		if log != nil {
			log.Warn("neo4j schema init failed (continuing)", "error", err)
		}
	} else {
		_, _ = res.Consume(ctx)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
UNWIND $materials AS m
MERGE (n:Material {id: m.id})
SET n += m
`, map[string]any{"materials": nodes})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	return err
}

// ReplaceCompositionEdges makes the outgoing COMPOSED_OF edges of parentID
// match edges exactly.
func ReplaceCompositionEdges(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, parentID int64, edges []*types.Composition) error {
	if client == nil || client.Driver == nil || parentID <= 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	rels := compositionRelRows(parentID, edges, now)

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if res, err := tx.Run(ctx, `
MERGE (p:Material {id: $id})
SET p.synced_at = $synced_at
WITH p
OPTIONAL MATCH (p)-[r:COMPOSED_OF]->()
DELETE r
`, map[string]any{"id": parentID, "synced_at": now}); err != nil {
			return nil, err
		} else if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}

		if len(rels) == 0 {
			return nil, nil
		}
		res, err := tx.Run(ctx, `
UNWIND $rels AS r
MERGE (p:Material {id: r.parent_id})
MERGE (c:Material {id: r.material_id})
MERGE (p)-[e:COMPOSED_OF]->(c)
SET e.qty = r.qty,
    e.synced_at = r.synced_at
`, map[string]any{"rels": rels})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	if err != nil && log != nil {
		log.Debug("neo4j replace edges failed", "parent_id", parentID, "edges", len(rels), "error", err)
	}
	return err
}

func DetachMaterialNodes(ctx context.Context, client *neo4jdb.Client, ids []int64) error {
	if client == nil || client.Driver == nil || len(ids) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (n:Material)
WHERE n.id IN $ids
DETACH DELETE n
`, map[string]any{"ids": ids})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	return err
}
