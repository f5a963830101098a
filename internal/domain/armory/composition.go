package armory

import (
	"time"

	"github.com/yungbote/armory-backend/internal/modules/armory/composition"
)

// Composition states that one unit of ParentID needs Qty units of MaterialID.
type Composition struct {
	ParentID   int64 `gorm:"primaryKey;autoIncrement:false;index:idx_compositions_parent" json:"parent_id"`
	MaterialID int64 `gorm:"primaryKey;autoIncrement:false;index:idx_compositions_material" json:"material_id"`
	Qty        int64 `gorm:"not null" json:"qty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Composition) TableName() string { return "compositions" }

func (c *Composition) Edge() composition.Edge {
	return composition.Edge{ParentID: c.ParentID, MaterialID: c.MaterialID, Qty: c.Qty}
}

func CompositionEdges(rows []*Composition) []composition.Edge {
	out := make([]composition.Edge, 0, len(rows))
	for _, c := range rows {
		if c == nil {
			continue
		}
		out = append(out, c.Edge())
	}
	return out
}
