package armory

import (
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/armory-backend/internal/modules/armory/composition"
)

// Material is a crafting resource. Parentage lives only in Composition rows.
type Material struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Name       string `gorm:"type:text;not null" json:"name"`
	PowerLevel *int64 `gorm:"column:power_level" json:"power_level"`
	BasePower  *int64 `gorm:"column:base_power" json:"base_power"`
	Qty        int64  `gorm:"not null;default:0" json:"qty"`

	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Material) TableName() string { return "materials" }

func (m *Material) Node() composition.Material {
	return composition.Material{ID: m.ID, PowerLevel: m.PowerLevel, Qty: m.Qty}
}

func MaterialNodes(rows []*Material) []composition.Material {
	out := make([]composition.Material, 0, len(rows))
	for _, m := range rows {
		if m == nil {
			continue
		}
		out = append(out, m.Node())
	}
	return out
}
