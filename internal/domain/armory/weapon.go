package armory

import (
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/armory-backend/internal/modules/armory/composition"
)

const (
	WeaponStatusActive = "active"
	WeaponStatusBroken = "broken"
)

// Weapon consumes MaterialQty units of its root material per unit built,
// plus any WeaponMaterial requirements. A nil MaterialQty means one.
type Weapon struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Name        string `gorm:"type:text;not null" json:"name"`
	MaterialID  *int64 `gorm:"index" json:"material_id"`
	MaterialQty *int64 `json:"material_qty"`
	Status      string `gorm:"type:text;not null;default:'active';index" json:"status"`

	Materials []WeaponMaterial `gorm:"foreignKey:WeaponID" json:"materials,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Weapon) TableName() string { return "weapons" }

func (w *Weapon) IsBroken() bool { return w.Status == WeaponStatusBroken }

// Requirements lists every material the weapon consumes, root first. The
// root keeps its configured cost so a non-positive value can be rejected by
// the resolver.
func (w *Weapon) Requirements() []composition.Requirement {
	var out []composition.Requirement
	if w.MaterialID != nil {
		qty := int64(1)
		if w.MaterialQty != nil {
			qty = *w.MaterialQty
		}
		out = append(out, composition.Requirement{MaterialID: *w.MaterialID, Qty: qty})
	}
	for _, wm := range w.Materials {
		if w.MaterialID != nil && wm.MaterialID == *w.MaterialID {
			continue
		}
		out = append(out, composition.Requirement{MaterialID: wm.MaterialID, Qty: wm.Qty})
	}
	return out
}

// MaterialIDs returns the distinct materials used by the weapon.
func (w *Weapon) MaterialIDs() []int64 {
	reqs := w.Requirements()
	out := make([]int64, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.MaterialID)
	}
	return out
}

// WeaponMaterial is an additional requirement of a weapon.
type WeaponMaterial struct {
	WeaponID   int64 `gorm:"primaryKey;autoIncrement:false" json:"weapon_id"`
	MaterialID int64 `gorm:"primaryKey;autoIncrement:false;index" json:"material_id"`
	Qty        int64 `gorm:"not null" json:"qty"`
}

func (WeaponMaterial) TableName() string { return "weapons_materials" }
