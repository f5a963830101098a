package domain

import (
	"github.com/yungbote/armory-backend/internal/domain/armory"
)

const (
	WeaponStatusActive = armory.WeaponStatusActive
	WeaponStatusBroken = armory.WeaponStatusBroken
)

type Material = armory.Material
type Composition = armory.Composition
type Weapon = armory.Weapon
type WeaponMaterial = armory.WeaponMaterial

var (
	MaterialNodes    = armory.MaterialNodes
	CompositionEdges = armory.CompositionEdges
)
