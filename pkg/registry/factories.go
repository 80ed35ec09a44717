package registry

import (
	"github.com/txn2/sim-platform/pkg/models/roomtemp"
	"github.com/txn2/sim-platform/pkg/models/watertank"
)

// Builtin model-type names.
const (
	ModelWaterTank       = "water_tank"
	ModelRoomTemperature = "room_temperature"
)

// RegisterBuiltins registers the factories for the models shipped with the
// platform.
func RegisterBuiltins(r *Registry) {
	r.Register(ModelWaterTank, watertank.New)
	r.Register(ModelRoomTemperature, roomtemp.New)
}

// NewWithBuiltins creates a registry preloaded with the builtin models.
func NewWithBuiltins() *Registry {
	r := New()
	RegisterBuiltins(r)
	return r
}
