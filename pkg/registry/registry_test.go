package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txn2/sim-platform/pkg/model"
)

// stubModel is the minimal contract implementation used to exercise the
// registry without pulling in real model packages.
type stubModel struct {
	model.Model
	tag string
}

func stubFactory(tag string) model.Factory {
	return func(model.Params) (model.Model, error) {
		return &stubModel{tag: tag}, nil
	}
}

func TestRegistry_RegisterAndResolve(t *testing.T) {
	r := New()
	r.Register("stub", stubFactory("a"))

	factory, err := r.Resolve("stub")
	require.NoError(t, err)

	inst, err := factory(nil)
	require.NoError(t, err)
	assert.Equal(t, "a", inst.(*stubModel).tag)
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	r := New()

	_, err := r.Resolve("never_registered")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnknownModel)
	assert.Contains(t, err.Error(), "never_registered")
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	r := New()
	r.Register("stub", stubFactory("old"))

	// An instance built before the overwrite keeps its factory's behavior.
	factory, err := r.Resolve("stub")
	require.NoError(t, err)
	before, err := factory(nil)
	require.NoError(t, err)

	r.Register("stub", stubFactory("new"))

	factory, err = r.Resolve("stub")
	require.NoError(t, err)
	after, err := factory(nil)
	require.NoError(t, err)

	assert.Equal(t, "old", before.(*stubModel).tag)
	assert.Equal(t, "new", after.(*stubModel).tag)
}

func TestRegistry_Names(t *testing.T) {
	r := New()
	r.Register("zebra", stubFactory("z"))
	r.Register("alpha", stubFactory("a"))

	assert.Equal(t, []string{"alpha", "zebra"}, r.Names())
}

func TestRegisterBuiltins(t *testing.T) {
	r := NewWithBuiltins()

	assert.Equal(t, []string{ModelRoomTemperature, ModelWaterTank}, r.Names())

	for _, name := range r.Names() {
		factory, err := r.Resolve(name)
		require.NoError(t, err)

		inst, err := factory(nil)
		require.NoError(t, err, "builtin %s must construct with defaults", name)
		assert.NotEmpty(t, inst.State())
	}
}
