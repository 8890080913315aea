package registry_test

import (
	"errors"
	"testing"

	"github.com/aretw0/graft/internal/logging"
	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/ports"
	"github.com/aretw0/graft/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_BuildsRouters(t *testing.T) {
	r := registry.Default(logging.NewNop())
	assert.Equal(t, []string{registry.KindRouter}, r.Kinds())

	node, err := r.Build(registry.KindRouter, "leaf")
	require.NoError(t, err)
	assert.Equal(t, "leaf", ports.IDOf(node))

	l, ok := ports.Inspect(node)
	require.True(t, ok)
	assert.Equal(t, domain.PhaseDetached, l.Phase())
}

func TestBuild_UnknownKind(t *testing.T) {
	r := registry.NewRegistry()
	_, err := r.Build("widget", "w1")
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
}

func TestBuild_FactoryError(t *testing.T) {
	r := registry.Default(logging.NewNop())
	_, err := r.Build(registry.KindRouter, "")
	assert.Error(t, err)

	boom := errors.New("boom")
	r.Register("broken", func(string) (ports.Node, error) { return nil, boom })
	_, err = r.Build("broken", "x")
	assert.ErrorIs(t, err, boom)
}

func TestRegister_Overwrites(t *testing.T) {
	r := registry.NewRegistry()
	calls := 0
	r.Register("k", func(id string) (ports.Node, error) { calls = 1; return nil, nil })
	r.Register("k", func(id string) (ports.Node, error) { calls = 2; return nil, nil })

	_, err := r.Build("k", "x")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
