package router_test

import (
	"testing"

	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/interactor"
	"github.com/aretw0/graft/pkg/router"
	"github.com/stretchr/testify/assert"
)

func TestRouter_LoadOnce(t *testing.T) {
	loads := 0
	r := router.New("leaf", interactor.New(), router.WithDidLoad(func() { loads++ }))

	assert.False(t, r.Loaded())
	r.Load()
	r.Load()
	r.Load()

	assert.True(t, r.Loaded())
	assert.Equal(t, 1, loads)
}

func TestRouter_Lifecycle(t *testing.T) {
	unit := interactor.New()
	r := router.New("leaf", unit)

	assert.Equal(t, domain.PhaseDetached, r.Lifecycle().Phase())

	unit.Activate()
	assert.Equal(t, domain.PhaseActivating, r.Lifecycle().Phase())

	r.Load()
	assert.Equal(t, domain.PhaseAttached, r.Lifecycle().Phase())

	unit.Deactivate()
	assert.Equal(t, domain.PhaseParked, r.Lifecycle().Phase())
}

type opaqueUnit struct{ active bool }

func (u *opaqueUnit) Activate()   { u.active = true }
func (u *opaqueUnit) Deactivate() { u.active = false }

func TestRouter_OpaqueUnitReportsInactive(t *testing.T) {
	u := &opaqueUnit{}
	r := router.New("opaque", u)

	r.Activation().Activate()
	assert.True(t, u.active)
	assert.Equal(t, domain.Inactive, r.Lifecycle().Activation)
}

func TestRouter_Accessors(t *testing.T) {
	unit := interactor.New()
	view := struct{ Title string }{"panel"}
	r := router.New("leaf", unit, router.WithView(view))

	assert.Equal(t, "leaf", r.NodeID())
	assert.Same(t, unit, r.Activation())
	assert.Equal(t, view, r.View())
	assert.Nil(t, router.New("bare", unit).View())
}
