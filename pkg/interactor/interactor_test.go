package interactor_test

import (
	"testing"

	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/interactor"
	"github.com/stretchr/testify/assert"
)

func TestInteractor_StartsInactive(t *testing.T) {
	i := interactor.New()
	assert.False(t, i.IsActive())
	assert.Equal(t, domain.Inactive, i.State())
}

func TestInteractor_Callbacks(t *testing.T) {
	var calls []string
	var i *interactor.Interactor
	i = interactor.New(
		interactor.WithDidBecomeActive(func() {
			calls = append(calls, "didBecomeActive")
			assert.True(t, i.IsActive(), "state must already be active")
		}),
		interactor.WithWillResignActive(func() {
			calls = append(calls, "willResignActive")
			assert.True(t, i.IsActive(), "state must still be active")
		}),
	)

	i.Activate()
	i.Deactivate()

	assert.Equal(t, []string{"didBecomeActive", "willResignActive"}, calls)
	assert.False(t, i.IsActive())
}

func TestInteractor_RepeatedTransitionsAreNoOps(t *testing.T) {
	active, resign := 0, 0
	i := interactor.New(
		interactor.WithDidBecomeActive(func() { active++ }),
		interactor.WithWillResignActive(func() { resign++ }),
	)

	// Deactivate before any activation.
	i.Deactivate()
	assert.Equal(t, 0, resign)

	i.Activate()
	i.Activate()
	assert.Equal(t, 1, active)
	assert.True(t, i.IsActive())

	i.Deactivate()
	i.Deactivate()
	assert.Equal(t, 1, resign)
	assert.False(t, i.IsActive())
}

func TestInteractor_Subscribe(t *testing.T) {
	i := interactor.New()

	var seen []domain.ActivationState
	cancel := i.Subscribe(func(s domain.ActivationState) {
		seen = append(seen, s)
	})

	i.Activate()
	i.Activate() // ignored
	i.Deactivate()
	cancel()
	i.Activate()

	assert.Equal(t, []domain.ActivationState{domain.Active, domain.Inactive}, seen)
}

func TestInteractor_CancelKeepsOtherSubscribers(t *testing.T) {
	i := interactor.New()

	var a, b int
	cancelA := i.Subscribe(func(domain.ActivationState) { a++ })
	i.Subscribe(func(domain.ActivationState) { b++ })

	cancelA()
	cancelA() // second cancel is harmless
	i.Activate()

	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
}
