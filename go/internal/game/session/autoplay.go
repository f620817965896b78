package session

// AutoPlayer decides when a synthetic click is due. It holds no reference
// to the session; the reducer routes its firings through the normal click
// gate.
type AutoPlayer struct {
	Enabled   bool
	Cadence   int
	untilFire int
}

// NewAutoPlayer returns a disabled auto-player firing every cadence ticks.
func NewAutoPlayer(cadence int) AutoPlayer {
	return AutoPlayer{Cadence: cadence}
}

// Toggle flips the flag. Enabling restarts the cadence from zero.
func (a *AutoPlayer) Toggle() {
	if a.Enabled {
		a.Disable()
		return
	}
	a.Enabled = true
	a.untilFire = a.Cadence
}

// Disable stops future firings.
func (a *AutoPlayer) Disable() {
	a.Enabled = false
	a.untilFire = 0
}

// Advance moves the cadence one tick and reports whether a click is due.
func (a *AutoPlayer) Advance() bool {
	if !a.Enabled || a.Cadence <= 0 {
		return false
	}
	a.untilFire--
	if a.untilFire > 0 {
		return false
	}
	a.untilFire = a.Cadence
	return true
}

// TicksUntilFire is zero when disabled.
func (a AutoPlayer) TicksUntilFire() int {
	if !a.Enabled {
		return 0
	}
	return a.untilFire
}
