package payauth

// Host is the caller's UI surface. The orchestrator never holds a
// strong reference to the surface itself; it only asks whether the
// surface still exists before delivering anything to it. When Alive
// reports false the delivery is dropped; there is nothing left to
// update.
type Host interface {
	Alive() bool
}

// AlwaysAlive is a Host for callers whose surface cannot be torn down
// (servers, tests).
type AlwaysAlive struct{}

func (AlwaysAlive) Alive() bool { return true }
