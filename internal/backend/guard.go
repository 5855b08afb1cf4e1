package backend

// Guard stops the backend when closed. Defer Close right after creating the
// Supervisor so every return path shuts the child down.
type Guard struct {
	handle *Handle
}

// NewGuard binds a Guard to h.
func NewGuard(h *Handle) *Guard {
	return &Guard{handle: h}
}

// Close shuts the backend down if nothing else already has. It is safe to
// call more than once and never fails.
func (g *Guard) Close() error {
	if g == nil || g.handle == nil {
		return nil
	}
	g.handle.Shutdown(TriggerGuard)
	return nil
}
