package module

// Notifier wakes up a worker routine when new work arrived. Notifications
// sent while nobody waits are remembered, but several of them collapse into
// one. Notifiers can be passed by value.
type Notifier struct {
	notifier chan struct{}
}

// NewNotifier instantiates a Notifier.
func NewNotifier() Notifier {
	return Notifier{make(chan struct{}, 1)}
}

// Notify sends a notification without blocking.
func (n Notifier) Notify() {
	select {
	case n.notifier <- struct{}{}:
	default:
	}
}

// Channel returns the channel the worker receives notifications from.
func (n Notifier) Channel() <-chan struct{} {
	return n.notifier
}
