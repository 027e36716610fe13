package notify

import "sync"

// Notifier is a registry of change listeners. Listeners carry no payload:
// a notification means "the SKU collection changed, re-read what you need".
// Delivery is synchronous, in registration order, after the mutation that
// triggered it has committed.
type Notifier struct {
	mu        sync.Mutex
	nextID    int
	order     []int
	listeners map[int]func()
}

// NewNotifier creates an empty listener registry.
func NewNotifier() *Notifier {
	return &Notifier{listeners: make(map[int]func())}
}

// Subscribe registers a listener and returns its unsubscribe function.
// Unsubscribing twice is a no-op.
func (n *Notifier) Subscribe(listener func()) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.order = append(n.order, id)
	n.listeners[id] = listener

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if _, ok := n.listeners[id]; !ok {
			return
		}
		delete(n.listeners, id)
		for i, v := range n.order {
			if v == id {
				n.order = append(n.order[:i], n.order[i+1:]...)
				break
			}
		}
	}
}

// Notify invokes all registered listeners in registration order. The
// registry lock is not held during the calls, so a listener may subscribe
// or unsubscribe without deadlocking.
func (n *Notifier) Notify() {
	n.mu.Lock()
	current := make([]func(), 0, len(n.order))
	for _, id := range n.order {
		current = append(current, n.listeners[id])
	}
	n.mu.Unlock()

	for _, listener := range current {
		listener()
	}
}

// Count returns the number of registered listeners.
func (n *Notifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}
