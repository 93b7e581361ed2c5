package server

import "sync"

// handoff carries at most one authorization code from the connection handler to the waiting caller.
type handoff struct {
	mu sync.Mutex
	tx chan<- string
	rx <-chan string
}

func newHandoff() *handoff {
	ch := make(chan string, 1)
	return &handoff{tx: ch, rx: ch}
}

// take claims the delivery slot. Only the first caller gets a non-nil sender.
func (h *handoff) take() chan<- string {
	h.mu.Lock()
	defer h.mu.Unlock()

	tx := h.tx
	h.tx = nil
	return tx
}

// received returns the channel the single code arrives on.
func (h *handoff) received() <-chan string {
	return h.rx
}
