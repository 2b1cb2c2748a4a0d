package interpreter

import "sync"

// Reservations the load-reserved address set shared by every hart of a
// machine. Entries are keyed by address only.
type Reservations struct {
	mu  sync.Mutex
	set map[uint64]struct{}
}

func NewReservations() *Reservations {
	return &Reservations{set: make(map[uint64]struct{})}
}

// Reserve records a reservation; reserving an address twice keeps one entry
func (r *Reservations) Reserve(address uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.set[address] = struct{}{}
}

// Len number of outstanding reservations
func (r *Reservations) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.set)
}

// Conditional consumes the reservation of address and runs store while
// holding the set. It reports false without calling store when there is no
// reservation.
func (r *Reservations) Conditional(address uint64, store func() error) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.set[address]; !ok {
		return false, nil
	}
	delete(r.set, address)
	return true, store()
}

// Atomically runs a read-modify-write sequence excluding other harts' atomics
func (r *Reservations) Atomically(f func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return f()
}
