package fake

import (
	"sync"
)

// Resources counts the components allocated and released by a Backend.
type Resources struct {
	locker    sync.Mutex
	allocated map[string]int
	released  map[string]int
}

func (r *Resources) acquire(kind string) {
	r.locker.Lock()
	defer r.locker.Unlock()
	if r.allocated == nil {
		r.allocated = map[string]int{}
	}
	r.allocated[kind]++
}

func (r *Resources) release(kind string) {
	r.locker.Lock()
	defer r.locker.Unlock()
	if r.released == nil {
		r.released = map[string]int{}
	}
	r.released[kind]++
}

// Allocated returns how many components of the kind were ever created.
func (r *Resources) Allocated(kind string) int {
	r.locker.Lock()
	defer r.locker.Unlock()
	return r.allocated[kind]
}

// Live returns the amount of not yet released components, by kind.
func (r *Resources) Live() map[string]int {
	r.locker.Lock()
	defer r.locker.Unlock()
	result := map[string]int{}
	for kind, count := range r.allocated {
		if live := count - r.released[kind]; live != 0 {
			result[kind] = live
		}
	}
	return result
}

func (r *Resources) LiveCount() int {
	var total int
	for _, count := range r.Live() {
		total += count
	}
	return total
}
