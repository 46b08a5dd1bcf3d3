package entity

import (
	"fmt"
)

// Handle is a stable reference to an agent in an Arena. A handle becomes invalid once its agent is despawned, even
// if the slot is reused.
type Handle struct {
	Index      uint32
	Generation uint32
}

func (h Handle) String() string {
	return fmt.Sprintf("agent/%d.%d", h.Index, h.Generation)
}

type slot struct {
	agent      Agent
	input      *Input
	generation uint32
	live       bool
}

// Arena stores agents in a slot array indexed by handle. It is not safe for concurrent mutation, but distinct
// handles may be read and written from different goroutines while no agent is spawned or despawned.
type Arena struct {
	slots       []slot
	free        []uint32
	live        int
	navCapacity int
}

// NewArena returns an empty arena. Every agent gets a navigation queue with the given capacity.
func NewArena(navCapacity int) *Arena {
	return &Arena{navCapacity: navCapacity}
}

// Spawn stores a and returns its handle. Freed slots are reused, lowest index first.
func (ar *Arena) Spawn(a Agent) Handle {
	var index uint32
	if n := len(ar.free); n > 0 {
		lowest := 0
		for i := 1; i < n; i++ {
			if ar.free[i] < ar.free[lowest] {
				lowest = i
			}
		}
		index = ar.free[lowest]
		ar.free = append(ar.free[:lowest], ar.free[lowest+1:]...)
	} else {
		index = uint32(len(ar.slots))
		ar.slots = append(ar.slots, slot{})
	}

	s := &ar.slots[index]
	s.generation++
	s.live = true
	a.Handle = Handle{Index: index, Generation: s.generation}
	s.agent = a
	s.input = NewInput(ar.navCapacity)
	ar.live++
	return a.Handle
}

// Despawn removes the agent referenced by h. It reports whether the handle was valid.
func (ar *Arena) Despawn(h Handle) bool {
	s, ok := ar.slot(h)
	if !ok {
		return false
	}
	s.live = false
	s.agent = Agent{}
	s.input = nil
	ar.free = append(ar.free, h.Index)
	ar.live--
	return true
}

// Get returns the agent referenced by h.
func (ar *Arena) Get(h Handle) (*Agent, bool) {
	s, ok := ar.slot(h)
	if !ok {
		return nil, false
	}
	return &s.agent, true
}

// Input returns the movement input of the agent referenced by h.
func (ar *Arena) Input(h Handle) (*Input, bool) {
	s, ok := ar.slot(h)
	if !ok {
		return nil, false
	}
	return s.input, true
}

// Handles returns the handles of all live agents in ascending index order.
func (ar *Arena) Handles() []Handle {
	handles := make([]Handle, 0, ar.live)
	for i := range ar.slots {
		if ar.slots[i].live {
			handles = append(handles, Handle{Index: uint32(i), Generation: ar.slots[i].generation})
		}
	}
	return handles
}

// Len returns the number of live agents.
func (ar *Arena) Len() int {
	return ar.live
}

func (ar *Arena) slot(h Handle) (*slot, bool) {
	if int(h.Index) >= len(ar.slots) {
		return nil, false
	}
	s := &ar.slots[h.Index]
	if !s.live || s.generation != h.Generation {
		return nil, false
	}
	return s, true
}
