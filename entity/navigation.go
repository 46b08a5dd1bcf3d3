package entity

import (
	"iter"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/utils"
)

// NavMode controls what happens when an agent reaches a waypoint.
type NavMode uint8

const (
	// NavNormal waypoints are removed once the agent is within the arrival distance.
	NavNormal NavMode = iota
	// NavLimit waypoints limit the speed so that the agent arrives exactly on the waypoint.
	NavLimit
	// NavCircle waypoints are queued again at the tail once reached, so the route loops.
	NavCircle
)

func (m NavMode) String() string {
	switch m {
	case NavNormal:
		return "normal"
	case NavLimit:
		return "limit"
	case NavCircle:
		return "circle"
	}
	return "unknown"
}

// Waypoint is a world position the agent navigates to.
type Waypoint struct {
	Position mgl32.Vec3
	Mode     NavMode
}

// NavQueue is the ordered waypoint queue of an agent. When full, pushing a waypoint drops the oldest one.
type NavQueue struct {
	queue *utils.CircularQueue[Waypoint]
}

func NewNavQueue(capacity int) *NavQueue {
	return &NavQueue{queue: utils.NewCircularQueue[Waypoint](capacity, nil)}
}

// Push appends a waypoint to the tail of the queue.
func (n *NavQueue) Push(w Waypoint) error {
	return n.queue.Append(w)
}

// Head returns the waypoint the agent is currently moving towards.
func (n *NavQueue) Head() (Waypoint, bool) {
	return n.queue.Peek()
}

// Pop removes the head waypoint.
func (n *NavQueue) Pop() (Waypoint, bool) {
	return n.queue.Pop()
}

// Requeue moves the head waypoint to the tail.
func (n *NavQueue) Requeue() {
	if w, ok := n.queue.Pop(); ok {
		_ = n.queue.Append(w)
	}
}

func (n *NavQueue) Len() int {
	return n.queue.Len()
}

func (n *NavQueue) Clear() {
	n.queue.Clear()
}

// Waypoints iterates the queue from head to tail.
func (n *NavQueue) Waypoints() iter.Seq[Waypoint] {
	return n.queue.Iter()
}
