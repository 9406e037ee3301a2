package table

import "sync"

// ScrollThreshold is the largest number of data rows shown without a
// scrollbar.
const ScrollThreshold = 10

type ScrollState int

const (
	Compact ScrollState = iota
	Scrollable
)

func (s ScrollState) String() string {
	if s == Scrollable {
		return "scrollable"
	}
	return "compact"
}

// StateFor returns Scrollable when rows exceeds ScrollThreshold.
func StateFor(rows int) ScrollState {
	if rows > ScrollThreshold {
		return Scrollable
	}
	return Compact
}

// ScrollController follows a Renderer and keeps the scroll state in line
// with the number of rendered rows.
type ScrollController struct {
	mu    sync.RWMutex
	state ScrollState
}

// NewScrollController computes the initial state from the rows r already
// holds and subscribes to later renders.
func NewScrollController(r *Renderer) *ScrollController {
	c := &ScrollController{}
	c.Update(r.Table().Len())
	r.Subscribe(c.Update)
	return c
}

func (c *ScrollController) Update(rows int) {
	c.mu.Lock()
	c.state = StateFor(rows)
	c.mu.Unlock()
}

func (c *ScrollController) State() ScrollState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}
