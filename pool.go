package runekit

import "sync"

// GridPool recycles TerminalGrid instances of a fixed size, avoiding an
// allocation per frame for callers that redraw at a steady size (the
// common case).
type GridPool struct {
	width, height int
	pool          sync.Pool
}

// NewGridPool creates a pool of width x height grids.
func NewGridPool(width, height int) *GridPool {
	p := &GridPool{width: width, height: height}
	p.pool.New = func() any { return NewGrid(p.width, p.height) }
	return p
}

// Get returns a cleared grid of the pool's configured size, either reused
// from the pool or freshly allocated.
func (p *GridPool) Get() *TerminalGrid {
	g := p.pool.Get().(*TerminalGrid)
	if g.width != p.width || g.height != p.height {
		return NewGrid(p.width, p.height)
	}
	return g
}

// Put returns g to the pool for reuse, clearing its contents first. Grids
// of the wrong size are discarded rather than pooled.
func (p *GridPool) Put(g *TerminalGrid) {
	if g == nil || g.width != p.width || g.height != p.height {
		return
	}
	g.Clear()
	p.pool.Put(g)
}
