// Package idgen produces collision-resistant local identifiers for entities
// created while offline. It deliberately avoids crypto/rand so it keeps
// working where no secure random source is available.
package idgen

import (
	"math/rand/v2"
	"strconv"
	"sync"
	"time"
)

const (
	counterModulo = 1_000_000
	maxAttempts   = 10

	// defaultMaxIssued при превышении множество выданных id усекается
	// до defaultKeepIssued самых свежих значений.
	defaultMaxIssued  = 10_000
	defaultKeepIssued = 5_000

	fragmentSpace = 36 * 36 * 36 * 36 * 36 * 36 // шесть символов base36
)

// Generator issues unique identifiers. It is safe for concurrent use.
type Generator struct {
	now       func() time.Time
	rnd       *rand.Rand
	issued    map[string]struct{}
	order     []string
	counter   int
	maxIssued int
	keep      int
	mu        sync.Mutex
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithSource overrides the random source.
func WithSource(src rand.Source) Option {
	return func(g *Generator) { g.rnd = rand.New(src) }
}

// WithHistory bounds the set of remembered ids: once it grows past max it is
// trimmed to the keep most recent entries.
func WithHistory(maxIssued, keep int) Option {
	return func(g *Generator) {
		if maxIssued > 0 && keep > 0 && keep <= maxIssued {
			g.maxIssued = maxIssued
			g.keep = keep
		}
	}
}

// NewGenerator creates a Generator seeded from the wall clock.
func NewGenerator(opts ...Option) *Generator {
	seed := uint64(time.Now().UnixNano())
	g := &Generator{
		now:       time.Now,
		rnd:       rand.New(rand.NewPCG(seed, seed>>1|1)),
		issued:    make(map[string]struct{}),
		maxIssued: defaultMaxIssued,
		keep:      defaultKeepIssued,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a new identifier of the form
// <ms base36>-<counter base36>-<random><random>.
//
// An id already issued by this generator is regenerated up to 10 times; after
// that a raw timestamp and a fresh random fragment are appended so the call
// always terminates.
func (g *Generator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var id string
	for attempt := 1; ; attempt++ {
		ms := g.now().UnixMilli()
		g.counter = (g.counter + 1) % counterModulo

		id = strconv.FormatInt(ms, 36) + "-" +
			strconv.FormatInt(int64(g.counter), 36) + "-" +
			g.fragment() + g.fragment()

		if _, taken := g.issued[id]; !taken {
			break
		}

		if attempt >= maxAttempts {
			// Последний шанс: гарантированно новый суффикс
			id = id + "-" + strconv.FormatInt(g.now().UnixMilli(), 10) + "-" + g.fragment() + g.fragment()
			break
		}
	}

	g.remember(id)
	return id
}

func (g *Generator) fragment() string {
	return strconv.FormatUint(g.rnd.Uint64()%fragmentSpace, 36)
}

func (g *Generator) remember(id string) {
	g.issued[id] = struct{}{}
	g.order = append(g.order, id)

	if len(g.order) <= g.maxIssued {
		return
	}

	kept := make([]string, g.keep)
	copy(kept, g.order[len(g.order)-g.keep:])
	g.order = kept
	g.issued = make(map[string]struct{}, len(kept))
	for _, k := range kept {
		g.issued[k] = struct{}{}
	}
}

var defaultGenerator = NewGenerator()

// New returns an identifier from the process-wide generator.
func New() string {
	return defaultGenerator.Generate()
}
