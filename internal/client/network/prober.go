package network

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/taskkeeper/internal/observer"
)

// Pinger checks reachability of the remote side.
type Pinger interface {
	Ping(ctx context.Context) error
}

const (
	defaultProbeInterval = 15 * time.Second
	defaultProbeTimeout  = 5 * time.Second
)

// Prober derives connectivity from periodic reachability checks and fires
// listeners only on transitions.
type Prober struct {
	pinger    Pinger
	logger    *slog.Logger
	listeners observer.Registry[State]
	connType  string
	interval  time.Duration
	timeout   time.Duration
	state     State
	probed    bool
	mu        sync.Mutex
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) ProberOption {
	return func(p *Prober) { p.interval = d }
}

// WithTimeout sets the timeout of a single check.
func WithTimeout(d time.Duration) ProberOption {
	return func(p *Prober) { p.timeout = d }
}

// WithConnectionType sets the connection type reported while connected.
func WithConnectionType(t string) ProberOption {
	return func(p *Prober) { p.connType = t }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ProberOption {
	return func(p *Prober) { p.logger = logger }
}

// NewProber creates a Prober over pinger. The initial state is disconnected.
func NewProber(pinger Pinger, opts ...ProberOption) *Prober {
	p := &Prober{
		pinger:   pinger,
		logger:   slog.Default(),
		interval: defaultProbeInterval,
		timeout:  defaultProbeTimeout,
		connType: "remote",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Current returns the last observed state, probing once if nothing was
// observed yet.
func (p *Prober) Current(ctx context.Context) (State, error) {
	p.mu.Lock()
	probed, state := p.probed, p.state
	p.mu.Unlock()

	if !probed {
		return p.Probe(ctx), nil
	}
	return state, nil
}

// Subscribe registers fn for transitions.
func (p *Prober) Subscribe(fn func(State)) func() {
	return p.listeners.Add(fn)
}

// Probe runs one reachability check and notifies listeners if the
// connectivity flag changed.
func (p *Prober) Probe(ctx context.Context) State {
	checkCtx, cancel := context.WithTimeout(ctx, p.timeout)
	err := p.pinger.Ping(checkCtx)
	cancel()

	next := State{IsConnected: err == nil}
	if next.IsConnected {
		next.ConnectionType = p.connType
	}

	p.mu.Lock()
	changed := !p.probed || p.state.IsConnected != next.IsConnected
	first := !p.probed
	p.state = next
	p.probed = true
	p.mu.Unlock()

	if err != nil {
		p.logger.Debug("Remote is unreachable", "error", err)
	}

	// Первая проверка уведомляет только о появлении связи:
	// начальное состояние считается отключенным
	if changed && !(first && !next.IsConnected) {
		p.logger.Info("Connectivity changed", "connected", next.IsConnected)
		p.listeners.Notify(next)
	}
	return next
}

// Run polls until ctx is cancelled.
func (p *Prober) Run(ctx context.Context) {
	p.Probe(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Probe(ctx)
		}
	}
}

var _ Monitor = (*Prober)(nil)
