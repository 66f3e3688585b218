package service

import (
	"context"
	"sync"
	"time"

	bridge "aircon_bridge"
	"aircon_bridge/internal/logger"

	"github.com/google/uuid"
)

const (
	// DefaultRefreshInterval is the background poll period.
	DefaultRefreshInterval = 30 * time.Second

	// defaultFetchTimeout bounds one fetch attempt so an unreachable unit
	// never leaves a connection open indefinitely.
	defaultFetchTimeout = 10 * time.Second

	// Buffered so notification never blocks the coordinator; a consumer
	// that hasn't drained simply misses intermediate snapshots.
	subscriberBuffer = 1
)

// Coordinator owns the single cached DeviceState and the rate-limited fetch
// loop around it. All consumers read through it so the unit sees at most one
// in-flight status request at any time.
type Coordinator struct {
	client  Fetcher
	log     *logger.Logger
	timeout time.Duration

	mu            sync.Mutex
	state         bridge.DeviceState
	hasState      bool
	lastErr       error
	lastRefreshed time.Time
	fetching      bool
	subs          map[string]chan bridge.DeviceState
}

// NewCoordinator builds a coordinator around the given fetcher. A
// non-positive timeout selects the default per-fetch bound.
func NewCoordinator(client Fetcher, timeout time.Duration, log *logger.Logger) *Coordinator {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Coordinator{
		client:  client,
		log:     log,
		timeout: timeout,
		subs:    make(map[string]chan bridge.DeviceState),
	}
}

// Snapshot returns a copy of the most recent successful fetch. The second
// return is false until the first fetch succeeds. Never blocks on an
// in-flight fetch.
func (c *Coordinator) Snapshot() (bridge.DeviceState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.hasState
}

// LastRefreshed reports when the cache was last replaced.
func (c *Coordinator) LastRefreshed() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRefreshed
}

// LastError reports the most recent fetch failure, nil after a success. A
// failure never discards previously cached state; stale-but-available beats
// absent.
func (c *Coordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// RequestRefresh starts a fetch unless one is already in flight, in which
// case the call coalesces onto it and returns false. Callers observe the
// result through Snapshot/LastError or a subscription.
func (c *Coordinator) RequestRefresh() bool {
	c.mu.Lock()
	if c.fetching {
		c.mu.Unlock()
		return false
	}
	c.fetching = true
	c.mu.Unlock()

	go c.fetch()
	return true
}

// Subscribe registers a snapshot channel notified after every successful
// refresh. The returned id releases the subscription via Unsubscribe.
func (c *Coordinator) Subscribe() (string, <-chan bridge.DeviceState) {
	ch := make(chan bridge.DeviceState, subscriberBuffer)
	id := uuid.NewString()
	c.mu.Lock()
	c.subs[id] = ch
	c.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscription. The channel is not closed; readers
// select on their own done signal.
func (c *Coordinator) Unsubscribe(id string) {
	c.mu.Lock()
	delete(c.subs, id)
	c.mu.Unlock()
}

// Run refreshes on a fixed interval until ctx is canceled. This is the sole
// periodic trigger; consumers never poll the device directly.
func (c *Coordinator) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	c.RequestRefresh()

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.RequestRefresh()
		}
	}
}

func (c *Coordinator) fetch() {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	st, err := c.client.FetchState(ctx)

	c.mu.Lock()
	c.fetching = false
	if err != nil {
		c.lastErr = err
		c.mu.Unlock()
		if c.log != nil {
			c.log.Warnw("device_fetch_failed", "err", err)
		}
		return
	}
	c.state = st
	c.hasState = true
	c.lastErr = nil
	c.lastRefreshed = time.Now().UTC()
	subs := make([]chan bridge.DeviceState, 0, len(c.subs))
	for _, ch := range c.subs {
		subs = append(subs, ch)
	}
	c.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- st:
		default:
		}
	}
}
