// Package broadcast tracks open server-push connections and fans the launch
// video URL out to them.
package broadcast

import (
	"context"
	"log"
	"sync"
	"time"

	"book-order-service/internal/domain"
)

const (
	DefaultHeartbeat = 30 * time.Second
	DefaultBuffer    = 16
)

// SettingSource returns the current admin setting, or nil when none has been
// saved.
type SettingSource interface {
	Current(ctx context.Context) (*domain.AdminSetting, error)
}

// Channel is one open connection. The transport drains Events until Done is
// closed.
type Channel struct {
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once

	// mu orders URL updates against the connect-time seed.
	mu      sync.Mutex
	updated bool
}

func newChannel(buffer int) *Channel {
	return &Channel{
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
}

func (c *Channel) Events() <-chan Event {
	return c.events
}

func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// push never blocks. It fails when the channel is closed or its queue is full.
func (c *Channel) push(e Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.events <- e:
		return true
	default:
		return false
	}
}

func (c *Channel) pushUpdate(e Event, seed bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seed && c.updated {
		return true
	}
	c.updated = true
	return c.push(e)
}

func (c *Channel) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

type Registry struct {
	mu       sync.RWMutex
	channels map[*Channel]struct{}
	closed   bool
	wg       sync.WaitGroup

	settings  SettingSource
	heartbeat time.Duration
	buffer    int
	now       func() time.Time
}

type Option func(*Registry)

func WithHeartbeat(d time.Duration) Option {
	return func(r *Registry) { r.heartbeat = d }
}

func WithBuffer(n int) Option {
	return func(r *Registry) { r.buffer = n }
}

func NewRegistry(settings SettingSource, opts ...Option) *Registry {
	r := &Registry{
		channels:  make(map[*Channel]struct{}),
		settings:  settings,
		heartbeat: DefaultHeartbeat,
		buffer:    DefaultBuffer,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register tracks a new channel and queues the connected event. The current
// setting is pushed asynchronously and heartbeats start. Cancelling ctx
// unregisters the channel.
func (r *Registry) Register(ctx context.Context) *Channel {
	ch := newChannel(r.buffer)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		ch.close()
		return ch
	}
	r.channels[ch] = struct{}{}
	r.wg.Add(2)
	r.mu.Unlock()

	ch.push(Event{
		Type:      EventConnected,
		Message:   "SSE connection established",
		Timestamp: r.now(),
	})

	go r.seed(ctx, ch)
	go r.keepAlive(ctx, ch)

	return ch
}

// seed gives up on the lookup once the channel is closed.
func (r *Registry) seed(ctx context.Context, ch *Channel) {
	defer r.wg.Done()
	if r.settings == nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-ch.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	setting, err := r.settings.Current(ctx)
	if err != nil {
		log.Printf("stream: initial video URL lookup failed: %v", err)
		return
	}
	if setting == nil {
		return
	}

	ev := Event{Type: EventURLUpdate, URL: setting.YoutubeURL, Timestamp: r.now()}
	if !ch.pushUpdate(ev, true) {
		r.Unregister(ch)
	}
}

func (r *Registry) keepAlive(ctx context.Context, ch *Channel) {
	defer r.wg.Done()
	defer r.Unregister(ch)

	ticker := time.NewTicker(r.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ch.done:
			return
		case <-ticker.C:
			if !ch.push(Event{Type: EventHeartbeat, Timestamp: r.now()}) {
				log.Printf("stream: heartbeat failed, dropping connection")
				return
			}
		}
	}
}

// Unregister stops tracking ch and closes it. Safe to call more than once.
func (r *Registry) Unregister(ch *Channel) {
	r.mu.Lock()
	delete(r.channels, ch)
	r.mu.Unlock()

	ch.close()
}

// Broadcast pushes the URL to every tracked channel and drops the ones whose
// push failed. It returns the number of channels that accepted the update.
func (r *Registry) Broadcast(url *string) int {
	if url != nil {
		u := *url
		url = &u
	}
	ev := Event{Type: EventURLUpdate, URL: url, Timestamp: r.now()}

	r.mu.RLock()
	snapshot := make([]*Channel, 0, len(r.channels))
	for ch := range r.channels {
		snapshot = append(snapshot, ch)
	}
	r.mu.RUnlock()

	delivered := 0
	var failed []*Channel
	for _, ch := range snapshot {
		if ch.pushUpdate(ev, false) {
			delivered++
		} else {
			failed = append(failed, ch)
		}
	}

	for _, ch := range failed {
		r.Unregister(ch)
	}
	if len(failed) > 0 {
		log.Printf("stream: dropped %d unresponsive connections", len(failed))
	}

	return delivered
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}

// Close unregisters every channel, waits for the seed and heartbeat goroutines
// to exit and rejects further registrations.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	channels := r.channels
	r.channels = make(map[*Channel]struct{})
	r.mu.Unlock()

	for ch := range channels {
		ch.close()
	}
	r.wg.Wait()
}
