package room

import (
	"context"
	"sync"
	"time"

	"swapchess/internal/config"

	"go.uber.org/zap"
)

type registry interface {
	sessions() []*Session
	Delete(ctx context.Context, code string) bool
	reclaimIfAbandoned(ctx context.Context, code string) bool
}

// Reclaimer removes rooms nobody uses: a grace check after each disconnect and
// a periodic sweep of rooms older than the maximum age.
type Reclaimer struct {
	reg registry
	cfg config.LifecycleConfig
	log *zap.Logger
	now func() time.Time

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newReclaimer(reg registry, cfg config.LifecycleConfig, log *zap.Logger, now func() time.Time) *Reclaimer {
	return &Reclaimer{
		reg:    reg,
		cfg:    cfg,
		log:    log,
		now:    now,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule (re)arms the grace check for a room.
func (r *Reclaimer) Schedule(code string) {
	if r.cfg.GraceInterval <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[code]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(r.cfg.GraceInterval, func() {
		r.mu.Lock()
		if r.timers[code] == t {
			delete(r.timers, code)
		}
		r.mu.Unlock()
		r.reg.reclaimIfAbandoned(context.Background(), code)
	})
	r.timers[code] = t
}

// Cancel drops a pending grace check, if any.
func (r *Reclaimer) Cancel(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[code]; ok {
		t.Stop()
		delete(r.timers, code)
	}
}

// Pending reports whether a grace check is armed for code.
func (r *Reclaimer) Pending(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.timers[code]
	return ok
}

// Sweep deletes every room created more than MaxAge before now and returns
// how many went.
func (r *Reclaimer) Sweep(ctx context.Context, now time.Time) int {
	if r.cfg.MaxAge <= 0 {
		return 0
	}
	n := 0
	for _, s := range r.reg.sessions() {
		if now.Sub(s.CreatedAt) <= r.cfg.MaxAge {
			continue
		}
		if r.reg.Delete(ctx, s.Code) {
			r.log.Info("room_reclaimed", zap.String("room", s.Code), zap.String("reason", "stale"))
			n++
		}
	}
	return n
}

// Run sweeps on every SweepInterval until ctx is done, then stops all grace
// timers.
func (r *Reclaimer) Run(ctx context.Context) {
	if r.cfg.SweepInterval <= 0 {
		<-ctx.Done()
		r.stopAll()
		return
	}
	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.stopAll()
			return
		case <-ticker.C:
			if n := r.Sweep(ctx, r.now()); n > 0 {
				r.log.Debug("sweep_done", zap.Int("removed", n))
			}
		}
	}
}

func (r *Reclaimer) stopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for code, t := range r.timers {
		t.Stop()
		delete(r.timers, code)
	}
}
