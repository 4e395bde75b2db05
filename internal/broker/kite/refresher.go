package kite

import (
	"context"
	"sync"
	"time"

	"github.com/sandyviper/kite-viper-bot/internal/logger"
)

// Refresher periodically validates the access token in the background.
// Kite access tokens expire every day and cannot be renewed without an
// interactive login, so a failed check surfaces through the callbacks and
// the operator has to re-authenticate.
type Refresher struct {
	auth     *Auth
	interval time.Duration
	log      *logger.Logger

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
	lastCheck time.Time
	lastValid bool
	callbacks []func(valid bool)
}

func NewRefresher(auth *Auth, interval time.Duration, log *logger.Logger) *Refresher {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Refresher{
		auth:     auth,
		interval: interval,
		log:      log,
	}
}

// OnChange registers a callback invoked whenever session validity flips.
func (r *Refresher) OnChange(fn func(valid bool)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks = append(r.callbacks, fn)
}

// Start launches the background check loop. Calling Start twice is a
// no-op.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true
	r.lastValid = true

	go r.loop(ctx)

	if r.log != nil {
		r.log.Info("token refresher started (interval %s)", r.interval)
	}
}

// Stop terminates the loop and waits for it to exit.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel, done := r.cancel, r.done
	r.running = false
	r.mu.Unlock()

	cancel()
	<-done

	if r.log != nil {
		r.log.Info("token refresher stopped")
	}
}

func (r *Refresher) loop(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.check(ctx)
		}
	}
}

// ForceCheck validates the session immediately and reports the result.
func (r *Refresher) ForceCheck(ctx context.Context) bool {
	return r.check(ctx)
}

func (r *Refresher) check(ctx context.Context) bool {
	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	err := r.auth.ValidateSession(checkCtx)
	cancel()

	valid := err == nil

	r.mu.Lock()
	r.lastCheck = time.Now()
	changed := valid != r.lastValid
	r.lastValid = valid
	callbacks := append([]func(bool){}, r.callbacks...)
	r.mu.Unlock()

	if !valid && r.log != nil {
		if IsAuthError(err) {
			r.log.Warning("session expired, manual re-authentication required: %v", err)
		} else {
			r.log.Error("session validation failed: %v", err)
		}
	}

	if changed {
		for _, fn := range callbacks {
			fn(valid)
		}
	}
	return valid
}

// Status reports the last check result for the watchdog and status
// command.
func (r *Refresher) Status() (lastCheck time.Time, valid, running bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastCheck, r.lastValid, r.running
}
