package kite

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefresherDetectsExpiry(t *testing.T) {
	var mu sync.Mutex
	valid := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ok := valid
		mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"status":"error","message":"Token expired","error_type":"TokenException"}`))
			return
		}
		w.Write([]byte(`{"status":"success","data":{"user_id":"AB1234"}}`))
	}))
	defer srv.Close()

	a := NewAuth("mykey", "mysecret", "atok")
	a.baseURL = srv.URL
	r := NewRefresher(a, time.Hour, nil)

	var flips []bool
	r.OnChange(func(v bool) {
		mu.Lock()
		flips = append(flips, v)
		mu.Unlock()
	})

	ctx := context.Background()
	assert.True(t, r.ForceCheck(ctx))

	mu.Lock()
	valid = false
	mu.Unlock()
	assert.False(t, r.ForceCheck(ctx))

	lastCheck, sessionValid, running := r.Status()
	assert.False(t, lastCheck.IsZero())
	assert.False(t, sessionValid)
	assert.False(t, running)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, flips, 2)
	assert.True(t, flips[0])
	assert.False(t, flips[1])
}

func TestRefresherStartStop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"user_id":"AB1234"}}`))
	}))
	defer srv.Close()

	a := NewAuth("mykey", "mysecret", "atok")
	a.baseURL = srv.URL
	r := NewRefresher(a, 10*time.Millisecond, nil)

	r.Start(context.Background())
	_, _, running := r.Status()
	assert.True(t, running)

	// Second Start is a no-op while running.
	r.Start(context.Background())

	time.Sleep(30 * time.Millisecond)
	r.Stop()
	_, _, running = r.Status()
	assert.False(t, running)
}
