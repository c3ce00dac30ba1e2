package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursehub-web/internal/models"
	"github.com/noah-isme/coursehub-web/internal/session"
)

func newRegistry(storage session.Storage) *SessionRegistry {
	return NewSessionRegistry(SessionRegistryConfig{
		Storage:     storage,
		Namespacer:  session.NewNamespacer("secret"),
		API:         &fakeAuthAPI{},
		Metrics:     NewMetricsService(),
		TTL:         time.Hour,
		IdleTimeout: time.Minute,
	})
}

func TestRegistryReusesControllers(t *testing.T) {
	r := newRegistry(session.NewMemoryStorage())
	a := r.Controller("sid-a")
	assert.Same(t, a, r.Controller("sid-a"))
	assert.NotSame(t, a, r.Controller("sid-b"))
	assert.Equal(t, 2, r.Len())
	assert.Len(t, r.Ref("sid-a"), 12)
}

func TestRegistrySweepEvictsIdleControllers(t *testing.T) {
	storage := session.NewMemoryStorage()
	r := newRegistry(storage)
	now := time.Now()
	r.now = func() time.Time { return now }

	idle := r.Controller("idle")
	<-idle.Initialize(context.Background())
	busy := r.Controller("busy")
	_ = busy

	now = now.Add(2 * time.Minute)
	r.Controller("fresh")

	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 2, r.Len())
	assert.NotSame(t, idle, r.Controller("idle"))
}

func TestRegistryKeepsSessionAcrossEviction(t *testing.T) {
	storage := session.NewMemoryStorage()
	r := newRegistry(storage)
	now := time.Now()
	r.now = func() time.Time { return now }

	namespace := session.NewNamespacer("secret").Namespace("sid")
	store := session.NewStore(storage, namespace, time.Hour)
	require.NoError(t, store.SetSession(context.Background(), "T1", models.User{ID: "u1", Role: "ADMIN"}))

	first := r.Controller("sid")
	<-first.Initialize(context.Background())
	require.True(t, first.IsAdmin())

	now = now.Add(2 * time.Minute)
	require.Equal(t, 1, r.Sweep())

	second := r.Controller("sid")
	<-second.Initialize(context.Background())
	assert.True(t, second.IsAdmin())
}

func TestRegistryRunStopsWithContext(t *testing.T) {
	r := newRegistry(session.NewMemoryStorage())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, 5*time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run did not stop")
	}
}
