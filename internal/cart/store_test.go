package cart

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestStore_LoadSave(t *testing.T) {
	store := NewStore(time.Hour, zerolog.Nop())

	c := store.Load("session-1")
	assert.True(t, c.IsEmpty())

	c.Set(1, 2)
	// Not visible until saved
	assert.True(t, store.Load("session-1").IsEmpty())

	store.Save("session-1", c)
	assert.Equal(t, 2, store.Load("session-1").Quantity(1))
	assert.True(t, store.Load("session-2").IsEmpty())

	// The stored cart is a copy
	c.Set(1, 9)
	assert.Equal(t, 2, store.Load("session-1").Quantity(1))

	// Last write wins
	other := New()
	other.Set(3, 1)
	store.Save("session-1", other)
	loaded := store.Load("session-1")
	assert.Equal(t, 0, loaded.Quantity(1))
	assert.Equal(t, 1, loaded.Quantity(3))

	store.Delete("session-1")
	assert.Equal(t, 0, store.Len())
}

func TestStore_DefaultMaxIdle(t *testing.T) {
	store := NewStore(0, zerolog.Nop())
	store.Save("s", FromLines([]Line{{ProductID: 1, Quantity: 1}}))

	assert.Equal(t, 1, store.Load("s").Quantity(1))
}

func TestStore_ExpiresIdleCarts(t *testing.T) {
	store := NewStore(100*time.Millisecond, zerolog.Nop())

	store.Save("old", FromLines([]Line{{ProductID: 1, Quantity: 1}}))
	time.Sleep(150 * time.Millisecond)
	store.Save("fresh", FromLines([]Line{{ProductID: 2, Quantity: 1}}))

	assert.True(t, store.Load("old").IsEmpty())

	store.Sweep()

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 1, store.Load("fresh").Quantity(2))
}

func TestStore_LoadKeepsCartAlive(t *testing.T) {
	store := NewStore(200*time.Millisecond, zerolog.Nop())
	store.Save("s", FromLines([]Line{{ProductID: 1, Quantity: 3}}))

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 3, store.Load("s").Quantity(1))

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 3, store.Load("s").Quantity(1), "load resets the idle timer")
}

func TestStore_RunRemovesExpiredCarts(t *testing.T) {
	store := NewStore(50*time.Millisecond, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		store.Run(ctx)
		close(done)
	}()

	store.Save("s", FromLines([]Line{{ProductID: 1, Quantity: 1}}))
	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 10*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("store did not stop after cancellation")
	}
}
