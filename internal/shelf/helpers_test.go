package shelf

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/YelzhanWeb/ckitchens/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newOrder(t testing.TB, name string, temp domain.Temperature) *domain.Order {
	t.Helper()
	return newOrderLife(t, name, temp, 300, 0.5)
}

func newOrderLife(t testing.TB, name string, temp domain.Temperature, shelfLife int, decayRate float64) *domain.Order {
	t.Helper()
	o, err := domain.NewOrder(uuid.New(), name, temp, shelfLife, decayRate)
	require.NoError(t, err)
	return o
}

// recoverError runs f and returns the error it panicked with, if any
func recoverError(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("%v", r)
		}
	}()
	f()
	return nil
}
