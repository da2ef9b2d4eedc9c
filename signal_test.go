// FILE: lixenwraith/layerconf/signal_test.go
package layerconf

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignal(t *testing.T) {
	t.Run("ZeroValueNotifies", func(t *testing.T) {
		var s Signal
		assert.NotPanics(t, s.Notify)
		assert.Equal(t, 0, s.Len())
	})

	t.Run("SubscriptionOrder", func(t *testing.T) {
		var s Signal
		var got []int
		s.Subscribe(func() { got = append(got, 1) })
		s.Subscribe(func() { got = append(got, 2) })
		s.Subscribe(func() { got = append(got, 3) })

		s.Notify()
		assert.Equal(t, []int{1, 2, 3}, got)
	})

	t.Run("NilSubscriber", func(t *testing.T) {
		var s Signal
		cancel := s.Subscribe(nil)
		assert.NotPanics(t, cancel)
		assert.Equal(t, 0, s.Len())
	})

	t.Run("CancelFromInsideSubscriber", func(t *testing.T) {
		var s Signal
		calls := 0
		var cancel func()
		cancel = s.Subscribe(func() {
			calls++
			cancel()
		})

		s.Notify()
		s.Notify()
		assert.Equal(t, 1, calls)
		assert.Equal(t, 0, s.Len())
	})

	t.Run("SubscribeDuringNotify", func(t *testing.T) {
		var s Signal
		late := 0
		s.Subscribe(func() {
			if s.Len() == 1 {
				s.Subscribe(func() { late++ })
			}
		})

		s.Notify()
		assert.Equal(t, 0, late, "subscriber added mid-notify waits for the next round")
		s.Notify()
		assert.Equal(t, 1, late)
	})

	t.Run("NestedNotify", func(t *testing.T) {
		var s Signal
		depth, calls := 0, 0
		s.Subscribe(func() {
			calls++
			if depth == 0 {
				depth++
				s.Notify()
			}
		})

		s.Notify()
		assert.Equal(t, 2, calls)
	})

	t.Run("PanicIsLogged", func(t *testing.T) {
		var buf bytes.Buffer
		s := Signal{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
		after := false
		s.Subscribe(func() { panic("broken") })
		s.Subscribe(func() { after = true })

		assert.NotPanics(t, s.Notify)
		assert.True(t, after)
		assert.Contains(t, buf.String(), "broken")
	})

	t.Run("ConcurrentSubscribeAndNotify", func(t *testing.T) {
		var s Signal
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				cancel := s.Subscribe(func() {})
				cancel()
			}()
			go func() {
				defer wg.Done()
				s.Notify()
			}()
		}
		wg.Wait()
		assert.Equal(t, 0, s.Len())
	})
}
