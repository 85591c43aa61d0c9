package workerpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		cpus int
		want int
	}{
		{cpus: 1, want: 2},   // floor clamp
		{cpus: 2, want: 2},   // round(1.2) = 1 -> clamped to 2
		{cpus: 4, want: 2},   // round(2.4) = 2
		{cpus: 8, want: 5},   // round(4.8) = 5
		{cpus: 16, want: 10},
		{cpus: 32, want: 19},
		{cpus: 96, want: 48}, // round(57.6) -> ceiling clamp
		{cpus: 0, want: 2},   // unknown CPU count falls back to 4 cores
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SizeFor(tc.cpus), "cpus=%d", tc.cpus)
	}
}

func TestDefaultSize_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxWorkers, "7")
	assert.Equal(t, 7, DefaultSize())

	t.Setenv(EnvMaxWorkers, "not-a-number")
	assert.Positive(t, DefaultSize()) // invalid override is ignored
}

func TestPool_RunsAllTasks(t *testing.T) {
	t.Parallel()

	p := NewPool(3)
	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			ran.Add(1)
		})
	}
	wg.Wait()
	assert.Equal(t, int32(20), ran.Load())
	require.True(t, p.Close(time.Second))
}

func TestPool_BoundsConcurrency(t *testing.T) {
	t.Parallel()

	const size = 2
	p := NewPool(size)
	defer p.Close(time.Second)

	var active, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go p.Submit(func() {
			defer wg.Done()
			cur := active.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			active.Add(-1)
		})
	}
	wg.Wait()
	assert.LessOrEqual(t, peak.Load(), int32(size))
	assert.Positive(t, peak.Load())
}

func TestPool_SharedAcrossConcurrentCallers(t *testing.T) {
	t.Parallel()

	// Two "runs" submitting into one pool: every task from both completes.
	p := NewPool(2)
	defer p.Close(time.Second)

	var done atomic.Int32
	var wg sync.WaitGroup
	for run := 0; run < 2; run++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var inner sync.WaitGroup
			for i := 0; i < 8; i++ {
				inner.Add(1)
				p.Submit(func() {
					defer inner.Done()
					done.Add(1)
				})
			}
			inner.Wait()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(16), done.Load())
}

func TestPool_CloseTimesOutOnStuckTask(t *testing.T) {
	t.Parallel()

	p := NewPool(1)
	release := make(chan struct{})
	started := make(chan struct{})
	p.Submit(func() {
		close(started)
		<-release
	})
	<-started

	assert.False(t, p.Close(20*time.Millisecond))

	// Releasing the task lets a later Close observe completion; repeated
	// Close calls reuse the same waiter instead of stacking new ones.
	close(release)
	assert.True(t, p.Close(time.Second))
	assert.True(t, p.Close(time.Second))
}

func TestManager_Shutdown(t *testing.T) {
	t.Parallel()

	m := NewManager(2, 3)
	assert.Equal(t, 2, m.CPU().Size())
	assert.Equal(t, 3, m.IO().Size())

	var n atomic.Int32
	var wg sync.WaitGroup
	wg.Add(2)
	m.CPU().Submit(func() { defer wg.Done(); n.Add(1) })
	m.IO().Submit(func() { defer wg.Done(); n.Add(1) })
	wg.Wait()

	require.True(t, m.Shutdown(time.Second))
	assert.Equal(t, int32(2), n.Load())
}
