// Package workerpool provides the shared execution slots used by the cut
// and upload stages. A host process builds one Manager at startup and
// injects it everywhere; concurrent runs share the same pools, which caps
// total trim/upload concurrency across simultaneous requests.
package workerpool

import (
	"math"
	"os"
	"runtime"
	"strconv"
	"sync"
	"time"
)

const (
	minWorkers = 2
	maxWorkers = 48

	// EnvMaxWorkers overrides the computed pool size for both pools.
	EnvMaxWorkers = "SHOTCUT_MAX_WORKERS"
)

// DefaultSize returns clamp(round(logicalCPUs*0.6), 2, 48), honoring the
// SHOTCUT_MAX_WORKERS override.
func DefaultSize() int {
	size := SizeFor(runtime.NumCPU())
	if env := os.Getenv(EnvMaxWorkers); env != "" {
		if n, err := strconv.Atoi(env); err == nil && n > 0 {
			size = n
		}
	}
	return size
}

// SizeFor computes the pool size for a given logical CPU count.
func SizeFor(cpus int) int {
	if cpus <= 0 {
		cpus = 4
	}
	size := int(math.Round(float64(cpus) * 0.6))
	if size < minWorkers {
		size = minWorkers
	}
	if size > maxWorkers {
		size = maxWorkers
	}
	return size
}

// Pool is a fixed set of workers draining a task queue. Submit is safe for
// concurrent callers; tasks from interleaved runs share the same workers.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup
	once  sync.Once
	done  chan struct{}
	size  int
}

func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		tasks: make(chan func()),
		done:  make(chan struct{}),
		size:  size,
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for task := range p.tasks {
				task()
			}
		}()
	}
	return p
}

func (p *Pool) Size() int { return p.size }

// Submit queues a task, blocking until a worker picks it up. Submitting to
// a closed pool panics; the host must not submit after Close.
func (p *Pool) Submit(task func()) {
	p.tasks <- task
}

// Close stops intake and waits up to wait for in-flight tasks to finish.
// It returns false when the deadline expires with work still running; the
// single background waiter then lives until the stuck tasks return, and a
// later Close call observes their completion.
func (p *Pool) Close(wait time.Duration) bool {
	p.once.Do(func() {
		close(p.tasks)
		go func() {
			p.wg.Wait()
			close(p.done)
		}()
	})

	select {
	case <-p.done:
		return true
	case <-time.After(wait):
		return false
	}
}

// Manager holds the two process-wide pools: one sized for CPU-bound trim
// work and one for IO-bound uploads.
type Manager struct {
	cpu *Pool
	io  *Pool
}

func NewManager(cpuSize, ioSize int) *Manager {
	return &Manager{
		cpu: NewPool(cpuSize),
		io:  NewPool(ioSize),
	}
}

func (m *Manager) CPU() *Pool { return m.cpu }
func (m *Manager) IO() *Pool  { return m.io }

// Shutdown tears both pools down with a bounded wait each. Hosts call this
// once, deterministically, before exit.
func (m *Manager) Shutdown(wait time.Duration) bool {
	ok := m.cpu.Close(wait)
	return m.io.Close(wait) && ok
}
