package sysinfo

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sys/unix"

	"modkit/internal/module"
)

// sampler is the shared loop shape of every collector: sample immediately,
// then on each tick until cancelled.
func sample(ctx context.Context, interval time.Duration, collect func()) error {
	collect()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			collect()
		case <-ctx.Done():
			return nil
		}
	}
}

type cpuCollector struct {
	module   *Module
	interval time.Duration
}

func (c *cpuCollector) Name() string                      { return "cpu_collector" }
func (c *cpuCollector) Init(ctx context.Context) error    { return nil }
func (c *cpuCollector) Stop(ctx context.Context) error    { return nil }
func (c *cpuCollector) Cleanup(ctx context.Context) error { return nil }

func (c *cpuCollector) Run(ctx context.Context) error {
	return sample(ctx, c.interval, func() {
		c.module.setSection("cpu", map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"gomaxprocs": runtime.GOMAXPROCS(0),
			"num_cgo":    runtime.NumCgoCall(),
		})
	})
}

type memoryCollector struct {
	module   *Module
	interval time.Duration
}

func (c *memoryCollector) Name() string                      { return "memory_collector" }
func (c *memoryCollector) Init(ctx context.Context) error    { return nil }
func (c *memoryCollector) Stop(ctx context.Context) error    { return nil }
func (c *memoryCollector) Cleanup(ctx context.Context) error { return nil }

func (c *memoryCollector) Run(ctx context.Context) error {
	return sample(ctx, c.interval, func() {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)
		c.module.setSection("memory", map[string]any{
			"alloc_bytes":       stats.Alloc,
			"sys_bytes":         stats.Sys,
			"heap_objects":      stats.HeapObjects,
			"gc_cycles":         stats.NumGC,
			"last_gc_pause_ns":  stats.PauseNs[(stats.NumGC+255)%256],
			"total_alloc_bytes": stats.TotalAlloc,
		})
	})
}

type diskCollector struct {
	module   *Module
	interval time.Duration
	path     string
}

func (c *diskCollector) Name() string                      { return "disk_collector" }
func (c *diskCollector) Init(ctx context.Context) error    { return nil }
func (c *diskCollector) Stop(ctx context.Context) error    { return nil }
func (c *diskCollector) Cleanup(ctx context.Context) error { return nil }

func (c *diskCollector) Run(ctx context.Context) error {
	return sample(ctx, c.interval, func() {
		var stat unix.Statfs_t
		if err := unix.Statfs(c.path, &stat); err != nil {
			return
		}
		block := uint64(stat.Bsize)
		c.module.setSection("disk", map[string]any{
			"path":        c.path,
			"total_bytes": stat.Blocks * block,
			"free_bytes":  stat.Bfree * block,
			"avail_bytes": stat.Bavail * block,
		})
	})
}

var (
	_ module.Component = (*cpuCollector)(nil)
	_ module.Component = (*memoryCollector)(nil)
	_ module.Component = (*diskCollector)(nil)
)
