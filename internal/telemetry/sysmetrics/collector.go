// Package sysmetrics periodically samples process and host resource
// usage for long-running Scan calls, logging throughput context
// (CPU, memory, host-wide disk I/O) alongside decode
// progress supplied by the caller.
package sysmetrics

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// Snapshot holds one sampling round's metrics.
type Snapshot struct {
	CPUPercent        float64
	ProcessCPUPercent float64
	IOWaitPercent     float64
	MemoryUsedGB      float64
	MemoryTotalGB     float64
	MemoryPercent     float64
	DiskReadMBps      float64
	DiskWriteMBps     float64
	DiskBusyPercent   float64
	ObjectsDecoded    int64
	Timestamp         time.Time
}

// ProgressFunc reports cumulative entities decoded so far, so a
// Snapshot can be logged alongside throughput rather than bare
// resource usage.
type ProgressFunc func() int64

// Collector periodically samples and logs resource usage during a scan.
type Collector struct {
	interval      time.Duration
	logger        *zap.Logger
	progress      ProgressFunc
	proc          *process.Process
	lastDiskStats map[string]disk.IOCountersStat
	lastDiskTime  time.Time
	lastCPUTimes  cpu.TimesStat
	hasCPUTimes   bool
	mu            sync.RWMutex
	last          *Snapshot
}

// NewCollector builds a Collector. progress may be nil if the caller
// has no running entity count to report.
func NewCollector(interval time.Duration, logger *zap.Logger, progress ProgressFunc) *Collector {
	if interval < time.Second {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	proc, _ := process.NewProcess(int32(os.Getpid()))
	return &Collector{
		interval: interval,
		logger:   logger,
		progress: progress,
		proc:     proc,
	}
}

// Start runs the sampling loop until ctx is cancelled.
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.collect()

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("metrics collection stopped")
			return
		case <-ticker.C:
			c.collect()
		}
	}
}

// Last returns the most recently collected snapshot, or nil if none
// has been taken yet.
func (c *Collector) Last() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

func (c *Collector) collect() {
	snap := &Snapshot{Timestamp: time.Now()}

	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		snap.CPUPercent = cpuPercent[0]
	}
	if c.proc != nil {
		if procCPU, err := c.proc.Percent(0); err == nil {
			snap.ProcessCPUPercent = procCPU
		}
	}
	snap.IOWaitPercent = c.calculateIOWait()

	if vmem, err := mem.VirtualMemory(); err == nil {
		snap.MemoryPercent = vmem.UsedPercent
		snap.MemoryUsedGB = float64(vmem.Used) / (1024 * 1024 * 1024)
		snap.MemoryTotalGB = float64(vmem.Total) / (1024 * 1024 * 1024)
	}

	readRate, writeRate, busyPct := c.calculateDiskMetrics()
	snap.DiskReadMBps = readRate
	snap.DiskWriteMBps = writeRate
	snap.DiskBusyPercent = busyPct

	if c.progress != nil {
		snap.ObjectsDecoded = c.progress()
	}

	c.mu.Lock()
	c.last = snap
	c.mu.Unlock()

	c.logger.Info("decoder resource usage",
		zap.Float64("sys_cpu", snap.CPUPercent),
		zap.Float64("proc_cpu", snap.ProcessCPUPercent),
		zap.Float64("iowait", snap.IOWaitPercent),
		zap.Float64("mem_pct", snap.MemoryPercent),
		zap.Float64("mem_used_gb", snap.MemoryUsedGB),
		zap.Float64("disk_read_mbps", snap.DiskReadMBps),
		zap.Float64("disk_write_mbps", snap.DiskWriteMBps),
		zap.Float64("disk_busy_pct", snap.DiskBusyPercent),
		zap.Int64("objects_decoded", snap.ObjectsDecoded),
	)
}

func (c *Collector) calculateIOWait() float64 {
	times, err := cpu.Times(false)
	if err != nil || len(times) == 0 {
		return 0
	}

	current := times[0]
	if !c.hasCPUTimes {
		c.lastCPUTimes = current
		c.hasCPUTimes = true
		return 0
	}

	last := c.lastCPUTimes
	totalDelta := (current.User - last.User) +
		(current.System - last.System) +
		(current.Idle - last.Idle) +
		(current.Iowait - last.Iowait) +
		(current.Irq - last.Irq) +
		(current.Softirq - last.Softirq) +
		(current.Steal - last.Steal)
	iowaitDelta := current.Iowait - last.Iowait
	c.lastCPUTimes = current

	if totalDelta <= 0 {
		return 0
	}
	return (iowaitDelta / totalDelta) * 100
}

func (c *Collector) calculateDiskMetrics() (readMBps, writeMBps, busyPct float64) {
	counters, err := disk.IOCounters()
	if err != nil {
		return 0, 0, 0
	}

	now := time.Now()
	if c.lastDiskStats == nil {
		c.lastDiskStats = make(map[string]disk.IOCountersStat, len(counters))
		for name, counter := range counters {
			c.lastDiskStats[name] = counter
		}
		c.lastDiskTime = now
		return 0, 0, 0
	}

	elapsed := now.Sub(c.lastDiskTime).Seconds()
	if elapsed < 0.1 {
		return 0, 0, 0
	}
	elapsedMs := elapsed * 1000

	var totalReadDelta, totalWriteDelta, totalIOTimeDelta uint64
	for name, counter := range counters {
		if last, ok := c.lastDiskStats[name]; ok {
			if counter.ReadBytes >= last.ReadBytes {
				totalReadDelta += counter.ReadBytes - last.ReadBytes
			}
			if counter.WriteBytes >= last.WriteBytes {
				totalWriteDelta += counter.WriteBytes - last.WriteBytes
			}
			if counter.IoTime >= last.IoTime {
				totalIOTimeDelta += counter.IoTime - last.IoTime
			}
		}
	}

	c.lastDiskStats = make(map[string]disk.IOCountersStat, len(counters))
	for name, counter := range counters {
		c.lastDiskStats[name] = counter
	}
	c.lastDiskTime = now

	readMBps = float64(totalReadDelta) / elapsed / (1024 * 1024)
	writeMBps = float64(totalWriteDelta) / elapsed / (1024 * 1024)
	if elapsedMs > 0 {
		busyPct = float64(totalIOTimeDelta) / elapsedMs * 100
		if busyPct > 100 {
			busyPct = 100
		}
	}
	return readMBps, writeMBps, busyPct
}
