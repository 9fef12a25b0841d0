// Package observability samples process-level health metrics for the
// heartbeat worker and the inspect tooling.
package observability

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/process"
)

// ProcessStats is one health sample of the running server.
type ProcessStats struct {
	RSSMb      uint64
	CPUPercent float64
	Goroutines int
	HeapMb     uint64
}

// Monitor samples the current process. Construction is done once; the
// gopsutil handle is reused across samples so CPU percentages are
// computed against the previous call.
type Monitor struct {
	proc *process.Process
}

func NewMonitor() (*Monitor, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Monitor{proc: p}, nil
}

func (m *Monitor) Sample() (ProcessStats, error) {
	mem, err := m.proc.MemoryInfo()
	if err != nil {
		return ProcessStats{}, err
	}
	cpu, err := m.proc.CPUPercent()
	if err != nil {
		return ProcessStats{}, err
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return ProcessStats{
		RSSMb:      mem.RSS / 1024 / 1024,
		CPUPercent: cpu,
		Goroutines: runtime.NumGoroutine(),
		HeapMb:     ms.HeapAlloc / 1024 / 1024,
	}, nil
}
