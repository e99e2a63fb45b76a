// Package sysmon samples host CPU and memory usage around a run and reports
// how much memory can still be allocated.
package sysmon

import (
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	xcpu "golang.org/x/sys/cpu"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent     float64 // 0.0 .. 100.0
	MemPercent     float64 // 0.0 .. 100.0
	AvailableBytes uint64  // memory the OS reports as available, 0 if unknown
}

// Sample collects a single system-wide CPU and memory snapshot.
// CPU uses interval=0 (delta since last call). Fields are zero on error.
func Sample() Stats {
	var s Stats
	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		s.CPUPercent = pcts[0]
	}
	if vmem, err := mem.VirtualMemory(); err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
		s.AvailableBytes = vmem.Available
	}
	return s
}

// AvailableMemory returns the bytes the OS reports as available, or 0 when
// the figure cannot be read.
func AvailableMemory() uint64 {
	vmem, err := mem.VirtualMemory()
	if err != nil || vmem == nil {
		return 0
	}
	return vmem.Available
}

// Host describes the machine the benchmark runs on.
type Host struct {
	LogicalCPUs  int
	PhysicalCPUs int // 0 if unknown
	ModelName    string
	Features     []string
}

// DescribeHost gathers CPU counts, the model name and the vector extensions
// relevant to the kernel loop.
func DescribeHost() Host {
	h := Host{LogicalCPUs: runtime.NumCPU(), Features: CPUFeatures()}
	if n, err := cpu.Counts(false); err == nil {
		h.PhysicalCPUs = n
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		h.ModelName = infos[0].ModelName
	}
	return h
}

// CPUFeatures lists the SIMD and FMA extensions of the current CPU.
func CPUFeatures() []string {
	var f []string
	switch runtime.GOARCH {
	case "amd64", "386":
		add := func(ok bool, name string) {
			if ok {
				f = append(f, name)
			}
		}
		add(xcpu.X86.HasSSE2, "sse2")
		add(xcpu.X86.HasAVX, "avx")
		add(xcpu.X86.HasAVX2, "avx2")
		add(xcpu.X86.HasFMA, "fma")
		add(xcpu.X86.HasAVX512F, "avx512f")
	case "arm64":
		if xcpu.ARM64.HasASIMD {
			f = append(f, "asimd")
		}
		if xcpu.ARM64.HasSVE {
			f = append(f, "sve")
		}
	}
	return f
}
