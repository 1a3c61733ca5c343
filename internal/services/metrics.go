package services

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

var (
	recordsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "khosta_records_created_total",
		Help: "Records accepted at intake.",
	})
	statusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "khosta_record_status_changes_total",
		Help: "Status transitions recorded in record history.",
	}, []string{"status"})
	visitsLogged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "khosta_visits_logged_total",
		Help: "Visits logged, by visit type.",
	}, []string{"type"})
	loginFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "khosta_login_failures_total",
		Help: "Logins rejected for a wrong password.",
	})
	reportsExported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "khosta_reports_exported_total",
		Help: "Report files rendered, by report type and format.",
	}, []string{"report", "format"})
)

// HostSample is a point-in-time reading of the machine the service runs on.
type HostSample struct {
	CapturedAt        time.Time `json:"capturedAt"`
	ProcessRSSBytes   int64     `json:"processRssBytes"`
	SystemMemoryTotal int64     `json:"systemMemoryTotalBytes"`
	SystemMemoryUsed  int64     `json:"systemMemoryUsedBytes"`
	DiskTotalBytes    int64     `json:"diskTotalBytes"`
	DiskUsedBytes     int64     `json:"diskUsedBytes"`
	DiskUsedPercent   float64   `json:"diskUsedPercent"`
	ProcessCpuLoad    float64   `json:"processCpuLoad"`
	SystemCpuLoad     float64   `json:"systemCpuLoad"`
}

// CaptureHost reads memory, CPU and the disk holding diskPath. Readings
// that fail are left at zero.
func CaptureHost(diskPath string) HostSample {
	sample := HostSample{CapturedAt: time.Now().UTC()}
	if memStat, err := mem.VirtualMemory(); err == nil {
		sample.SystemMemoryTotal = int64(memStat.Total)
		sample.SystemMemoryUsed = int64(memStat.Total - memStat.Available)
	}
	diskStat, err := disk.Usage(diskPath)
	if err != nil {
		diskStat, err = disk.Usage("/")
	}
	if err == nil {
		sample.DiskTotalBytes = int64(diskStat.Total)
		sample.DiskUsedBytes = int64(diskStat.Used)
		sample.DiskUsedPercent = diskStat.UsedPercent
	}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if rss, err := proc.MemoryInfo(); err == nil && rss != nil {
			sample.ProcessRSSBytes = int64(rss.RSS)
		}
		if cpuPerc, err := proc.CPUPercent(); err == nil {
			sample.ProcessCpuLoad = cpuPerc / 100.0
		}
	}
	if sysCPU, err := cpu.Percent(0, false); err == nil && len(sysCPU) > 0 {
		sample.SystemCpuLoad = sysCPU[0] / 100.0
	}
	return sample
}
