package server

import (
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

var startupTime = time.Now()

// handleSystemStatus handles GET /api/system/status
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"uptime_seconds": int64(time.Since(startupTime).Seconds()),
		"subscribers":    s.bus.SubscriberCount(),
	}

	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err == nil && len(cpuPercent) > 0 {
		status["cpu_percent"] = cpuPercent[0]
	} else if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read CPU usage")
	}

	memStat, err := mem.VirtualMemory()
	if err == nil {
		status["memory_percent"] = memStat.UsedPercent
		status["memory_used_mb"] = memStat.Used / 1024 / 1024
	} else {
		s.log.Warn().Err(err).Msg("Failed to read memory usage")
	}

	if used, limit, qerr := s.tracker.Usage(); qerr == nil {
		status["quota_used"] = used
		status["quota_cap"] = limit
	}

	writeJSON(w, http.StatusOK, status)
}
