package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HealthHandler serves liveness checks with a host resource snapshot.
type HealthHandler struct{}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Get reports liveness plus host CPU and memory usage.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats["cpuPercent"] = percents[0]
	} else if err != nil {
		log.Debug().Err(err).Msg("Failed to read CPU usage")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats["memUsedPercent"] = vm.UsedPercent
	} else {
		log.Debug().Err(err).Msg("Failed to read memory usage")
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": stats})
}
