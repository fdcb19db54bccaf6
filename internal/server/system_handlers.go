// Package server provides the HTTP server and routing for Lens.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/lens/internal/clients/pricefeed"
	"github.com/aristath/lens/internal/database"
	"github.com/aristath/lens/internal/modules/analysis"
	"github.com/aristath/lens/internal/scheduler"
)

// SystemHandlers handles system-wide monitoring and job trigger endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	dataDir     string
	startupTime time.Time
	databases   map[string]*database.DB
	analysis    *analysis.Service
	pricefeed   *pricefeed.Client // nil when the price feed is disabled

	// Jobs are set after scheduler registration in main.go
	refreshJob     scheduler.Job
	snapshotJob    scheduler.Job
	maintenanceJob scheduler.Job
	backupJob      scheduler.Job
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(
	log zerolog.Logger,
	dataDir string,
	databases map[string]*database.DB,
	analysisService *analysis.Service,
	pricefeedClient *pricefeed.Client,
) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		dataDir:     dataDir,
		startupTime: time.Now(),
		databases:   databases,
		analysis:    analysisService,
		pricefeed:   pricefeedClient,
	}
}

// SetJobs registers job references for manual triggering.
// Called after jobs are registered in main.go.
func (h *SystemHandlers) SetJobs(refresh, snapshot, maintenance, backup scheduler.Job) {
	h.refreshJob = refresh
	h.snapshotJob = snapshot
	h.maintenanceJob = maintenance
	h.backupJob = backup
}

// SystemStatusResponse is the payload of GET /api/system/status
type SystemStatusResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	RAMPercent    float64 `json:"ram_percent"`
	Sectors       int     `json:"sectors"`
	Aliases       int     `json:"aliases"`
	Databases     int     `json:"databases"`
	LastChecked   string  `json:"last_checked"`
}

// HandleSystemStatus returns overall process and engine health
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPct, ramPct := h.getSystemStats()

	status := "ok"
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	for name, db := range h.databases {
		if err := db.QuickCheck(ctx); err != nil {
			h.log.Warn().Err(err).Str("database", name).Msg("Database unreachable")
			status = "degraded"
		}
	}

	engine := h.analysis.Engine()

	h.writeJSON(w, SystemStatusResponse{
		Status:        status,
		UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		CPUPercent:    cpuPct,
		RAMPercent:    ramPct,
		Sectors:       engine.Sectors().Size(),
		Aliases:       engine.Canonical().Size(),
		Databases:     len(h.databases),
		LastChecked:   time.Now().Format(time.RFC3339),
	})
}

// DBStatsInfo describes one database in the stats response.
type DBStatsInfo struct {
	Name          string  `json:"name"`
	SizeMB        float64 `json:"size_mb"`
	WALSizeMB     float64 `json:"wal_size_mb"`
	PageCount     int64   `json:"page_count"`
	FreelistCount int64   `json:"freelist_count"`
}

// DatabaseStatsResponse is the payload of GET /api/system/database/stats
type DatabaseStatsResponse struct {
	Databases   []DBStatsInfo `json:"databases"`
	TotalSizeMB float64       `json:"total_size_mb"`
	LastChecked string        `json:"last_checked"`
}

// HandleDatabaseStats returns size and page statistics per database
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting database stats")

	infos := make([]DBStatsInfo, 0, len(h.databases))
	totalSizeMB := 0.0

	for name, db := range h.databases {
		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", name).Msg("Failed to get database stats")
			continue
		}

		sizeMB := float64(stats.SizeBytes) / 1024 / 1024
		totalSizeMB += sizeMB

		infos = append(infos, DBStatsInfo{
			Name:          name,
			SizeMB:        sizeMB,
			WALSizeMB:     float64(stats.WALSizeBytes) / 1024 / 1024,
			PageCount:     stats.PageCount,
			FreelistCount: stats.FreelistCount,
		})
	}

	h.writeJSON(w, DatabaseStatsResponse{
		Databases:   infos,
		TotalSizeMB: totalSizeMB,
		LastChecked: time.Now().Format(time.RFC3339),
	})
}

// DiskUsageResponse is the payload of GET /api/system/disk
type DiskUsageResponse struct {
	Path        string  `json:"path"`
	TotalGB     float64 `json:"total_gb"`
	UsedGB      float64 `json:"used_gb"`
	FreeGB      float64 `json:"free_gb"`
	UsedPercent float64 `json:"used_percent"`
}

// HandleDiskUsage returns usage of the filesystem holding the data directory
func (h *SystemHandlers) HandleDiskUsage(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting disk usage")

	usage, err := disk.Usage(h.dataDir)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get disk usage")
		http.Error(w, "failed to get disk usage", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, DiskUsageResponse{
		Path:        h.dataDir,
		TotalGB:     float64(usage.Total) / 1024 / 1024 / 1024,
		UsedGB:      float64(usage.Used) / 1024 / 1024 / 1024,
		FreeGB:      float64(usage.Free) / 1024 / 1024 / 1024,
		UsedPercent: usage.UsedPercent,
	})
}

// PricefeedStatusResponse is the payload of GET /api/system/pricefeed
type PricefeedStatusResponse struct {
	Enabled   bool `json:"enabled"`
	Connected bool `json:"connected"`
	Quotes    int  `json:"quotes"`
}

// HandlePricefeedStatus returns the live quote stream state
func (h *SystemHandlers) HandlePricefeedStatus(w http.ResponseWriter, r *http.Request) {
	resp := PricefeedStatusResponse{}
	if h.pricefeed != nil {
		resp.Enabled = true
		resp.Connected = h.pricefeed.IsConnected()
		resp.Quotes = len(h.pricefeed.Quotes())
	}

	h.writeJSON(w, resp)
}

// HandleTriggerRefresh runs the reference and portfolio refresh job immediately
func (h *SystemHandlers) HandleTriggerRefresh(w http.ResponseWriter, r *http.Request) {
	h.triggerJob(w, h.refreshJob, "refresh")
}

// HandleTriggerSnapshot runs the snapshot job immediately
func (h *SystemHandlers) HandleTriggerSnapshot(w http.ResponseWriter, r *http.Request) {
	h.triggerJob(w, h.snapshotJob, "snapshot")
}

// HandleTriggerMaintenance runs the maintenance job immediately
func (h *SystemHandlers) HandleTriggerMaintenance(w http.ResponseWriter, r *http.Request) {
	h.triggerJob(w, h.maintenanceJob, "maintenance")
}

// HandleTriggerBackup runs the backup job immediately
func (h *SystemHandlers) HandleTriggerBackup(w http.ResponseWriter, r *http.Request) {
	h.triggerJob(w, h.backupJob, "backup")
}

func (h *SystemHandlers) triggerJob(w http.ResponseWriter, job scheduler.Job, name string) {
	if job == nil {
		h.log.Warn().Str("job", name).Msg("Job not registered yet")
		h.writeJSON(w, map[string]string{
			"status":  "error",
			"message": name + " job not registered",
		})
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job trigger")

	if err := job.Run(); err != nil {
		h.log.Error().Err(err).Str("job", name).Msg("Triggered job failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]string{
		"status":  "success",
		"message": name + " job completed",
	})
}

// getSystemStats calculates CPU and RAM usage percentages.
// Uses a short interval so the handler responds quickly.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	avgCPU := 0.0
	if len(cpuPercent) > 0 {
		avgCPU = cpuPercent[0]
	}

	return avgCPU, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
