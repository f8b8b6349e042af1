// internal/app/features/status/status.go
package status

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/dalemusser/healthcredit/internal/app/system/respond"
	"github.com/dalemusser/healthcredit/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type memory struct {
	Used  string `json:"used"`
	Total string `json:"total"`
}

type report struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Uptime    string    `json:"uptime"`
	Memory    memory    `json:"memory"`
	Timestamp time.Time `json:"timestamp"`
}

func megabytes(b uint64) string {
	return fmt.Sprintf("%d MB", (b+(1<<19))>>20)
}

// Serve handles GET /api/admin/health. It always answers 200; a failed
// database ping shows up as "degraded".
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	rep := report{Status: "healthy", Database: "connected"}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()
	if err := h.Client.Ping(ctx, nil); err != nil {
		h.Log.Warn("admin health: database ping failed", zap.Error(err))
		rep.Status = "degraded"
		rep.Database = "disconnected"
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	rep.Memory = memory{Used: megabytes(ms.HeapAlloc), Total: megabytes(ms.HeapSys)}

	now := time.Now().UTC()
	rep.Uptime = fmt.Sprintf("%d hours", int(now.Sub(h.Started).Hours()))
	rep.Timestamp = now

	respond.JSON(w, http.StatusOK, rep)
}
