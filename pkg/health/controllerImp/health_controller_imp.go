package controllerImp

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"ragchat/pkg/vectorindex"
)

var appStart = time.Now()

type HealthCtrl struct {
	db       *gorm.DB
	idx      vectorindex.Index
	jobs     interface{ ActiveJobs() int }
	sessions interface{ ActiveSessions() int }
}

func NewHealthCtrl(db *gorm.DB, idx vectorindex.Index, jobs interface{ ActiveJobs() int }, sessions interface{ ActiveSessions() int }) *HealthCtrl {
	return &HealthCtrl{db: db, idx: idx, jobs: jobs, sessions: sessions}
}

func (h *HealthCtrl) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()

	dbOK := true
	dbErr := ""
	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err != nil {
			dbOK = false
			dbErr = "db.DB(): " + err.Error()
		} else if err := sqlDB.PingContext(ctx); err != nil {
			dbOK = false
			dbErr = "ping: " + err.Error()
		}
	} else {
		dbOK = false
		dbErr = "gorm db is nil"
	}

	idxOK := true
	idxErr := ""
	if err := h.idx.Ping(ctx); err != nil {
		idxOK = false
		idxErr = err.Error()
	}

	allOK := dbOK && idxOK
	status := http.StatusOK
	if !allOK {
		status = http.StatusServiceUnavailable
	}

	type sub struct {
		OK  bool   `json:"ok"`
		Err string `json:"err,omitempty"`
	}

	resp := map[string]any{
		"status":                 map[string]any{"ok": allOK},
		"uptime_sec":             int(time.Since(appStart).Seconds()),
		"vector_index_reachable": idxOK,
		"active_jobs":            h.jobs.ActiveJobs(),
		"active_sessions":        h.sessions.ActiveSessions(),
		"checks": map[string]any{
			"database":     sub{OK: dbOK, Err: dbErr},
			"vector_index": sub{OK: idxOK, Err: idxErr},
		},
		"time": time.Now().Format(time.RFC3339),
	}

	return c.JSON(status, resp)
}
