// Package reminderjob exposes the reminder engine to the cron
// scheduler over HTTP.
package reminderjob

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/harmonykeys/lessonhub/internal/app/system/cronauth"
	"github.com/harmonykeys/lessonhub/internal/app/system/httpjson"
	"github.com/harmonykeys/lessonhub/internal/app/system/reminders"
	"github.com/harmonykeys/lessonhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Log       *zap.Logger
	Engine    *reminders.Engine
	CronToken string
}

func NewHandler(engine *reminders.Engine, cronToken string, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Engine: engine, CronToken: cronToken}
}

// Routes mounts the cron-guarded reminder endpoint. Typically:
// r.Mount("/reminders", reminderjob.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.With(cronauth.Require(h.CronToken)).Post("/send", h.HandleSend)
	return r
}

// HandleSend handles POST /reminders/send.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	sum, err := h.Engine.SendDue(ctx, time.Now().UTC())
	if err != nil {
		httpjson.ServerError(w, h.Log, "reminder run failed", err)
		return
	}
	httpjson.Write(w, http.StatusOK, sum)
}
