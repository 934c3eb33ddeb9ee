package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	errors2 "github.com/lwhx/OVH/errors"
	"github.com/lwhx/OVH/internal/logging"
	"github.com/lwhx/OVH/internal/notify"
	"github.com/lwhx/OVH/internal/registry"
	"github.com/lwhx/OVH/internal/state"
	"github.com/lwhx/OVH/types"
	"github.com/lwhx/OVH/types/config"
)

// AuthVerifier checks the stored provider credentials against the provider.
type AuthVerifier interface {
	VerifyAuth(ctx context.Context) error
}

type AvailabilityChecker interface {
	GetAvailability(ctx context.Context, planCode string) (types.AvailabilitySnapshot, error)
}

// Catalog imports and refreshes the server plans.
type Catalog interface {
	Import(ctx context.Context) (int, error)
	RefreshAvailability(ctx context.Context) int
}

type Metrics interface {
	Handler() http.Handler
	RecordHTTPRequest(method, route string, statusCode int)
}

// Dependencies groups what the control API reads and mutates.
type Dependencies struct {
	Registry *registry.Registry
	Catalog  Catalog
	Checker  AvailabilityChecker
	Verifier AuthVerifier
	Notifier notify.Notifier
	Journal  *logging.Journal
	Metrics  Metrics
	Logger   *logging.Logger
}

type RouteHandler struct {
	Dependencies
	cfg *config.AppConfig
	now func() time.Time
}

func NewRouteHandler(deps Dependencies, cfg *config.AppConfig) *RouteHandler {
	return &RouteHandler{Dependencies: deps, cfg: cfg, now: time.Now}
}

// Router builds the control API. /metrics is left outside basic auth so a
// scraper does not need the operator password.
func (h *RouteHandler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(h.recordMetrics)

	r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		if h.cfg.ControlAuthEnabled {
			r.Use(h.basicAuth)
		}

		r.Get("/settings", h.getSettings)
		r.Post("/settings", h.saveSettings)
		r.Post("/verify-auth", h.verifyAuth)

		r.Get("/logs", h.getLogs)
		r.Delete("/logs", h.clearLogs)

		r.Route("/queue", func(r chi.Router) {
			r.Get("/", h.listQueue)
			r.Post("/", h.addQueueItem)
			r.Delete("/{id}", h.removeQueueItem)
			r.Put("/{id}/status", h.setQueueStatus)
		})

		r.Get("/purchase-history", h.listHistory)
		r.Delete("/purchase-history", h.clearHistory)

		r.Get("/servers", h.listServers)
		r.Put("/servers", h.replaceServers)
		r.Post("/servers/refresh", h.refreshServers)
		r.Get("/availability/{planCode}", h.getAvailability)

		r.Get("/stats", h.getStats)
	})
	return r
}

// Serve listens on the configured port until ctx is cancelled.
func (h *RouteHandler) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", h.cfg.ListenPort)
	srv := &http.Server{Addr: addr, Handler: h.Router(), ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	printBanner(addr)
	h.Logger.Source("system").Infof("control API listening on %s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (h *RouteHandler) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Registry.Settings())
}

func (h *RouteHandler) saveSettings(w http.ResponseWriter, r *http.Request) {
	var s types.Settings
	if !decodeJSON(w, r, &s) {
		return
	}
	prev, err := h.Registry.SaveSettings(r.Context(), s)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	log := h.Logger.Source("system")
	current := h.Registry.Settings()
	switch {
	case !current.HasTelegram():
		log.Info("telegram not configured, skipping test message")
	case !current.TelegramChanged(prev):
		log.Info("telegram target unchanged, skipping test message")
	default:
		log.WithField("chat_id", current.TgChatID).Info("telegram target updated, sending test message")
		ctx, cancel := context.WithTimeout(r.Context(), h.cfg.NotifyTimeout)
		defer cancel()
		if h.Notifier.Send(ctx, notify.TestMessage(h.now())) {
			log.Info("telegram test message sent")
		} else {
			log.Warn("telegram test message failed, check the token and chat id")
		}
	}
	writeSuccess(w)
}

func (h *RouteHandler) verifyAuth(w http.ResponseWriter, r *http.Request) {
	err := h.Verifier.VerifyAuth(r.Context())
	if err != nil {
		h.Logger.Source("system").WithError(err).Warn("provider credential check failed")
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": err == nil})
}

func (h *RouteHandler) getLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Journal.Entries())
}

func (h *RouteHandler) clearLogs(w http.ResponseWriter, r *http.Request) {
	h.Journal.Clear()
	h.Logger.Source("system").Info("logs cleared")
	writeSuccess(w)
}

func (h *RouteHandler) listQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Registry.Items())
}

func (h *RouteHandler) addQueueItem(w http.ResponseWriter, r *http.Request) {
	var req types.QueueItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item, err := h.Registry.AddItem(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "id": item.ID})
}

func (h *RouteHandler) removeQueueItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.RemoveItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeSuccess(w)
}

func (h *RouteHandler) setQueueStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status state.QueueStatus `json:"status"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if _, err := h.Registry.SetStatus(r.Context(), chi.URLParam(r, "id"), body.Status); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeSuccess(w)
}

func (h *RouteHandler) listHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Registry.History())
}

func (h *RouteHandler) clearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.ClearHistory(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeSuccess(w)
}

// listServers returns the catalog. showApiServers=true reloads it from the
// provider first; a failed reload still returns the stored catalog.
func (h *RouteHandler) listServers(w http.ResponseWriter, r *http.Request) {
	if strings.EqualFold(r.URL.Query().Get("showApiServers"), "true") {
		if n, err := h.Catalog.Import(r.Context()); err != nil {
			h.Logger.Source("catalog").WithError(err).Warn("reloading server list from the provider failed")
		} else {
			h.Logger.Source("catalog").Infof("loaded %d servers from the provider", n)
		}
	}
	writeJSON(w, http.StatusOK, h.Registry.Plans())
}

func (h *RouteHandler) replaceServers(w http.ResponseWriter, r *http.Request) {
	var plans []types.ServerPlan
	if !decodeJSON(w, r, &plans) {
		return
	}
	if err := h.Registry.SetPlans(r.Context(), plans); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, h.Registry.Plans())
}

func (h *RouteHandler) refreshServers(w http.ResponseWriter, r *http.Request) {
	n := h.Catalog.RefreshAvailability(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "refreshed": n})
}

func (h *RouteHandler) getAvailability(w http.ResponseWriter, r *http.Request) {
	planCode := chi.URLParam(r, "planCode")
	snap, err := h.Checker.GetAvailability(r.Context(), planCode)
	if err != nil {
		h.Logger.Source("system").WithError(err).WithField("plan_code", planCode).Warn("availability check failed")
	}
	if err != nil || len(snap) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *RouteHandler) getStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Registry.Stats())
}

func statusFor(err error) int {
	var verr *errors2.ValidationError
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrInvalidTransition), errors.As(err, &verr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
