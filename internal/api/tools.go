package api

import (
	"net/http"

	"github.com/dropdawn/dropdawn/internal/log"
	"github.com/dropdawn/dropdawn/internal/quota"
	"github.com/dropdawn/dropdawn/internal/tools"
)

// toolsHandler serves the tool catalog.
type toolsHandler struct {
	logger log.Logger
}

// list handles GET /api/v1/tools: every registered tool with its inferred
// input schema, so clients can render capability pickers.
func (h *toolsHandler) list(w http.ResponseWriter, r *http.Request) {
	catalog, err := tools.Catalog()
	if err != nil {
		h.logger.Error("building tool catalog", "error", err)
		WriteError(w, http.StatusInternalServerError, "catalog_failed", "failed to build tool catalog", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": catalog}, h.logger)
}

// quotaHandler reports the caller's remaining message allowance.
type quotaHandler struct {
	limiter *quota.Limiter
	logger  log.Logger
}

// get handles GET /api/v1/quota.
func (h *quotaHandler) get(w http.ResponseWriter, r *http.Request) {
	uid, ok := userIDFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "authentication_required", "authentication required", h.logger)
		return
	}

	used, remaining, err := h.limiter.Usage(r.Context(), uid)
	if err != nil {
		h.logger.Error("reading quota usage", "user_id", uid, "error", err)
		WriteError(w, http.StatusInternalServerError, "quota_failed", "failed to read quota", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"limit":         h.limiter.Limit(),
		"windowSeconds": int(h.limiter.Window().Seconds()),
		"used":          used,
		"remaining":     remaining,
	}, h.logger)
}
