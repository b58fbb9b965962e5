package analytics

import (
	"encoding/json"
	"errors"
	"net/http"

	"kudos-admin/internal/apiserver/auth"
	"kudos-admin/internal/shared/model"
)

// Handler 分析领域 HTTP 处理器
type Handler struct {
	aggregator *Aggregator
}

// NewHandler 创建分析处理器
func NewHandler(aggregator *Aggregator) *Handler {
	return &Handler{aggregator: aggregator}
}

// RegisterRoutes 注册分析相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/analytics/teams/{id}", h.TeamStats)
	mux.HandleFunc("GET /api/v1/analytics/organization", h.OrganizationStats)
}

// TeamStats 团队统计
// GET /api/v1/analytics/teams/{id}
func (h *Handler) TeamStats(w http.ResponseWriter, r *http.Request) {
	viewer := auth.GetAuthUser(r.Context())
	if viewer == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	stats, err := h.aggregator.TeamStats(r.Context(), r.PathValue("id"), model.UserRole(viewer.Role))
	if err != nil {
		writeAggregatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// OrganizationStats 组织级统计
// GET /api/v1/analytics/organization
func (h *Handler) OrganizationStats(w http.ResponseWriter, r *http.Request) {
	viewer := auth.GetAuthUser(r.Context())
	if viewer == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	stats, err := h.aggregator.OrganizationStats(r.Context(), model.UserRole(viewer.Role))
	if err != nil {
		writeAggregatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ============================================================================
// 工具函数
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeAggregatorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPermission):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "team not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
