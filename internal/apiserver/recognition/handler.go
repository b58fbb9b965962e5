package recognition

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"kudos-admin/internal/apiserver/auth"
	"kudos-admin/internal/shared/model"
)

// Handler 认可领域 HTTP 处理器
type Handler struct {
	engine *Engine
}

// NewHandler 创建认可处理器
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// RegisterRoutes 注册认可相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/recognitions", h.Create)
	mux.HandleFunc("GET /api/v1/recognitions", h.List)
	mux.HandleFunc("GET /api/v1/recognitions/mine", h.ListMine)
	mux.HandleFunc("GET /api/v1/recognitions/{id}", h.Get)
	mux.HandleFunc("PATCH /api/v1/recognitions/{id}", h.Update)
	mux.HandleFunc("DELETE /api/v1/recognitions/{id}", h.Delete)
}

// ============================================================================
// 请求类型
// ============================================================================

type createRequest struct {
	RecipientID string `json:"recipient_id"`
	Message     string `json:"message"`
	Visibility  string `json:"visibility"`
}

type updateRequest struct {
	Message    *string `json:"message"`
	Visibility *string `json:"visibility"`
}

// ============================================================================
// HTTP 处理函数
// ============================================================================

// Create 创建认可
// POST /api/v1/recognitions
// Body: {"recipient_id": "usr-x", "message": "...", "visibility": "public|private|anonymous"}
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	viewer := auth.GetAuthUser(r.Context())
	if viewer == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.engine.Create(r.Context(), viewer.ID, CreateInput{
		RecipientID: req.RecipientID,
		Message:     req.Message,
		Visibility:  model.Visibility(req.Visibility),
	})
	if err != nil {
		log.Printf("[Recognition] Create error: %v", err)
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// List 列出当前用户可读的认可
// GET /api/v1/recognitions
//
// 支持的查询参数：
//   - visibility: 按可见性筛选
//   - limit:  每页条数 (默认 20, 最大 100)
//   - offset: 偏移量
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	viewer := auth.GetAuthUser(r.Context())
	if viewer == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	views, err := h.engine.List(r.Context(), viewer.ID, ListFilters{
		Visibility: model.Visibility(r.URL.Query().Get("visibility")),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recognitions": views,
		"count":        len(views),
	})
}

// ListMine 列出当前用户发出/收到的认可
// GET /api/v1/recognitions/mine?direction=sent|received
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	viewer := auth.GetAuthUser(r.Context())
	if viewer == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	direction := r.URL.Query().Get("direction")
	if direction == "" {
		direction = DirectionReceived
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	views, err := h.engine.ListMine(r.Context(), viewer.ID, direction, limit)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recognitions": views,
		"count":        len(views),
	})
}

// Get 获取认可详情
// GET /api/v1/recognitions/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	viewer := auth.GetAuthUser(r.Context())
	if viewer == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	view, err := h.engine.GetByID(r.Context(), r.PathValue("id"), viewer.ID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Update 更新认可
// PATCH /api/v1/recognitions/{id}
// Body: {"message": "...", "visibility": "public|private"}（均可选，至少一项）
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	viewer := auth.GetAuthUser(r.Context())
	if viewer == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := UpdateInput{Message: req.Message}
	if req.Visibility != nil {
		v := model.Visibility(*req.Visibility)
		input.Visibility = &v
	}

	view, err := h.engine.Update(r.Context(), viewer.ID, r.PathValue("id"), input)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Delete 软删除认可
// DELETE /api/v1/recognitions/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	viewer := auth.GetAuthUser(r.Context())
	if viewer == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := h.engine.SoftDelete(r.Context(), viewer.ID, r.PathValue("id")); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
