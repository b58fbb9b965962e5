// Package directory 用户目录与团队管理 - HTTP 处理
//
// 用户基本信息创建后不可变（改名/调岗不在本服务范围内），
// 因此目录只提供创建与读取，不提供更新。
package directory

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"kudos-admin/internal/apiserver/auth"
	"kudos-admin/internal/shared/model"
	"kudos-admin/internal/shared/policy"
	"kudos-admin/internal/shared/storage"
)

// Store 目录处理器依赖的存储接口
type Store interface {
	storage.UserStore
	storage.TeamStore
}

// Handler 目录领域 HTTP 处理器
type Handler struct {
	store Store
}

// NewHandler 创建目录处理器
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册目录相关路由
// 创建操作仅限管理员，读取对所有已认证用户开放
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/users", h.ListUsers)
	mux.HandleFunc("GET /api/v1/users/{id}", h.GetUser)
	mux.HandleFunc("POST /api/v1/users", auth.AdminOnly(h.CreateUser))

	mux.HandleFunc("GET /api/v1/teams", h.ListTeams)
	mux.HandleFunc("GET /api/v1/teams/{id}", h.GetTeam)
	mux.HandleFunc("GET /api/v1/teams/{id}/members", h.ListTeamMembers)
	mux.HandleFunc("POST /api/v1/teams", auth.AdminOnly(h.CreateTeam))
}

// ============================================================================
// 请求类型
// ============================================================================

type createUserRequest struct {
	Email       string  `json:"email"`
	DisplayName string  `json:"display_name"`
	Password    string  `json:"password"`
	Role        string  `json:"role"`
	TeamID      *string `json:"team_id"`
}

type createTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ============================================================================
// 用户
// ============================================================================

// ListUsers 列出用户
// GET /api/v1/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users, "count": len(users)})
}

// GetUser 获取用户详情
// GET /api/v1/users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// CreateUser 创建用户（仅管理员）
// POST /api/v1/users
// Body: {"email": "...", "display_name": "...", "password": "...", "role": "employee|manager|hr|admin", "team_id": "team-x"}
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.DisplayName == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email, display_name, password are required")
		return
	}

	role := model.UserRole(req.Role)
	if req.Role == "" {
		role = model.UserRoleEmployee
	}
	// 未知角色等级为 0，不允许落库
	if policy.Rank(role) == 0 {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}

	if req.TeamID != nil {
		team, err := h.store.GetTeam(r.Context(), *req.TeamID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to check team")
			return
		}
		if team == nil {
			writeError(w, http.StatusBadRequest, "team not found")
			return
		}
	}

	existing, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user := &model.User{
		ID:           generateID("usr"),
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: hash,
		Role:         role,
		TeamID:       req.TeamID,
		CreatedAt:    time.Now(),
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		log.Printf("[Directory] CreateUser error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// ============================================================================
// 团队
// ============================================================================

// ListTeams 列出团队
// GET /api/v1/teams
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.store.ListTeams(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list teams")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"teams": teams, "count": len(teams)})
}

// GetTeam 获取团队详情
// GET /api/v1/teams/{id}
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.store.GetTeam(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get team")
		return
	}
	if team == nil {
		writeError(w, http.StatusNotFound, "team not found")
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// ListTeamMembers 列出团队成员
// GET /api/v1/teams/{id}/members
func (h *Handler) ListTeamMembers(w http.ResponseWriter, r *http.Request) {
	teamID := r.PathValue("id")
	team, err := h.store.GetTeam(r.Context(), teamID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get team")
		return
	}
	if team == nil {
		writeError(w, http.StatusNotFound, "team not found")
		return
	}

	members, err := h.store.ListTeamMembers(r.Context(), teamID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"members": members, "count": len(members)})
}

// CreateTeam 创建团队（仅管理员）
// POST /api/v1/teams
// Body: {"name": "...", "description": "..."}
func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req createTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	team := &model.Team{
		ID:          generateID("team"),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   time.Now(),
	}
	if err := h.store.CreateTeam(r.Context(), team); err != nil {
		log.Printf("[Directory] CreateTeam error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create team")
		return
	}
	writeJSON(w, http.StatusCreated, team)
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

// generateID 生成带前缀的随机 ID
// 格式：prefix-xxxxxxxxxxxx（prefix + 12 字符 hex）
func generateID(prefix string) string {
	b := make([]byte, 6)
	rand.Read(b)
	return prefix + "-" + hex.EncodeToString(b)
}
