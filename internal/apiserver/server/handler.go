// 路由配置，将请求分发到各领域独立包
package server

import (
	"net/http"

	"kudos-admin/internal/apiserver/analytics"
	"kudos-admin/internal/apiserver/auth"
	"kudos-admin/internal/apiserver/directory"
	"kudos-admin/internal/apiserver/recognition"
)

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 健康检查:
//   - GET /health - 服务健康检查
//
// 认证 (Auth):
//   - POST /api/v1/auth/register - 注册
//   - POST /api/v1/auth/login    - 登录
//   - POST /api/v1/auth/refresh  - 刷新令牌
//   - GET  /api/v1/auth/me       - 当前用户信息
//   - PUT  /api/v1/auth/password - 修改密码
//
// 认可管理 (Recognition):
//   - POST   /api/v1/recognitions       - 创建认可
//   - GET    /api/v1/recognitions       - 按可读性过滤的列表
//   - GET    /api/v1/recognitions/mine  - 我发出/收到的认可
//   - GET    /api/v1/recognitions/{id}  - 获取详情
//   - PATCH  /api/v1/recognitions/{id}  - 更新内容或可见性
//   - DELETE /api/v1/recognitions/{id}  - 软删除
//
// 分析 (Analytics):
//   - GET /api/v1/analytics/teams/{id}    - 团队统计（manager 及以上）
//   - GET /api/v1/analytics/organization  - 组织统计（hr 及以上）
//
// 目录 (Directory):
//   - GET/POST /api/v1/users 与 /api/v1/teams（创建仅限管理员）
//
// WebSocket:
//   - GET /ws/recognitions/feed  - 公共频道实时推送
//   - GET /ws/recognitions/inbox - 个人收件箱实时推送
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("GET /health", h.Health)

	// Prometheus 指标端点
	mux.Handle("GET /metrics", MetricsHandler())

	// Auth 路由
	authHandler := auth.NewHandler(h.store, h.authConfig)
	authHandler.RegisterRoutes(mux)

	// 认可接口
	recognition.NewHandler(h.engine).RegisterRoutes(mux)

	// 分析接口
	analytics.NewHandler(h.aggregator).RegisterRoutes(mux)

	// 目录接口
	directory.NewHandler(h.store).RegisterRoutes(mux)

	// 应用指标中间件到 REST API
	apiHandler := h.metrics.MetricsMiddleware(mux)

	// 应用认证中间件
	authedHandler := auth.Middleware(h.authConfig)(apiHandler)

	// 应用 CORS 中间件
	corsHandler := corsMiddleware(authedHandler)

	// 创建顶层路由，WebSocket 绕过 metrics 中间件（避免 http.Hijacker 问题）
	topMux := http.NewServeMux()
	if h.gateway != nil {
		h.gateway.RegisterRoutes(topMux)
	}
	topMux.Handle("/", corsHandler)

	return topMux
}

// corsMiddleware 添加 CORS 头支持跨域请求
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
