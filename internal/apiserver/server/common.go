// Package server 路由配置与核心基础设施
//
// 文件组织：
//   - common.go: Handler 定义与通用工具函数
//   - handler.go: 路由配置，将请求分发到各领域独立包
//   - websocket.go: WebSocket 实时推送网关
//   - metrics.go: Prometheus 指标
package server

import (
	"encoding/json"
	"net/http"

	"kudos-admin/internal/apiserver/analytics"
	"kudos-admin/internal/apiserver/auth"
	"kudos-admin/internal/apiserver/recognition"
	"kudos-admin/internal/shared/eventbus"
	"kudos-admin/internal/shared/storage"
	"kudos-admin/pkg/logging"
)

// Handler API 处理器
//
// 所有 HTTP API 的入口，负责：
//   - 路由请求到各领域处理器
//   - 持有存储层与事件总线连接
//   - 协调 WebSocket 网关
//
// bus 为 nil 时引擎降级为 NoOpEventBus，WebSocket 网关不注册。
type Handler struct {
	store storage.PersistentStore
	bus   eventbus.EventBus

	authConfig auth.Config

	engine     *recognition.Engine
	aggregator *analytics.Aggregator
	gateway    *EventGateway
	metrics    *Metrics
	logger     *logging.Logger
}

// NewHandler 创建 Handler 实例
func NewHandler(store storage.PersistentStore, bus eventbus.EventBus, authCfg auth.Config) *Handler {
	logger := logging.Default("api-server")

	h := &Handler{
		store:      store,
		bus:        bus,
		authConfig: authCfg,
		logger:     logger,
	}

	var engineBus eventbus.RecognitionEventBus
	if bus != nil {
		engineBus = bus
	}
	h.engine = recognition.NewEngine(store, engineBus, logger)
	h.aggregator = analytics.NewAggregator(store, logger)
	h.metrics = NewMetrics("kudos")
	if bus != nil {
		h.gateway = NewEventGateway(bus, authCfg, h.metrics)
	}
	return h
}

// GetMetrics 返回指标实例
func (h *Handler) GetMetrics() *Metrics {
	return h.metrics
}

// writeJSON 将数据以 JSON 格式写入 HTTP 响应
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Health 健康检查接口
//
// 路由: GET /health
//
// 用于负载均衡器和监控系统检查服务状态。
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
