// WebSocket 实时推送网关
//
// 订阅事件总线并将认可事件推送给连接的客户端：
//   - /ws/recognitions/feed  — 公共广播频道（仅 public 认可）
//   - /ws/recognitions/inbox — 当前用户的收件箱频道
//
// 投递语义为 at-most-once：连接期间发布的事件会推送，断线期间的事件
// 不补发，客户端重连后通过 REST 接口拉取历史。
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"kudos-admin/internal/apiserver/auth"
	"kudos-admin/internal/shared/eventbus"
)

// upgrader WebSocket 升级器配置
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// EventGateway WebSocket 事件网关
//
// 浏览器 WebSocket 不能携带自定义 Header，认证通过 token 查询参数完成，
// 因此 /ws/ 路由绕过 JWT 中间件、由网关自行校验。
type EventGateway struct {
	bus     eventbus.RecognitionEventBus
	authCfg auth.Config
	metrics *Metrics

	// 活跃连接计数（诊断用）
	mu      sync.RWMutex
	clients map[*websocket.Conn]string // conn -> userID
}

// NewEventGateway 创建事件网关实例
func NewEventGateway(bus eventbus.RecognitionEventBus, authCfg auth.Config, metrics *Metrics) *EventGateway {
	return &EventGateway{
		bus:     bus,
		authCfg: authCfg,
		metrics: metrics,
		clients: make(map[*websocket.Conn]string),
	}
}

// RegisterRoutes 注册 WebSocket 路由
func (g *EventGateway) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/recognitions/feed", g.HandleFeed)
	mux.HandleFunc("GET /ws/recognitions/inbox", g.HandleInbox)
}

// HandleFeed 处理公共广播频道连接
//
// 路由: GET /ws/recognitions/feed?token=...
//
// 公共频道只承载 public 认可，任何已认证用户都可以订阅。
func (g *EventGateway) HandleFeed(w http.ResponseWriter, r *http.Request) {
	user, ok := g.authenticate(w, r)
	if !ok {
		return
	}

	g.serve(w, r, user, func(ctx context.Context) (<-chan *eventbus.RecognitionEvent, error) {
		return g.bus.SubscribeFeed(ctx)
	}, nil)
}

// HandleInbox 处理收件箱频道连接
//
// 路由: GET /ws/recognitions/inbox?token=...
//
// 订阅的是当前认证用户自己的收件箱；推送前再次核对事件接收者，
// 防止频道错配把别人的事件送出去。
func (g *EventGateway) HandleInbox(w http.ResponseWriter, r *http.Request) {
	user, ok := g.authenticate(w, r)
	if !ok {
		return
	}

	filter := func(event *eventbus.RecognitionEvent) bool {
		return eventMatchesRecipient(event, user.ID)
	}
	g.serve(w, r, user, func(ctx context.Context) (<-chan *eventbus.RecognitionEvent, error) {
		return g.bus.SubscribeInbox(ctx, user.ID)
	}, filter)
}

// eventMatchesRecipient 核对事件接收者与订阅者身份一致
func eventMatchesRecipient(event *eventbus.RecognitionEvent, userID string) bool {
	return event != nil && event.RecipientID == userID
}

// authenticate 从 token 查询参数解析身份
func (g *EventGateway) authenticate(w http.ResponseWriter, r *http.Request) (*auth.AuthUser, bool) {
	if !g.authCfg.Enabled() {
		// 无认证模式：用 user_id 参数标识订阅者
		return &auth.AuthUser{ID: r.URL.Query().Get("user_id")}, true
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, `{"error":"token required"}`, http.StatusUnauthorized)
		return nil, false
	}
	claims, err := auth.ParseToken(g.authCfg, token)
	if err != nil || claims.Type != "access" {
		http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
		return nil, false
	}
	return &auth.AuthUser{ID: claims.Subject, Email: claims.Email, Role: claims.Role}, true
}

// serve 升级连接并进入推送循环
func (g *EventGateway) serve(
	w http.ResponseWriter,
	r *http.Request,
	user *auth.AuthUser,
	subscribe func(ctx context.Context) (<-chan *eventbus.RecognitionEvent, error),
	filter func(*eventbus.RecognitionEvent) bool,
) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] upgrade error: %v", err)
		return
	}
	defer conn.Close()

	g.addClient(conn, user.ID)
	defer g.removeClient(conn)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events, err := subscribe(ctx)
	if err != nil {
		log.Printf("[WS] subscribe error for user %s: %v", user.ID, err)
		conn.WriteJSON(map[string]string{"type": "error", "error": "subscription unavailable"})
		return
	}

	go g.readPump(conn, cancel)
	g.writePump(ctx, conn, events, filter)
}

func (g *EventGateway) addClient(conn *websocket.Conn, userID string) {
	g.mu.Lock()
	g.clients[conn] = userID
	g.mu.Unlock()
	if g.metrics != nil {
		g.metrics.WSConnectionOpened()
	}
}

func (g *EventGateway) removeClient(conn *websocket.Conn) {
	g.mu.Lock()
	delete(g.clients, conn)
	g.mu.Unlock()
	if g.metrics != nil {
		g.metrics.WSConnectionClosed()
	}
}

// ClientCount 当前活跃连接数
func (g *EventGateway) ClientCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.clients)
}

// readPump 读取客户端消息
// 处理心跳（ping -> pong），连接关闭时取消上下文
func (g *EventGateway) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] read error: %v", err)
			}
			return
		}

		var req map[string]interface{}
		if json.Unmarshal(msg, &req) == nil {
			if req["type"] == "ping" {
				conn.WriteJSON(map[string]string{"type": "pong"})
				if g.metrics != nil {
					g.metrics.RecordWSMessage("in", "ping")
				}
			}
		}
	}
}

// writePump 向客户端推送事件
// filter 非 nil 时只推送通过核对的事件，被拦截的事件静默丢弃
func (g *EventGateway) writePump(
	ctx context.Context,
	conn *websocket.Conn,
	events <-chan *eventbus.RecognitionEvent,
	filter func(*eventbus.RecognitionEvent) bool,
) {
	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			if filter != nil && !filter(event) {
				continue
			}

			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			msg := map[string]interface{}{
				"type": "event",
				"data": event,
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("[WS] write error: %v", err)
				return
			}
			if g.metrics != nil {
				g.metrics.RecordWSMessage("out", event.Type)
			}
		}
	}
}
