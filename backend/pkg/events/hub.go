// Package events 集合变更通知
//
// 写操作成功后发布集合名，订阅者收到通知后重新读取完整快照。
// 通知会合并：订阅者来不及处理时只保留一条待处理通知。
package events

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 集合名
const (
	Users        = "users"
	Shifts       = "shifts"
	Vacations    = "vacations"
	SwapRequests = "swap_requests"
	Settings     = "settings"
)

// Collections 可订阅的集合
var Collections = []string{Users, Shifts, Vacations, SwapRequests, Settings}

// ValidCollection 是否为可订阅集合
func ValidCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}
	return false
}

const channel = "matehost:events"

// Broker 跨实例广播（Redis 发布订阅）
type Broker interface {
	Publish(ctx context.Context, channel, payload string) error
	Subscribe(ctx context.Context, channel string) (<-chan string, func() error)
}

// Publisher 发布集合变更
type Publisher interface {
	Publish(ctx context.Context, collection string)
}

// Subscriber 订阅集合变更
type Subscriber interface {
	Subscribe(collection string) (<-chan struct{}, func())
}

// Hub 进程内订阅表；broker 非空时同时向其他实例广播
type Hub struct {
	mu       sync.Mutex
	subs     map[string]map[uint64]chan struct{}
	nextID   uint64
	broker   Broker
	instance string
	logger   *zap.Logger
}

// NewHub 创建 Hub；broker 为 nil 时只在本进程内通知
func NewHub(broker Broker, logger *zap.Logger) *Hub {
	return &Hub{
		subs:     make(map[string]map[uint64]chan struct{}),
		broker:   broker,
		instance: uuid.NewString(),
		logger:   logger,
	}
}

// Run 接收其他实例的广播，直到 ctx 结束
func (h *Hub) Run(ctx context.Context) {
	if h.broker == nil {
		<-ctx.Done()
		return
	}
	msgs, closeFn := h.broker.Subscribe(ctx, channel)
	defer func() {
		if err := closeFn(); err != nil {
			h.logger.Warn("关闭事件订阅失败", zap.Error(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-msgs:
			if !ok {
				return
			}
			origin, collection, found := strings.Cut(payload, "|")
			if !found || origin == h.instance {
				continue
			}
			h.notify(collection)
		}
	}
}

// Publish 通知本进程订阅者，并广播给其他实例
// 广播失败只记录日志：本实例的订阅者已收到通知
func (h *Hub) Publish(ctx context.Context, collection string) {
	h.notify(collection)
	if h.broker == nil {
		return
	}
	if err := h.broker.Publish(ctx, channel, h.instance+"|"+collection); err != nil {
		h.logger.Warn("广播集合变更失败", zap.String("collection", collection), zap.Error(err))
	}
}

// Subscribe 订阅集合变更，返回通知通道与取消函数
func (h *Hub) Subscribe(collection string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if h.subs[collection] == nil {
		h.subs[collection] = make(map[uint64]chan struct{})
	}
	h.subs[collection][id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[collection], id)
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// Subscribers 当前订阅数
func (h *Hub) Subscribers(collection string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[collection])
}

func (h *Hub) notify(collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[collection] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
