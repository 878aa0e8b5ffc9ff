package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestHub_LocalPublish(t *testing.T) {
	h := NewHub(nil, zap.NewNop())

	ch, cancel := h.Subscribe(Shifts)
	defer cancel()
	other, cancelOther := h.Subscribe(Vacations)
	defer cancelOther()

	h.Publish(context.Background(), Shifts)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("应收到 shifts 变更通知")
	}
	select {
	case <-other:
		t.Fatal("vacations 订阅者不应收到 shifts 通知")
	default:
	}
}

func TestHub_CoalescesNotifications(t *testing.T) {
	h := NewHub(nil, zap.NewNop())
	ch, cancel := h.Subscribe(Shifts)
	defer cancel()

	for i := 0; i < 5; i++ {
		h.Publish(context.Background(), Shifts)
	}
	<-ch
	select {
	case <-ch:
		t.Fatal("多次变更应合并为一条待处理通知")
	default:
	}
}

func TestHub_Cancel(t *testing.T) {
	h := NewHub(nil, zap.NewNop())
	_, cancel := h.Subscribe(Users)
	if h.Subscribers(Users) != 1 {
		t.Fatalf("期望 1 个订阅者，实际=%d", h.Subscribers(Users))
	}
	cancel()
	cancel()
	if h.Subscribers(Users) != 0 {
		t.Errorf("取消后期望 0 个订阅者，实际=%d", h.Subscribers(Users))
	}
}

// fakeBroker 模拟 Redis 频道，所有 Hub 共享
type fakeBroker struct {
	mu   sync.Mutex
	subs []chan string
}

func (b *fakeBroker) Publish(_ context.Context, _ string, payload string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		s <- payload
	}
	return nil
}

func (b *fakeBroker) Subscribe(_ context.Context, _ string) (<-chan string, func() error) {
	ch := make(chan string, 16)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch, func() error { return nil }
}

func (b *fakeBroker) subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func TestHub_CrossInstance(t *testing.T) {
	broker := &fakeBroker{}
	a := NewHub(broker, zap.NewNop())
	b := NewHub(broker, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)
	go b.Run(ctx)

	deadline := time.Now().Add(time.Second)
	for broker.subscribers() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	ch, unsub := b.Subscribe(SwapRequests)
	defer unsub()

	a.Publish(ctx, SwapRequests)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("其他实例应收到广播")
	}
}

func TestValidCollection(t *testing.T) {
	if !ValidCollection(Shifts) || ValidCollection("secrets") {
		t.Error("ValidCollection 判断错误")
	}
}
