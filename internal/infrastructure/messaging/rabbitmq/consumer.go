package rabbitmq

import (
	"context"
	"fmt"

	"github.com/xiebiao/library/internal/domain/event"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/mq"
)

// Processor 同步执行修正任务(reconcile.Dispatcher)
type Processor interface {
	Process(ctx context.Context, e event.Event) error
}

// Source 消息来源(pkg/mq.Consumer)
type Source interface {
	Consume(ctx context.Context, prefetch int, handler mq.Handler) error
}

// RoutingKeys 消费者绑定的routing key
func RoutingKeys() []string {
	kinds := event.Kinds()
	keys := make([]string, len(kinds))
	for i, k := range kinds {
		keys[i] = string(k)
	}
	return keys
}

// EventConsumer 从队列消费事件并执行修正
// prefetch=1,逐条处理并确认,同一实体的事件保持发布顺序
type EventConsumer struct {
	source    Source
	processor Processor
}

// NewEventConsumer 创建消费者
func NewEventConsumer(source Source, processor Processor) *EventConsumer {
	return &EventConsumer{source: source, processor: processor}
}

// Run 阻塞消费直到ctx取消
func (c *EventConsumer) Run(ctx context.Context) error {
	return c.source.Consume(ctx, 1, c.Handle)
}

// Handle 处理一条消息
// 无法解码或类型未知的消息直接丢弃;修正失败时重新入队
func (c *EventConsumer) Handle(ctx context.Context, msg mq.Message) error {
	var e event.Event
	if err := json.Unmarshal(msg.Body, &e); err != nil {
		metrics.IncMessageConsumed(msg.RoutingKey, "dropped")
		return fmt.Errorf("%w: 解码事件失败: %v", mq.ErrDrop, err)
	}
	if !e.Kind.Valid() {
		metrics.IncMessageConsumed(msg.RoutingKey, "dropped")
		return fmt.Errorf("%w: 未知的事件类型 %q", mq.ErrDrop, e.Kind)
	}

	if err := c.processor.Process(ctx, e); err != nil {
		metrics.IncMessageConsumed(msg.RoutingKey, "failure")
		return err
	}
	metrics.IncMessageConsumed(msg.RoutingKey, "success")
	return nil
}
