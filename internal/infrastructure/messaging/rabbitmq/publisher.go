// Package rabbitmq 通过RabbitMQ传递领域事件
// Topic Exchange,routing key即事件类型
package rabbitmq

import (
	"context"
	"log/slog"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/xiebiao/library/internal/domain/event"
	"github.com/xiebiao/library/pkg/circuitbreaker"
	"github.com/xiebiao/library/pkg/metrics"
)

// 消息体编解码,兼容encoding/json的结构体标签
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Sender 发送原始消息(pkg/mq.Publisher)
type Sender interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// EventPublisher 实现event.Publisher
// RabbitMQ不可用时(发送失败或熔断器打开)退回到进程内分发,修正任务不会因此丢失
type EventPublisher struct {
	sender   Sender
	fallback event.Publisher
	breaker  *circuitbreaker.CircuitBreaker
	log      *slog.Logger
}

// NewEventPublisher 创建事件发布者
func NewEventPublisher(sender Sender, fallback event.Publisher, log *slog.Logger) *EventPublisher {
	breaker := circuitbreaker.New("rabbitmq-events", circuitbreaker.Config{
		FailureThreshold: 3,
		OpenTimeout:      15 * time.Second,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			log.Warn("熔断器状态变化", "name", name, "from", from.String(), "to", to.String())
			metrics.SetCircuitBreakerState(name, int(to))
		},
	})
	return &EventPublisher{sender: sender, fallback: fallback, breaker: breaker, log: log}
}

// Publish 逐个发布,失败的事件转交fallback
func (p *EventPublisher) Publish(ctx context.Context, events ...event.Event) {
	for _, e := range events {
		routingKey := string(e.Kind)
		body, err := json.Marshal(e)
		if err == nil {
			err = p.breaker.Execute(func() error {
				return p.sender.Publish(ctx, routingKey, body)
			})
		}
		if err == nil {
			metrics.IncMessagePublished(routingKey, "success")
			continue
		}

		metrics.IncMessagePublished(routingKey, "fallback")
		p.log.WarnContext(ctx, "发布事件到RabbitMQ失败,改为进程内分发", "event", e.String(), "error", err)
		p.fallback.Publish(ctx, e)
	}
}
