package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/xiebiao/library/internal/domain/event"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

const tracerName = "github.com/xiebiao/library/internal/application/reconcile"

// Handler 修正任务处理
type Handler interface {
	Handle(ctx context.Context, e event.Event) (Outcome, error)
}

// Dispatcher 进程内任务队列
// 按实体键(book:ID / shelf:ID)分片,同一实体的任务落在同一个worker上,
// 按发布顺序串行执行;不同实体并行。
// Publish从不阻塞调用方:分片队列已满时丢弃并计数,
// 丢弃的修正会在该实体下一次变化时被补上。
type Dispatcher struct {
	handler Handler
	shards  []chan event.Event
	log     *slog.Logger
}

// NewDispatcher 创建分发器,workers为分片数,queueSize为每个分片的队列长度
func NewDispatcher(handler Handler, workers, queueSize int, log *slog.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	shards := make([]chan event.Event, workers)
	for i := range shards {
		shards[i] = make(chan event.Event, queueSize)
	}
	return &Dispatcher{handler: handler, shards: shards, log: log}
}

// Publish 实现event.Publisher
func (d *Dispatcher) Publish(ctx context.Context, events ...event.Event) {
	for _, e := range events {
		select {
		case d.shard(e) <- e:
			metrics.AddReconcileQueueDepth(1)
		default:
			metrics.IncReconcileDropped()
			d.log.ErrorContext(ctx, "修正任务队列已满,丢弃事件", "event", e.String())
		}
	}
}

// Run 启动所有worker,阻塞到ctx取消
// 退出前处理完已入队的任务,已提交的变更不会丢失修正
func (d *Dispatcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i, queue := range d.shards {
		g.Go(func() error {
			d.log.Debug("修正任务worker启动", "shard", i)
			d.work(ctx, queue)
			return nil
		})
	}
	return g.Wait()
}

func (d *Dispatcher) work(ctx context.Context, queue chan event.Event) {
	for {
		select {
		case e := <-queue:
			metrics.AddReconcileQueueDepth(-1)
			_ = d.Process(ctx, e)
		case <-ctx.Done():
			d.drain(context.WithoutCancel(ctx), queue)
			return
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context, queue chan event.Event) {
	for {
		select {
		case e := <-queue:
			metrics.AddReconcileQueueDepth(-1)
			_ = d.Process(ctx, e)
		default:
			return
		}
	}
}

// Process 同步执行一个修正任务(记录span、指标与失败日志)
// RabbitMQ消费者直接调用,以便失败时重新入队
func (d *Dispatcher) Process(ctx context.Context, e event.Event) error {
	kind := metricKind(e.Kind)
	ctx, span := tracing.StartSpan(ctx, tracerName, "reconcile."+kind,
		attribute.String("event", e.String()),
	)
	start := time.Now()

	outcome, err := d.handler.Handle(ctx, e)
	tracing.EndSpan(span, err)

	switch {
	case err != nil:
		metrics.ObserveReconcileTask(kind, "failure", time.Since(start))
		d.log.ErrorContext(ctx, "修正任务失败",
			"kind", e.Kind,
			"book_id", e.BookID,
			"shelf_id", e.ShelfID,
			"user_id", e.UserID,
			"error", err,
		)
	case outcome == OutcomeSkipped:
		metrics.ObserveReconcileTask(kind, "skipped", time.Since(start))
		d.log.DebugContext(ctx, "实体已删除,跳过修正", "event", e.String())
	default:
		metrics.ObserveReconcileTask(kind, "success", time.Since(start))
	}
	return err
}

func (d *Dispatcher) shard(e event.Event) chan event.Event {
	return d.shards[xxhash.Sum64String(e.Key())%uint64(len(d.shards))]
}
