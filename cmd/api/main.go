// Command api 图书馆借阅服务
//
// @title                      Library API
// @version                    1.0
// @description                图书馆馆藏、借阅、预约服务
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/xiebiao/library/internal/application/reconcile"
	"github.com/xiebiao/library/internal/domain/event"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/messaging/rabbitmq"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/internal/interface/http/router"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/mq"
	"github.com/xiebiao/library/pkg/tracing"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "服务异常退出: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. 配置与日志
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, closeLog, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(log)

	log.Info("配置加载成功",
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"database", cfg.Database.Driver,
		"cache", cfg.Cache.Driver,
		"events", cfg.Events.Driver,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.InitMetrics()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Warn("关闭链路追踪失败", "error", err)
			}
		}()
		log.Info("链路追踪已启用", "endpoint", cfg.Tracing.Endpoint)
	}

	// 2. 基础设施
	db, err := mysql.NewDB(cfg, log)
	if err != nil {
		return err
	}

	sessions, cache, closeStores, err := provideStores(cfg, log)
	if err != nil {
		return err
	}
	defer closeStores()

	repos := repositories{
		books:        mysql.NewBookRepository(db),
		shelves:      mysql.NewShelfRepository(db),
		users:        mysql.NewUserRepository(db),
		lending:      mysql.NewLendingRepository(db),
		reservations: mysql.NewReservationRepository(db),
		settings:     mysql.NewSettingsRepository(db),
	}
	tx := mysql.NewTxManager(db)
	settingsService := provideSettingsService(cfg, repos.settings, cache, log)
	jwtManager := provideJWTManager(cfg)

	if err := ensureAdmin(ctx, cfg.Admin, repos.users, log); err != nil {
		return err
	}

	// 3. 修正任务：进程内分片worker，可选经RabbitMQ中转
	reconciler := reconcile.NewReconciler(repos.books, repos.shelves, repos.lending, repos.reservations, tx)
	dispatcher := reconcile.NewDispatcher(reconciler, cfg.Reconcile.Workers, cfg.Reconcile.QueueSize, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return dispatcher.Run(gctx) })

	var publisher event.Publisher = dispatcher
	if cfg.Events.Driver == "rabbitmq" {
		sender, err := mq.NewPublisher(cfg.Events.URL, cfg.Events.Exchange, "topic")
		if err != nil {
			return err
		}
		defer sender.Close()

		source, err := mq.NewConsumer(cfg.Events.URL, cfg.Events.Exchange, "topic", cfg.Events.Queue, rabbitmq.RoutingKeys(), log)
		if err != nil {
			return err
		}
		defer source.Close()

		publisher = rabbitmq.NewEventPublisher(sender, dispatcher, log)
		consumer := rabbitmq.NewEventConsumer(source, dispatcher)
		g.Go(func() error { return consumer.Run(gctx) })
		log.Info("事件经RabbitMQ分发", "exchange", cfg.Events.Exchange, "queue", cfg.Events.Queue)
	}

	// 4. HTTP
	handlers := newHandlers(repos, tx, settingsService, sessions, jwtManager, publisher, log)
	engine := router.New(cfg.Server.Mode, handlers, middleware.NewAuthMiddleware(jwtManager, sessions), log)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g.Go(func() error {
		log.Info("服务启动", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP服务失败: %w", err)
		}
		return nil
	})

	// 5. 优雅退出：先停HTTP，worker在ctx取消后处理完队列中剩余任务
	g.Go(func() error {
		<-gctx.Done()
		log.Info("正在关闭服务")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("服务已退出")
	return nil
}
