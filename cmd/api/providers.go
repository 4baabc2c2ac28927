package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xiebiao/library/internal/application"
	appbook "github.com/xiebiao/library/internal/application/book"
	applending "github.com/xiebiao/library/internal/application/lending"
	appreservation "github.com/xiebiao/library/internal/application/reservation"
	appsettings "github.com/xiebiao/library/internal/application/settings"
	appshelf "github.com/xiebiao/library/internal/application/shelf"
	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/event"
	"github.com/xiebiao/library/internal/domain/lending"
	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/domain/settings"
	"github.com/xiebiao/library/internal/domain/shelf"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/internal/interface/http/router"
	"github.com/xiebiao/library/pkg/jwt"
)

// sessionStore 登录会话 + Token黑名单
type sessionStore interface {
	appuser.SessionStore
	middleware.TokenBlacklist
}

// repositories 仓储集合
type repositories struct {
	books        book.Repository
	shelves      shelf.Repository
	users        user.Repository
	lending      lending.Repository
	reservations reservation.Repository
	settings     settings.Repository
}

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideStores 按cache.driver选择Redis或进程内实现
// 返回的closer在退出时关闭Redis连接
func provideStores(cfg *config.Config, log *slog.Logger) (sessionStore, settings.Cache, func() error, error) {
	if cfg.Cache.Driver == "memory" {
		log.Info("使用进程内缓存")
		return memory.NewSessionStore(), memory.NewSettingsCache(), func() error { return nil }, nil
	}

	client, err := redis.NewClient(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return redis.NewSessionStore(client), redis.NewSettingsCache(client, log), client.Close, nil
}

// provideSettingsService 设置服务（带缓存TTL）
func provideSettingsService(cfg *config.Config, repo settings.Repository, cache settings.Cache, log *slog.Logger) settings.Service {
	return settings.NewService(repo, cache, cfg.Cache.TTL, log)
}

// newHandlers 手动组装 Repository ← Service ← UseCase ← Handler
// 与wire.go中的InitializeHandlers等价
func newHandlers(
	repos repositories,
	tx application.Transactor,
	settingsService settings.Service,
	sessions sessionStore,
	jwtManager *jwt.Manager,
	publisher event.Publisher,
	log *slog.Logger,
) router.Handlers {
	userService := user.NewService(repos.users)
	listBooks := appbook.NewListBooksUseCase(repos.books)

	return router.Handlers{
		User: handler.NewUserHandler(
			appuser.NewRegisterUseCase(userService),
			appuser.NewLoginUseCase(userService, jwtManager, sessions, log),
			appuser.NewLogoutUseCase(sessions, jwtManager),
			appuser.NewGetUserUseCase(repos.users),
			appuser.NewListUsersUseCase(repos.users),
			appuser.NewDeleteUserUseCase(repos.users, tx),
		),
		Shelf: handler.NewShelfHandler(
			appshelf.NewCreateShelfUseCase(repos.shelves),
			appshelf.NewUpdateShelfUseCase(repos.shelves, repos.books, tx, publisher),
			appshelf.NewDeleteShelfUseCase(repos.shelves, repos.books, tx),
			appshelf.NewGetShelfUseCase(repos.shelves),
			appshelf.NewListShelvesUseCase(repos.shelves),
			listBooks,
		),
		Book: handler.NewBookHandler(
			appbook.NewCreateBookUseCase(repos.books, repos.shelves, tx, publisher),
			appbook.NewUpdateBookUseCase(repos.books, repos.lending, tx, publisher),
			appbook.NewMoveBookUseCase(repos.books, repos.shelves, tx, publisher),
			appbook.NewDeleteBookUseCase(repos.books, repos.lending, tx, publisher),
			appbook.NewGetBookUseCase(repos.books),
			listBooks,
		),
		Lending: handler.NewLendingHandler(
			applending.NewLendBookUseCase(repos.books, repos.users, repos.lending, repos.reservations, settingsService, tx, publisher),
			applending.NewReturnBookUseCase(repos.lending, settingsService, tx, publisher),
			applending.NewPayLateFeeUseCase(repos.lending, settingsService, tx),
			applending.NewGetLateFeeUseCase(repos.lending, settingsService),
			applending.NewListTransactionsUseCase(repos.lending),
		),
		Reservation: handler.NewReservationHandler(
			appreservation.NewReserveBookUseCase(repos.books, repos.users, repos.lending, repos.reservations, tx),
			appreservation.NewUpdateReservationUseCase(repos.books, repos.lending, repos.reservations, tx),
			appreservation.NewCancelReservationUseCase(repos.reservations, tx),
			appreservation.NewListReservationsUseCase(repos.reservations),
		),
		Settings: handler.NewSettingsHandler(
			appsettings.NewGetSettingsUseCase(settingsService),
			appsettings.NewUpdateLateFeeUseCase(settingsService),
			appsettings.NewUpdateLendDayUseCase(settingsService),
		),
	}
}

// ensureAdmin 创建初始管理员，已存在时跳过
func ensureAdmin(ctx context.Context, cfg config.AdminConfig, users user.Repository, log *slog.Logger) error {
	if cfg.Email == "" || cfg.Password == "" {
		return nil
	}

	_, err := appuser.NewRegisterUseCase(user.NewService(users)).Execute(ctx, appuser.RegisterRequest{
		Email:    cfg.Email,
		Password: cfg.Password,
		Nickname: cfg.Nickname,
		Role:     user.RoleAdmin,
	})
	switch {
	case err == nil:
		log.Info("已创建初始管理员", "email", cfg.Email)
		return nil
	case errors.Is(err, user.ErrEmailDuplicate):
		return nil
	default:
		return fmt.Errorf("创建初始管理员失败: %w", err)
	}
}
