//go:build wireinject
// +build wireinject

// Wire依赖注入配置
// 运行 `wire gen ./cmd/api` 生成wire_gen.go；main.go中的newHandlers是等价的手动组装

package main

import (
	"log/slog"

	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/application"
	appbook "github.com/xiebiao/library/internal/application/book"
	applending "github.com/xiebiao/library/internal/application/lending"
	appreservation "github.com/xiebiao/library/internal/application/reservation"
	appsettings "github.com/xiebiao/library/internal/application/settings"
	appshelf "github.com/xiebiao/library/internal/application/shelf"
	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/domain/event"
	"github.com/xiebiao/library/internal/domain/settings"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/router"
)

// repositorySet 仓储与事务管理器
var repositorySet = wire.NewSet(
	mysql.NewBookRepository,
	mysql.NewShelfRepository,
	mysql.NewUserRepository,
	mysql.NewLendingRepository,
	mysql.NewReservationRepository,
	mysql.NewSettingsRepository,
	mysql.NewTxManager,
	wire.Bind(new(application.Transactor), new(*mysql.TxManager)),
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	user.NewService,
	provideSettingsService,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewGetUserUseCase,
	appuser.NewListUsersUseCase,
	appuser.NewDeleteUserUseCase,
	appshelf.NewCreateShelfUseCase,
	appshelf.NewUpdateShelfUseCase,
	appshelf.NewDeleteShelfUseCase,
	appshelf.NewGetShelfUseCase,
	appshelf.NewListShelvesUseCase,
	appbook.NewCreateBookUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewMoveBookUseCase,
	appbook.NewDeleteBookUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewListBooksUseCase,
	applending.NewLendBookUseCase,
	applending.NewReturnBookUseCase,
	applending.NewPayLateFeeUseCase,
	applending.NewGetLateFeeUseCase,
	applending.NewListTransactionsUseCase,
	appreservation.NewReserveBookUseCase,
	appreservation.NewUpdateReservationUseCase,
	appreservation.NewCancelReservationUseCase,
	appreservation.NewListReservationsUseCase,
	appsettings.NewGetSettingsUseCase,
	appsettings.NewUpdateLateFeeUseCase,
	appsettings.NewUpdateLendDayUseCase,
	provideJWTManager,
	wire.Bind(new(appuser.SessionStore), new(sessionStore)),
)

// handlerSet HTTP处理器
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewShelfHandler,
	handler.NewBookHandler,
	handler.NewLendingHandler,
	handler.NewReservationHandler,
	handler.NewSettingsHandler,
	wire.Struct(new(router.Handlers), "*"),
)

// InitializeHandlers 组装全部HTTP处理器
// 缓存、会话存储和事件发布者由调用方按配置选择后传入
func InitializeHandlers(
	cfg *config.Config,
	db *gorm.DB,
	sessions sessionStore,
	cache settings.Cache,
	publisher event.Publisher,
	log *slog.Logger,
) router.Handlers {
	wire.Build(repositorySet, domainSet, applicationSet, handlerSet)
	return router.Handlers{}
}
