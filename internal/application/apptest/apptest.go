// Package apptest 用例测试的公共夹具
// 每个测试一个独立的SQLite数据库,仓储与事务管理器使用真实实现
package apptest

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/calendar"
	"github.com/xiebiao/library/internal/domain/event"
	"github.com/xiebiao/library/internal/domain/lending"
	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/domain/settings"
	"github.com/xiebiao/library/internal/domain/shelf"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/pkg/logger"
)

// Env 测试环境
type Env struct {
	DB           *gorm.DB
	Tx           *mysql.TxManager
	Books        book.Repository
	Shelves      shelf.Repository
	Users        user.Repository
	Lending      lending.Repository
	Reservations reservation.Repository
	Settings     settings.Service
	Events       *Recorder
}

// New 创建测试环境
func New(t testing.TB) *Env {
	t.Helper()
	db, err := mysql.OpenSQLite(filepath.Join(t.TempDir(), "library.db"), nil)
	require.NoError(t, err)

	return &Env{
		DB:           db,
		Tx:           mysql.NewTxManager(db),
		Books:        mysql.NewBookRepository(db),
		Shelves:      mysql.NewShelfRepository(db),
		Users:        mysql.NewUserRepository(db),
		Lending:      mysql.NewLendingRepository(db),
		Reservations: mysql.NewReservationRepository(db),
		Settings:     settings.NewService(mysql.NewSettingsRepository(db), memory.NewSettingsCache(), time.Minute, logger.Discard()),
		Events:       &Recorder{},
	}
}

// Shelf 新建书架
func (e *Env) Shelf(t testing.TB, name string, capacity int) *shelf.Shelf {
	t.Helper()
	s, err := shelf.NewShelf(name, capacity)
	require.NoError(t, err)
	require.NoError(t, e.Shelves.Create(context.Background(), s))
	return s
}

// Book 直接写入一本书(不经过容量检查,也不发事件)
func (e *Env) Book(t testing.TB, shelfID uint, isbn string, total int) *book.Book {
	t.Helper()
	b := book.NewBook(isbn, "书"+isbn, "作者", "出版社", "", total, shelfID)
	require.NoError(t, e.Books.Create(context.Background(), b))
	return b
}

// User 新建用户(密码字段不是真实哈希)
func (e *Env) User(t testing.TB, email string, role user.Role) *user.User {
	t.Helper()
	u := user.NewUser(email, "not-a-hash", "昵称"+email[:2], role)
	require.NoError(t, e.Users.Create(context.Background(), u))
	return u
}

// Loan 直接写入一条未归还的借阅
func (e *Env) Loan(t testing.TB, id string, bookID, userID, lenderID uint, lendAt time.Time, lendDays int) *lending.Transaction {
	t.Helper()
	tx := lending.NewTransaction(id, bookID, userID, lenderID, lendAt, lendDays)
	require.NoError(t, e.Lending.Create(context.Background(), tx))
	return tx
}

// Reservation 直接写入一条待处理预约
func (e *Env) Reservation(t testing.TB, bookID, userID uint, date calendar.Date, createdAt time.Time) *reservation.Reservation {
	t.Helper()
	r := reservation.NewReservation(bookID, userID, date, createdAt)
	require.NoError(t, e.Reservations.Create(context.Background(), r))
	return r
}

// ReloadBook 重新读取图书
func (e *Env) ReloadBook(t testing.TB, id uint) *book.Book {
	t.Helper()
	b, err := e.Books.FindByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

// ReloadShelf 重新读取书架
func (e *Env) ReloadShelf(t testing.TB, id uint) *shelf.Shelf {
	t.Helper()
	s, err := e.Shelves.FindByID(context.Background(), id)
	require.NoError(t, err)
	return s
}

// Recorder 记录发布的事件(event.Publisher)
type Recorder struct {
	mu     sync.Mutex
	events []event.Event
}

// Publish 实现event.Publisher
func (r *Recorder) Publish(_ context.Context, events ...event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

// Take 取出并清空已记录的事件
func (r *Recorder) Take() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := r.events
	r.events = nil
	return events
}

// Kinds 已记录事件的类型(不清空)
func (r *Recorder) Kinds() []event.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]event.Kind, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.Kind
	}
	return kinds
}

// 行锁名称
const (
	LockBook = "book"
	LockUser = "user"
)

// LockLog 记录用例获取行锁的顺序
type LockLog struct {
	mu    sync.Mutex
	order []string
}

func (l *LockLog) record(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.order = append(l.order, name)
}

// Order 已获取的行锁(按顺序)
func (l *LockLog) Order() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.order...)
}

// Books 包装图书仓储,LockByID时记录
func (l *LockLog) Books(repo book.Repository) book.Repository {
	return lockedBooks{Repository: repo, log: l}
}

// Users 包装读者仓储,LockByID时记录
func (l *LockLog) Users(repo user.Repository) user.Repository {
	return lockedUsers{Repository: repo, log: l}
}

type lockedBooks struct {
	book.Repository
	log *LockLog
}

func (r lockedBooks) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	r.log.record(LockBook)
	return r.Repository.LockByID(ctx, id)
}

type lockedUsers struct {
	user.Repository
	log *LockLog
}

func (r lockedUsers) LockByID(ctx context.Context, id uint) (*user.User, error) {
	r.log.record(LockUser)
	return r.Repository.LockByID(ctx, id)
}
