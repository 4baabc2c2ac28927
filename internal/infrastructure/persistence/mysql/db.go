package mysql

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/library/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架，TranslateError把唯一键冲突统一成gorm.ErrDuplicatedKey
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. database.driver=sqlite时使用本地文件，便于开发调试
func NewDB(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	if cfg.Database.Driver == "sqlite" {
		db, err := OpenSQLite(cfg.Database.SQLitePath, gormCfg)
		if err != nil {
			return nil, err
		}
		log.Info("SQLite数据库已打开", "path", cfg.Database.SQLitePath)
		return db, nil
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	log.Info("数据库连接成功", "host", cfg.Database.Host, "db", cfg.Database.DBName)

	// 生产环境应使用版本化的迁移脚本
	if cfg.Database.AutoMigrate {
		if err := autoMigrate(db); err != nil {
			return nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
	}

	return db, nil
}

// OpenSQLite 打开SQLite数据库并建表
// SQLite不支持行锁，这里限制为单连接，事务天然串行
func OpenSQLite(path string, gormCfg *gorm.Config) (*gorm.DB, error) {
	if gormCfg == nil {
		gormCfg = &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		}
	}
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("打开SQLite失败: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}
	return db, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&ShelfModel{},
		&BookModel{},
		&LendTransactionModel{},
		&ReservationModel{},
		&SettingModel{},
	)
}

// =========================================
// GORM模型
// =========================================
// 墓碑删除：DeletedAt为删除时的unix秒，未删除为0。
// 唯一索引带上deleted_at，只约束未删除的记录（NULL在唯一索引里互不相等，所以不用NULL）。

// UserModel 用户
type UserModel struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"uniqueIndex:uk_users_email_deleted;size:100;not null;comment:邮箱"`
	Password  string    `gorm:"size:255;not null;comment:密码（bcrypt）"`
	Nickname  string    `gorm:"size:50;not null;comment:昵称"`
	Role      string    `gorm:"size:20;not null;default:ROLE_USER;comment:角色"`
	DeletedAt int64     `gorm:"uniqueIndex:uk_users_email_deleted;not null;default:0;comment:删除时间（0为未删除）"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (UserModel) TableName() string {
	return "users"
}

// ShelfModel 书架（物理删除，名称全局唯一）
type ShelfModel struct {
	ID                uint      `gorm:"primaryKey"`
	Name              string    `gorm:"uniqueIndex:uk_shelves_name;size:100;not null;comment:名称"`
	Capacity          int       `gorm:"not null;comment:容量"`
	AvailableCapacity int       `gorm:"not null;comment:剩余容量（派生值）"`
	CreatedAt         time.Time `gorm:"comment:创建时间"`
	UpdatedAt         time.Time `gorm:"comment:更新时间"`
}

func (ShelfModel) TableName() string {
	return "shelves"
}

// BookModel 图书
type BookModel struct {
	ID             uint      `gorm:"primaryKey"`
	ISBN           string    `gorm:"column:isbn;uniqueIndex:uk_books_isbn_deleted;size:20;not null;comment:ISBN"`
	Title          string    `gorm:"index:idx_books_title;size:200;not null;comment:书名"`
	Author         string    `gorm:"size:100;not null;comment:作者"`
	Publisher      string    `gorm:"size:100;comment:出版社"`
	Description    string    `gorm:"type:text;comment:简介"`
	TotalCount     int       `gorm:"not null;comment:总册数"`
	AvailableCount int       `gorm:"not null;comment:可借册数（派生值）"`
	ShelfID        uint      `gorm:"index:idx_books_shelf;not null;comment:书架ID"`
	DeletedAt      int64     `gorm:"uniqueIndex:uk_books_isbn_deleted;not null;default:0;comment:删除时间（0为未删除）"`
	CreatedAt      time.Time `gorm:"comment:创建时间"`
	UpdatedAt      time.Time `gorm:"comment:更新时间"`
}

func (BookModel) TableName() string {
	return "books"
}

// LendTransactionModel 借阅记录（永不删除）
type LendTransactionModel struct {
	ID           string          `gorm:"primaryKey;size:36;comment:UUID"`
	BookID       uint            `gorm:"index:idx_lend_book_returned;not null;comment:图书ID"`
	UserID       uint            `gorm:"index:idx_lend_user_returned;not null;comment:借阅人"`
	LenderID     uint            `gorm:"not null;comment:办理馆员"`
	LendDate     time.Time       `gorm:"not null;comment:借出时间"`
	DeadlineDate dateValue       `gorm:"type:date;not null;comment:截止日期"`
	ReturnDate   *time.Time      `gorm:"comment:归还时间"`
	LateFeePaid  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0;comment:已付滞纳金"`
	Returned     bool            `gorm:"index:idx_lend_book_returned;index:idx_lend_user_returned;not null;default:false;comment:是否归还"`
	CreatedAt    time.Time       `gorm:"comment:创建时间"`
	UpdatedAt    time.Time       `gorm:"comment:更新时间"`
}

func (LendTransactionModel) TableName() string {
	return "lend_transactions"
}

// ReservationModel 图书预约（取消即删除）
type ReservationModel struct {
	ID              uint      `gorm:"primaryKey"`
	BookID          uint      `gorm:"index:idx_reservation_book;not null;comment:图书ID"`
	UserID          uint      `gorm:"index:idx_reservation_user;not null;comment:用户ID"`
	ReservationDate dateValue `gorm:"type:date;index:idx_reservation_book;not null;comment:预约日期"`
	Completed       bool      `gorm:"not null;default:false;comment:是否完成"`
	CreatedAt       time.Time `gorm:"comment:创建时间"`
	UpdatedAt       time.Time `gorm:"comment:更新时间"`
}

func (ReservationModel) TableName() string {
	return "book_reservations"
}

// SettingModel 键值设置
type SettingModel struct {
	Key       string    `gorm:"column:setting_key;primaryKey;size:50"`
	Value     string    `gorm:"column:setting_value;size:255;not null"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (SettingModel) TableName() string {
	return "settings"
}
