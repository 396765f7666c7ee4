package db

import (
	"bookstore/internal/config"
	"bookstore/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if !cfg.IsProd() {
		logLevel = logger.Info
	}

	return gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logLevel),
	})
}

// 全テーブルのモデル
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Book{},
		&model.BookFormat{},
		&model.Order{},
		&model.OrderItem{},
		&model.Purchase{},
		&model.PaymentEvent{},
		&model.AuditLog{},
	}
}

// テーブル作成・更新
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
