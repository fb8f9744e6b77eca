// persistence/gorm_postgresql.go
package persistence

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/duoparty/gameserver/models"
)

// GormCatalog 使用GORM的题库实现
type GormCatalog struct {
	db *gorm.DB
}

// NewGormCatalog 创建GORM PostgreSQL题库连接
func NewGormCatalog(host string, port int, user, password, dbname string) (*GormCatalog, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := db.AutoMigrate(&models.GormQuestion{}, &models.GormGameMode{}); err != nil {
		return nil, err
	}

	if err := seedGameModes(db); err != nil {
		return nil, err
	}

	return &GormCatalog{db: db}, nil
}

// seedGameModes 写入两个内建模式，已存在时跳过
func seedGameModes(db *gorm.DB) error {
	seeds := []models.GormGameMode{
		{
			ModeID:      "mode-chill",
			Slug:        "chill",
			Name:        "Chill",
			Description: "Questions tranquilles pour apprendre à se connaître",
			Emoji:       "😎",
		},
		{
			ModeID:      "mode-grrr",
			Slug:        "grrr",
			Name:        "Grrr",
			Description: "Questions et défis qui montent la température",
			Emoji:       "🔥",
		},
	}

	for _, seed := range seeds {
		var existing models.GormGameMode
		err := db.Where("slug = ?", seed.Slug).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&seed).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// FetchQuestions 按模式抽题，排除已用题目。可用数不足时返回少于 limit 条。
func (c *GormCatalog) FetchQuestions(ctx context.Context, mode string, excludeIDs []string, limit int) ([]models.Question, error) {
	query := c.db.WithContext(ctx).Where("mode = ?", mode)
	if len(excludeIDs) > 0 {
		query = query.Where("question_id NOT IN ?", excludeIDs)
	}

	var rows []models.GormQuestion
	if err := query.Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	questions := make([]models.Question, 0, len(rows))
	for i := range rows {
		questions = append(questions, rows[i].Question())
	}
	return questions, nil
}

func (c *GormCatalog) ListGameModes(ctx context.Context) ([]models.GameMode, error) {
	var rows []models.GormGameMode
	if err := c.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	modes := make([]models.GameMode, 0, len(rows))
	for i := range rows {
		modes = append(modes, rows[i].GameMode())
	}
	return modes, nil
}

func (c *GormCatalog) CountQuestions(ctx context.Context) (int64, error) {
	var count int64
	err := c.db.WithContext(ctx).Model(&models.GormQuestion{}).Count(&count).Error
	return count, err
}

// Close 关闭数据库连接
func (c *GormCatalog) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
