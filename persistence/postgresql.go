// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq" // PostgreSQL 驱动

	"github.com/duoparty/gameserver/models"
)

// PostgreSQLCatalog 不经ORM的题库实现，通过 database.driver 配置选择
type PostgreSQLCatalog struct {
	db *sql.DB
}

// NewPostgreSQLCatalog 创建 PostgreSQL 题库连接
func NewPostgreSQLCatalog(host string, port int, user, password, dbname string) (*PostgreSQLCatalog, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// 初始化表结构
	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQLCatalog{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(db *sql.DB) error {
	// 创建题目表
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS gorm_questions (
            id SERIAL PRIMARY KEY,
            question_id TEXT UNIQUE NOT NULL,
            mode TEXT NOT NULL,
            content TEXT NOT NULL,
            type TEXT NOT NULL DEFAULT 'QUESTION',
            points INT NOT NULL DEFAULT 10,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            deleted_at TIMESTAMP
        )`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_gorm_questions_mode ON gorm_questions (mode)`)
	if err != nil {
		return err
	}

	// 创建游戏模式表
	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS gorm_game_modes (
            id SERIAL PRIMARY KEY,
            mode_id TEXT UNIQUE NOT NULL,
            slug TEXT UNIQUE NOT NULL,
            name TEXT NOT NULL,
            description TEXT,
            emoji TEXT,
            emoji_url TEXT,
            image_url TEXT,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            deleted_at TIMESTAMP
        )`)
	return err
}

// FetchQuestions 按模式抽题，排除已用题目
func (p *PostgreSQLCatalog) FetchQuestions(ctx context.Context, mode string, excludeIDs []string, limit int) ([]models.Question, error) {
	rows, err := p.db.QueryContext(ctx, `
        SELECT question_id, content, type, points
        FROM gorm_questions
        WHERE mode = $1
          AND deleted_at IS NULL
          AND NOT (question_id = ANY($2))
        LIMIT $3`,
		mode, pq.Array(excludeIDs), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.Content, &q.Type, &q.Points); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (p *PostgreSQLCatalog) ListGameModes(ctx context.Context) ([]models.GameMode, error) {
	rows, err := p.db.QueryContext(ctx, `
        SELECT mode_id, slug, name,
               COALESCE(description, ''), COALESCE(emoji, ''),
               COALESCE(emoji_url, ''), COALESCE(image_url, '')
        FROM gorm_game_modes
        WHERE deleted_at IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modes []models.GameMode
	for rows.Next() {
		var m models.GameMode
		if err := rows.Scan(&m.ID, &m.Slug, &m.Name, &m.Description, &m.Emoji, &m.EmojiURL, &m.ImageURL); err != nil {
			return nil, err
		}
		modes = append(modes, m)
	}
	return modes, rows.Err()
}

func (p *PostgreSQLCatalog) CountQuestions(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM gorm_questions WHERE deleted_at IS NULL`).Scan(&count)
	return count, err
}

// Close 关闭数据库连接
func (p *PostgreSQLCatalog) Close() error {
	return p.db.Close()
}
