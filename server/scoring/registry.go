package scoring

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Registry Flag注册表：提交文本 -> Flag
type Registry interface {
	Lookup(ctx context.Context, text string) (Flag, bool, error)
}

// PostgresRegistry 基于flags表的只读实现
type PostgresRegistry struct {
	db *sql.DB
}

func NewPostgresRegistry(db *sql.DB) *PostgresRegistry {
	return &PostgresRegistry{db: db}
}

// Lookup 精确匹配查找，未命中是正常结果而不是错误
func (r *PostgresRegistry) Lookup(ctx context.Context, text string) (Flag, bool, error) {
	var f Flag
	err := r.db.QueryRowContext(ctx,
		`SELECT id, points FROM flags WHERE flag_text = $1`, text).Scan(&f.ID, &f.Points)
	if errors.Is(err, sql.ErrNoRows) {
		return Flag{}, false, nil
	}
	if err != nil {
		return Flag{}, false, fmt.Errorf("lookup flag: %v", err)
	}
	return f, true, nil
}
