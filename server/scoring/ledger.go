package scoring

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Ledger 提分台账：(team, flag) 记分事实的唯一来源
type Ledger interface {
	HasCredit(ctx context.Context, teamID, flagID int64) (bool, error)
	// ApplyCredit 原子记分：插入submissions行并给队伍加分。
	// (team, flag) 已存在时返回 ErrDuplicateCredit，不产生任何变更。
	ApplyCredit(ctx context.Context, teamID, flagID int64, points int) error
}

// PostgresLedger submissions表 + users.points 的事务实现
type PostgresLedger struct {
	db *sql.DB
}

func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) HasCredit(ctx context.Context, teamID, flagID int64) (bool, error) {
	var id int64
	err := l.db.QueryRowContext(ctx,
		`SELECT id FROM submissions WHERE team_id = $1 AND flag_id = $2`, teamID, flagID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query submission: %v", err)
	}
	return true, nil
}

// ApplyCredit 插分与加分必须同事务提交：
// 台账行和积分要么都落库要么都不落，崩溃或约束冲突不留半截状态。
// 加分用相对更新（points = points + $1），不做读改写，
// 唯一约束 UNIQUE(team_id, flag_id) 由 ON CONFLICT DO NOTHING 显式吃掉，
// 0行受影响即并发重复提交。
func (l *PostgresLedger) ApplyCredit(ctx context.Context, teamID, flagID int64, points int) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %v", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO submissions (team_id, flag_id) VALUES ($1, $2)
		 ON CONFLICT (team_id, flag_id) DO NOTHING`, teamID, flagID)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert submission: %v", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		tx.Rollback()
		return ErrDuplicateCredit
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET points = points + $1, last_submission = NOW() WHERE id = $2`,
		points, teamID)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("update points: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit credit: %v", err)
	}
	return nil
}
