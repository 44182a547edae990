package scoring

import (
	"context"
	"database/sql"
	"fmt"
)

// Ranker 排行榜：积分降序，同分按先达到者（last_submission更早）在前
type Ranker interface {
	Rank(ctx context.Context) ([]TeamRank, error)
}

// PostgresRanker 只读快照查询，可被前端5秒轮询高频调用
type PostgresRanker struct {
	db *sql.DB
}

func NewPostgresRanker(db *sql.DB) *PostgresRanker {
	return &PostgresRanker{db: db}
}

// Rank 末位再按用户名排序，保证输出顺序全序、稳定
func (r *PostgresRanker) Rank(ctx context.Context) ([]TeamRank, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT username, points FROM users
		 WHERE role = 'user'
		 ORDER BY points DESC, last_submission ASC, username ASC`)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %v", err)
	}
	defer rows.Close()

	ranks := []TeamRank{}
	for rows.Next() {
		var tr TeamRank
		if err := rows.Scan(&tr.Username, &tr.Points); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %v", err)
		}
		ranks = append(ranks, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard: %v", err)
	}
	return ranks, nil
}
