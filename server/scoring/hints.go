package scoring

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// HintCatalog Flag -> 提示内容 的数据驱动映射
type HintCatalog interface {
	Lookup(ctx context.Context, flagID int64) (string, bool, error)
}

// PostgresHintCatalog flag_hints表实现
type PostgresHintCatalog struct {
	db *sql.DB
}

func NewPostgresHintCatalog(db *sql.DB) *PostgresHintCatalog {
	return &PostgresHintCatalog{db: db}
}

func (h *PostgresHintCatalog) Lookup(ctx context.Context, flagID int64) (string, bool, error) {
	var payload string
	err := h.db.QueryRowContext(ctx,
		`SELECT payload FROM flag_hints WHERE flag_id = $1`, flagID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup hint: %v", err)
	}
	return payload, true, nil
}

type revealKey struct {
	teamID int64
	flagID int64
}

// RevealTracker 每队待展示提示的一次性集合。
// 同一(team, flag)重复触发不会重复入队；Drain后不再重放
// （提示内容按"不会再次展示"的约定一次性消费）。
type RevealTracker struct {
	mu       sync.Mutex
	pending  map[int64][]string
	revealed map[revealKey]bool
}

func NewRevealTracker() *RevealTracker {
	return &RevealTracker{
		pending:  make(map[int64][]string),
		revealed: make(map[revealKey]bool),
	}
}

// Reveal 将payload加入该队待展示集合，幂等
func (t *RevealTracker) Reveal(teamID, flagID int64, payload string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := revealKey{teamID: teamID, flagID: flagID}
	if t.revealed[key] {
		return
	}
	t.revealed[key] = true
	t.pending[teamID] = append(t.pending[teamID], payload)
}

// DrainPending 取出并清空该队待展示提示，单次消费
func (t *RevealTracker) DrainPending(teamID int64) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	payloads := t.pending[teamID]
	delete(t.pending, teamID)
	return payloads
}
