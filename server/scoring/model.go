package scoring

import "errors"

// Outcome 提交结果类型
type Outcome int

const (
	OutcomeInvalidFlag Outcome = iota
	OutcomeAlreadySolved
	OutcomeCredited
	OutcomeStorageError
)

// ErrDuplicateCredit 唯一约束冲突：该队伍已为该Flag记过分
// （并发重复提交时由存储层兜底，等同于已解出）
var ErrDuplicateCredit = errors.New("duplicate credit")

// Flag 注册表中的一条Flag
type Flag struct {
	ID     int64
	Points int
}

// Flash 一次性提示消息（随下一次dashboard渲染消费）
type Flash struct {
	Message string `json:"message"`
	Class   string `json:"class"` // success | error
}

// SideEffects 提交产生的副作用，由调用方落到会话层
type SideEffects struct {
	Flash   Flash
	Reveals []string // 本次新解锁的提示内容
}

// Result 提交结果
type Result struct {
	Outcome       Outcome
	FlagID        int64
	PointsAwarded int
	SideEffects   SideEffects
}

// TeamRank 排行榜一行
type TeamRank struct {
	Username string `json:"username"`
	Points   int    `json:"points"`
}
