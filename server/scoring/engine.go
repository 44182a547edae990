package scoring

import (
	"context"
	"errors"
	"log"
	"strings"
)

// 提示消息文案
const (
	msgInvalidFlag   = "That's not the right flag. Keep trying!"
	msgAlreadySolved = "You've already submitted this flag!"
	msgCredited      = "Congratulations! Flag found."
	msgStorageError  = "A database error occurred. Please try again."
)

// Engine 记分引擎：校验提交、查重、原子记分并产出副作用
type Engine struct {
	registry Registry
	ledger   Ledger
	hints    HintCatalog
	tracker  *RevealTracker
}

func NewEngine(registry Registry, ledger Ledger, hints HintCatalog, tracker *RevealTracker) *Engine {
	return &Engine{
		registry: registry,
		ledger:   ledger,
		hints:    hints,
		tracker:  tracker,
	}
}

// Tracker 暴露给dashboard渲染层做单次消费
func (e *Engine) Tracker() *RevealTracker {
	return e.tracker
}

// SubmitFlag 处理一次Flag提交。
// 只去除首尾空白，匹配按字节精确比较。
// 台账查后插之间的并发窗口由存储层唯一约束兜底，
// ErrDuplicateCredit 与已解出同等对待，不算存储故障。
func (e *Engine) SubmitFlag(ctx context.Context, teamID int64, rawInput string) Result {
	text := strings.TrimSpace(rawInput)

	flag, found, err := e.registry.Lookup(ctx, text)
	if err != nil {
		log.Printf("flag lookup error: %v", err)
		return storageErrorResult()
	}
	if !found {
		return Result{
			Outcome:     OutcomeInvalidFlag,
			SideEffects: SideEffects{Flash: Flash{Message: msgInvalidFlag, Class: "error"}},
		}
	}

	solved, err := e.ledger.HasCredit(ctx, teamID, flag.ID)
	if err != nil {
		log.Printf("credit check error: %v", err)
		return storageErrorResult()
	}
	if solved {
		return alreadySolvedResult(flag.ID)
	}

	if err := e.ledger.ApplyCredit(ctx, teamID, flag.ID, flag.Points); err != nil {
		if errors.Is(err, ErrDuplicateCredit) {
			return alreadySolvedResult(flag.ID)
		}
		log.Printf("apply credit error: %v", err)
		return storageErrorResult()
	}

	// 提示解锁尽力而为：失败只记日志，不影响已落库的记分
	reveals := e.revealHint(ctx, teamID, flag.ID)

	return Result{
		Outcome:       OutcomeCredited,
		FlagID:        flag.ID,
		PointsAwarded: flag.Points,
		SideEffects: SideEffects{
			Flash:   Flash{Message: msgCredited, Class: "success"},
			Reveals: reveals,
		},
	}
}

func (e *Engine) revealHint(ctx context.Context, teamID, flagID int64) []string {
	payload, found, err := e.hints.Lookup(ctx, flagID)
	if err != nil {
		log.Printf("hint lookup error (credit kept): %v", err)
		return nil
	}
	if !found {
		return nil
	}
	e.tracker.Reveal(teamID, flagID, payload)
	return []string{payload}
}

func alreadySolvedResult(flagID int64) Result {
	return Result{
		Outcome:     OutcomeAlreadySolved,
		FlagID:      flagID,
		SideEffects: SideEffects{Flash: Flash{Message: msgAlreadySolved, Class: "error"}},
	}
}

func storageErrorResult() Result {
	return Result{
		Outcome:     OutcomeStorageError,
		SideEffects: SideEffects{Flash: Flash{Message: msgStorageError, Class: "error"}},
	}
}
