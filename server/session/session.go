package session

import "sync"

// Flash 一次性提示消息
type Flash struct {
	Message string `json:"message"`
	Class   string `json:"class"`
}

// FlashStore 按队伍暂存一次性提示，跨越提交到dashboard渲染的一个来回
type FlashStore struct {
	mu      sync.Mutex
	pending map[int64]Flash
}

func NewFlashStore() *FlashStore {
	return &FlashStore{pending: make(map[int64]Flash)}
}

// Set 覆盖该队伍当前待展示的提示
func (s *FlashStore) Set(teamID int64, f Flash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[teamID] = f
}

// Take 取出并清除，第二次调用返回 ok=false
func (s *FlashStore) Take(teamID int64) (Flash, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.pending[teamID]
	if ok {
		delete(s.pending, teamID)
	}
	return f, ok
}
