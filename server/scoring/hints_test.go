package scoring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRevealTracker_SingleShot(t *testing.T) {
	tracker := NewRevealTracker()

	tracker.Reveal(1, 3, "creds=username:password")
	tracker.Reveal(1, 3, "creds=username:password") // 重复触发不重复入队

	got := tracker.DrainPending(1)
	assert.Equal(t, []string{"creds=username:password"}, got)

	// 第二次Drain为空
	assert.Empty(t, tracker.DrainPending(1))

	// Drain之后再次触发同一(team, flag)也不会重放
	tracker.Reveal(1, 3, "creds=username:password")
	assert.Empty(t, tracker.DrainPending(1))
}

func TestRevealTracker_MultipleFlagsAndTeams(t *testing.T) {
	tracker := NewRevealTracker()

	tracker.Reveal(1, 3, "first hint")
	tracker.Reveal(1, 4, "second hint\nacross two lines")
	tracker.Reveal(2, 3, "first hint")

	assert.Equal(t, []string{"first hint", "second hint\nacross two lines"}, tracker.DrainPending(1))
	assert.Equal(t, []string{"first hint"}, tracker.DrainPending(2))
}

func TestRevealTracker_ConcurrentReveal(t *testing.T) {
	tracker := NewRevealTracker()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Reveal(9, 3, "payload")
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"payload"}, tracker.DrainPending(9))
}
