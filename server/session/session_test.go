package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlashStore_OneShot(t *testing.T) {
	store := NewFlashStore()

	store.Set(1, Flash{Message: "Congratulations! Flag found.", Class: "success"})

	f, ok := store.Take(1)
	assert.True(t, ok)
	assert.Equal(t, "Congratulations! Flag found.", f.Message)
	assert.Equal(t, "success", f.Class)

	// 消费后即清空
	_, ok = store.Take(1)
	assert.False(t, ok)
}

func TestFlashStore_SetOverwrites(t *testing.T) {
	store := NewFlashStore()

	store.Set(1, Flash{Message: "first", Class: "error"})
	store.Set(1, Flash{Message: "second", Class: "success"})

	f, ok := store.Take(1)
	assert.True(t, ok)
	assert.Equal(t, "second", f.Message)
}

func TestFlashStore_PerTeam(t *testing.T) {
	store := NewFlashStore()

	store.Set(1, Flash{Message: "for team one", Class: "success"})

	_, ok := store.Take(2)
	assert.False(t, ok)

	f, ok := store.Take(1)
	assert.True(t, ok)
	assert.Equal(t, "for team one", f.Message)
}
