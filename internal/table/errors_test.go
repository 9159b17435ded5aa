package table

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatching(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("join: %w", ruleError(KindRoomFull, "This room is full", nil))
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, KindRoomFull, KindOf(err))
	assert.Equal(t, "join: This room is full", err.Error())

	assert.Equal(t, Kind(""), KindOf(errors.New("disk on fire")))
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	err := NotFound("room", "abc")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "room abc not found", err.Error())
	assert.Equal(t, "abc", err.Details["room_id"])
}

func TestRoomLocksAreReleased(t *testing.T) {
	t.Parallel()

	locks := newRoomLocks()
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("r1")
			counter++
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
	assert.Zero(t, locks.len())
}
