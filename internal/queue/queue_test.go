package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPushPopOrder(t *testing.T) {
	q := New[int]()
	assert.True(t, q.Empty())

	q.Push(1, 2, 3)
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 1, q.Pop())
	assert.Equal(t, 2, q.Pop())
	assert.Equal(t, 3, q.Pop())
	assert.True(t, q.Empty())
}

func TestPopEmptyReturnsZero(t *testing.T) {
	q := New[string]()
	assert.Equal(t, "", q.Pop())
}

func TestDrain(t *testing.T) {
	q := New[int]()
	q.Push(4, 5, 6)

	got := q.Drain()
	assert.Equal(t, []int{4, 5, 6}, got)
	assert.True(t, q.Empty())
	assert.Empty(t, q.Drain())
}

func TestClear(t *testing.T) {
	q := New[int]()
	q.Push(1, 2)
	q.Clear()
	assert.True(t, q.Empty())
}

func TestConcurrentPush(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Push(j)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, q.Len())
}
