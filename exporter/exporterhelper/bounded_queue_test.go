// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package exporterhelper

import (
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedQueue(t *testing.T) {
	q := newBoundedQueue[string](2)
	require.NoError(t, q.push("a"))
	require.NoError(t, q.push("b"))
	assert.ErrorIs(t, q.push("c"), ErrQueueFull)
	assert.Equal(t, 2, q.size())

	assert.Equal(t, []string{"a", "b"}, q.drain())
	assert.Equal(t, 0, q.size())
	assert.Nil(t, q.drain())

	require.NoError(t, q.push("d"))
	assert.Equal(t, []string{"d"}, q.close())
	assert.ErrorIs(t, q.push("e"), ErrStopped)
	assert.Nil(t, q.close())
}

func TestBoundedQueueDrainDoesNotAlias(t *testing.T) {
	q := newBoundedQueue[int](4)
	require.NoError(t, q.push(1))
	first := q.drain()
	require.NoError(t, q.push(2))
	assert.Equal(t, []int{1}, first)
	assert.Equal(t, []int{2}, q.drain())
}

func TestBoundedQueueConcurrentProducers(t *testing.T) {
	const producers, perProducer = 8, 50
	q := newBoundedQueue[string](producers * perProducer)

	wg := sync.WaitGroup{}
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				assert.NoError(t, q.push(strconv.Itoa(p)+"-"+strconv.Itoa(i)))
			}
		}(p)
	}
	wg.Wait()

	items := q.drain()
	assert.Len(t, items, producers*perProducer)

	// Items of a single producer keep their relative order.
	last := map[string]int{}
	for _, it := range items {
		p, seq, ok := strings.Cut(it, "-")
		require.True(t, ok)
		i, err := strconv.Atoi(seq)
		require.NoError(t, err)
		if prev, seen := last[p]; seen {
			assert.Greater(t, i, prev)
		}
		last[p] = i
	}
}
