package shard

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoAdmitsOneWriterAtATime(t *testing.T) {
	sh := New()

	const writers = 64
	var inside, peak, total int

	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sh.Do(func() error {
				inside++
				if inside > peak {
					peak = inside
				}
				total++
				inside--
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, peak)
	assert.Equal(t, writers, total)
}

func TestDoReturnsCallbackError(t *testing.T) {
	sh := New()

	sentinel := errors.New("boom")
	require.ErrorIs(t, sh.Do(func() error { return sentinel }), sentinel)
	require.NoError(t, sh.Do(func() error { return nil }))
}
