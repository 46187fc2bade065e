package summary

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLiveBufferAppend(t *testing.T) {
	buf := newLiveBuffer(1000)

	buf.Append("first")
	buf.Append("second")

	assert.Equal(t, "first\nsecond\n", buf.String())
}

func TestLiveBufferKeepsTail(t *testing.T) {
	buf := newLiveBuffer(100)

	for i := 0; i < 50; i++ {
		buf.Append(strings.Repeat("x", 10))
	}
	buf.Append("newest line")

	got := buf.String()
	assert.True(t, strings.HasPrefix(got, truncationBanner))
	assert.Contains(t, got, "newest line")
	assert.LessOrEqual(t, len(got), len(truncationBanner)+100)
}

func TestLiveBufferConcurrentAppend(t *testing.T) {
	buf := newLiveBuffer(100000)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				buf.Append("line")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, strings.Count(buf.String(), "line"))
}
