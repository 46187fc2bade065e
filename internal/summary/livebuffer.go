package summary

import "sync"

const truncationBanner = "... (truncated)\n"

// liveBuffer accumulates subprocess output for polling while the job runs.
// Only the newest maxChars are kept, older content is replaced by a banner.
// Append is safe for concurrent use, the subprocess backend writes from the
// stdout and stderr readers at once.
type liveBuffer struct {
	mu       sync.Mutex
	content  string
	maxChars int
}

func newLiveBuffer(maxChars int) *liveBuffer {
	return &liveBuffer{maxChars: maxChars}
}

// Append adds one output line
func (b *liveBuffer) Append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.content += line + "\n"
	if len(b.content) > b.maxChars {
		b.content = truncationBanner + b.content[len(b.content)-b.maxChars:]
	}
}

// String returns the captured tail
func (b *liveBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content
}
