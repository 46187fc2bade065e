package summary

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/maxbolgarin/taskry/internal/model"
)

const (
	fingerprintLen   = 32
	messagePrefixLen = 200
)

// Fingerprint derives a stable identity from a snapshot's commits and pull
// requests. Collection order does not matter, request time does not enter,
// so the same activity set always maps to the same value.
func Fingerprint(snapshot *model.ActivitySnapshot) string {
	lines := make([]string, 0, len(snapshot.Commits)+len(snapshot.PullRequests))

	for _, commit := range snapshot.Commits {
		message := strings.TrimSpace(commit.Message)
		if len(message) > messagePrefixLen {
			message = message[:messagePrefixLen]
		}
		lines = append(lines, fmt.Sprintf("commit|%s|%s|%d", commit.Hash, message, commit.Timestamp.Unix()))
	}
	for _, pr := range snapshot.PullRequests {
		lines = append(lines, fmt.Sprintf("pr|%d|%s|%d", pr.Number, pr.State, pr.UpdatedAt.Unix()))
	}
	sort.Strings(lines)

	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}

// cacheKey identifies a cacheable result. Window bounds stay out, commit
// dates inside the fingerprint already pin the content, so an unchanged
// activity set hits across requests.
func cacheKey(repo string, window model.Window, fingerprint string) string {
	return fmt.Sprintf("%s:%s:%s", repo, window, fingerprint)
}
