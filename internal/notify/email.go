// Package notify implements the notification dispatch pipeline: emails
// are buffered during a unit of work, enqueued onto a Redis-backed job
// queue after the transaction commits, and delivered over SMTP by an
// out-of-process worker. Delivery is best-effort; failures are logged
// and never surface to the caller.
package notify

import (
	"sort"
	"strings"
	"time"
)

// Email is one notification job as carried on the queue.
type Email struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Recipients []string  `json:"recipients"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	Attempts   int       `json:"attempts"`
}

// NormalizeRecipients de-duplicates and drops blank addresses,
// returning a sorted list. An empty result means nothing to send.
func NormalizeRecipients(recipients []string) []string {
	seen := make(map[string]struct{}, len(recipients))
	out := make([]string, 0, len(recipients))
	for _, addr := range recipients {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}
