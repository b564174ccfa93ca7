package notify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ChatTarget is one delivery destination: a chat, optionally a thread
// within it.
type ChatTarget struct {
	ChatID   int64
	ThreadID *int64
}

func (t ChatTarget) String() string {
	if t.ThreadID != nil {
		return fmt.Sprintf("%d_%d", t.ChatID, *t.ThreadID)
	}
	return strconv.FormatInt(t.ChatID, 10)
}

var targetSeparator = regexp.MustCompile(`[,\s]+`)

// ParseChatTargets parses the ALERT_CHAT_ID format: chat ids separated by
// commas or whitespace, each optionally suffixed with "_<thread id>".
// An empty input yields no targets.
func ParseChatTargets(raw string) ([]ChatTarget, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var targets []ChatTarget
	for _, part := range targetSeparator.Split(raw, -1) {
		if part == "" {
			continue
		}

		if idx := strings.LastIndex(part, "_"); idx > 0 {
			chatID, err := strconv.ParseInt(part[:idx], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid chat target %q: %w", part, err)
			}
			threadID, err := strconv.ParseInt(part[idx+1:], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid chat target %q: %w", part, err)
			}
			targets = append(targets, ChatTarget{ChatID: chatID, ThreadID: &threadID})
			continue
		}

		chatID, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat target %q: %w", part, err)
		}
		targets = append(targets, ChatTarget{ChatID: chatID})
	}

	return targets, nil
}
