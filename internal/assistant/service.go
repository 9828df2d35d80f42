// internal/assistant/service.go

package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gatherlyhq/gatherly-backend/internal/admin"
)

var ErrEmptyConversation = errors.New("conversation must contain at least one user message")

// DefaultSystemPrompt frames the assistant for admins. Deployments
// override it through configuration rather than editing code.
const DefaultSystemPrompt = `You are an analytics assistant for a community-event platform.
Answer the administrator's questions using only the statistics snapshot below.
Be concise and concrete; quote numbers from the snapshot. If the snapshot
does not contain the answer, say so instead of guessing.

Current platform statistics:
%s`

// StatsSource supplies the snapshot injected into every conversation
type StatsSource interface {
	GetPlatformStats(ctx context.Context) (*admin.PlatformStats, error)
}

type Service struct {
	provider     Provider
	stats        StatsSource
	systemPrompt string
	maxHistory   int
}

func NewService(provider Provider, stats StatsSource, systemPrompt string) *Service {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &Service{
		provider:     provider,
		stats:        stats,
		systemPrompt: systemPrompt,
		maxHistory:   20,
	}
}

// Chat answers the latest user message in the context of the
// conversation history, grounded on a fresh stats snapshot.
func (s *Service) Chat(ctx context.Context, history []Message) (*Message, error) {
	if !hasUserMessage(history) {
		return nil, ErrEmptyConversation
	}

	if len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}

	stats, err := s.stats.GetPlatformStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats snapshot: %w", err)
	}

	snapshot, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return nil, err
	}

	prompt := s.systemPrompt
	if strings.Contains(prompt, "%s") {
		prompt = fmt.Sprintf(prompt, snapshot)
	} else {
		prompt = prompt + "\n\n" + string(snapshot)
	}

	reply, err := s.provider.Generate(ctx, prompt, history)
	if err != nil {
		return nil, err
	}

	return &Message{Role: "assistant", Content: reply}, nil
}

func hasUserMessage(history []Message) bool {
	for _, m := range history {
		if m.Role == "user" && strings.TrimSpace(m.Content) != "" {
			return true
		}
	}
	return false
}
