// internal/assistant/service_test.go

package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherlyhq/gatherly-backend/internal/admin"
)

type fakeStats struct {
	stats *admin.PlatformStats
	err   error
}

func (f *fakeStats) GetPlatformStats(ctx context.Context) (*admin.PlatformStats, error) {
	return f.stats, f.err
}

type capturingProvider struct {
	systemPrompt string
	history      []Message
	reply        string
	err          error
}

func (p *capturingProvider) Generate(ctx context.Context, systemPrompt string, history []Message) (string, error) {
	p.systemPrompt = systemPrompt
	p.history = history
	return p.reply, p.err
}

func TestChatInjectsStatsSnapshot(t *testing.T) {
	provider := &capturingProvider{reply: "There are 42 users."}
	stats := &fakeStats{stats: &admin.PlatformStats{TotalUsers: 42, TotalEvents: 7}}
	svc := NewService(provider, stats, "")

	reply, err := svc.Chat(context.Background(), []Message{
		{Role: "user", Content: "How many users do we have?"},
	})
	require.NoError(t, err)

	assert.Equal(t, "assistant", reply.Role)
	assert.Equal(t, "There are 42 users.", reply.Content)
	assert.Contains(t, provider.systemPrompt, `"total_users": 42`)
	assert.Contains(t, provider.systemPrompt, `"total_events": 7`)
}

func TestChatCustomSystemPrompt(t *testing.T) {
	provider := &capturingProvider{reply: "ok"}
	stats := &fakeStats{stats: &admin.PlatformStats{TotalUsers: 1}}
	svc := NewService(provider, stats, "Answer in French. Stats: %s")

	_, err := svc.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)

	assert.Contains(t, provider.systemPrompt, "Answer in French.")
	assert.Contains(t, provider.systemPrompt, `"total_users": 1`)
}

func TestChatRejectsEmptyConversation(t *testing.T) {
	svc := NewService(&capturingProvider{}, &fakeStats{stats: &admin.PlatformStats{}}, "")

	_, err := svc.Chat(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyConversation)

	_, err = svc.Chat(context.Background(), []Message{{Role: "assistant", Content: "hello"}})
	assert.ErrorIs(t, err, ErrEmptyConversation)
}

func TestChatStatsFailurePropagates(t *testing.T) {
	svc := NewService(&capturingProvider{}, &fakeStats{err: errors.New("db down")}, "")

	_, err := svc.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	assert.Error(t, err)
}

func TestChatTruncatesLongHistory(t *testing.T) {
	provider := &capturingProvider{reply: "ok"}
	svc := NewService(provider, &fakeStats{stats: &admin.PlatformStats{}}, "")

	var history []Message
	for i := 0; i < 30; i++ {
		history = append(history, Message{Role: "user", Content: "turn"})
	}

	_, err := svc.Chat(context.Background(), history)
	require.NoError(t, err)
	assert.Len(t, provider.history, 20)
}
