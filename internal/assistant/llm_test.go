// internal/assistant/llm_test.go

package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGenaiRoleMapping(t *testing.T) {
	assert.Equal(t, genai.Role(genai.RoleModel), genaiRole("assistant"))
	assert.Equal(t, genai.Role(genai.RoleUser), genaiRole("user"))
	assert.Equal(t, genai.Role(genai.RoleUser), genaiRole(""))
}

func TestNewProviderDefaultsToMock(t *testing.T) {
	p, err := NewProvider("", "", "")
	require.NoError(t, err)
	assert.IsType(t, &mockProvider{}, p)
}

func TestNewProviderUnknown(t *testing.T) {
	_, err := NewProvider("clippy", "", "")
	assert.Error(t, err)
}

func TestNewProviderGeminiRequiresKey(t *testing.T) {
	_, err := NewProvider("gemini", "", "")
	assert.Error(t, err)
}
