package categories

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RustingSword/time-tracker/internal/config"
)

type fakePrompter struct {
	answers  map[string]string
	err      error
	calls    []string
	existing [][]string
}

func (f *fakePrompter) Prompt(activity string, existing []string) (string, error) {
	f.calls = append(f.calls, activity)
	f.existing = append(f.existing, existing)
	if f.err != nil {
		return "", f.err
	}
	return f.answers[activity], nil
}

func categoryFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app_categories.json")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	s := Load(categoryFile(t, ""), nil)
	assert.Equal(t, 0, s.Len())
}

func TestLoadInvalidFile(t *testing.T) {
	s := Load(categoryFile(t, "{not json"), nil)
	assert.Equal(t, 0, s.Len())
}

func TestResolveStoredDoesNotPrompt(t *testing.T) {
	p := &fakePrompter{}
	s := Load(categoryFile(t, `{"github.com": "Work"}`), p)

	category, err := s.Resolve("github.com")
	require.NoError(t, err)
	assert.Equal(t, "Work", category)

	category, err = s.Resolve("github.com")
	require.NoError(t, err)
	assert.Equal(t, "Work", category)
	assert.Empty(t, p.calls)
}

func TestResolvePromptsAndSaves(t *testing.T) {
	path := categoryFile(t, `{"github.com": "Work", "youtube.com": "Fun"}`)
	p := &fakePrompter{answers: map[string]string{"VSCode - main.go": "  Coding "}}
	s := Load(path, p)

	category, err := s.Resolve("VSCode - main.go")
	require.NoError(t, err)
	assert.Equal(t, "Coding", category)
	assert.Equal(t, []string{"VSCode - main.go"}, p.calls)
	assert.Equal(t, []string{"Fun", "Work"}, p.existing[0])

	reloaded := Load(path, nil)
	assert.Equal(t, 3, reloaded.Len())
	got, err := reloaded.Resolve("VSCode - main.go")
	require.NoError(t, err)
	assert.Equal(t, "Coding", got)

	// Second resolve hits the stored answer
	_, err = s.Resolve("VSCode - main.go")
	require.NoError(t, err)
	assert.Len(t, p.calls, 1)
}

func TestResolveUnknownNeverPrompts(t *testing.T) {
	p := &fakePrompter{}
	s := Load(categoryFile(t, ""), p)

	category, err := s.Resolve(config.UnknownCategory)
	require.NoError(t, err)
	assert.Equal(t, config.UnknownCategory, category)
	assert.Empty(t, p.calls)
}

func TestResolveEmptyAnswerNotStored(t *testing.T) {
	path := categoryFile(t, "")
	p := &fakePrompter{answers: map[string]string{}}
	s := Load(path, p)

	category, err := s.Resolve("kitty")
	require.NoError(t, err)
	assert.Equal(t, config.UnknownCategory, category)
	assert.Equal(t, 0, s.Len())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestResolvePromptError(t *testing.T) {
	p := &fakePrompter{err: errors.New("boom")}
	s := Load(categoryFile(t, ""), p)

	_, err := s.Resolve("kitty")
	assert.Error(t, err)
}

func TestResolveWithoutPrompter(t *testing.T) {
	path := categoryFile(t, "")
	s := Load(path, nil)

	category, err := s.Resolve("kitty")
	require.NoError(t, err)
	assert.Equal(t, config.UncategorizedCategory, category)
	assert.Equal(t, 0, s.Len())
}

func TestSaveFormat(t *testing.T) {
	path := categoryFile(t, "")
	p := &fakePrompter{answers: map[string]string{"écrire <notes>": "Écriture"}}
	s := Load(path, p)

	_, err := s.Resolve("écrire <notes>")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"écrire <notes>\": \"Écriture\"\n}\n", string(data))
}

func TestLinePrompter(t *testing.T) {
	var out strings.Builder
	p := NewLinePrompter(strings.NewReader("Work\nFun"), &out)

	got, err := p.Prompt("github.com", []string{"Fun", "Work"})
	require.NoError(t, err)
	assert.Equal(t, "Work", got)
	assert.Contains(t, out.String(), "github.com")
	assert.Contains(t, out.String(), "Fun, Work")

	// last line without trailing newline is still accepted
	got, err = p.Prompt("youtube.com", nil)
	require.NoError(t, err)
	assert.Equal(t, "Fun", got)

	_, err = p.Prompt("reddit.com", nil)
	assert.Error(t, err)
}

func TestPromptModel(t *testing.T) {
	m := newPromptModel("github.com", []string{"Work"})

	for _, r := range "wo" {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(promptModel)
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(promptModel)
	assert.Equal(t, "Work", m.input.Value())
	assert.Contains(t, m.View(), "github.com")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(promptModel)
	assert.True(t, m.done)
	assert.NotNil(t, cmd)
	assert.Empty(t, m.View())
}

func TestPromptModelAbort(t *testing.T) {
	m := newPromptModel("github.com", nil)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(promptModel)
	assert.True(t, m.aborted)
}

func TestComplete(t *testing.T) {
	existing := []string{"Fun", "Work", "Writing"}
	assert.Equal(t, "Work", complete("wo", existing))
	assert.Equal(t, "Writing", complete("WR", existing))
	assert.Equal(t, "", complete("x", existing))
	assert.Equal(t, "", complete("", existing))
}
