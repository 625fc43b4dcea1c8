package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissingCatalog(t *testing.T) {
	m, err := Open(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, m.List("", ""))

	_, err = m.Get("anything")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenMalformedCatalog(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "datasets.json"), []byte("{nope"), 0o644))

	_, err := Open(root)
	assert.Error(t, err)
}

func TestAddAndReload(t *testing.T) {
	root := t.TempDir()
	m, err := Open(root)
	require.NoError(t, err)

	entry, err := m.Add("Night-Show-42", "Night Show Episode 42", "en", "alignment",
		"https://example.com/watch?v=ns42", AddOptions{Description: "late night talk", Duration: 1800})
	require.NoError(t, err)
	assert.Equal(t, "alignment/en/Night-Show-42", entry.Path)
	assert.Equal(t, "ground_truth.ass", entry.GroundTruth)
	assert.Equal(t, 1, entry.NumSpeakers)

	// Metadata lands inside the created directory.
	_, err = os.Stat(filepath.Join(root, "alignment", "en", "Night-Show-42", "metadata.json"))
	require.NoError(t, err)

	// A fresh manager sees the persisted entry.
	reloaded, err := Open(root)
	require.NoError(t, err)
	got, err := reloaded.Get("Night-Show-42")
	require.NoError(t, err)
	assert.Equal(t, entry, got)

	md, err := reloaded.Metadata("Night-Show-42")
	require.NoError(t, err)
	assert.Equal(t, "Night Show Episode 42", md.Name)
	assert.Equal(t, "medium", md.Difficulty)
	assert.Equal(t, "ass", md.GroundTruth.Format)
	assert.Empty(t, md.Results)
}

func TestAddDuplicate(t *testing.T) {
	m, err := Open(t.TempDir())
	require.NoError(t, err)

	_, err = m.Add("dup", "Dup", "en", "alignment", "https://example.com", AddOptions{})
	require.NoError(t, err)

	_, err = m.Add("dup", "Dup Again", "en", "alignment", "https://example.com", AddOptions{})
	assert.ErrorIs(t, err, ErrExists)
}

func TestListFilters(t *testing.T) {
	m, err := Open(t.TempDir())
	require.NoError(t, err)

	seed := []struct{ id, language, category string }{
		{"en-align", "en", "alignment"},
		{"zh-align", "zh", "alignment"},
		{"en-trans", "en", "transcription"},
	}
	for _, s := range seed {
		_, err := m.Add(s.id, s.id, s.language, s.category, "https://example.com", AddOptions{})
		require.NoError(t, err)
	}

	tests := []struct {
		name     string
		language string
		category string
		want     []string
	}{
		{"all", "", "", []string{"en-align", "zh-align", "en-trans"}},
		{"by language", "en", "", []string{"en-align", "en-trans"}},
		{"by category", "", "alignment", []string{"en-align", "zh-align"}},
		{"both", "en", "alignment", []string{"en-align"}},
		{"no match", "ja", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.List(tt.language, tt.category)
			ids := make([]string, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			if tt.want == nil {
				assert.Empty(t, ids)
				return
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestDetectLanguage(t *testing.T) {
	root := t.TempDir()
	m, err := Open(root)
	require.NoError(t, err)

	for _, s := range []struct{ id, language string }{
		{"Tokyo-Panel", "ja-JP"},
		{"Taipei-News", "zh-TW"},
		{"Keynote-2024", "en"},
	} {
		_, err := m.Add(s.id, s.id, s.language, "alignment", "https://example.com", AddOptions{})
		require.NoError(t, err)
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{"base subtag from regional tag", "data/alignment/ja/Tokyo-Panel/whisper.ass", "ja"},
		{"traditional chinese folds to zh", "results/Taipei-News/model.srt", "zh"},
		{"plain tag unchanged", "/abs/path/Keynote-2024/hyp.vtt", "en"},
		{"no dataset in path", "somewhere/else.ass", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(root, tt.path))
		})
	}

	t.Run("missing catalog", func(t *testing.T) {
		assert.Equal(t, "", DetectLanguage(t.TempDir(), "data/Tokyo-Panel/whisper.ass"))
	})
}
