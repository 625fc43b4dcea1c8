// Package dataset manages the benchmark dataset catalog: the
// datasets.json index at the data root and the per-dataset
// metadata.json files it points to.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Sentinel errors for conditions callers may need to handle differently.
var (
	ErrNotFound = errors.New("dataset: not found")
	ErrExists   = errors.New("dataset: already exists")
)

// Entry is one dataset's row in the catalog index.
type Entry struct {
	ID          string   `json:"id"`
	Language    string   `json:"language"`
	Category    string   `json:"category"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	VideoURL    string   `json:"video_url"`
	Duration    int      `json:"duration"`
	NumSpeakers int      `json:"num_speakers"`
	Path        string   `json:"path"`
	GroundTruth string   `json:"ground_truth"`
	Models      []string `json:"models"`
	Tags        []string `json:"tags"`
}

// Catalog is the datasets.json document.
type Catalog struct {
	Version    string            `json:"version"`
	Datasets   []Entry           `json:"datasets"`
	Languages  map[string]string `json:"languages"`
	Categories map[string]string `json:"categories"`
}

// Video describes the source recording.
type Video struct {
	URL      string `json:"url"`
	Duration int    `json:"duration"`
	Format   string `json:"format"`
}

// Speakers describes the reference speaker inventory.
type Speakers struct {
	Count  int      `json:"count"`
	Labels []string `json:"labels"`
}

// GroundTruth points at the human reference caption file.
type GroundTruth struct {
	Path           string `json:"path"`
	Format         string `json:"format"`
	Annotator      string `json:"annotator"`
	AnnotationDate string `json:"annotation_date"`
}

// ModelResult lists the hypothesis caption files one model produced.
// Files keys are variants such as "converted" and "aligned".
type ModelResult struct {
	Model string            `json:"model"`
	Files map[string]string `json:"files"`
}

// Metadata is the per-dataset metadata.json document.
type Metadata struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Language    string        `json:"language"`
	Video       Video         `json:"video"`
	Speakers    Speakers      `json:"speakers"`
	GroundTruth GroundTruth   `json:"ground_truth"`
	Results     []ModelResult `json:"results"`
	Tags        []string      `json:"tags"`
	Difficulty  string        `json:"difficulty"`
	Created     string        `json:"created"`
	Updated     string        `json:"updated"`
}

// Manager reads and writes one data root's catalog.
type Manager struct {
	root    string
	catalog Catalog
}

// Open loads the catalog under root. A missing datasets.json yields an
// empty catalog; a malformed one is an error.
func Open(root string) (*Manager, error) {
	m := &Manager{
		root: root,
		catalog: Catalog{
			Version:    "1.0.0",
			Languages:  map[string]string{},
			Categories: map[string]string{},
		},
	}

	data, err := os.ReadFile(m.indexPath())
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if err := json.Unmarshal(data, &m.catalog); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", m.indexPath(), err)
	}
	return m, nil
}

// Root returns the data root the manager was opened on.
func (m *Manager) Root() string {
	return m.root
}

func (m *Manager) indexPath() string {
	return filepath.Join(m.root, "datasets.json")
}

// List returns catalog entries, optionally filtered by exact language
// and category.
func (m *Manager) List(language, category string) []Entry {
	out := make([]Entry, 0, len(m.catalog.Datasets))
	for _, e := range m.catalog.Datasets {
		if language != "" && e.Language != language {
			continue
		}
		if category != "" && e.Category != category {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Get returns the catalog entry with the given id.
func (m *Manager) Get(id string) (Entry, error) {
	for _, e := range m.catalog.Datasets {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}

// Dir returns the dataset's directory under the data root.
func (m *Manager) Dir(e Entry) string {
	return filepath.Join(m.root, filepath.FromSlash(e.Path))
}

// Metadata loads the dataset's metadata.json.
func (m *Manager) Metadata(id string) (*Metadata, error) {
	e, err := m.Get(id)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(m.Dir(e), "metadata.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", path, err)
	}
	return &md, nil
}

// AddOptions carries the optional fields of a new dataset.
type AddOptions struct {
	Description string
	Duration    int
	Speakers    int
	Tags        []string
	Difficulty  string
}

// Add registers a new dataset: creates the
// <category>/<language>/<id> directory, writes its metadata.json, and
// appends the entry to the catalog. The id must be unused.
func (m *Manager) Add(id, name, language, category, videoURL string, opts AddOptions) (Entry, error) {
	if _, err := m.Get(id); err == nil {
		return Entry{}, fmt.Errorf("%w: %q", ErrExists, id)
	}
	if opts.Speakers == 0 {
		opts.Speakers = 1
	}
	if opts.Difficulty == "" {
		opts.Difficulty = "medium"
	}

	rel := category + "/" + language + "/" + id
	dir := filepath.Join(m.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Entry{}, fmt.Errorf("create dataset dir: %w", err)
	}

	now := time.Now().UTC().Format("2006-01-02")
	md := Metadata{
		ID:          id,
		Name:        name,
		Description: opts.Description,
		Language:    language,
		Video:       Video{URL: videoURL, Duration: opts.Duration, Format: "youtube"},
		Speakers:    Speakers{Count: opts.Speakers, Labels: []string{}},
		GroundTruth: GroundTruth{Path: "ground_truth.ass", Format: "ass", Annotator: "manual"},
		Results:     []ModelResult{},
		Tags:        opts.Tags,
		Difficulty:  opts.Difficulty,
		Created:     now,
		Updated:     now,
	}
	if md.Tags == nil {
		md.Tags = []string{}
	}
	if err := writeJSON(filepath.Join(dir, "metadata.json"), md); err != nil {
		return Entry{}, err
	}

	entry := Entry{
		ID:          id,
		Language:    language,
		Category:    category,
		Name:        name,
		Description: opts.Description,
		VideoURL:    videoURL,
		Duration:    opts.Duration,
		NumSpeakers: opts.Speakers,
		Path:        rel,
		GroundTruth: "ground_truth.ass",
		Models:      []string{},
		Tags:        md.Tags,
	}
	m.catalog.Datasets = append(m.catalog.Datasets, entry)
	if err := writeJSON(m.indexPath(), m.catalog); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
