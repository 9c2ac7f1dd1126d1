package categories

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/RustingSword/time-tracker/internal/config"
	"github.com/RustingSword/time-tracker/internal/logging"
)

// Prompter asks the user which category an unseen activity belongs to
type Prompter interface {
	Prompt(activity string, existing []string) (string, error)
}

// Store is the persisted activity -> category map. Keys are only ever added.
type Store struct {
	path       string
	categories map[string]string
	prompter   Prompter
	log        zerolog.Logger
}

// Load reads the category file at path. A missing file starts an empty map;
// an unreadable or invalid one is logged and also starts empty. With a nil
// prompter unseen activities resolve to "Uncategorized" and are not saved.
func Load(path string, prompter Prompter) *Store {
	s := &Store{
		path:       path,
		categories: make(map[string]string),
		prompter:   prompter,
		log:        logging.For("categories"),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Error().Err(err).Str("path", path).Msg("Error loading categories")
		}
		return s
	}

	if err := json.Unmarshal(data, &s.categories); err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("Error loading categories")
		s.categories = make(map[string]string)
	}
	return s
}

// Resolve maps an activity to its category, prompting for unseen ones. A new
// answer is stored and the file saved right away so an interrupted analysis
// keeps what was entered.
func (s *Store) Resolve(activity string) (string, error) {
	if category, ok := s.categories[activity]; ok {
		return category, nil
	}

	if activity == config.UnknownCategory {
		return config.UnknownCategory, nil
	}

	if s.prompter == nil {
		return config.UncategorizedCategory, nil
	}

	answer, err := s.prompter.Prompt(activity, s.Categories())
	if err != nil {
		return "", errors.Wrapf(err, "failed to read category for %q", activity)
	}

	category := strings.TrimSpace(answer)
	if category == "" {
		return config.UnknownCategory, nil
	}

	s.categories[activity] = category
	if err := s.Save(); err != nil {
		s.log.Error().Err(err).Msg("Error saving categories")
	}
	return category, nil
}

// Categories returns the distinct category names, sorted
func (s *Store) Categories() []string {
	seen := make(map[string]struct{}, len(s.categories))
	for _, c := range s.categories {
		seen[c] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of mapped activities
func (s *Store) Len() int {
	return len(s.categories)
}

// Save writes the map as indented JSON, replacing the file atomically
func (s *Store) Save() error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(s.categories); err != nil {
		return errors.Wrap(err, "failed to encode categories")
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".categories-*.json")
	if err != nil {
		return errors.Wrap(err, "failed to create temp category file")
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to set category file mode")
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write categories")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to write categories")
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "failed to replace category file")
	}
	return nil
}
