// Package history persists reading state between runs: per-document answer
// histories and the reader's settings, as JSON files under one directory.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/lumiread/lumiread/internal/lumidoc"
)

// Settings are the reader preferences that survive restarts.
type Settings struct {
	FontSize        int    `json:"font_size,omitempty"`
	Theme           string `json:"theme,omitempty"`
	SidebarTab      string `json:"sidebar_tab,omitempty"`
	CollapseOnOpen  bool   `json:"collapse_on_open,omitempty"`
	LastDocumentID  string `json:"last_document_id,omitempty"`
	PdftotextOnFail bool   `json:"pdftotext_on_fail,omitempty"`
}

type answerFile struct {
	DocID   string           `json:"doc_id"`
	Answers []lumidoc.Answer `json:"answers"`
}

// Store reads and writes history files under a directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// SaveAnswers writes a document's full answer history.
func (s *Store) SaveAnswers(docID string, answers []lumidoc.Answer) error {
	data, err := json.MarshalIndent(answerFile{DocID: docID, Answers: answers}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	return os.WriteFile(s.answerPath(docID), data, 0o644)
}

// LoadAnswers returns a document's stored history. A missing file means an
// empty history, not an error.
func (s *Store) LoadAnswers(docID string) ([]lumidoc.Answer, error) {
	data, err := os.ReadFile(s.answerPath(docID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}
	var file answerFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return file.Answers, nil
}

// AppendAnswer loads, appends, and rewrites a document's history.
func (s *Store) AppendAnswer(docID string, ans lumidoc.Answer) error {
	answers, err := s.LoadAnswers(docID)
	if err != nil {
		return err
	}
	return s.SaveAnswers(docID, append(answers, ans))
}

// DeleteAnswers removes a document's history file. Missing files are a no-op.
func (s *Store) DeleteAnswers(docID string) error {
	err := os.Remove(s.answerPath(docID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete history: %w", err)
	}
	return nil
}

// SaveSettings writes the reader settings.
func (s *Store) SaveSettings(settings Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	return os.WriteFile(filepath.Join(s.dir, "settings.json"), data, 0o644)
}

// LoadSettings returns the stored settings, or the zero value when none were
// saved yet.
func (s *Store) LoadSettings() (Settings, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, "settings.json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Settings{}, nil
		}
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

func (s *Store) answerPath(docID string) string {
	name := unsafePathChars.ReplaceAllString(docID, "_")
	return filepath.Join(s.dir, name+".answers.json")
}
