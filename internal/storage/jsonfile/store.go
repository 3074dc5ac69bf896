// Package jsonfile is a single-file storage.Provider for small setups and
// tests. Every mutation rewrites the whole file.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/storage"
)

const fileVersion = 1

type document struct {
	Version     int                          `json:"version"`
	KV          map[string]string            `json:"kv"`
	Tasks       map[string]models.Task       `json:"tasks"`
	Recurrences map[string]models.Recurrence `json:"recurrences"`
	FixedBlocks map[string]models.FixedBlock `json:"fixed_blocks"`
}

func newDocument() *document {
	return &document{
		Version:     fileVersion,
		KV:          make(map[string]string),
		Tasks:       make(map[string]models.Task),
		Recurrences: make(map[string]models.Recurrence),
		FixedBlocks: make(map[string]models.FixedBlock),
	}
}

type Store struct {
	mu   sync.RWMutex
	path string
	doc  *document
}

var _ storage.Provider = (*Store)(nil)

func New(path string) *Store {
	return &Store{path: path}
}

// Init creates the file, or loads it when it already exists, and fills in
// default settings.
func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		if err := s.Load(); err != nil {
			return err
		}
	} else {
		s.mu.Lock()
		s.doc = newDocument()
		err := s.save()
		s.mu.Unlock()
		if err != nil {
			return err
		}
	}

	return storage.EnsureDefaultSettings(s)
}

func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", s.path, storage.ErrNotInitialized)
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := newDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Version > fileVersion {
		return fmt.Errorf("storage file version (%d) is newer than supported version (%d) - please upgrade the application", doc.Version, fileVersion)
	}

	// null sections decode to nil maps
	if doc.KV == nil {
		doc.KV = make(map[string]string)
	}
	if doc.Tasks == nil {
		doc.Tasks = make(map[string]models.Task)
	}
	if doc.Recurrences == nil {
		doc.Recurrences = make(map[string]models.Recurrence)
	}
	if doc.FixedBlocks == nil {
		doc.FixedBlocks = make(map[string]models.FixedBlock)
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// save writes the document through a temp file and rename. Callers hold mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *Store) loaded() error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

func (s *Store) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.loaded(); err != nil {
		return "", false, err
	}
	v, ok := s.doc.KV[key]
	return v, ok, nil
}

func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return err
	}
	s.doc.KV[key] = value
	return s.save()
}

func (s *Store) AddTask(task models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return err
	}
	s.doc.Tasks[task.ID] = task
	return s.save()
}

func (s *Store) GetTask(id string) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.loaded(); err != nil {
		return models.Task{}, err
	}
	task, ok := s.doc.Tasks[id]
	if !ok || task.DeletedAt != nil {
		return models.Task{}, fmt.Errorf("task %s: %w", id, storage.ErrNotFound)
	}
	return task, nil
}

func (s *Store) GetAllTasks() ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.loaded(); err != nil {
		return nil, err
	}

	var tasks []models.Task
	for _, t := range s.doc.Tasks {
		if t.DeletedAt == nil {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch {
		case a.StartAt == nil && b.StartAt == nil:
			return a.ID < b.ID
		case a.StartAt == nil:
			return true
		case b.StartAt == nil:
			return false
		case !a.StartAt.Equal(*b.StartAt):
			return a.StartAt.Before(*b.StartAt)
		}
		return a.ID < b.ID
	})
	return tasks, nil
}

func (s *Store) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return err
	}
	task, ok := s.doc.Tasks[id]
	if !ok || task.DeletedAt != nil {
		return fmt.Errorf("task %s: %w", id, storage.ErrNotFound)
	}
	now := time.Now().UTC()
	task.DeletedAt = &now
	s.doc.Tasks[id] = task
	return s.save()
}

func (s *Store) AddRecurrence(rule models.Recurrence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return err
	}
	s.doc.Recurrences[rule.ID] = rule
	return s.save()
}

func (s *Store) GetRecurrence(id string) (models.Recurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.loaded(); err != nil {
		return models.Recurrence{}, err
	}
	rule, ok := s.doc.Recurrences[id]
	if !ok || rule.DeletedAt != nil {
		return models.Recurrence{}, fmt.Errorf("recurrence %s: %w", id, storage.ErrNotFound)
	}
	return rule, nil
}

func (s *Store) GetAllRecurrences() ([]models.Recurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.loaded(); err != nil {
		return nil, err
	}

	var rules []models.Recurrence
	for _, r := range s.doc.Recurrences {
		if r.DeletedAt == nil {
			rules = append(rules, r)
		}
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules, nil
}

func (s *Store) DeleteRecurrence(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return err
	}
	rule, ok := s.doc.Recurrences[id]
	if !ok || rule.DeletedAt != nil {
		return fmt.Errorf("recurrence %s: %w", id, storage.ErrNotFound)
	}
	now := time.Now().UTC()
	rule.DeletedAt = &now
	s.doc.Recurrences[id] = rule
	return s.save()
}

func (s *Store) AddFixedBlock(block models.FixedBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return err
	}
	s.doc.FixedBlocks[block.ID] = block
	return s.save()
}

func (s *Store) GetAllFixedBlocks() ([]models.FixedBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.loaded(); err != nil {
		return nil, err
	}

	var blocks []models.FixedBlock
	for _, b := range s.doc.FixedBlocks {
		if b.DeletedAt == nil {
			blocks = append(blocks, b)
		}
	}
	sort.Slice(blocks, func(i, j int) bool {
		if !blocks[i].StartAt.Equal(blocks[j].StartAt) {
			return blocks[i].StartAt.Before(blocks[j].StartAt)
		}
		return blocks[i].ID < blocks[j].ID
	})
	return blocks, nil
}

func (s *Store) DeleteFixedBlock(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return err
	}
	block, ok := s.doc.FixedBlocks[id]
	if !ok || block.DeletedAt != nil {
		return fmt.Errorf("fixed block %s: %w", id, storage.ErrNotFound)
	}
	now := time.Now().UTC()
	block.DeletedAt = &now
	s.doc.FixedBlocks[id] = block
	return s.save()
}
