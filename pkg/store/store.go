package store

import (
	"errors"
	"os"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"clifton/pkg/utils"
)

// DefaultPath is the file used when no data file is configured.
const DefaultPath = "saved_people.json"

// People maps a person's name to their ordered top strengths.
type People map[string][]string

// Status tells apart the outcomes of reading the store file.
type Status int

const (
	// Missing means the file does not exist yet; the store is empty.
	Missing Status = iota
	// Loaded means the file was read and parsed.
	Loaded
	// Unreadable means the file exists but could not be read or parsed.
	Unreadable
)

func (s Status) String() string {
	switch s {
	case Missing:
		return "missing"
	case Loaded:
		return "loaded"
	case Unreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// Result is the outcome of Load. People is never nil.
type Result struct {
	People People
	Status Status
	Err    error
}

// Store persists people to a single JSON file.
type Store struct {
	path string
	mu   sync.Mutex
}

func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Load reads the store file. Failures are logged and reported in the
// result rather than returned.
func (s *Store) Load() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() Result {
	people, err := utils.Load[People](s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return Result{People: People{}, Status: Missing}
	case err != nil:
		log.Error("failed loading saved people", "path", s.path, "error", err)
		return Result{People: People{}, Status: Unreadable, Err: err}
	}
	if people == nil {
		people = People{}
	}
	return Result{People: people, Status: Loaded}
}

// Save inserts or replaces name's strengths and rewrites the file.
func (s *Store) Save(name string, strengths []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.load()
	if res.Status == Unreadable {
		log.Warn("refusing to overwrite unreadable store", "path", s.path, "name", name)
		return false
	}

	res.People[name] = slices.Clone(strengths)
	if err := utils.Save(s.path, res.People); err != nil {
		log.Error("failed saving person", "name", name, "error", err)
		return false
	}
	log.Info("person saved", "name", name, "people", len(res.People))
	return true
}

// Delete removes name. It reports false when name was not stored.
func (s *Store) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.load()
	if _, ok := res.People[name]; !ok {
		return false
	}

	delete(res.People, name)
	if err := utils.Save(s.path, res.People); err != nil {
		log.Error("failed deleting person", "name", name, "error", err)
		return false
	}
	log.Info("person deleted", "name", name, "people", len(res.People))
	return true
}

// Get returns the saved strengths for name.
func (s *Store) Get(name string) ([]string, bool) {
	v, ok := s.Load().People[name]
	return v, ok
}

// Names returns the saved names in sorted order.
func (s *Store) Names() []string {
	return s.Load().People.Names()
}

// Names returns the names in sorted order.
func (p People) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
