package mockserver

import (
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// GroupStore holds the newsgroups a mock server carries, as a single
// JSON document keyed by group name:
//
//   {"misc.test":{"count":1234,"low":3000234,"high":3002322}}
type GroupStore struct {
	mu     sync.Mutex
	values []byte
}

func NewGroupStore() *GroupStore {
	return &GroupStore{values: []byte(`{}`)}
}

// SetGroup adds or replaces a group.
func (s *GroupStore) SetGroup(name string, count, low, high int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := sjson.SetBytes(s.values, path(name)+".count", count)
	if err != nil {
		return err
	}
	values, err = sjson.SetBytes(values, path(name)+".low", low)
	if err != nil {
		return err
	}
	values, err = sjson.SetBytes(values, path(name)+".high", high)
	if err != nil {
		return err
	}

	s.values = values
	return nil
}

// Group looks a group up by name.
func (s *GroupStore) Group(name string) (count, low, high int64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := gjson.GetBytes(s.values, path(name))
	if !result.Exists() {
		return 0, 0, 0, false
	}

	return result.Get("count").Int(),
		result.Get("low").Int(),
		result.Get("high").Int(),
		true
}

// Names returns every carried group name.
func (s *GroupStore) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0)
	gjson.ParseBytes(s.values).ForEach(func(key, _ gjson.Result) bool {
		names = append(names, key.String())
		return true
	})

	return names
}

// Restore replaces the whole document, e.g. from a fixture file.
func (s *GroupStore) Restore(values []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = values
	return nil
}

// Backup returns the whole document.
func (s *GroupStore) Backup() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.values) == 0 {
		return []byte(`{}`)
	}

	return s.values
}

// path escapes a group name for use as a gjson path: group names are
// full of dots, which gjson would otherwise treat as separators.
func path(name string) string {
	return strings.ReplaceAll(name, ".", `\.`)
}
