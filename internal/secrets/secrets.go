// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads service credentials from a directory of plain-text
// files. Each file is one secret: the filename is the key, the trimmed
// contents the value. The forum client is the only credentialed collaborator
// today; its keys are the exported constants.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Keys the forum client reads for Discourse API authentication. Both are
// optional; public threads need neither.
const (
	ForumAPIKey      = "forum-api-key"
	ForumAPIUsername = "forum-api-username"
)

// Store holds loaded credentials by key.
type Store map[string]string

// Get returns the value for key, or fallback when the key is absent.
func (s Store) Get(key, fallback string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return fallback
}

// Keys returns the loaded key names, sorted.
func (s Store) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Load reads all files in dir into a Store. A missing directory is not an
// error; Load returns an empty Store. Unreadable files produce a warning on
// stderr but do not abort, and empty or dotfile entries are skipped.
func Load(dir string) (Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	store := make(Store)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			store[name] = value
		}
	}

	return store, nil
}
