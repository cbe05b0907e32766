package storage

import (
	"fmt"
	"os"
	"strings"
)

// Backend names a durable store implementation.
type Backend string

const (
	BackendNone   Backend = ""
	BackendBadger Backend = "badger"
	BackendPebble Backend = "pebble"
)

// DetectBackend inspects dir and returns the backend whose files it holds.
// A missing or empty directory yields BackendNone, as does a directory whose
// files match neither backend.
func DetectBackend(dir string) (Backend, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		// the backends create the directory on open
		return BackendNone, nil
	}
	if err != nil {
		return BackendNone, err
	}
	if !info.IsDir() {
		return BackendNone, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return BackendNone, err
	}

	// pebble keeps MANIFEST-<n> and CURRENT, badger a plain MANIFEST and KEYREGISTRY
	var pebbleManifest, current, badgerManifest, keyRegistry bool
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasPrefix(name, "MANIFEST-"):
			pebbleManifest = true
		case name == "CURRENT":
			current = true
		case name == "MANIFEST":
			badgerManifest = true
		case name == "KEYREGISTRY":
			keyRegistry = true
		}
	}

	switch {
	case pebbleManifest && current:
		return BackendPebble, nil
	case badgerManifest && keyRegistry:
		return BackendBadger, nil
	default:
		return BackendNone, nil
	}
}
