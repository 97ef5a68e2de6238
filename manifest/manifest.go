// Package manifest persists a record of every removal attempt, so
// `--history` can answer "what did this tool delete, and when".
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dchest/safefile"
	"github.com/pkg/errors"
)

type Manifest struct {
	OperationID  string    `json:"operationId"`
	App          string    `json:"app"`
	BundleID     string    `json:"bundleId"`
	When         time.Time `json:"when"`
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	RemovedPaths []string  `json:"removedPaths"`
}

// Write saves one manifest atomically under dir and returns the file path.
// File names sort chronologically.
func Write(dir string, m Manifest) (string, error) {
	bs, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", errors.WithMessage(err, "marshalling removal manifest")
	}

	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return "", errors.WithMessage(err, "creating manifest folder")
	}

	shortID := m.OperationID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	name := fmt.Sprintf("removal-%s-%s.json", m.When.UTC().Format("20060102T150405"), shortID)
	path := filepath.Join(dir, name)

	f, err := safefile.Create(path, 0644)
	if err != nil {
		return "", errors.WithMessage(err, "creating manifest file")
	}
	defer f.Close()

	_, err = f.Write(bs)
	if err != nil {
		return "", errors.WithMessage(err, "writing manifest file")
	}

	err = f.Commit()
	if err != nil {
		return "", errors.WithMessage(err, "committing manifest file")
	}

	return path, nil
}

// List returns every manifest under dir, newest first. A missing folder
// just means no history yet. Unreadable entries are skipped.
func List(dir string) ([]Manifest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WithMessage(err, "reading manifest folder")
	}

	var manifests []Manifest
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "removal-") || !strings.HasSuffix(name, ".json") {
			continue
		}

		bs, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}

		var m Manifest
		if err := json.Unmarshal(bs, &m); err != nil {
			continue
		}
		manifests = append(manifests, m)
	}

	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].When.After(manifests[j].When)
	})

	return manifests, nil
}
