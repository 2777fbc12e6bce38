package recording

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions lists the recording file suffixes, lower-case.
var Extensions = []string{".bdf", ".edf"}

// IsRecordingFile reports whether path has a recording extension, in any case.
func IsRecordingFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Discover returns the sorted paths of all recording files below root. A
// root that does not exist yields an empty list.
func Discover(root string) ([]string, error) {
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}

	paths := []string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsRecordingFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("recording: scanning %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// Summary describes the contents of a data directory.
type Summary struct {
	Root           string         `json:"root"`
	TotalFiles     int            `json:"total_files"`
	RecordingFiles int            `json:"recording_files"`
	Subdirectories []string       `json:"subdirectories"`
	ByExtension    map[string]int `json:"files_by_extension"`
}

// Summarize walks root and counts files by lower-case extension. Unlike
// [Discover], a missing root is an error.
func Summarize(root string) (Summary, error) {
	s := Summary{
		Root:           root,
		Subdirectories: []string{},
		ByExtension:    map[string]int{},
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root {
				rel, err := filepath.Rel(root, path)
				if err != nil {
					return err
				}
				s.Subdirectories = append(s.Subdirectories, rel)
			}
			return nil
		}

		s.TotalFiles++
		s.ByExtension[strings.ToLower(filepath.Ext(path))]++
		if IsRecordingFile(path) {
			s.RecordingFiles++
		}
		return nil
	})
	if err != nil {
		return Summary{}, fmt.Errorf("recording: summarizing %s: %w", root, err)
	}

	sort.Strings(s.Subdirectories)
	return s, nil
}
