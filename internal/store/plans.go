package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/theirongolddev/goldplan/internal/model"
)

// ErrInvalidUser is returned for user identities that cannot name a plans file.
var ErrInvalidUser = errors.New("store: invalid user identity")

// Plans stores one plan collection per user identity as a JSON document.
type Plans struct {
	dir string
}

// NewPlans returns a plan store rooted at dir.
func NewPlans(dir string) *Plans {
	return &Plans{dir: dir}
}

// Dir returns the directory holding the plan documents.
func (s *Plans) Dir() string {
	return s.dir
}

// Path returns the plans file for a user.
func (s *Plans) Path(user string) (string, error) {
	if user == "" || user == "." || user == ".." || strings.ContainsAny(user, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidUser, user)
	}
	return filepath.Join(s.dir, "plans_user_"+user+".json"), nil
}

// LoadIssue records a plans file or entry that could not be read.
// ChildID is empty for file-level problems.
type LoadIssue struct {
	ChildID string
	Err     error
}

func (i LoadIssue) Error() string {
	if i.ChildID == "" {
		return i.Err.Error()
	}
	return fmt.Sprintf("plan %q: %v", i.ChildID, i.Err)
}

// LoadResult holds the plans that loaded and the entries that did not.
type LoadResult struct {
	Plans  model.PlanCollection
	Issues []LoadIssue
}

// Load reads a user's plan collection. A missing file is an empty
// collection. An unreadable file yields an empty collection and one
// file-level issue; a malformed entry is dropped and reported.
func (s *Plans) Load(user string) (LoadResult, error) {
	path, err := s.Path(user)
	if err != nil {
		return LoadResult{}, err
	}

	res := LoadResult{Plans: make(model.PlanCollection)}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return res, nil
	}
	if err != nil {
		res.Issues = append(res.Issues, LoadIssue{Err: fmt.Errorf("reading plans: %w", err)})
		return res, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		res.Issues = append(res.Issues, LoadIssue{Err: fmt.Errorf("parsing plans: %w", err)})
		return res, nil
	}

	for id, msg := range raw {
		plan, err := decodePlan(msg)
		if err != nil {
			res.Issues = append(res.Issues, LoadIssue{ChildID: id, Err: err})
			continue
		}
		res.Plans[id] = plan
	}
	sort.Slice(res.Issues, func(i, j int) bool {
		return res.Issues[i].ChildID < res.Issues[j].ChildID
	})
	return res, nil
}

// Save writes the full collection for a user, replacing the previous file.
func (s *Plans) Save(user string, plans model.PlanCollection) error {
	path, err := s.Path(user)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("creating plans dir: %w", err)
	}

	raw := make(map[string]planRecord, len(plans))
	for id, p := range plans {
		raw[id] = encodePlan(p)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(raw); err != nil {
		return fmt.Errorf("encoding plans: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".plans_user_*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing plans: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing plans: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing plans: %w", err)
	}
	return nil
}

// Users lists the user identities that have a plans file.
func (s *Plans) Users() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "plans_user_*.json"))
	if err != nil {
		return nil, err
	}
	users := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), "plans_user_"), ".json")
		users = append(users, name)
	}
	return users, nil
}
