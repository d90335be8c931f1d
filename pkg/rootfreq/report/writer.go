package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Encode renders r as two-space indented JSON. Non-ASCII text is written
// as-is.
func Encode(r *Report) ([]byte, error) {
	compact, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("indent report: %w", err)
	}
	return out.Bytes(), nil
}

// WriteJSON writes r to path, creating parent directories. The file is
// written to a temporary sibling and renamed into place, so path either
// holds a complete report or is left untouched.
func WriteJSON(path string, r *Report) error {
	p, err := Stage(path, r)
	if err != nil {
		return err
	}
	return p.Commit()
}

// Pending is a fully written report that has not been renamed to its final
// path yet.
type Pending struct {
	path string
	tmp  string
	done bool
}

// Stage encodes r into a temporary file next to path. Nothing is visible at
// path until Commit. Discard removes the temporary file.
func Stage(path string, r *Report) (*Pending, error) {
	data, err := Encode(r)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	p := &Pending{path: path, tmp: tmp.Name()}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		p.Discard()
		return nil, fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		p.Discard()
		return nil, fmt.Errorf("sync report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		p.Discard()
		return nil, fmt.Errorf("close report: %w", err)
	}
	if err := os.Chmod(p.tmp, 0o644); err != nil {
		p.Discard()
		return nil, fmt.Errorf("chmod report: %w", err)
	}
	return p, nil
}

// Commit renames the staged file into place.
func (p *Pending) Commit() error {
	if p.done {
		return fmt.Errorf("report %s already committed or discarded", p.path)
	}
	p.done = true
	if err := os.Rename(p.tmp, p.path); err != nil {
		os.Remove(p.tmp)
		return fmt.Errorf("rename report into place: %w", err)
	}
	return nil
}

// Discard drops the staged file. It is a no-op after Commit.
func (p *Pending) Discard() {
	if p.done {
		return
	}
	p.done = true
	os.Remove(p.tmp)
}

// ReadJSON loads a report written by WriteJSON.
func ReadJSON(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return &r, nil
}
