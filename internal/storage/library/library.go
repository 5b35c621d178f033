// Package library stores datasheet records as YAML files on disk. The library
// root holds one sub-folder per army; each folder holds one file per unit.
package library

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/datasheet/internal/config"
	"github.com/cory-johannsen/datasheet/internal/game/unit"
)

// ErrUnitNotFound is returned when a record lookup yields no results.
var ErrUnitNotFound = errors.New("unit not found")

// ErrFolderNotFound is returned when a folder lookup yields no results.
var ErrFolderNotFound = errors.New("folder not found")

// ErrRecordExists is returned when a filename is already used in a folder.
var ErrRecordExists = errors.New("record already exists")

// ErrInvalidName is returned for folder or file names that cannot be stored.
var ErrInvalidName = errors.New("invalid name")

// Record is one stored unit.
type Record struct {
	// ID identifies the record for the lifetime of the Library. It is not persisted.
	ID uuid.UUID
	// Folder is the name of the folder holding the record.
	Folder string
	// Filename is the file name without extension.
	Filename string
	// Unit is the finalised unit.
	Unit unit.Unit
}

func (r *Record) clone() Record {
	return Record{ID: r.ID, Folder: r.Folder, Filename: r.Filename, Unit: r.Unit.Clone()}
}

// Library is an in-memory index of the records under one root directory.
// All methods are safe for concurrent use.
type Library struct {
	cfg    config.LibraryConfig
	logger *zap.Logger

	mu      sync.RWMutex
	folders map[string][]*Record
	byID    map[uuid.UUID]*Record
}

// Open loads every record under cfg.Root. Records that fail to parse or
// validate are skipped with a warning. Every loaded unit is re-finalised; a
// stored crusade weapon cache is never trusted.
//
// Precondition: cfg is valid; logger is non-nil.
// Postcondition: Returns a Library or a non-nil error if cfg.Root cannot be read.
func Open(cfg config.LibraryConfig, logger *zap.Logger) (*Library, error) {
	entries, err := os.ReadDir(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("reading library root %s: %w", cfg.Root, err)
	}

	l := &Library{
		cfg:     cfg,
		logger:  logger,
		folders: make(map[string][]*Record),
		byID:    make(map[uuid.UUID]*Record),
	}
	total := 0
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		n, err := l.loadFolder(entry.Name())
		if err != nil {
			return nil, err
		}
		total += n
	}
	logger.Info("library opened",
		zap.String("root", cfg.Root),
		zap.Int("folders", len(l.folders)),
		zap.Int("records", total),
	)
	return l, nil
}

func (l *Library) loadFolder(folder string) (int, error) {
	dir := filepath.Join(l.cfg.Root, folder)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading folder %s: %w", dir, err)
	}

	l.folders[folder] = nil
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, l.cfg.Extension) {
			continue
		}
		u, err := LoadUnitFromFile(filepath.Join(dir, name))
		if err != nil {
			l.logger.Warn("skipping record",
				zap.String("folder", folder),
				zap.String("file", name),
				zap.Error(err),
			)
			continue
		}
		l.insert(&Record{
			ID:       uuid.New(),
			Folder:   folder,
			Filename: strings.TrimSuffix(name, l.cfg.Extension),
			Unit:     u,
		})
	}
	l.logger.Debug("folder loaded", zap.String("folder", folder), zap.Int("records", len(l.folders[folder])))
	return len(l.folders[folder]), nil
}

// insert adds r to the index, keeping each folder sorted by filename.
//
// Precondition: l.mu is held for writing or l is not yet shared.
func (l *Library) insert(r *Record) {
	recs := append(l.folders[r.Folder], r)
	slices.SortFunc(recs, func(a, b *Record) int { return cmp.Compare(a.Filename, b.Filename) })
	l.folders[r.Folder] = recs
	l.byID[r.ID] = r
}

// remove drops r from the index.
//
// Precondition: l.mu is held for writing.
func (l *Library) remove(r *Record) {
	l.folders[r.Folder] = slices.DeleteFunc(l.folders[r.Folder], func(x *Record) bool { return x.ID == r.ID })
	delete(l.byID, r.ID)
}

// LoadUnitFromFile reads, validates, and finalises a single unit record.
//
// Precondition: path must point to a YAML unit record.
// Postcondition: Returns a finalised Unit or a non-nil error.
func LoadUnitFromFile(path string) (unit.Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return unit.Unit{}, fmt.Errorf("reading unit file %s: %w", path, err)
	}
	return LoadUnitFromBytes(data)
}

// LoadUnitFromBytes parses a unit record. Fields absent from data keep the
// defaults of unit.New.
//
// Postcondition: Returns a validated, finalised Unit or a non-nil error.
func LoadUnitFromBytes(data []byte) (unit.Unit, error) {
	u := unit.New()
	if err := yaml.Unmarshal(data, &u); err != nil {
		return unit.Unit{}, fmt.Errorf("parsing unit YAML: %w", err)
	}
	if err := u.Validate(); err != nil {
		return unit.Unit{}, fmt.Errorf("validating unit: %w", err)
	}
	u.Finalize()
	return u, nil
}

// MarshalUnit encodes u as a record. The crusade weapon cache is written as is.
func MarshalUnit(u unit.Unit) ([]byte, error) {
	data, err := yaml.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("encoding unit %q: %w", u.Name, err)
	}
	return data, nil
}

func validName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case name == "." || name == ".." || strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	return nil
}

func (l *Library) path(folder, filename string) string {
	return filepath.Join(l.cfg.Root, folder, filename+l.cfg.Extension)
}

// writeFile replaces path with data through a temporary file in the same
// directory, so a failed write leaves the previous record intact.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".record-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Folders returns the folder names in sorted order.
func (l *Library) Folders() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Sorted(maps.Keys(l.folders))
}

// Records returns copies of the records of folder, sorted by filename.
//
// Postcondition: Returns ErrFolderNotFound if folder is unknown.
func (l *Library) Records(folder string) ([]Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	recs, ok := l.folders[folder]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFolderNotFound, folder)
	}
	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = r.clone()
	}
	return out, nil
}

// Get returns a copy of the record with the given ID.
//
// Postcondition: Returns ErrUnitNotFound if no record has that ID.
func (l *Library) Get(id uuid.UUID) (Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, ok := l.byID[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: id %s", ErrUnitNotFound, id)
	}
	return r.clone(), nil
}

// Find returns a copy of the record stored as folder/filename.
//
// Postcondition: Returns ErrFolderNotFound or ErrUnitNotFound when absent.
func (l *Library) Find(folder, filename string) (Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, err := l.find(folder, filename)
	if err != nil {
		return Record{}, err
	}
	return r.clone(), nil
}

func (l *Library) find(folder, filename string) (*Record, error) {
	recs, ok := l.folders[folder]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFolderNotFound, folder)
	}
	for _, r := range recs {
		if r.Filename == filename {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrUnitNotFound, folder, filename)
}

// CreateFolder adds an empty folder.
//
// Precondition: name is a valid folder name.
// Postcondition: The directory exists on disk and in the index.
func (l *Library) CreateFolder(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.folders[name]; ok {
		return nil
	}
	if err := os.MkdirAll(filepath.Join(l.cfg.Root, name), 0o755); err != nil {
		return fmt.Errorf("creating folder %s: %w", name, err)
	}
	l.folders[name] = nil
	l.logger.Info("folder created", zap.String("folder", name))
	return nil
}

// NewUnit creates and writes a default unit named name.
//
// Precondition: folder exists; filename is a valid, unused file name.
// Postcondition: Returns the new record, or ErrFolderNotFound / ErrRecordExists / ErrInvalidName.
func (l *Library) NewUnit(folder, filename, name string) (Record, error) {
	if err := validName(filename); err != nil {
		return Record{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.folders[folder]; !ok {
		return Record{}, fmt.Errorf("%w: %q", ErrFolderNotFound, folder)
	}
	if _, err := l.find(folder, filename); err == nil {
		return Record{}, fmt.Errorf("%w: %s/%s", ErrRecordExists, folder, filename)
	}

	u := unit.New()
	u.Name = name
	u.Finalize()
	r := &Record{ID: uuid.New(), Folder: folder, Filename: filename, Unit: u}
	if err := l.write(r); err != nil {
		return Record{}, err
	}
	l.insert(r)
	l.logger.Info("unit created", zap.Stringer("id", r.ID), zap.String("folder", folder), zap.String("file", filename))
	return r.clone(), nil
}

func (l *Library) write(r *Record) error {
	data, err := MarshalUnit(r.Unit)
	if err != nil {
		return err
	}
	return writeFile(l.path(r.Folder, r.Filename), data)
}

// Save finalises u and stores it as record id under filename. When filename
// differs from the record's current one, the old file is removed.
//
// Precondition: u is canonical; filename is valid.
// Postcondition: Returns the stored record, or ErrUnitNotFound / ErrRecordExists / ErrInvalidName.
func (l *Library) Save(id uuid.UUID, filename string, u unit.Unit) (Record, error) {
	if err := validName(filename); err != nil {
		return Record{}, err
	}
	if err := u.Validate(); err != nil {
		return Record{}, fmt.Errorf("saving %s: %w", filename, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.byID[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: id %s", ErrUnitNotFound, id)
	}
	if other, err := l.find(r.Folder, filename); err == nil && other.ID != id {
		return Record{}, fmt.Errorf("%w: %s/%s", ErrRecordExists, r.Folder, filename)
	}

	u = u.Clone()
	u.Finalize()
	next := &Record{ID: id, Folder: r.Folder, Filename: filename, Unit: u}
	if err := l.write(next); err != nil {
		return Record{}, err
	}
	if r.Filename != filename {
		if err := os.Remove(l.path(r.Folder, r.Filename)); err != nil && !errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("removing previous record file",
				zap.String("folder", r.Folder),
				zap.String("file", r.Filename),
				zap.Error(err),
			)
		}
	}
	l.remove(r)
	l.insert(next)
	l.logger.Info("unit saved",
		zap.Stringer("id", id),
		zap.String("folder", next.Folder),
		zap.String("file", filename),
		zap.String("previous", r.Filename),
		zap.Bool("crusade", u.CrusadeUnit),
	)
	return next.clone(), nil
}

// Delete removes the record with the given ID from disk and from the index.
//
// Postcondition: Returns ErrUnitNotFound if no record has that ID.
func (l *Library) Delete(id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.byID[id]
	if !ok {
		return fmt.Errorf("%w: id %s", ErrUnitNotFound, id)
	}
	if err := os.Remove(l.path(r.Folder, r.Filename)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting %s/%s: %w", r.Folder, r.Filename, err)
	}
	l.remove(r)
	l.logger.Info("unit deleted", zap.Stringer("id", id), zap.String("folder", r.Folder), zap.String("file", r.Filename))
	return nil
}

// Refresh re-finalises every record and rewrites its file, bringing records
// written by older versions up to the current format.
//
// Postcondition: Returns the number of records written, or the first write error.
func (l *Library) Refresh() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, folder := range slices.Sorted(maps.Keys(l.folders)) {
		for _, r := range l.folders[folder] {
			r.Unit.Finalize()
			if err := l.write(r); err != nil {
				return n, err
			}
			n++
		}
	}
	l.logger.Info("library refreshed", zap.Int("records", n))
	return n, nil
}
