// Package storage keeps recordings as WAV files in one directory.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/petems/wavrec/internal/wav"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// NameLayout is the time layout of recording file names.
const NameLayout = "2006_01_02_15_04_05.wav"

const ext = ".wav"

// FileName returns the recording name for a capture that ended at t.
func FileName(t time.Time) string {
	return t.Format(NameLayout)
}

// ErrStorage matches every Error.
var ErrStorage = errors.New("recording storage failure")

// Error reports a failed filesystem operation on a recording.
type Error struct {
	Op   string
	Name string
	Err  error
}

func (e *Error) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Name, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == ErrStorage
}

// Recording is one catalog entry.
type Recording struct {
	Name       string
	Size       int64
	ModTime    time.Time
	Descriptor wav.Descriptor
}

// UseFlexiblePath reports whether the recording needs the flexible playback
// device.
func (r Recording) UseFlexiblePath() bool {
	return r.Descriptor.SampleRate != 16000 || r.Descriptor.Channels != 1
}

// cacheSize bounds the number of parsed headers kept between refreshes.
const cacheSize = 512

// File is a recording opened for writing. Its earlier bytes can be
// patched, which the WAV writer needs.
type File = afero.File

// Store is the recording catalog.
type Store struct {
	fs    afero.Fs
	dir   string
	log   zerolog.Logger
	cache *lru.Cache[string, Recording]
}

// New opens the store rooted at dir, creating the directory if needed.
func New(fs afero.Fs, dir string, log zerolog.Logger) (*Store, error) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, &Error{Op: "init", Err: err}
	}
	cache, err := lru.New[string, Recording](cacheSize)
	if err != nil {
		return nil, &Error{Op: "init", Err: err}
	}
	return &Store{
		fs:    fs,
		dir:   dir,
		log:   log.With().Str("component", "storage").Logger(),
		cache: cache,
	}, nil
}

// NewOs is New on the host filesystem.
func NewOs(dir string, log zerolog.Logger) (*Store, error) {
	return New(afero.NewOsFs(), dir, log)
}

// Dir returns the directory holding the recordings.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the full path of a recording.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) resolve(op, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || !strings.HasSuffix(name, ext) {
		return "", &Error{Op: op, Name: name, Err: fmt.Errorf("invalid recording name")}
	}
	return s.Path(name), nil
}

// List returns the names of all .wav files, oldest first.
func (s *Store) List() ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, &Error{Op: "list", Err: err}
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Open opens a recording for reading.
func (s *Store) Open(name string) (File, error) {
	path, err := s.resolve("open", name)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, &Error{Op: "open", Name: name, Err: err}
	}
	return f, nil
}

// ReadFile returns the full contents of a recording, header included.
func (s *Store) ReadFile(name string) ([]byte, error) {
	path, err := s.resolve("read", name)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, &Error{Op: "read", Name: name, Err: err}
	}
	return data, nil
}

// Create creates or truncates a recording for writing.
func (s *Store) Create(name string) (File, error) {
	path, err := s.resolve("create", name)
	if err != nil {
		return nil, err
	}
	s.cache.Remove(name)
	f, err := s.fs.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, &Error{Op: "create", Name: name, Err: err}
	}
	return f, nil
}

// Delete removes a recording.
func (s *Store) Delete(name string) error {
	path, err := s.resolve("delete", name)
	if err != nil {
		return err
	}
	s.cache.Remove(name)
	if err := s.fs.Remove(path); err != nil {
		return &Error{Op: "delete", Name: name, Err: err}
	}
	return nil
}

// Stat returns the catalog entry of a single recording. The header is only
// parsed again when the file's size or modification time changed.
func (s *Store) Stat(name string) (Recording, error) {
	f, err := s.Open(name)
	if err != nil {
		return Recording{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Recording{}, &Error{Op: "stat", Name: name, Err: err}
	}

	if rec, ok := s.cache.Get(name); ok && rec.Size == info.Size() && rec.ModTime.Equal(info.ModTime()) {
		return rec, nil
	}

	d, err := wav.ReadDescriptor(f, info.Size())
	if err != nil {
		s.cache.Remove(name)
		return Recording{}, err
	}

	rec := Recording{
		Name:       name,
		Size:       info.Size(),
		ModTime:    info.ModTime(),
		Descriptor: d,
	}
	s.cache.Add(name, rec)
	return rec, nil
}

// Refresh rebuilds the catalog. Files that cannot be read or whose header
// cannot be parsed are logged and left out.
func (s *Store) Refresh() ([]Recording, error) {
	names, err := s.List()
	if err != nil {
		return nil, err
	}

	recordings := make([]Recording, 0, len(names))
	for _, name := range names {
		rec, err := s.Stat(name)
		if errors.Is(err, wav.ErrMalformedHeader) {
			s.log.Warn().Err(err).Str("file", name).Msg("Skipping recording with malformed header")
			continue
		}
		if err != nil {
			s.log.Warn().Err(err).Str("file", name).Msg("Skipping unreadable recording")
			continue
		}
		recordings = append(recordings, rec)
	}

	s.log.Debug().Int("count", len(recordings)).Msg("Catalog refreshed")
	return recordings, nil
}

// Latest returns the newest recording in the catalog.
func (s *Store) Latest() (Recording, bool, error) {
	recordings, err := s.Refresh()
	if err != nil || len(recordings) == 0 {
		return Recording{}, false, err
	}
	return recordings[len(recordings)-1], true, nil
}
