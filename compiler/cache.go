package compiler

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/packscript/pkg"
)

// Record is the fingerprint of a successful compilation.
type Record struct {
	Digest  uint64 `msgpack:"digest"`
	Output  string `msgpack:"output"`
	Version string `msgpack:"version"`
	// Deps maps files read through include or read, which may lie outside
	// of the input, to the hash of their content.
	Deps map[string]uint64 `msgpack:"deps"`
}

// Fresh reports whether r describes a compilation of the same inputs into
// output by this version, output still exists and no dependency changed.
func (r Record) Fresh(digest uint64, output string) bool {
	if r.Digest != digest || r.Output != output || r.Version != pkg.Version || !exists(output) {
		return false
	}

	for path, sum := range r.Deps {
		if got, err := hashFile(path); err != nil || got != sum {
			return false
		}
	}

	return true
}

// HashFiles returns the content hash of each of paths.
func HashFiles(paths []string) (map[string]uint64, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	sums := make(map[string]uint64, len(paths))

	for _, p := range paths {
		sum, err := hashFile(p)
		if err != nil {
			return nil, ErrRead.Wrap(err).With(slog.String("file", p))
		}

		sums[p] = sum
	}

	return sums, nil
}

func hashFile(path string) (uint64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	return xxh3.Hash(b), nil
}

// RecordPath returns the file in dir holding the record of compiling input
// into output.
func RecordPath(dir, input, output string) string {
	var key [8]byte

	binary.BigEndian.PutUint64(key[:], xxh3.Hash([]byte(input+"\x00"+output)))

	return filepath.Join(dir, "build", hex.EncodeToString(key[:])+".mp")
}

// CachePath returns the record file in dir for the input and output of c.
func (c *Compiler) CachePath(dir string) (string, error) {
	input, t, err := c.target()
	if err != nil {
		return "", err
	}

	return RecordPath(dir, input, t.path), nil
}

// Digest hashes the path and content of every file below input together
// with the options affecting the output. Files inside output are skipped.
func Digest(input, output string, opts Options) (uint64, error) {
	var (
		buf bytes.Buffer
		sum [8]byte
	)

	err := filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path == output || strings.HasPrefix(path, output+string(filepath.Separator)) {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		rel, _ := filepath.Rel(input, path)
		binary.BigEndian.PutUint64(sum[:], xxh3.Hash(b))

		buf.WriteString(filepath.ToSlash(rel))
		buf.WriteByte(0)
		buf.Write(sum[:])

		return nil
	})
	if err != nil {
		return 0, ErrRead.Wrap(err).With(slog.String("input", input))
	}

	buf.WriteString(strconv.FormatBool(opts.KeepSource))
	buf.WriteByte(0)
	buf.WriteString(strings.Join(opts.Lib, string(os.PathListSeparator)))

	return xxh3.Hash(buf.Bytes()), nil
}

// LoadRecord reads the record stored at path.
func LoadRecord(path string) (Record, bool) {
	f, err := os.Open(path)
	if err != nil {
		return Record{}, false
	}
	defer f.Close()

	var r Record
	if err := msgpack.NewDecoder(f).Decode(&r); err != nil {
		return Record{}, false
	}

	return r, true
}

// SaveRecord replaces the record stored at path with r.
func SaveRecord(path string, r Record) error {
	r.Version = pkg.Version

	if err := os.MkdirAll(filepath.Dir(path), pkg.DirMode); err != nil {
		return ErrWrite.Wrap(err).With(slog.String("file", path))
	}

	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return ErrWrite.Wrap(err).With(slog.String("file", path))
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(&r); err != nil {
		_ = f.Close()

		return ErrWrite.Wrap(err).With(slog.String("file", path))
	}

	if err := f.Close(); err != nil {
		return ErrWrite.Wrap(err).With(slog.String("file", path))
	}

	if err := os.Rename(f.Name(), path); err != nil {
		return ErrWrite.Wrap(err).With(slog.String("file", path))
	}

	return nil
}
