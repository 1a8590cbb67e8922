package compiler

import (
	"archive/zip"
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/packscript/lang"
	"github.com/ardnew/packscript/log"
	"github.com/ardnew/packscript/pkg"
)

const (
	fileMode os.FileMode = 0o644
	dirMode  os.FileMode = 0o755
)

// functionText returns the content of a generated function file.
func functionText(lines []string) []byte {
	return []byte(pkg.Header() + "\n" + strings.Join(lines, "\n") + "\n")
}

// functionPath returns the file of the function name below root.
func functionPath(root, folder, name string) string {
	ns, rel, ok := strings.Cut(name, ":")
	if !ok {
		ns, rel = "minecraft", name
	}

	return filepath.Join(root, "data", ns, folder, filepath.FromSlash(rel)+".mcfunction")
}

// writeFunctions writes every function with at least one line and returns
// how many were written.
func writeFunctions(ctx context.Context, root, folder string, funcs []Function) (int, error) {
	n := 0

	for _, f := range funcs {
		if len(f.Lines) == 0 {
			continue
		}

		p := functionPath(root, folder, f.Name)
		if err := writeFile(p, functionText(f.Lines)); err != nil {
			return n, err
		}

		log.DebugContext(ctx, "function",
			slog.String("name", f.Name),
			slog.Int("lines", len(f.Lines)),
		)

		n++
	}

	return n, nil
}

// writeResources writes every resource of res below root and returns how
// many were written.
func writeResources(ctx context.Context, root string, res *Registry) (int, error) {
	n := 0

	for _, r := range res.Resources() {
		b, err := r.Value.Encode()
		if err != nil {
			return n, lang.WrapError(err).With(slog.String("resource", r.Type), slog.String("name", r.Name))
		}

		if err := writeFile(filepath.Join(root, filepath.FromSlash(r.Path())), b); err != nil {
			return n, err
		}

		log.DebugContext(ctx, "resource",
			slog.String("type", r.Type),
			slog.String("name", r.Name),
		)

		n++
	}

	return n, nil
}

func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return ErrWrite.Wrap(err).With(slog.String("file", path))
	}

	if err := os.WriteFile(path, b, fileMode); err != nil {
		return ErrWrite.Wrap(err).With(slog.String("file", path))
	}

	return nil
}

// copyTree copies the directory src into dst, merging with and overwriting
// whatever dst already holds.
func copyTree(dst, src string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return ErrRead.Wrap(err).With(slog.String("file", path))
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return ErrRead.Wrap(err).With(slog.String("file", path))
		}

		target := filepath.Join(dst, rel)

		if d.IsDir() {
			if err := os.MkdirAll(target, dirMode); err != nil {
				return ErrWrite.Wrap(err).With(slog.String("dir", target))
			}

			return nil
		}

		return copyFile(target, path)
	})
}

func copyFile(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return ErrRead.Wrap(err).With(slog.String("file", src))
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), dirMode); err != nil {
		return ErrWrite.Wrap(err).With(slog.String("file", dst))
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fileMode)
	if err != nil {
		return ErrWrite.Wrap(err).With(slog.String("file", dst))
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()

		return ErrWrite.Wrap(err).With(slog.String("file", dst))
	}

	if err := out.Close(); err != nil {
		return ErrWrite.Wrap(err).With(slog.String("file", dst))
	}

	return nil
}

// archive writes the tree at root as a zip file at path. The file appears
// only once it is complete.
func archive(path, root string) error {
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return ErrWrite.Wrap(err).With(slog.String("file", path))
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return ErrWrite.Wrap(err).With(slog.String("file", path))
	}
	defer os.Remove(f.Name())

	zw := zip.NewWriter(f)

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || p == root {
			return err
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}

		name := filepath.ToSlash(rel)

		if d.IsDir() {
			_, err := zw.CreateHeader(&zip.FileHeader{Name: name + "/", Method: zip.Store})

			return err
		}

		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return err
		}

		in, err := os.Open(p)
		if err != nil {
			return err
		}
		defer in.Close()

		_, err = io.Copy(w, in)

		return err
	})
	if err == nil {
		err = zw.Close()
	}

	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return ErrWrite.Wrap(err).With(slog.String("file", path))
	}

	if err := os.Rename(f.Name(), path); err != nil {
		return ErrWrite.Wrap(err).With(slog.String("file", path))
	}

	return nil
}

// promote replaces the content of the directory dst with the tree at src.
func promote(dst, src string) error {
	entries, err := os.ReadDir(dst)

	switch {
	case err == nil:
		for _, e := range entries {
			if err := os.RemoveAll(filepath.Join(dst, e.Name())); err != nil {
				return ErrWrite.Wrap(err).With(slog.String("dir", dst))
			}
		}
	case os.IsNotExist(err):
		if err := os.MkdirAll(dst, dirMode); err != nil {
			return ErrWrite.Wrap(err).With(slog.String("dir", dst))
		}
	default:
		return ErrWrite.Wrap(err).With(slog.String("dir", dst))
	}

	if err := os.CopyFS(dst, os.DirFS(src)); err != nil {
		return ErrWrite.Wrap(err).With(slog.String("dir", dst))
	}

	return nil
}
