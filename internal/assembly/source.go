package assembly

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Source is one classpath entry handed to the assembly pipeline: a
// directory tree or an archive, tagged with whether it is the project's
// own output (always wins path conflicts) and whether archive entries
// should be extracted individually.
type Source struct {
	Path           string
	Own            bool
	ExtractEntries bool
}

// Enumerate walks every source, producing one Candidate per file found
// — directory entries relative to their root, archive entries by their
// internal zip path when ExtractEntries is set (spec.md §4.3 step 1).
func Enumerate(sources []Source) ([]Candidate, error) {
	var out []Candidate
	for _, s := range sources {
		info, err := os.Stat(s.Path)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			entries, err := enumerateDir(s)
			if err != nil {
				return nil, err
			}
			out = append(out, entries...)
			continue
		}
		if s.ExtractEntries {
			entries, err := enumerateArchive(s)
			if err != nil {
				return nil, err
			}
			out = append(out, entries...)
			continue
		}
		// A non-extracted archive is placed verbatim at its own base name.
		out = append(out, Candidate{
			InternalPath: filepath.Base(s.Path),
			Own:          s.Own,
			Read:         readFileOnce(s.Path),
		})
	}
	return out, nil
}

func enumerateDir(s Source) ([]Candidate, error) {
	var out []Candidate
	err := filepath.Walk(s.Path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.Path, path)
		if err != nil {
			return err
		}
		out = append(out, Candidate{
			InternalPath: filepath.ToSlash(rel),
			Own:          s.Own,
			Read:         readFileOnce(path),
		})
		return nil
	})
	return out, err
}

func enumerateArchive(s Source) ([]Candidate, error) {
	r, err := zip.OpenReader(s.Path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out []Candidate
	for _, f := range r.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		f := f
		out = append(out, Candidate{
			InternalPath: f.Name,
			Own:          s.Own,
			Read: func() ([]byte, error) {
				rc, err := f.Open()
				if err != nil {
					return nil, err
				}
				defer rc.Close()
				return io.ReadAll(rc)
			},
		})
	}
	return out, nil
}

func readFileOnce(path string) func() ([]byte, error) {
	return func() ([]byte, error) { return os.ReadFile(path) }
}
