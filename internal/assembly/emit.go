package assembly

import (
	"archive/zip"
	"bytes"
	"os"
	"time"
)

// normalizedModTime is written into every archive entry so identical
// inputs always produce byte-identical output (spec.md §4.3 "Deterministic
// output for identical inputs").
var normalizedModTime = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// EmitOptions configures archive emission.
type EmitOptions struct {
	// PrependData is written before the zip stream, for self-executing
	// archives carrying a shell launcher header.
	PrependData []byte
}

// Emit writes entries (already sorted by Path) to outputPath as a zip
// archive, normalizing per-entry timestamps. On any write failure no
// partial output file is left behind.
func Emit(entries []ResolvedEntry, outputPath string, opts EmitOptions) (err error) {
	tmpPath := outputPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	defer func() {
		f.Close()
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	if len(opts.PrependData) > 0 {
		if _, err = f.Write(opts.PrependData); err != nil {
			return err
		}
	}

	zw := zip.NewWriter(f)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.Path, Method: zip.Deflate}
		hdr.Modified = normalizedModTime
		w, werr := zw.CreateHeader(hdr)
		if werr != nil {
			err = werr
			zw.Close()
			return err
		}
		if _, werr = w.Write(e.Data); werr != nil {
			err = werr
			zw.Close()
			return err
		}
	}
	if err = zw.Close(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, outputPath)
}

// Bytes renders entries to an in-memory zip archive — used by tests and
// by callers that want to inspect output before writing it to disk.
func Bytes(entries []ResolvedEntry, opts EmitOptions) ([]byte, error) {
	var buf bytes.Buffer
	if len(opts.PrependData) > 0 {
		buf.Write(opts.PrependData)
	}
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.Path, Method: zip.Deflate}
		hdr.Modified = normalizedModTime
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
