package fetch

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ChecksumAlgorithm names a sidecar checksum format.
type ChecksumAlgorithm string

const (
	SHA1   ChecksumAlgorithm = "sha1"
	SHA256 ChecksumAlgorithm = "sha256"
	MD5    ChecksumAlgorithm = "md5"
)

// sidecarExtensions lists the algorithms tried in order: default SHA-1,
// falling back to SHA-256 then MD5 per spec.md §4.2 step 9.
var sidecarExtensions = []ChecksumAlgorithm{SHA1, SHA256, MD5}

func digest(algo ChecksumAlgorithm, data []byte) string {
	switch algo {
	case SHA256:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:])
	case MD5:
		sum := md5.Sum(data)
		return hex.EncodeToString(sum[:])
	default:
		sum := sha1.Sum(data)
		return hex.EncodeToString(sum[:])
	}
}

// verifyChecksum tries each sidecar in turn until one can be fetched and
// compares that one against the artifact bytes. It returns the
// sidecar's algorithm, with a mismatch error when the digests differ;
// later sidecars are not consulted. When no sidecar can be fetched, the
// error describes every attempt.
func verifyChecksum(repo RepoProvider, artifactPath string, data []byte) (ChecksumAlgorithm, error) {
	var attempts []string
	for _, algo := range sidecarExtensions {
		sidecar, err := repo.Get(artifactPath + "." + string(algo))
		if err != nil {
			attempts = append(attempts, fmt.Sprintf("%s: %v", algo, err))
			continue
		}
		want := parseSidecar(string(sidecar))
		got := digest(algo, data)
		if strings.EqualFold(want, got) {
			return algo, nil
		}
		return algo, fmt.Errorf("%s mismatch: want %s, got %s", algo, want, got)
	}
	return "", fmt.Errorf("no checksum sidecar available: %s", strings.Join(attempts, "; "))
}

// parseSidecar extracts the hex digest from a checksum sidecar file,
// which may be a bare hex string or "<hex>  <filename>" (BSD/coreutils
// style).
func parseSidecar(content string) string {
	fields := strings.Fields(strings.TrimSpace(content))
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
