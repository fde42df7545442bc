package fetch

import "encoding/xml"

// snapshotMetadata mirrors the handful of maven-metadata.xml fields the
// fetcher needs to resolve a snapshot's concrete, timestamped filename.
type snapshotMetadata struct {
	Versioning struct {
		Snapshot struct {
			Timestamp   string `xml:"timestamp"`
			BuildNumber string `xml:"buildNumber"`
		} `xml:"snapshot"`
		SnapshotVersions struct {
			SnapshotVersion []struct {
				Extension string `xml:"extension"`
				Value     string `xml:"value"`
			} `xml:"snapshotVersion"`
		} `xml:"snapshotVersions"`
	} `xml:"versioning"`
}

// parseSnapshotVersion extracts the timestamped snapshot version from a
// maven-metadata.xml document, preferring an explicit <snapshotVersions>
// entry and falling back to <snapshot>'s timestamp-buildNumber pair.
func parseSnapshotVersion(data []byte) (string, bool) {
	var md snapshotMetadata
	if err := xml.Unmarshal(data, &md); err != nil {
		return "", false
	}
	for _, sv := range md.Versioning.SnapshotVersions.SnapshotVersion {
		if sv.Value != "" {
			return sv.Value, true
		}
	}
	ts, bn := md.Versioning.Snapshot.Timestamp, md.Versioning.Snapshot.BuildNumber
	if ts == "" {
		return "", false
	}
	if bn == "" {
		bn = "1"
	}
	return ts + "-" + bn, true
}
