package fetch

import (
	"testing"
	"time"

	"github.com/scopebuild/scopebuild/internal/depgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pom(group, name, version string) depgraph.DependencyId {
	return depgraph.DependencyId{Group: group, Name: name, Version: version}
}

func TestFetchPOM_FallsThroughChainAndMirrorsToCache(t *testing.T) {
	remote := NewMemProvider(false)
	cache := NewMemProvider(true)

	id := pom("com.example", "widget", "1.0")
	require.NoError(t, remote.Put(pomPath(id), []byte("<project/>")))

	chain := []Binding{
		{Repo: depgraph.Repository{Name: "local-cache", Local: true}, Provider: cache},
		{Repo: depgraph.Repository{Name: "central", Cache: &depgraph.Repository{Name: "local-cache"}}, Provider: remote},
	}
	f := NewFetcher(chain, false, nil)

	res, err := f.FetchPOM(id)
	require.NoError(t, err)
	assert.Equal(t, "<project/>", string(res.Data))
	assert.Equal(t, "central", res.Repository.Name)

	mirrored, err := cache.Get(pomPath(id))
	require.NoError(t, err)
	assert.Equal(t, "<project/>", string(mirrored))
}

func TestFetchPOM_AuthoritativeNotFoundShortCircuits(t *testing.T) {
	authoritative := NewMemProvider(false)
	fallback := NewMemProvider(false)
	id := pom("com.example", "widget", "1.0")
	require.NoError(t, fallback.Put(pomPath(id), []byte("<project/>")))

	chain := []Binding{
		{Repo: depgraph.Repository{Name: "internal", Authoritative: true}, Provider: authoritative},
		{Repo: depgraph.Repository{Name: "central"}, Provider: fallback},
	}
	f := NewFetcher(chain, false, nil)

	_, err := f.FetchPOM(id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authoritative repository internal")
}

func TestFetchPOM_ChecksumWarnKeepsBytesOnMismatch(t *testing.T) {
	remote := NewMemProvider(false)
	id := pom("com.example", "widget", "1.0")
	require.NoError(t, remote.Put(pomPath(id), []byte("<project/>")))
	require.NoError(t, remote.Put(pomPath(id)+".sha1", []byte("deadbeef")))

	chain := []Binding{
		{Repo: depgraph.Repository{Name: "central", ChecksumPolicy: depgraph.ChecksumWarn}, Provider: remote},
	}
	f := NewFetcher(chain, false, nil)

	res, err := f.FetchPOM(id)
	require.NoError(t, err)
	assert.Equal(t, "<project/>", string(res.Data))
}

func TestFetchPOM_ChecksumFailRejectsMismatch(t *testing.T) {
	remote := NewMemProvider(false)
	id := pom("com.example", "widget", "1.0")
	require.NoError(t, remote.Put(pomPath(id), []byte("<project/>")))
	require.NoError(t, remote.Put(pomPath(id)+".sha1", []byte("deadbeef")))

	chain := []Binding{
		{Repo: depgraph.Repository{Name: "central", ChecksumPolicy: depgraph.ChecksumFail}, Provider: remote},
	}
	f := NewFetcher(chain, false, nil)

	_, err := f.FetchPOM(id)
	require.Error(t, err)
}

func TestFetchArtifact_ResolvesSnapshotFromMetadata(t *testing.T) {
	remote := NewMemProvider(false)
	id := pom("com.example", "widget", "1.0-SNAPSHOT")

	metadataXML := `<metadata>
  <versioning>
    <snapshot><timestamp>20240102.030405</timestamp><buildNumber>7</buildNumber></snapshot>
    <snapshotVersions>
      <snapshotVersion><extension>jar</extension><value>1.0-20240102.030405-7</value></snapshotVersion>
    </snapshotVersions>
  </versioning>
</metadata>`
	require.NoError(t, remote.Put(metadataPath(id), []byte(metadataXML)))
	require.NoError(t, remote.Put(artifactFilePath(id, "jar", "1.0-20240102.030405-7"), []byte("JARDATA")))

	chain := []Binding{
		{Repo: depgraph.Repository{Name: "central", ChecksumPolicy: depgraph.ChecksumIgnore}, Provider: remote},
	}
	f := NewFetcher(chain, false, nil)

	res, err := f.FetchArtifact(id, "jar")
	require.NoError(t, err)
	assert.Equal(t, "JARDATA", string(res.Data))
}

func TestFetchArtifact_OfflineSkipsRemoteRepositories(t *testing.T) {
	local := NewMemProvider(true)
	remote := NewMemProvider(false)
	id := pom("com.example", "widget", "1.0")
	require.NoError(t, remote.Put(artifactFilePath(id, "jar", "1.0"), []byte("JARDATA")))

	chain := []Binding{
		{Repo: depgraph.Repository{Name: "local", Local: true}, Provider: local},
		{Repo: depgraph.Repository{Name: "central"}, Provider: remote},
	}
	f := NewFetcher(chain, true, nil)

	_, err := f.FetchArtifact(id, "jar")
	require.Error(t, err)
}

func TestMetadataStale_RespectsRecheckInterval(t *testing.T) {
	remote := NewMemProvider(false)
	id := pom("com.example", "widget", "1.0-SNAPSHOT")
	remote.PutAt(metadataPath(id), []byte(`<metadata/>`), time.Now().Add(-1*time.Hour))

	chain := []Binding{
		{Repo: depgraph.Repository{Name: "central", SnapshotRecheckInterval: 60}, Provider: remote},
	}
	f := NewFetcher(chain, false, nil)

	assert.True(t, f.metadataStale(chain[0], metadataPath(id)))
}

func TestMetadataStale_NeverAfterFirstSuccess(t *testing.T) {
	remote := NewMemProvider(false)
	id := pom("com.example", "widget", "1.0-SNAPSHOT")
	remote.PutAt(metadataPath(id), []byte(`<metadata/>`), time.Now().Add(-24*time.Hour))

	chain := []Binding{
		{Repo: depgraph.Repository{Name: "central", SnapshotRecheckInterval: -1}, Provider: remote},
	}
	f := NewFetcher(chain, false, nil)

	assert.False(t, f.metadataStale(chain[0], metadataPath(id)))
}

func snapshotMetadataXML(value string) []byte {
	return []byte(`<metadata>
  <versioning>
    <snapshotVersions>
      <snapshotVersion><extension>jar</extension><value>` + value + `</value></snapshotVersion>
    </snapshotVersions>
  </versioning>
</metadata>`)
}

// TestResolveSnapshotVersion_FreshCacheSkipsUpstreamRefetch and
// TestResolveSnapshotVersion_ZeroRecheckRefetchesUpstream reproduce
// spec.md §8 scenario 3: a non-unique snapshot cached from R3, with R3'
// now publishing a newer value at the same coordinate.
func TestResolveSnapshotVersion_FreshCacheSkipsUpstreamRefetch(t *testing.T) {
	cache := NewMemProvider(true)
	upstream := NewMemProvider(false)
	id := pom("com.example", "widget", "1.0-SNAPSHOT")

	cache.PutAt(metadataPath(id), snapshotMetadataXML("1.0-SNAPSHOT-1"), time.Now())
	require.NoError(t, upstream.Put(metadataPath(id), snapshotMetadataXML("1.0-SNAPSHOT-2")))

	chain := []Binding{
		{Repo: depgraph.Repository{Name: "local-cache", Local: true, SnapshotRecheckInterval: 86400}, Provider: cache},
		{Repo: depgraph.Repository{Name: "central"}, Provider: upstream},
	}
	f := NewFetcher(chain, false, nil)

	v, err := f.resolveSnapshotVersion(id)
	require.NoError(t, err)
	assert.Equal(t, "1.0-SNAPSHOT-1", v)
}

func TestResolveSnapshotVersion_ZeroRecheckRefetchesUpstream(t *testing.T) {
	cache := NewMemProvider(true)
	upstream := NewMemProvider(false)
	id := pom("com.example", "widget", "1.0-SNAPSHOT")

	cache.PutAt(metadataPath(id), snapshotMetadataXML("1.0-SNAPSHOT-1"), time.Now())
	require.NoError(t, upstream.Put(metadataPath(id), snapshotMetadataXML("1.0-SNAPSHOT-2")))

	chain := []Binding{
		{Repo: depgraph.Repository{Name: "local-cache", Local: true, SnapshotRecheckInterval: 0}, Provider: cache},
		{Repo: depgraph.Repository{Name: "central"}, Provider: upstream},
	}
	f := NewFetcher(chain, false, nil)

	v, err := f.resolveSnapshotVersion(id)
	require.NoError(t, err)
	assert.Equal(t, "1.0-SNAPSHOT-2", v)
}
