package pom

import (
	"testing"

	"github.com/scopebuild/scopebuild/internal/depgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher map[string][]byte

func (f fakeFetcher) FetchPOM(id depgraph.DependencyId) ([]byte, error) {
	data, ok := f[id.String()]
	if !ok {
		return nil, assert.AnError
	}
	return data, nil
}

func TestResolve_PropertySubstitution(t *testing.T) {
	data := []byte(`<project>
  <groupId>com.example</groupId>
  <artifactId>app</artifactId>
  <version>1.0</version>
  <properties><guava.version>32.1.0-jre</guava.version></properties>
  <dependencies>
    <dependency>
      <groupId>com.google.guava</groupId>
      <artifactId>guava</artifactId>
      <version>${guava.version}</version>
    </dependency>
  </dependencies>
</project>`)

	eff, err := Resolve(data, fakeFetcher{}, nil)
	require.NoError(t, err)
	require.Len(t, eff.Dependencies, 1)
	assert.Equal(t, "32.1.0-jre", eff.Dependencies[0].ID.Version)
	assert.Equal(t, depgraph.ScopeCompile, eff.Dependencies[0].Scope)
}

func TestResolve_ParentInheritance(t *testing.T) {
	parentID := depgraph.DependencyId{Group: "com.example", Name: "parent", Version: "1.0", Type: depgraph.TypePom}
	parentData := []byte(`<project>
  <groupId>com.example</groupId>
  <artifactId>parent</artifactId>
  <version>1.0</version>
  <properties><shared.version>2.3.4</shared.version></properties>
</project>`)

	childData := []byte(`<project>
  <parent>
    <groupId>com.example</groupId>
    <artifactId>parent</artifactId>
    <version>1.0</version>
  </parent>
  <artifactId>child</artifactId>
  <dependencies>
    <dependency>
      <groupId>org.example</groupId>
      <artifactId>lib</artifactId>
      <version>${shared.version}</version>
      <scope>test</scope>
    </dependency>
  </dependencies>
</project>`)

	fetcher := fakeFetcher{parentID.String(): parentData}
	eff, err := Resolve(childData, fetcher, nil)
	require.NoError(t, err)
	assert.Equal(t, "com.example", eff.ID.Group)
	require.Len(t, eff.Dependencies, 1)
	assert.Equal(t, "2.3.4", eff.Dependencies[0].ID.Version)
	assert.Equal(t, depgraph.ScopeTest, eff.Dependencies[0].Scope)
}

func TestResolve_DependencyManagementAndExclusions(t *testing.T) {
	data := []byte(`<project>
  <groupId>com.example</groupId>
  <artifactId>app</artifactId>
  <version>1.0</version>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>org.example</groupId>
        <artifactId>lib</artifactId>
        <version>5.0</version>
      </dependency>
    </dependencies>
  </dependencyManagement>
  <dependencies>
    <dependency>
      <groupId>org.example</groupId>
      <artifactId>other</artifactId>
      <version>1.0</version>
      <exclusions>
        <exclusion><groupId>com.conflict</groupId><artifactId>bad</artifactId></exclusion>
      </exclusions>
    </dependency>
  </dependencies>
</project>`)

	eff, err := Resolve(data, fakeFetcher{}, nil)
	require.NoError(t, err)
	require.Len(t, eff.DependencyManagement, 1)
	assert.Equal(t, "5.0", eff.DependencyManagement[0].ID.Version)
	require.Len(t, eff.Dependencies[0].Exclusions, 1)
	assert.Equal(t, "com.conflict", eff.Dependencies[0].Exclusions[0].Group)
}

func TestActiveProfiles_DefaultFallback(t *testing.T) {
	profiles := []Profile{
		{ID: "p1", Activation: Activation{ActiveByDefault: "true"}},
		{ID: "p2"},
	}
	active := ActiveProfiles(profiles, nil)
	require.Len(t, active, 1)
	assert.Equal(t, "p1", active[0].ID)
}

func TestActiveProfiles_PropertyActivationWins(t *testing.T) {
	profiles := []Profile{
		{ID: "p1", Activation: Activation{ActiveByDefault: "true"}},
		{ID: "p2", Activation: Activation{Property: ActivationProperty{Name: "env", Value: "ci"}}},
	}
	active := ActiveProfiles(profiles, map[string]string{"env": "ci"})
	require.Len(t, active, 1)
	assert.Equal(t, "p2", active[0].ID)
}
