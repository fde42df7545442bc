package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scopebuild/scopebuild/internal/query"
	"github.com/stretchr/testify/require"
)

func setupTestWorkspace(t *testing.T) (workspaceDir, repoDir string) {
	t.Helper()
	workspaceDir = t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(workspaceDir, ".wemi"), 0755))

	repoDir = t.TempDir()
	artifactDir := filepath.Join(repoDir, "com", "example", "app", "1.0")
	require.NoError(t, os.MkdirAll(artifactDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(artifactDir, "app-1.0.pom"), []byte(`<project>
  <groupId>com.example</groupId><artifactId>app</artifactId><version>1.0</version>
</project>`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(artifactDir, "app-1.0.jar"), []byte("JAR"), 0644))

	configYAML := "repositories:\n  - name: test-repo\n    url: \"file://" + repoDir + "\"\n    local: true\n    checksum_policy: ignore\n"
	require.NoError(t, os.WriteFile(filepath.Join(workspaceDir, ".wemi", "workspace.yml"), []byte(configYAML), 0644))
	return workspaceDir, repoDir
}

func withTestEngine(t *testing.T) {
	t.Helper()
	workspaceDir, _ := setupTestWorkspace(t)

	prevRoot := workspaceRoot
	workspaceRoot = workspaceDir
	t.Cleanup(func() { workspaceRoot = prevRoot })

	require.NoError(t, setupEngine(rootCmd, nil))
}

func TestSetupEngine_BuildsEngineFromWorkspaceConfig(t *testing.T) {
	withTestEngine(t)
	require.NotNil(t, eng)
	require.NotNil(t, settings)
}

func TestEvaluateCommand_ResolvesAndPrints(t *testing.T) {
	withTestEngine(t)

	commands, err := query.Parse("resolve com.example:app:1.0")
	require.NoError(t, err)
	require.Len(t, commands, 1)

	require.NoError(t, evaluateCommand(commands[0]))
}

func TestEvaluateCommand_UnknownKeyErrors(t *testing.T) {
	withTestEngine(t)

	commands, err := query.Parse("not-a-real-key")
	require.NoError(t, err)
	require.Error(t, evaluateCommand(commands[0]))
}

func TestEvaluateCommand_LayersKnownConfiguration(t *testing.T) {
	withTestEngine(t)

	commands, err := query.Parse("compile:classpath com.example:app:1.0")
	require.NoError(t, err)
	require.NoError(t, evaluateCommand(commands[0]))
}

func TestEvaluateCommand_RejectsUnknownConfiguration(t *testing.T) {
	withTestEngine(t)

	commands, err := query.Parse("not-a-real-config:resolve com.example:app:1.0")
	require.NoError(t, err)
	err = evaluateCommand(commands[0])
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "unknown configuration"))
}

func TestEvaluateCommand_RejectsUnknownProject(t *testing.T) {
	withTestEngine(t)

	commands, err := query.Parse("other-project/resolve com.example:app:1.0")
	require.NoError(t, err)
	require.Error(t, evaluateCommand(commands[0]))
}
