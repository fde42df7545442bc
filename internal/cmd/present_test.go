package cmd

import (
	"bytes"
	"testing"

	"github.com/scopebuild/scopebuild/internal/assembly"
	"github.com/scopebuild/scopebuild/internal/depgraph"
	"github.com/stretchr/testify/assert"
)

func TestPresentLines_Repositories(t *testing.T) {
	lines := presentLines([]depgraph.Repository{{Name: "central", URL: "https://repo.maven.apache.org/maven2"}})
	assert.Equal(t, []string{"central=https://repo.maven.apache.org/maven2"}, lines)
}

func TestPresentLines_AssembleEntries(t *testing.T) {
	lines := presentLines([]assembly.ResolvedEntry{{Path: "com.example:app:1.0.jar"}})
	assert.Equal(t, []string{"com.example:app:1.0.jar"}, lines)
}

func TestPresentLines_RunEnvironmentSortedByKey(t *testing.T) {
	lines := presentLines(map[string]string{"PATH": "/usr/bin", "HOME": "/root"})
	assert.Equal(t, []string{"HOME=/root", "PATH=/usr/bin"}, lines)
}

func TestWriteResult_ShellJoinsOnOneLine(t *testing.T) {
	var buf bytes.Buffer
	writeResult(&buf, "classpath", []string{"a.jar", "b.jar"}, "shell")
	assert.Equal(t, "a.jar b.jar\n", buf.String())
}

func TestWriteResult_JSONEmitsKeyAndValue(t *testing.T) {
	var buf bytes.Buffer
	writeResult(&buf, "classpath", []string{"a.jar"}, "json")
	assert.JSONEq(t, `{"key":"classpath","value":"a.jar"}`, buf.String())
}

func TestWriteResult_TextListsMultipleValues(t *testing.T) {
	var buf bytes.Buffer
	writeResult(&buf, "classpath", []string{"a.jar", "b.jar"}, "")
	assert.Equal(t, "classpath:\n  a.jar\n  b.jar\n", buf.String())
}
