package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerDefaultPatterns(t *testing.T) {
	tempDir := t.TempDir()
	writeIgnoreFile(t, tempDir, ".env\n*.secret\nprivate/\n# comment\n\ntemp.*\n**/.git/**")

	controller, err := NewController(tempDir)
	require.NoError(t, err)

	for _, file := range []string{"src/index.go", "README.md", "go.mod"} {
		assert.True(t, controller.ValidateAccess(file), "expected %s to be allowed", file)
	}
	assert.False(t, controller.ValidateAccess(IgnoreFileName))
}

func TestControllerCustomPatterns(t *testing.T) {
	tempDir := t.TempDir()
	writeIgnoreFile(t, tempDir, ".env\n*.secret\nprivate/\ntemp.*")

	controller, err := NewController(tempDir)
	require.NoError(t, err)

	blocked := []string{
		"config.secret",
		"private/data.txt",
		"temp.json",
		"nested/deep/file.secret",
		"private/nested/deep/file.txt",
	}
	for _, file := range blocked {
		assert.True(t, controller.IsIgnored(file), "expected %s to be ignored", file)
	}

	allowed := []string{
		"public/data.txt",
		"config.json",
		"src/temp/file.go",
		"nested/deep/file.txt",
		"not-private/data.txt",
	}
	for _, file := range allowed {
		assert.False(t, controller.IsIgnored(file), "expected %s not to be ignored", file)
	}
}

func TestControllerPathHandling(t *testing.T) {
	tempDir := t.TempDir()
	writeIgnoreFile(t, tempDir, "*.secret")

	controller, err := NewController(tempDir)
	require.NoError(t, err)

	assert.True(t, controller.ValidateAccess(filepath.Join(tempDir, "src/file.go")))
	assert.False(t, controller.ValidateAccess(filepath.Join(tempDir, "config.secret")))
	assert.True(t, controller.ValidateAccess("./src/file.go"))
	assert.False(t, controller.ValidateAccess("./config.secret"))
}

func TestControllerMissingIgnoreFileAllowsEverything(t *testing.T) {
	emptyDir := t.TempDir()

	controller, err := NewController(emptyDir)
	require.NoError(t, err)
	assert.True(t, controller.ValidateAccess("file.txt"))
}

func TestControllerCustomFileName(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "custom.ignore"), []byte("*.secret"), 0644))

	controller, err := NewControllerWithFileName(tempDir, "custom.ignore")
	require.NoError(t, err)
	assert.True(t, controller.IsIgnored("config.secret"))
	assert.False(t, controller.IsIgnored("config.json"))
}

func TestControllerReload(t *testing.T) {
	tempDir := t.TempDir()
	writeIgnoreFile(t, tempDir, "*.secret")

	controller, err := NewController(tempDir)
	require.NoError(t, err)
	assert.True(t, controller.IsIgnored("config.secret"))

	writeIgnoreFile(t, tempDir, "")
	require.NoError(t, controller.Reload())
	assert.False(t, controller.IsIgnored("regular-file.txt"))
}

func writeIgnoreFile(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, IgnoreFileName), []byte(content), 0644))
}
