package ignore

import (
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFileName is the name of the repo-local file holding gitignore-syntax
// patterns that the watch command should never auto-patch.
const IgnoreFileName = ".srdiffignore"

// Controller filters paths against gitignore-syntax patterns loaded from a
// repo-local .srdiffignore file, using the go-gitignore library for pattern
// matching.
type Controller struct {
	cwd            string
	fileName       string
	ignoreInstance *ignore.GitIgnore
	ignoreContent  string
}

// NewController creates a controller for cwd and loads .srdiffignore if it
// exists.
func NewController(cwd string) (*Controller, error) {
	return NewControllerWithFileName(cwd, IgnoreFileName)
}

// NewControllerWithFileName creates a controller that reads fileName instead
// of the default .srdiffignore, for callers that let the ignore file name be
// configured (the watch command's --ignore-file flag).
func NewControllerWithFileName(cwd, fileName string) (*Controller, error) {
	if fileName == "" {
		fileName = IgnoreFileName
	}
	c := &Controller{cwd: cwd, fileName: fileName}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

// load reads the controller's ignore file from cwd if present.
func (c *Controller) load() error {
	ignorePath := filepath.Join(c.cwd, c.fileName)

	content, err := os.ReadFile(ignorePath)
	if err != nil {
		if os.IsNotExist(err) {
			c.ignoreContent = ""
			c.ignoreInstance = nil
			return nil
		}
		return err
	}

	c.ignoreContent = string(content)

	contentWithSelf := c.ignoreContent
	if !strings.Contains(contentWithSelf, c.fileName) {
		contentWithSelf += "\n" + c.fileName
	}

	c.ignoreInstance = ignore.CompileIgnoreLines(strings.Split(contentWithSelf, "\n")...)
	return nil
}

// IsIgnored reports whether path matches a loaded .srdiffignore pattern.
// filePath may be absolute or relative to cwd.
func (c *Controller) IsIgnored(filePath string) bool {
	return !c.ValidateAccess(filePath)
}

// ValidateAccess reports whether filePath should be accessible — the
// inverse of IsIgnored, kept for callers that think in allow/deny terms.
func (c *Controller) ValidateAccess(filePath string) bool {
	if c.ignoreInstance == nil {
		return true
	}

	absolutePath := filePath
	if !filepath.IsAbs(filePath) {
		absolutePath = filepath.Join(c.cwd, filePath)
	}

	relativePath, err := filepath.Rel(c.cwd, absolutePath)
	if err != nil {
		return true
	}

	relativePath = filepath.ToSlash(relativePath)
	return !c.ignoreInstance.MatchesPath(relativePath)
}

// Reload re-reads .srdiffignore from cwd.
func (c *Controller) Reload() error {
	return c.load()
}
