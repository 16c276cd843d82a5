package generator

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Artifact is a single generated file. Path is slash separated and relative
// to the output directory.
type Artifact struct {
	Target  string
	Entity  string
	Path    string
	Content []byte
}

// String returns the artifact content.
func (a Artifact) String() string {
	return string(a.Content)
}

// cleanPath normalises a rendered output path and rejects anything that
// would escape the output directory.
func cleanPath(raw string) (string, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(raw, "\\", "/"))
	if trimmed == "" {
		return "", errors.New("generator: output path is empty")
	}
	if strings.HasPrefix(trimmed, "/") {
		return "", fmt.Errorf("generator: output path %q must be relative", raw)
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("generator: output path %q escapes the output directory", raw)
	}
	return cleaned, nil
}
