package mediahandler

import (
	"fmt"
	"path/filepath"
	"strings"
)

const DefaultOutputFileName = "out.mp4"

var SupportedExtensions = []string{
	".mp4",
	".mov",
	".wmv",
	".gif",
	".webm",
	".avi",
	".flv",
	".apng",
	".mpg",
}

func IsSupportedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// DefaultOutputPath is out.mp4 in the working directory.
func DefaultOutputPath() string {
	path, err := filepath.Abs(DefaultOutputFileName)
	if err != nil {
		return DefaultOutputFileName
	}
	return path
}

// NormalizeOutputPath returns the absolute form of the path, or an error
// if its extension is not supported.
func NormalizeOutputPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("the output path is empty")
	}
	if !IsSupportedExtension(path) {
		return "", fmt.Errorf("the extension of '%s' is not supported, the supported ones: %s",
			path, strings.Join(SupportedExtensions, " "))
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("unable to get the absolute path of '%s': %w", path, err)
	}
	return absPath, nil
}
