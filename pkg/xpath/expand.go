package xpath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Expand replaces the leading "~/" with the home directory.
func Expand(rawPath string) (string, error) {
	if rawPath != "~" && !strings.HasPrefix(rawPath, "~/") {
		return rawPath, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to get user home dir: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(rawPath[1:], "/")), nil
}
