// Package reveal opens a folder in the platform file browser.
package reveal

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Open shows the given folder in the system file browser. The path must
// be absolute and must exist.
func Open(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("reveal needs an absolute path, got %s", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}
