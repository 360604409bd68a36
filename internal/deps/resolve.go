package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolveTool reports where binary resolves to. Values containing a path
// separator are checked directly and must be executable files; bare names are
// looked up on PATH.
func ResolveTool(name, binary string) Status {
	binary = strings.TrimSpace(binary)
	result := Status{Name: name, Command: binary}
	if binary == "" {
		result.Detail = "command not configured"
		return result
	}
	if strings.ContainsRune(binary, filepath.Separator) {
		info, err := os.Stat(binary)
		if err != nil {
			result.Detail = fmt.Sprintf("binary %q not found", binary)
			return result
		}
		if !isExecutable(info) {
			result.Detail = fmt.Sprintf("%q is not executable", binary)
			return result
		}
		result.Path = binary
		result.Available = true
		return result
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		result.Detail = fmt.Sprintf("binary %q not found", binary)
		return result
	}
	result.Path = path
	result.Available = true
	return result
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
