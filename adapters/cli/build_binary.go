package cli

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// BuildBinary builds the main package in the working directory and returns the path of
// the binary. cleanup removes it.
func BuildBinary() (binPath string, cleanup func(), err error) {
	binName := "subzip-test"

	if runtime.GOOS == "windows" {
		binName += ".exe"
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", nil, err
	}
	binPath = filepath.Join(dir, binName)

	build := exec.Command("go", "build", "-o", binPath)
	if err := build.Run(); err != nil {
		return "", nil, err
	}

	cleanup = func() {
		os.Remove(binPath)
	}

	return
}
