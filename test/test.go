package test

import (
	"path/filepath"
	"runtime"
)

var dir string

func init() {
	_, file, _, _ := runtime.Caller(0)
	dir = filepath.Dir(file)
}

// FilePath returns the absolute path of a file under the test directory.
func FilePath(filename string) string {
	return filepath.Join(dir, filename)
}
