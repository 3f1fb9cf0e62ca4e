// filesystem handling
package fs

import (
	"fmt"
	"os"

	"github.com/mjollne/varde/internal/util"
)

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if os.IsNotExist(err) {
		return false
	}
	return info.IsDir()
}

// EnsureDir creates the directory (and parents) if it does not exist
func EnsureDir(dirname string) error {
	if DirExists(dirname) {
		return nil
	}
	return os.MkdirAll(dirname, 0o755)
}

func GetFile(filename string) (*os.File, error) {
	if !FileExists(filename) {
		errMsg := fmt.Sprintf("File %s does not exist", filename)
		return nil, util.Errorf(errMsg)
	}
	return os.Open(filename)
}
