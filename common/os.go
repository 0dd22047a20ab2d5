package common

import (
	"fmt"
	"os"
)

// WriteFileAtomic writes newBytes to filePath. An existing file is first copied to
// filePath+".bak", and the new content is renamed into place, so that at least one
// of the old and the new content survives a crash.
func WriteFileAtomic(filePath string, newBytes []byte, mode os.FileMode) error {
	if _, err := os.Stat(filePath); !os.IsNotExist(err) {
		fileBytes, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("Could not read file %v. %v", filePath, err)
		}
		if err = os.WriteFile(filePath+".bak", fileBytes, mode); err != nil {
			return fmt.Errorf("Could not write file %v. %v", filePath+".bak", err)
		}
	}
	if err := os.WriteFile(filePath+".new", newBytes, mode); err != nil {
		return fmt.Errorf("Could not write file %v. %v", filePath+".new", err)
	}
	return os.Rename(filePath+".new", filePath)
}
