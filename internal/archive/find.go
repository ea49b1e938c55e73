package archive

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindBinary walks root depth-first with an explicit stack and returns
// the first regular file named exactly name.
func FindBinary(root, name string) (string, error) {
	stack := []string{root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return "", fmt.Errorf("read dir %s: %w", dir, err)
		}
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			switch {
			case e.IsDir():
				stack = append(stack, path)
			case e.Type().IsRegular() && e.Name() == name:
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("%s under %s: %w", name, root, ErrBinaryNotFound)
}
