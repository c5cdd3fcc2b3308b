package exec

import "os"

func tempFile(pattern string) (*os.File, error) {
	return os.CreateTemp("", pattern)
}
