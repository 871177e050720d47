//go:build !unix

package preflight

import "os"

// Without access(2) the checks try the operation itself.
func checkWritableDir(path string) error {
	probe, err := os.CreateTemp(path, ".mixport-preflight-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}

func checkReadableFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	return file.Close()
}
