package engine

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeFile persists the assembled payload as outDir/fileName, creating the
// directory tree on demand and overwriting any existing file. There is no
// partial-write recovery: on failure the destination contents are
// unspecified.
func writeFile(data []byte, fileName string, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("error creating output directory %s: %w", outDir, err)
	}
	outputPath := filepath.Join(outDir, filepath.Base(fileName))
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("error creating output file %s: %w", outputPath, err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return fmt.Errorf("error writing output file %s: %w", outputPath, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("error finalizing output file %s: %w", outputPath, err)
	}
	return nil
}
