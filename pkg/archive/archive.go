// SPDX-License-Identifier: MPL-2.0

// Package archive is the compression service behind wheelhouse
// archives: two interchangeable container formats (zip and tar.gz)
// with a common compress/extract surface.
//
// Compress embeds the source directory as the single top-level entry
// of the container and assembles the container at a temporary path,
// renaming it into place only once complete, so the final path never
// holds a partially written archive. Extract sniffs the format from
// the file contents and guards every entry path against directory
// traversal.
package archive

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Format identifies a container format.
type Format string

const (
	// Zip is a deflate-compressed zip container.
	Zip Format = "zip"
	// TarGz is a gzip-compressed tar container.
	TarGz Format = "tar.gz"
)

// ParseFormat validates a format name from a flag or config value.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case string(Zip):
		return Zip, nil
	case string(TarGz):
		return TarGz, nil
	default:
		return "", fmt.Errorf("unsupported archive format: %s (must be one of [zip, tar.gz])", name)
	}
}

// Compress packs sourceDir into an archive at destPath using the given
// format. The directory's base name becomes the container's single
// top-level entry.
func Compress(sourceDir, destPath string, format Format) error {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".wheelhouse-*"+filepath.Ext(destPath))
	if err != nil {
		return fmt.Errorf("failed to create archive staging file: %w", err)
	}
	tmpPath := tmp.Name()

	switch format {
	case Zip:
		err = writeZip(sourceDir, tmp)
	case TarGz:
		err = writeTarGz(sourceDir, tmp)
	default:
		err = fmt.Errorf("unsupported archive format: %s", format)
	}

	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}

// Extract unpacks the archive at archivePath into destDir, sniffing
// the container format from the file contents. It returns an error if
// the file is neither a zip nor a gzip-compressed tar.
func Extract(archivePath, destDir string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create extraction directory: %w", err)
	}

	format, err := Sniff(archivePath)
	if err != nil {
		return err
	}

	switch format {
	case Zip:
		return extractZip(archivePath, destDir)
	case TarGz:
		return extractTarGz(archivePath, destDir)
	default:
		return fmt.Errorf("unsupported archive format: %s", format)
	}
}

// Sniff determines the container format from the file's magic bytes.
func Sniff(archivePath string) (Format, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	magic := make([]byte, 2)
	if _, err := io.ReadFull(file, magic); err != nil {
		return "", fmt.Errorf("failed to read archive %s: not a valid zip or tar.gz archive", archivePath)
	}

	switch {
	case magic[0] == 'P' && magic[1] == 'K':
		return Zip, nil
	case magic[0] == 0x1f && magic[1] == 0x8b:
		return TarGz, nil
	default:
		return "", fmt.Errorf("failed to extract %s: not a valid zip or tar.gz archive", archivePath)
	}
}

// TopLevelDir returns the name of the single directory at the top of
// an extraction directory. Archives always hold exactly one component
// directory, so anything else is a corrupt container.
func TopLevelDir(destDir string) (string, error) {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", fmt.Errorf("failed to read extraction directory: %w", err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	if len(dirs) != 1 {
		return "", fmt.Errorf("archive does not contain exactly one top-level directory (found %d)", len(dirs))
	}
	return filepath.Join(destDir, dirs[0]), nil
}

func writeZip(sourceDir string, out *os.File) error {
	zipWriter := zip.NewWriter(out)

	rootName := filepath.Base(sourceDir)
	err := filepath.WalkDir(sourceDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		relPath, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		entryPath := filepath.ToSlash(filepath.Join(rootName, relPath))

		if d.IsDir() {
			if relPath != "." {
				if _, err := zipWriter.Create(entryPath + "/"); err != nil {
					return fmt.Errorf("failed to create directory entry: %w", err)
				}
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to get file info: %w", err)
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return fmt.Errorf("failed to create file header: %w", err)
		}
		header.Name = entryPath
		header.Method = zip.Deflate

		writer, err := zipWriter.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("failed to create zip entry: %w", err)
		}

		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", path, err)
		}
		defer file.Close()

		if _, err := io.Copy(writer, file); err != nil {
			return fmt.Errorf("failed to write file data: %w", err)
		}
		return nil
	})
	if err != nil {
		zipWriter.Close()
		return err
	}
	return zipWriter.Close()
}

func writeTarGz(sourceDir string, out *os.File) error {
	gzWriter := gzip.NewWriter(out)
	tarWriter := tar.NewWriter(gzWriter)

	rootName := filepath.Base(sourceDir)
	err := filepath.WalkDir(sourceDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		relPath, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to get file info: %w", err)
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return fmt.Errorf("failed to create tar header: %w", err)
		}
		header.Name = filepath.ToSlash(filepath.Join(rootName, relPath))

		if err := tarWriter.WriteHeader(header); err != nil {
			return fmt.Errorf("failed to write tar header: %w", err)
		}

		if d.IsDir() {
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", path, err)
		}
		defer file.Close()

		if _, err := io.Copy(tarWriter, file); err != nil {
			return fmt.Errorf("failed to write file data: %w", err)
		}
		return nil
	})
	if err != nil {
		tarWriter.Close()
		gzWriter.Close()
		return err
	}

	if err := tarWriter.Close(); err != nil {
		gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}

func extractZip(archivePath, destDir string) error {
	zipReader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open zip archive: %w", err)
	}
	defer zipReader.Close()

	for _, file := range zipReader.File {
		destPath, err := entryDestination(destDir, file.Name)
		if err != nil {
			return err
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, file.Mode()); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return fmt.Errorf("failed to create parent directory: %w", err)
		}

		if err := extractZipFile(file, destPath); err != nil {
			return fmt.Errorf("failed to extract %s: %w", file.Name, err)
		}
	}
	return nil
}

func extractZipFile(file *zip.File, destPath string) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.Mode())
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, rc)
	return err
}

func extractTarGz(archivePath, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar entry: %w", err)
		}

		destPath, err := entryDestination(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(destPath, header.FileInfo().Mode()); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
				return fmt.Errorf("failed to create parent directory: %w", err)
			}
			destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, header.FileInfo().Mode())
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", destPath, err)
			}
			if _, err := io.Copy(destFile, tarReader); err != nil {
				destFile.Close()
				return fmt.Errorf("failed to extract %s: %w", header.Name, err)
			}
			if err := destFile.Close(); err != nil {
				return err
			}
		}
	}
}

// entryDestination resolves an archive entry name under destDir and
// rejects names that would escape it.
func entryDestination(destDir, entryName string) (string, error) {
	destPath := filepath.Join(destDir, filepath.FromSlash(entryName))

	relPath, err := filepath.Rel(destDir, destPath)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return "", fmt.Errorf("invalid path in archive: %s", entryName)
	}
	return destPath, nil
}
