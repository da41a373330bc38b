package services

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/adampresley/pictogallery/pkg/models"
)

type ZipServiceConfig struct {
	ImageStore ImageStorer
}

type ZipServicer interface {
	ArchiveName(album *models.Album) string
	WriteAlbumZip(ctx context.Context, album *models.Album, w io.Writer) (int, error)
}

type ZipService struct {
	imageStore ImageStorer
}

func NewZipService(config ZipServiceConfig) ZipService {
	return ZipService{
		imageStore: config.ImageStore,
	}
}

/*
ArchiveName is the download file name for an album, e.g. "Summer-Trip.zip".
*/
func (s ZipService) ArchiveName(album *models.Album) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '-'
		case r < 32 || strings.ContainsRune(`"\/:*?<>|;`, r):
			return -1
		}

		return r
	}, album.Name)

	if name == "" {
		name = "album"
	}

	return name + ".zip"
}

/*
WriteAlbumZip streams every image of the album into a zip written to w and
returns how many images made it in. Images that can't be fetched are
logged and skipped.
*/
func (s ZipService) WriteAlbumZip(ctx context.Context, album *models.Album, w io.Writer) (int, error) {
	var (
		err   error
		added int
	)

	l := slog.With("album", album.Name)
	l.Info("starting album zip", "images", len(album.ImagePaths))

	zipWriter := zip.NewWriter(w)
	usedNames := map[string]int{}

	addFile := func(imagePath string) error {
		body, _, err := s.imageStore.Get(ctx, imagePath)

		if err != nil {
			return fmt.Errorf("failed to get source file '%s': %w", imagePath, err)
		}

		defer body.Close()

		imageName := uniqueName(filepath.Base(imagePath), usedNames)
		dest, err := zipWriter.Create(imageName)

		if err != nil {
			return fmt.Errorf("failed to create file '%s' in zip: %w", imageName, err)
		}

		if _, err := io.Copy(dest, body); err != nil {
			return fmt.Errorf("failed to copy file '%s' to zip: %w", imageName, err)
		}

		return nil
	}

	for _, imagePath := range album.ImagePaths {
		if err = ctx.Err(); err != nil {
			_ = zipWriter.Close()
			return added, fmt.Errorf("album zip cancelled: %w", err)
		}

		if err = addFile(imagePath); err != nil {
			l.Error("failed to add image to zip", "error", err, "image", imagePath)
			continue
		}

		added++
	}

	if err = zipWriter.Close(); err != nil {
		return added, fmt.Errorf("failed to close zip writer: %w", err)
	}

	l.Info("finished album zip", "added", added)
	return added, nil
}

/*
uniqueName returns name, or name with the lowest numeric suffix not yet
handed out. Every returned name is recorded in used.
*/
func uniqueName(name string, used map[string]int) string {
	if _, ok := used[name]; !ok {
		used[name] = 1
		return name
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for n := used[name]; ; n++ {
		candidate := fmt.Sprintf("%s-%d%s", base, n, ext)

		if _, ok := used[candidate]; !ok {
			used[name] = n + 1
			used[candidate] = 1
			return candidate
		}
	}
}
