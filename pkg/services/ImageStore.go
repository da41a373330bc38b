package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/adamgokit/s3/getoptions"
	"github.com/adampresley/adamgokit/s3/listoptions"
	"github.com/adampresley/adamgokit/s3/putoptions"
	"github.com/adampresley/adamgokit/slices"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

/*
StoredImage is one object in the photo library.
*/
type StoredImage struct {
	Key          string
	URL          string
	LastModified time.Time
}

/*
ImageStorer is the slice of object storage the site needs. Paths are
relative to the library folder; the store adds the prefix.
*/
type ImageStorer interface {
	Exists(path string) (bool, time.Time, error)
	Get(ctx context.Context, path string) (io.ReadCloser, string, error)
	List(prefix string) ([]StoredImage, error)
	Put(path, contentType string, body io.Reader) error
	ThumbnailPath(path string) string
	URL(path string) (string, error)
}

type ImageStoreConfig struct {
	Bucket        string
	LibraryFolder string
	S3Client      s3.S3Client
}

type ImageStore struct {
	bucket        string
	libraryFolder string
	s3Client      s3.S3Client
}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

func NewImageStore(config ImageStoreConfig) ImageStore {
	return ImageStore{
		bucket:        config.Bucket,
		libraryFolder: strings.Trim(config.LibraryFolder, "/"),
		s3Client:      config.S3Client,
	}
}

func (s ImageStore) key(path string) string {
	return filepath.ToSlash(filepath.Join(s.libraryFolder, filepath.Clean("/"+path)))
}

func (s ImageStore) relative(key string) string {
	return strings.TrimPrefix(strings.TrimPrefix(key, s.libraryFolder), "/")
}

/*
ThumbnailPath is where the thumbnail for an image path lives.
*/
func (s ImageStore) ThumbnailPath(path string) string {
	return filepath.ToSlash(filepath.Join("thumbnails", filepath.Clean("/"+path)))
}

func (s ImageStore) URL(path string) (string, error) {
	u, err := s.s3Client.GetUrl(s.bucket, s.key(path))

	if err != nil {
		return "", fmt.Errorf("error getting URL for image '%s': %w", path, err)
	}

	return u, nil
}

func (s ImageStore) Exists(path string) (bool, time.Time, error) {
	var (
		err  error
		stat *s3.ObjectMetadata
	)

	if stat, err = s.s3Client.StatObject(s.bucket, s.key(path)); err != nil {
		return false, time.Time{}, fmt.Errorf("error retrieving metadata for '%s': %w", path, err)
	}

	if stat == nil {
		return false, time.Time{}, nil
	}

	return true, stat.LastModified, nil
}

func (s ImageStore) Get(ctx context.Context, path string) (io.ReadCloser, string, error) {
	object, err := s.s3Client.Get(
		s.bucket,
		s.key(path),
		getoptions.WithContext(ctx),
		getoptions.WithTimeout(time.Minute*5),
	)

	if err != nil {
		return nil, "", fmt.Errorf("error getting image '%s': %w", path, err)
	}

	return object.Body, object.ContentType, nil
}

/*
List returns every image under prefix, excluding generated thumbnails.
*/
func (s ImageStore) List(prefix string) ([]StoredImage, error) {
	response, err := s.s3Client.List(
		s.bucket,
		s.key(prefix),
		listoptions.WithGetUrls(),
		listoptions.WithGetAll(),
		listoptions.WithFilter(func(obj types.Object) bool {
			key := aws.ToString(obj.Key)
			ext := strings.ToLower(filepath.Ext(key))
			return slices.IsInSlice(ext, imageExtensions) && !strings.HasPrefix(s.relative(key), "thumbnails/")
		}),
	)

	if err != nil {
		return nil, fmt.Errorf("error listing images under '%s': %w", prefix, err)
	}

	return slices.Map(response.Objects, func(input s3.Object, index int) StoredImage {
		return StoredImage{
			Key:          s.relative(input.Key),
			URL:          input.Url,
			LastModified: input.LastModified,
		}
	}), nil
}

func (s ImageStore) Put(path, contentType string, body io.Reader) error {
	if _, err := s.s3Client.Put(s.bucket, s.key(path), body, putoptions.WithContentType(contentType)); err != nil {
		return fmt.Errorf("error uploading '%s': %w", path, err)
	}

	return nil
}
