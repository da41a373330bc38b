package cache

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"sync"
	"time"

	_ "image/gif"
	_ "image/png"

	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/adamgokit/s3/createbucketoptions"
	"github.com/adampresley/pictogallery/pkg/services"
	"github.com/alitto/pond/v2"
)

type ThumbnailCreator interface {
	CreateCache() int
	EnsureBucketExists() error
}

type ThumbnailCreatorConfig struct {
	AlbumService    services.AlbumServicer
	AwsBucket       string
	AwsRegion       string
	ImageStore      services.ImageStorer
	MaxCacheWorkers int
	S3Client        s3.S3Client
	ShutdownCtx     context.Context
	ThumbnailSize   uint
}

type ThumbnailCreatorService struct {
	albumService    services.AlbumServicer
	awsBucket       string
	awsRegion       string
	imageStore      services.ImageStorer
	maxCacheWorkers int
	s3Client        s3.S3Client
	shutdownCtx     context.Context
	thumbnailSize   uint
}

type original struct {
	path         string
	lastModified time.Time
}

func NewThumbnailCreatorService(config ThumbnailCreatorConfig) ThumbnailCreatorService {
	if config.MaxCacheWorkers < 1 {
		config.MaxCacheWorkers = 1
	}

	if config.ThumbnailSize == 0 {
		config.ThumbnailSize = 400
	}

	if config.ShutdownCtx == nil {
		config.ShutdownCtx = context.Background()
	}

	return ThumbnailCreatorService{
		albumService:    config.AlbumService,
		awsBucket:       config.AwsBucket,
		awsRegion:       config.AwsRegion,
		imageStore:      config.ImageStore,
		maxCacheWorkers: config.MaxCacheWorkers,
		s3Client:        config.S3Client,
		shutdownCtx:     config.ShutdownCtx,
		thumbnailSize:   config.ThumbnailSize,
	}
}

/*
CreateCache builds thumbnails for every library image and every image an
album points at, skipping those whose thumbnail is newer than the original.
It returns the number of thumbnails written.
*/
func (c ThumbnailCreatorService) CreateCache() int {
	var (
		created int
		mu      sync.Mutex
	)

	logger := slog.With("job", "thumbnails")
	logger.Info("starting thumbnail creation...")

	originals := c.collectOriginals(logger)
	logger.Info("checking thumbnails...", "numImages", len(originals))

	pool := pond.NewPool(c.maxCacheWorkers, pond.WithContext(c.shutdownCtx))

	for _, o := range originals {
		if c.shutdownCtx.Err() != nil {
			break
		}

		if c.isThumbnailFresh(logger, o) {
			continue
		}

		pool.Submit(func() {
			if err := c.createThumbnail(o.path); err != nil {
				logger.Error("error creating thumbnail", "imagePath", o.path, "error", err)
				return
			}

			mu.Lock()
			created++
			mu.Unlock()

			logger.Info("created thumbnail", "imagePath", o.path)
		})
	}

	_ = pool.Stop().Wait()

	logger.Info("thumbnail creation complete", "created", created)
	return created
}

func (c ThumbnailCreatorService) EnsureBucketExists() error {
	var (
		err    error
		exists bool
	)

	exists, err = c.s3Client.BucketExists(c.awsBucket)

	if err != nil {
		return fmt.Errorf("error ensuring bucket '%s' exists: %w", c.awsBucket, err)
	}

	if exists {
		return nil
	}

	slog.Info("creating bucket", "bucketName", c.awsBucket)

	err = c.s3Client.CreateBucket(
		c.awsBucket,
		createbucketoptions.WithRegion(c.awsRegion),
	)

	if err != nil {
		return fmt.Errorf("error creating bucket '%s': %w", c.awsBucket, err)
	}

	return nil
}

/*
collectOriginals merges the library listing with album image paths. Paths
only known through an album have a zero modification time until stat'd.
*/
func (c ThumbnailCreatorService) collectOriginals(logger *slog.Logger) []original {
	seen := map[string]int{}
	result := []original{}

	library, err := c.imageStore.List("")

	if err != nil {
		logger.Error("error listing library images", "error", err)
	}

	for _, img := range library {
		seen[img.Key] = len(result)
		result = append(result, original{path: img.Key, lastModified: img.LastModified})
	}

	albums, err := c.albumService.GetAlbumList(c.shutdownCtx, true)

	if err != nil {
		logger.Error("error retrieving albums", "error", err)
		return result
	}

	for _, album := range albums {
		for _, imagePath := range album.ImagePaths {
			if _, ok := seen[imagePath]; ok {
				continue
			}

			seen[imagePath] = len(result)
			result = append(result, original{path: imagePath})
		}
	}

	return result
}

func (c ThumbnailCreatorService) isThumbnailFresh(logger *slog.Logger, o original) bool {
	var (
		err           error
		exists        bool
		thumbModified time.Time
	)

	if o.lastModified.IsZero() {
		if exists, o.lastModified, err = c.imageStore.Exists(o.path); err != nil || !exists {
			if err != nil {
				logger.Error("error retrieving metadata for original", "imagePath", o.path, "error", err)
			}

			// nothing to build from
			return true
		}
	}

	if exists, thumbModified, err = c.imageStore.Exists(c.imageStore.ThumbnailPath(o.path)); err != nil {
		logger.Error("error retrieving metadata for thumbnail", "imagePath", o.path, "error", err)
		return false
	}

	return exists && !thumbModified.Before(o.lastModified)
}

func (c ThumbnailCreatorService) createThumbnail(imagePath string) error {
	var (
		err error
		img image.Image
		buf bytes.Buffer
	)

	body, _, err := c.imageStore.Get(c.shutdownCtx, imagePath)

	if err != nil {
		return fmt.Errorf("error retrieving original image %s: %w", imagePath, err)
	}

	defer body.Close()

	if img, _, err = image.Decode(body); err != nil {
		return fmt.Errorf("error decoding image: %w", err)
	}

	img = services.ResizeLongestEdge(img, c.thumbnailSize)

	if err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("error encoding image for thumbnail: %w", err)
	}

	if err = c.imageStore.Put(c.imageStore.ThumbnailPath(imagePath), "image/jpeg", &buf); err != nil {
		return fmt.Errorf("error uploading thumbnail: %w", err)
	}

	return nil
}
