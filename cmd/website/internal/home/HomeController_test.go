package home

import (
	"errors"
	"testing"

	"github.com/adampresley/pictogallery/pkg/services"
	"github.com/adampresley/pictogallery/pkg/services/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToPhotosFallsBackToOriginal(t *testing.T) {
	imageStore := &mocks.ImageStore{}
	imageStore.On("ThumbnailPath", "2026/a.jpg").Return("thumbnails/2026/a.jpg")
	imageStore.On("ThumbnailPath", "b.jpg").Return("thumbnails/b.jpg")
	imageStore.On("URL", "thumbnails/2026/a.jpg").Return("https://cdn/thumbnails/2026/a.jpg", nil)
	imageStore.On("URL", "thumbnails/b.jpg").Return("", errors.New("no such key"))

	c := NewHomeController(HomeControllerConfig{ImageStore: imageStore})

	photos := c.convertToPhotos([]services.StoredImage{
		{Key: "2026/a.jpg", URL: "https://cdn/2026/a.jpg"},
		{Key: "b.jpg", URL: "https://cdn/b.jpg"},
	})

	require.Len(t, photos, 2)
	assert.Equal(t, "a.jpg", photos[0].FileName)
	assert.Equal(t, "https://cdn/thumbnails/2026/a.jpg", photos[0].ThumbnailPath)
	assert.Equal(t, "https://cdn/2026/a.jpg", photos[0].OriginalPath)
	assert.Equal(t, "https://cdn/b.jpg", photos[1].ThumbnailPath)
}
