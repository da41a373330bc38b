package mocks

import (
	"context"

	"github.com/adampresley/pictogallery/pkg/models"
	"github.com/adampresley/pictogallery/pkg/services"
	"github.com/stretchr/testify/mock"
)

type AlbumService struct {
	mock.Mock
}

var _ services.AlbumServicer = (*AlbumService)(nil)

func (m *AlbumService) AddImages(ctx context.Context, name string, imagePaths []string) (*models.Album, error) {
	args := m.Called(ctx, name, imagePaths)
	return albumOrNil(args.Get(0)), args.Error(1)
}

func (m *AlbumService) CreateAlbum(ctx context.Context, input models.AlbumInput) (*models.Album, error) {
	args := m.Called(ctx, input)
	return albumOrNil(args.Get(0)), args.Error(1)
}

func (m *AlbumService) DeleteAlbum(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *AlbumService) GetAlbum(ctx context.Context, name string) (*models.Album, error) {
	args := m.Called(ctx, name)
	return albumOrNil(args.Get(0)), args.Error(1)
}

func (m *AlbumService) GetAlbumList(ctx context.Context, includeHidden bool) ([]*models.Album, error) {
	args := m.Called(ctx, includeHidden)

	var result []*models.Album

	if r := args.Get(0); r != nil {
		result = r.([]*models.Album)
	}

	return result, args.Error(1)
}

func (m *AlbumService) RemoveImage(ctx context.Context, name, imagePath string) (*models.Album, error) {
	args := m.Called(ctx, name, imagePath)
	return albumOrNil(args.Get(0)), args.Error(1)
}

func (m *AlbumService) UpdateAlbum(ctx context.Context, name string, input models.AlbumInput) (*models.Album, error) {
	args := m.Called(ctx, name, input)
	return albumOrNil(args.Get(0)), args.Error(1)
}

func (m *AlbumService) VerifyPassword(ctx context.Context, name, password string) error {
	args := m.Called(ctx, name, password)
	return args.Error(0)
}

func albumOrNil(v any) *models.Album {
	if v == nil {
		return nil
	}

	return v.(*models.Album)
}
