package mocks

import (
	"context"
	"io"
	"time"

	"github.com/adampresley/pictogallery/pkg/services"
	"github.com/stretchr/testify/mock"
)

type ImageStore struct {
	mock.Mock
}

var _ services.ImageStorer = (*ImageStore)(nil)

func (m *ImageStore) Exists(path string) (bool, time.Time, error) {
	args := m.Called(path)
	return args.Bool(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *ImageStore) Get(ctx context.Context, path string) (io.ReadCloser, string, error) {
	args := m.Called(ctx, path)

	var body io.ReadCloser

	if b := args.Get(0); b != nil {
		body = b.(io.ReadCloser)
	}

	return body, args.String(1), args.Error(2)
}

func (m *ImageStore) List(prefix string) ([]services.StoredImage, error) {
	args := m.Called(prefix)

	var result []services.StoredImage

	if r := args.Get(0); r != nil {
		result = r.([]services.StoredImage)
	}

	return result, args.Error(1)
}

func (m *ImageStore) Put(path, contentType string, body io.Reader) error {
	args := m.Called(path, contentType, body)
	return args.Error(0)
}

func (m *ImageStore) ThumbnailPath(path string) string {
	args := m.Called(path)
	return args.String(0)
}

func (m *ImageStore) URL(path string) (string, error) {
	args := m.Called(path)
	return args.String(0), args.Error(1)
}
