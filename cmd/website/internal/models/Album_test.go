package models

import (
	"testing"

	"github.com/adampresley/pictogallery/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestNewAlbumRow(t *testing.T) {
	albums := []*models.Album{
		{Name: "Trip", ImagePaths: []string{"a.jpg", "b.jpg"}},
		{Name: "Empty", ImagePaths: []string{}},
		{Name: "Secret", IsHidden: true, PasswordHash: "$2a$04$abc", ImagePaths: []string{"s.jpg"}},
	}

	rows := make([]AlbumRow, 0, len(albums))

	for _, album := range albums {
		rows = append(rows, NewAlbumRow(album))
	}

	assert.Len(t, rows, len(albums))

	for i, row := range rows {
		assert.Equal(t, albums[i].Name, row.ID)
		assert.Equal(t, albums[i].Name, row.Title)
		assert.Equal(t, len(albums[i].ImagePaths), row.ImageCount)
	}

	assert.Equal(t, "a.jpg", rows[0].CoverImage)
	assert.Equal(t, "", rows[1].CoverImage)
	assert.True(t, rows[2].IsHidden)
}
