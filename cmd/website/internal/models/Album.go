package models

import (
	"github.com/adampresley/pictogallery/pkg/models"
)

/*
AlbumRow is one tile in the album grid, derived fresh from an album on
every render.
*/
type AlbumRow struct {
	ID            string
	Title         string
	CoverImage    string
	CoverImageURL string
	ImageCount    int
	IsHidden      bool
}

/*
AlbumDetail is the single album view. It never carries the password.
*/
type AlbumDetail struct {
	Name        string
	Description string
	IsHidden    bool
	Images      []Image
}

type Image struct {
	Path         string
	ThumbnailURL string
	OriginalURL  string
}

/*
AlbumForm pre-fills the edit dialog.
*/
type AlbumForm struct {
	Name        string
	Description string
	IsHidden    bool
}

func NewAlbumRow(album *models.Album) AlbumRow {
	return AlbumRow{
		ID:         album.Name,
		Title:      album.Name,
		CoverImage: album.CoverImage(),
		ImageCount: album.ImageCount(),
		IsHidden:   album.IsHidden,
	}
}

func NewAlbumForm(album *models.Album) AlbumForm {
	return AlbumForm{
		Name:        album.Name,
		Description: album.Description,
		IsHidden:    album.IsHidden,
	}
}
