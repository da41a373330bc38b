package models

import (
	"fmt"
	"strings"
)

var (
	ErrAlbumNotFound     = fmt.Errorf("album not found")
	ErrAlbumExists       = fmt.Errorf("an album with that name already exists")
	ErrInvalidAlbumName  = fmt.Errorf("album name is required")
	ErrPasswordRequired  = fmt.Errorf("hidden albums require a password")
	ErrIncorrectPassword = fmt.Errorf("incorrect password")
)

/*
Album is a named collection of image paths. The name is unique and doubles
as the album's key and display title. PasswordHash is only populated when
the album is read for verification and must never reach a view.
*/
type Album struct {
	BaseModel

	Name         string
	Description  string
	IsHidden     bool   `db:"is_hidden"`
	PasswordHash string `db:"password_hash"`
	ImagePaths   []string
}

type AlbumImage struct {
	AlbumID   uint `db:"album_id"`
	Position  int
	ImagePath string `db:"image_path"`
}

/*
AlbumInput is what the create and edit forms submit. A blank Password on
edit keeps the existing one.
*/
type AlbumInput struct {
	Name        string
	Description string
	IsHidden    bool
	Password    string
}

func (a AlbumInput) Normalize() AlbumInput {
	a.Name = strings.TrimSpace(a.Name)
	a.Description = strings.TrimSpace(a.Description)
	return a
}

/*
CoverImage returns the first image path, or an empty string for an album
with no images.
*/
func (a Album) CoverImage() string {
	if len(a.ImagePaths) == 0 {
		return ""
	}

	return a.ImagePaths[0]
}

func (a Album) ImageCount() int {
	return len(a.ImagePaths)
}
