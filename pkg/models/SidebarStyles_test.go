package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSidebarStylesAreValid(t *testing.T) {
	assert.NoError(t, DefaultSidebarStyles().Validate())
}

func TestSidebarStylesValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(s *SidebarStyles)
		wantErr bool
	}{
		{name: "short hex", modify: func(s *SidebarStyles) { s.BgColor = "#fff" }},
		{name: "rgba", modify: func(s *SidebarStyles) { s.BgColor = "rgba(0, 0, 0, 0.5)" }},
		{name: "named color rejected", modify: func(s *SidebarStyles) { s.TextColor = "red" }, wantErr: true},
		{name: "css injection in color", modify: func(s *SidebarStyles) { s.IconColor = "#fff; background: url(x)" }, wantErr: true},
		{name: "font size too small", modify: func(s *SidebarStyles) { s.FontSize = 2 }, wantErr: true},
		{name: "icon size too big", modify: func(s *SidebarStyles) { s.IconSize = 200 }, wantErr: true},
		{name: "negative radius", modify: func(s *SidebarStyles) { s.BorderRadius = -1 }, wantErr: true},
		{name: "font family with markup", modify: func(s *SidebarStyles) { s.FontFamily = "</style>" }, wantErr: true},
		{name: "video url", modify: func(s *SidebarStyles) { s.BackgroundVideo = "https://example.com/bg.mp4" }},
		{name: "video javascript url", modify: func(s *SidebarStyles) { s.BackgroundVideo = "javascript:alert(1)" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSidebarStyles()
			tt.modify(&s)

			err := s.Validate()

			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidStyles))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAlbumCoverImageAndCount(t *testing.T) {
	album := Album{Name: "Trip", ImagePaths: []string{"a.jpg", "b.jpg"}}
	assert.Equal(t, "a.jpg", album.CoverImage())
	assert.Equal(t, 2, album.ImageCount())

	empty := Album{Name: "Empty"}
	assert.Equal(t, "", empty.CoverImage())
	assert.Equal(t, 0, empty.ImageCount())
}
