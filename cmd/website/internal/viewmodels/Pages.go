package viewmodels

import (
	internalmodels "github.com/adampresley/pictogallery/cmd/website/internal/models"
	"github.com/adampresley/pictogallery/pkg/uistate"
)

type AlbumsPage struct {
	BaseViewModel

	Rows         []internalmodels.AlbumRow
	Dialog       uistate.Dialog
	EditingAlbum internalmodels.AlbumForm
}

type AlbumViewPage struct {
	BaseViewModel

	Album internalmodels.AlbumDetail
}

type HomePage struct {
	BaseViewModel

	Photos []HomePagePhoto
}

type HomePagePhoto struct {
	OriginalPath  string
	ThumbnailPath string
	FileName      string
}

type PlaceholderPage struct {
	BaseViewModel

	Title string
}
