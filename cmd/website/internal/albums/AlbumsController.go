package albums

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	internalmodels "github.com/adampresley/pictogallery/cmd/website/internal/models"
	"github.com/adampresley/pictogallery/cmd/website/internal/viewmodels"
	"github.com/adampresley/pictogallery/pkg/models"
	"github.com/adampresley/pictogallery/pkg/querycache"
	"github.com/adampresley/pictogallery/pkg/services"
	"github.com/adampresley/pictogallery/pkg/uistate"
)

const (
	AllAlbumsTag = "all-albums"

	repeatedUnlockFailures = 3
)

type AlbumsHandlers interface {
	AddImagesAction(w http.ResponseWriter, r *http.Request)
	AlbumListPage(w http.ResponseWriter, r *http.Request)
	BackAction(w http.ResponseWriter, r *http.Request)
	CloseDialogAction(w http.ResponseWriter, r *http.Request)
	CreateAlbumAction(w http.ResponseWriter, r *http.Request)
	DeleteAlbumAction(w http.ResponseWriter, r *http.Request)
	DownloadAlbum(w http.ResponseWriter, r *http.Request)
	OpenCreateFormAction(w http.ResponseWriter, r *http.Request)
	OpenEditFormAction(w http.ResponseWriter, r *http.Request)
	RemoveImageAction(w http.ResponseWriter, r *http.Request)
	SelectAlbumAction(w http.ResponseWriter, r *http.Request)
	UnlockAlbumAction(w http.ResponseWriter, r *http.Request)
	UpdateAlbumAction(w http.ResponseWriter, r *http.Request)
	ViewAlbumPage(w http.ResponseWriter, r *http.Request)
}

type AlbumsControllerConfig struct {
	AlbumCache       *querycache.Cache[[]*models.Album]
	AlbumService     services.AlbumServicer
	ImageStore       services.ImageStorer
	ListHiddenAlbums bool
	Renderer         rendering.TemplateRenderer
	ViewerStore      *uistate.Store
	ZipService       services.ZipServicer
}

type AlbumsController struct {
	albumCache       *querycache.Cache[[]*models.Album]
	albumService     services.AlbumServicer
	imageStore       services.ImageStorer
	listHiddenAlbums bool
	renderer         rendering.TemplateRenderer
	viewerStore      *uistate.Store
	zipService       services.ZipServicer
}

func NewAlbumsController(config AlbumsControllerConfig) AlbumsController {
	return AlbumsController{
		albumCache:       config.AlbumCache,
		albumService:     config.AlbumService,
		imageStore:       config.ImageStore,
		listHiddenAlbums: config.ListHiddenAlbums,
		renderer:         config.Renderer,
		viewerStore:      config.ViewerStore,
		zipService:       config.ZipService,
	}
}

/*
GET /albums
*/
func (c AlbumsController) AlbumListPage(w http.ResponseWriter, r *http.Request) {
	var (
		err    error
		albums []*models.Album
		album  *models.Album
	)

	pageName := "pages/albums/list"
	state := c.viewerState(r)
	dialog := state.Dialog()

	if dialog.Is(uistate.DialogAlbumOpen) {
		http.Redirect(w, r, albumURL(dialog.AlbumName), http.StatusFound)
		return
	}

	viewData := viewmodels.AlbumsPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
			JavascriptIncludes: []rendering.JavascriptInclude{
				{Type: "module", Src: "/static/js/pages/album-list.js"},
			},
			Sidebar: viewmodels.NewSidebar(r, state),
		},
		Rows:   []internalmodels.AlbumRow{},
		Dialog: dialog,
	}

	if albums, err = c.fetchAlbums(r.Context()); err != nil {
		slog.Error("error getting album list", "error", err)
		viewData.IsError = true
		viewData.Message = "An unexpected error occurred loading your albums. Please try again."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	viewData.Rows = c.convertAlbumsToRows(albums)

	if dialog.Is(uistate.DialogEditForm) {
		if album, err = c.albumService.GetAlbum(r.Context(), dialog.AlbumName); err != nil {
			slog.Error("error getting album for edit dialog", "error", err, "album", dialog.AlbumName)
			viewData.Dialog = state.ShowError("Error Loading Album", err)
		} else {
			viewData.EditingAlbum = internalmodels.NewAlbumForm(album)
		}
	}

	c.renderer.Render(pageName, viewData, w)
}

/*
GET /albums/{name}
*/
func (c AlbumsController) ViewAlbumPage(w http.ResponseWriter, r *http.Request) {
	var (
		err   error
		album *models.Album
	)

	state := c.viewerState(r)
	name := httphelpers.GetFromRequest[string](r, "name")

	if album, err = c.albumService.GetAlbum(r.Context(), name); err != nil {
		slog.Error("an error occurred querying album in ViewAlbumPage", "error", err, "album", name)
		state.ShowError("Error Opening Album", err)
		http.Redirect(w, r, "/albums", http.StatusFound)
		return
	}

	if !c.canAccess(state, album) {
		state.SetDialog(uistate.PasswordPromptDialog(album.Name))
		http.Redirect(w, r, "/albums", http.StatusFound)
		return
	}

	state.SetDialog(uistate.AlbumOpenDialog(album.Name))

	viewData := viewmodels.AlbumViewPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
			JavascriptIncludes: []rendering.JavascriptInclude{
				{Type: "module", Src: "/static/js/pages/view-album.js"},
			},
			Sidebar: viewmodels.NewSidebar(r, state),
		},
		Album: c.convertAlbumToDetail(album),
	}

	c.renderer.Render("pages/albums/view", viewData, w)
}

/*
POST /albums/{name}/select
*/
func (c AlbumsController) SelectAlbumAction(w http.ResponseWriter, r *http.Request) {
	state := c.viewerState(r)
	name := httphelpers.GetFromRequest[string](r, "name")

	if err := c.selectAlbum(r.Context(), state, name); err != nil {
		slog.Error("error selecting album", "error", err, "album", name)
		state.ShowError("Error Opening Album", err)
	}

	c.redirectToCurrentView(w, r, state)
}

/*
POST /albums/{name}/unlock
*/
func (c AlbumsController) UnlockAlbumAction(w http.ResponseWriter, r *http.Request) {
	state := c.viewerState(r)
	name := httphelpers.GetFromRequest[string](r, "name")
	password := httphelpers.GetFromRequest[string](r, "password")

	if err := c.unlockAlbum(r.Context(), state, name, password); err != nil {
		if errors.Is(err, models.ErrIncorrectPassword) {
			slog.Warn("incorrect album password", "album", name)
		} else {
			slog.Error("error unlocking album", "error", err, "album", name)
		}
	}

	c.redirectToCurrentView(w, r, state)
}

/*
POST /albums/back
*/
func (c AlbumsController) BackAction(w http.ResponseWriter, r *http.Request) {
	state := c.viewerState(r)

	if state.Dialog().Is(uistate.DialogAlbumOpen) {
		state.CloseDialog()
	}

	http.Redirect(w, r, "/albums", http.StatusFound)
}

/*
POST /albums/dialog/close
*/
func (c AlbumsController) CloseDialogAction(w http.ResponseWriter, r *http.Request) {
	c.viewerState(r).CloseDialog()
	http.Redirect(w, r, "/albums", http.StatusFound)
}

/*
POST /albums/create-form
*/
func (c AlbumsController) OpenCreateFormAction(w http.ResponseWriter, r *http.Request) {
	c.viewerState(r).SetDialog(uistate.CreateFormDialog())
	http.Redirect(w, r, "/albums", http.StatusFound)
}

/*
POST /albums
*/
func (c AlbumsController) CreateAlbumAction(w http.ResponseWriter, r *http.Request) {
	state := c.viewerState(r)
	input := albumInputFromRequest(r)

	err := querycache.Mutate(r.Context(), func(ctx context.Context) error {
		_, err := c.albumService.CreateAlbum(ctx, input)
		return err
	}, []string{AllAlbumsTag}, c.albumCache)

	if err != nil {
		slog.Error("error creating album", "error", err, "album", input.Name)
		state.ShowError("Error Creating Album", err)
		http.Redirect(w, r, "/albums", http.StatusFound)
		return
	}

	if input.IsHidden {
		state.Unlock(input.Normalize().Name)
	}

	state.CloseDialog()
	http.Redirect(w, r, "/albums", http.StatusFound)
}

/*
POST /albums/{name}/edit-form
*/
func (c AlbumsController) OpenEditFormAction(w http.ResponseWriter, r *http.Request) {
	var (
		err   error
		album *models.Album
	)

	state := c.viewerState(r)
	name := httphelpers.GetFromRequest[string](r, "name")

	if album, err = c.albumService.GetAlbum(r.Context(), name); err != nil {
		slog.Error("error getting album to edit", "error", err, "album", name)
		state.ShowError("Error Loading Album", err)
		http.Redirect(w, r, "/albums", http.StatusFound)
		return
	}

	if !c.canAccess(state, album) {
		state.SetDialog(uistate.PasswordPromptDialog(album.Name))
		http.Redirect(w, r, "/albums", http.StatusFound)
		return
	}

	state.SetDialog(uistate.EditFormDialog(album.Name))
	http.Redirect(w, r, "/albums", http.StatusFound)
}

/*
POST /albums/{name}
*/
func (c AlbumsController) UpdateAlbumAction(w http.ResponseWriter, r *http.Request) {
	var (
		err   error
		album *models.Album
	)

	state := c.viewerState(r)
	name := httphelpers.GetFromRequest[string](r, "name")
	input := albumInputFromRequest(r)

	if album, err = c.albumService.GetAlbum(r.Context(), name); err == nil && !c.canAccess(state, album) {
		state.SetDialog(uistate.PasswordPromptDialog(album.Name))
		http.Redirect(w, r, "/albums", http.StatusFound)
		return
	}

	err = querycache.Mutate(r.Context(), func(ctx context.Context) error {
		_, err := c.albumService.UpdateAlbum(ctx, name, input)
		return err
	}, []string{AllAlbumsTag}, c.albumCache)

	if err != nil {
		slog.Error("error updating album", "error", err, "album", name)
		state.ShowError("Error Updating Album", err)
		http.Redirect(w, r, "/albums", http.StatusFound)
		return
	}

	/*
	 * A new password locks every other viewer out again. The editor
	 * knows it, so they stay unlocked.
	 */
	if input.Password != "" || !input.IsHidden {
		c.viewerStore.ForgetAlbum(name)
	}

	if input.IsHidden {
		state.Unlock(name)
	}

	state.CloseDialog()
	http.Redirect(w, r, "/albums", http.StatusFound)
}

/*
POST /albums/{name}/delete
*/
func (c AlbumsController) DeleteAlbumAction(w http.ResponseWriter, r *http.Request) {
	state := c.viewerState(r)
	name := httphelpers.GetFromRequest[string](r, "name")

	err := querycache.Mutate(r.Context(), func(ctx context.Context) error {
		return c.albumService.DeleteAlbum(ctx, name)
	}, []string{AllAlbumsTag}, c.albumCache)

	if err != nil {
		slog.Error("error deleting album", "error", err, "album", name)
		state.ShowError("Error Deleting Album", err)
		http.Redirect(w, r, "/albums", http.StatusFound)
		return
	}

	c.viewerStore.ForgetAlbum(name)
	http.Redirect(w, r, "/albums", http.StatusFound)
}

/*
POST /albums/{name}/images
*/
func (c AlbumsController) AddImagesAction(w http.ResponseWriter, r *http.Request) {
	name := httphelpers.GetFromRequest[string](r, "name")
	imagePaths := services.NormalizeImagePaths([]string{httphelpers.GetFromRequest[string](r, "imagePaths")})

	c.mutateImages(w, r, name, func(ctx context.Context) error {
		_, err := c.albumService.AddImages(ctx, name, imagePaths)
		return err
	})
}

/*
POST /albums/{name}/images/remove
*/
func (c AlbumsController) RemoveImageAction(w http.ResponseWriter, r *http.Request) {
	name := httphelpers.GetFromRequest[string](r, "name")
	imagePath := httphelpers.GetFromRequest[string](r, "imagePath")

	c.mutateImages(w, r, name, func(ctx context.Context) error {
		_, err := c.albumService.RemoveImage(ctx, name, imagePath)
		return err
	})
}

/*
GET /albums/{name}/download
*/
func (c AlbumsController) DownloadAlbum(w http.ResponseWriter, r *http.Request) {
	var (
		err   error
		album *models.Album
		added int
	)

	state := c.viewerState(r)
	name := httphelpers.GetFromRequest[string](r, "name")

	if album, err = c.albumService.GetAlbum(r.Context(), name); err != nil {
		httphelpers.WriteText(w, http.StatusNotFound, "album not found")
		return
	}

	if !c.canAccess(state, album) {
		httphelpers.WriteText(w, http.StatusForbidden, "this album is locked")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", c.zipService.ArchiveName(album)))

	if added, err = c.zipService.WriteAlbumZip(r.Context(), album, w); err != nil {
		slog.Error("error streaming album zip", "error", err, "album", name)
		return
	}

	slog.Info("album zip download completed", "album", name, "images", added)
}

func (c AlbumsController) mutateImages(w http.ResponseWriter, r *http.Request, name string, fn func(ctx context.Context) error) {
	var (
		err   error
		album *models.Album
	)

	state := c.viewerState(r)

	if album, err = c.albumService.GetAlbum(r.Context(), name); err != nil {
		slog.Error("error getting album to change images", "error", err, "album", name)
		state.ShowError("Error Updating Album", err)
		http.Redirect(w, r, "/albums", http.StatusFound)
		return
	}

	if !c.canAccess(state, album) {
		state.SetDialog(uistate.PasswordPromptDialog(album.Name))
		http.Redirect(w, r, "/albums", http.StatusFound)
		return
	}

	if err = querycache.Mutate(r.Context(), fn, []string{AllAlbumsTag}, c.albumCache); err != nil {
		slog.Error("error changing album images", "error", err, "album", name)
		state.ShowError("Error Updating Album", err)
		http.Redirect(w, r, "/albums", http.StatusFound)
		return
	}

	http.Redirect(w, r, albumURL(name), http.StatusFound)
}

/*
selectAlbum opens visible albums, and hidden albums this viewer already
unlocked, regardless of any password. Other hidden albums get a password
prompt.
*/
func (c AlbumsController) selectAlbum(ctx context.Context, state *uistate.ViewerState, name string) error {
	album, err := c.albumService.GetAlbum(ctx, name)

	if err != nil {
		return err
	}

	if c.canAccess(state, album) {
		state.SetDialog(uistate.AlbumOpenDialog(album.Name))
		return nil
	}

	state.SetDialog(uistate.PasswordPromptDialog(album.Name))
	return nil
}

/*
unlockAlbum checks password on the server. A mismatch leaves the listing
as it was and shows an error dialog.
*/
func (c AlbumsController) unlockAlbum(ctx context.Context, state *uistate.ViewerState, name, password string) error {
	err := c.albumService.VerifyPassword(ctx, name, password)

	switch {
	case err == nil:
		state.Unlock(name)
		state.SetDialog(uistate.AlbumOpenDialog(name))
		return nil

	case errors.Is(err, models.ErrIncorrectPassword):
		if attempts := state.RecordFailedUnlock(name); attempts >= repeatedUnlockFailures {
			slog.Warn("repeated incorrect album passwords", "album", name, "attempts", attempts)
		}

		state.ShowError("Incorrect password", err)
		return err

	default:
		state.ShowError("Error Opening Album", err)
		return err
	}
}

func (c AlbumsController) canAccess(state *uistate.ViewerState, album *models.Album) bool {
	return !album.IsHidden || state.IsUnlocked(album.Name)
}

func (c AlbumsController) fetchAlbums(ctx context.Context) ([]*models.Album, error) {
	return c.albumCache.Get(ctx, querycache.Query[[]*models.Album]{
		Key:  fmt.Sprintf("%s:hidden=%t", AllAlbumsTag, c.listHiddenAlbums),
		Tags: []string{AllAlbumsTag},
		Fetch: func(ctx context.Context) ([]*models.Album, error) {
			return c.albumService.GetAlbumList(ctx, c.listHiddenAlbums)
		},
	})
}

func (c AlbumsController) viewerState(r *http.Request) *uistate.ViewerState {
	return c.viewerStore.Get(viewmodels.GetViewerFromContext(r).ID)
}

func (c AlbumsController) redirectToCurrentView(w http.ResponseWriter, r *http.Request, state *uistate.ViewerState) {
	dialog := state.Dialog()

	if dialog.Is(uistate.DialogAlbumOpen) {
		http.Redirect(w, r, albumURL(dialog.AlbumName), http.StatusFound)
		return
	}

	http.Redirect(w, r, "/albums", http.StatusFound)
}

func (c AlbumsController) convertAlbumsToRows(albums []*models.Album) []internalmodels.AlbumRow {
	result := make([]internalmodels.AlbumRow, 0, len(albums))

	for _, album := range albums {
		row := internalmodels.NewAlbumRow(album)

		if row.CoverImage != "" && c.imageStore != nil {
			if u, err := c.imageStore.URL(c.imageStore.ThumbnailPath(row.CoverImage)); err == nil {
				row.CoverImageURL = u
			} else {
				slog.Error("error getting cover image URL", "error", err, "album", album.Name, "imagePath", row.CoverImage)
			}
		}

		result = append(result, row)
	}

	return result
}

func (c AlbumsController) convertAlbumToDetail(album *models.Album) internalmodels.AlbumDetail {
	result := internalmodels.AlbumDetail{
		Name:        album.Name,
		Description: album.Description,
		IsHidden:    album.IsHidden,
		Images:      []internalmodels.Image{},
	}

	for _, imagePath := range album.ImagePaths {
		image := internalmodels.Image{Path: imagePath}

		if c.imageStore != nil {
			image.OriginalURL, _ = c.imageStore.URL(imagePath)
			image.ThumbnailURL, _ = c.imageStore.URL(c.imageStore.ThumbnailPath(imagePath))
		}

		result.Images = append(result.Images, image)
	}

	return result
}

func albumInputFromRequest(r *http.Request) models.AlbumInput {
	hidden := httphelpers.GetFromRequest[string](r, "isHidden")

	return models.AlbumInput{
		Name:        httphelpers.GetFromRequest[string](r, "albumName"),
		Description: httphelpers.GetFromRequest[string](r, "description"),
		IsHidden:    hidden == "on" || hidden == "true",
		Password:    httphelpers.GetFromRequest[string](r, "password"),
	}
}

func albumURL(name string) string {
	return "/albums/" + url.PathEscape(name)
}
