package sidebar

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/pictogallery/cmd/website/internal/viewmodels"
	"github.com/adampresley/pictogallery/pkg/models"
	"github.com/adampresley/pictogallery/pkg/services"
	"github.com/adampresley/pictogallery/pkg/uistate"
)

type SidebarHandlers interface {
	CloseOverlayAction(w http.ResponseWriter, r *http.Request)
	CompressImageAction(w http.ResponseWriter, r *http.Request)
	CropAvatarAction(w http.ResponseWriter, r *http.Request)
	OpenOverlayAction(w http.ResponseWriter, r *http.Request)
	ResetStylesAction(w http.ResponseWriter, r *http.Request)
	SaveStylesAction(w http.ResponseWriter, r *http.Request)
	UploadAvatarAction(w http.ResponseWriter, r *http.Request)
}

type SidebarControllerConfig struct {
	ImageService   services.ImageServicer
	MaxUploadBytes int64
	ViewerStore    *uistate.Store
}

type SidebarController struct {
	imageService   services.ImageServicer
	maxUploadBytes int64
	viewerStore    *uistate.Store
}

func NewSidebarController(config SidebarControllerConfig) SidebarController {
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 20 << 20
	}

	return SidebarController{
		imageService:   config.ImageService,
		maxUploadBytes: config.MaxUploadBytes,
		viewerStore:    config.ViewerStore,
	}
}

/*
POST /sidebar/overlay/{name}
*/
func (c SidebarController) OpenOverlayAction(w http.ResponseWriter, r *http.Request) {
	state := c.viewerState(r)
	name := httphelpers.GetFromRequest[string](r, "name")

	overlay, err := uistate.ParseOverlay(name)

	if err != nil {
		slog.Warn("request for unknown sidebar overlay", "overlay", name)
		httphelpers.WriteText(w, http.StatusNotFound, err.Error())
		return
	}

	state.ShowOverlay(overlay)
	c.redirectBack(w, r)
}

/*
POST /sidebar/overlay/close
*/
func (c SidebarController) CloseOverlayAction(w http.ResponseWriter, r *http.Request) {
	c.viewerState(r).HideOverlay()
	c.redirectBack(w, r)
}

/*
POST /sidebar/styles
*/
func (c SidebarController) SaveStylesAction(w http.ResponseWriter, r *http.Request) {
	state := c.viewerState(r)
	styles := stylesFromRequest(r, state.Styles())

	if err := state.SetStyles(styles); err != nil {
		slog.Warn("rejected sidebar styles", "error", err)
	}

	c.redirectBack(w, r)
}

/*
POST /sidebar/styles/reset
*/
func (c SidebarController) ResetStylesAction(w http.ResponseWriter, r *http.Request) {
	c.viewerState(r).ResetStyles()
	c.redirectBack(w, r)
}

/*
POST /sidebar/avatar
*/
func (c SidebarController) UploadAvatarAction(w http.ResponseWriter, r *http.Request) {
	var (
		err     error
		token   uistate.AvatarToken
		dataURL string
	)

	state := c.viewerState(r)
	r.Body = http.MaxBytesReader(w, r.Body, c.maxUploadBytes+(1<<20))

	file, header, err := r.FormFile("avatar")

	if errors.Is(err, http.ErrMissingFile) {
		slog.Error("no avatar file in upload", "error", err)
		_, _ = state.BeginAvatarUpload("")
		c.redirectBack(w, r)
		return
	}

	if err != nil {
		slog.Error("error reading avatar upload", "error", err)

		if token, err = state.BeginAvatarUpload("image/*"); err == nil {
			state.FailAvatarUpload(token, uistate.ReadFailureMessage)
		}

		c.redirectBack(w, r)
		return
	}

	defer file.Close()

	contentType := header.Header.Get("Content-Type")

	if token, err = state.BeginAvatarUpload(contentType); err != nil {
		slog.Warn("avatar upload is not an image", "error", err, "filename", header.Filename)
		c.redirectBack(w, r)
		return
	}

	if dataURL, err = c.imageService.ReadDataURL(file, contentType); err != nil {
		slog.Error("error reading avatar upload", "error", err, "filename", header.Filename)
		state.FailAvatarUpload(token, uistate.ReadFailureMessage)
		c.redirectBack(w, r)
		return
	}

	if !state.CompleteAvatarUpload(token, dataURL) {
		slog.Info("discarding avatar read superseded by a newer selection", "filename", header.Filename)
	}

	c.redirectBack(w, r)
}

/*
POST /sidebar/avatar/crop
*/
func (c SidebarController) CropAvatarAction(w http.ResponseWriter, r *http.Request) {
	var (
		err     error
		source  string
		token   uistate.AvatarToken
		cropped string
	)

	state := c.viewerState(r)

	if source, token, err = state.PendingCrop(); err != nil {
		state.SetOverlayError(err)
		c.redirectBack(w, r)
		return
	}

	area := services.CropArea{
		X:    httphelpers.GetFromRequest[int](r, "x"),
		Y:    httphelpers.GetFromRequest[int](r, "y"),
		Size: httphelpers.GetFromRequest[int](r, "size"),
	}

	if cropped, err = c.imageService.Crop(source, area); err != nil {
		slog.Error("error cropping avatar", "error", err, "x", area.X, "y", area.Y, "size", area.Size)
		state.SetOverlayError(err)
		c.redirectBack(w, r)
		return
	}

	if err = state.CompleteCrop(token, cropped); err != nil {
		if errors.Is(err, uistate.ErrStaleCrop) {
			slog.Info("discarding crop of a superseded avatar upload")
		} else {
			slog.Error("error storing cropped avatar", "error", err)
			state.SetOverlayError(err)
		}
	}

	c.redirectBack(w, r)
}

/*
POST /sidebar/compress
*/
func (c SidebarController) CompressImageAction(w http.ResponseWriter, r *http.Request) {
	var (
		err    error
		result services.CompressResult
	)

	state := c.viewerState(r)
	r.Body = http.MaxBytesReader(w, r.Body, c.maxUploadBytes+(1<<20))

	file, header, err := r.FormFile("image")

	if err != nil {
		slog.Error("no image file in compress request", "error", err)
		state.SetOverlayError(uistate.ErrReadFailure)
		c.redirectBack(w, r)
		return
	}

	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		state.SetOverlayError(uistate.ErrInvalidImage)
		c.redirectBack(w, r)
		return
	}

	options := services.CompressOptions{
		Quality:  httphelpers.GetFromRequest[int](r, "quality"),
		MaxWidth: httphelpers.GetFromRequest[uint](r, "maxWidth"),
	}

	if options.Quality == 0 {
		options.Quality = 75
	}

	if result, err = c.imageService.Compress(file, options); err != nil {
		slog.Error("error compressing image", "error", err, "filename", header.Filename)
		state.SetOverlayError(err)
		c.redirectBack(w, r)
		return
	}

	slog.Info("image compressed",
		"filename", header.Filename,
		"originalSize", result.OriginalSize,
		"compressedSize", result.CompressedSize,
		"quality", options.Quality,
	)

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", compressedFileName(header.Filename)))
	w.Header().Set("X-Original-Size", strconv.Itoa(result.OriginalSize))
	w.Header().Set("X-Compressed-Size", strconv.Itoa(result.CompressedSize))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

func (c SidebarController) viewerState(r *http.Request) *uistate.ViewerState {
	return c.viewerStore.Get(viewmodels.GetViewerFromContext(r).ID)
}

/*
redirectBack returns to the page the sidebar was used on. Only local paths
from the referer are followed.
*/
func (c SidebarController) redirectBack(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, backPath(r), http.StatusFound)
}

func backPath(r *http.Request) string {
	referer, err := url.Parse(r.Referer())

	if err != nil || referer.Path == "" || !strings.HasPrefix(referer.Path, "/") || strings.HasPrefix(referer.Path, "//") {
		return "/"
	}

	if referer.Host != "" && referer.Host != r.Host {
		return "/"
	}

	if referer.RawQuery != "" {
		return referer.Path + "?" + referer.RawQuery
	}

	return referer.Path
}

/*
stylesFromRequest overlays submitted fields onto current. Fields that were
not submitted keep their current value.
*/
func stylesFromRequest(r *http.Request, current models.SidebarStyles) models.SidebarStyles {
	_ = r.ParseForm()

	setString := func(name string, target *string) {
		if _, ok := r.Form[name]; ok {
			*target = strings.TrimSpace(r.Form.Get(name))
		}
	}

	setInt := func(name string, target *int) {
		if _, ok := r.Form[name]; ok {
			value, err := strconv.Atoi(strings.TrimSpace(r.Form.Get(name)))

			if err != nil {
				value = -1
			}

			*target = value
		}
	}

	setString("bgColor", &current.BgColor)
	setString("textColor", &current.TextColor)
	setString("borderColor", &current.BorderColor)
	setInt("borderRadius", &current.BorderRadius)
	setString("fontFamily", &current.FontFamily)
	setInt("fontSize", &current.FontSize)
	setString("activeBackgroundColor", &current.ActiveBackgroundColor)
	setString("activeTextColor", &current.ActiveTextColor)
	setString("hoverBackgroundColor", &current.HoverBackgroundColor)
	setString("iconColor", &current.IconColor)
	setInt("iconSize", &current.IconSize)
	setString("uiBackgroundColor", &current.UIBackgroundColor)
	setString("backgroundVideo", &current.BackgroundVideo)

	return current
}

func compressedFileName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	if base == "" || base == "." || base == "/" {
		base = "image"
	}

	return base + "-compressed.jpg"
}
