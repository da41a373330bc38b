package home

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/pictogallery/cmd/website/internal/viewmodels"
	"github.com/adampresley/pictogallery/pkg/services"
	"github.com/adampresley/pictogallery/pkg/uistate"
)

type HomeHandlers interface {
	HomePage(w http.ResponseWriter, r *http.Request)
	PlaceholderPage(w http.ResponseWriter, r *http.Request)
}

type HomeControllerConfig struct {
	ImageStore  services.ImageStorer
	Renderer    rendering.TemplateRenderer
	ViewerStore *uistate.Store
}

type HomeController struct {
	imageStore  services.ImageStorer
	renderer    rendering.TemplateRenderer
	viewerStore *uistate.Store
}

func NewHomeController(config HomeControllerConfig) HomeController {
	return HomeController{
		imageStore:  config.ImageStore,
		renderer:    config.Renderer,
		viewerStore: config.ViewerStore,
	}
}

/*
GET /
*/
func (c HomeController) HomePage(w http.ResponseWriter, r *http.Request) {
	pageName := "pages/home"
	state := c.viewerStore.Get(viewmodels.GetViewerFromContext(r).ID)

	viewData := viewmodels.HomePage{
		BaseViewModel: viewmodels.BaseViewModel{
			Message:            "",
			IsHtmx:             httphelpers.IsHtmx(r),
			JavascriptIncludes: []rendering.JavascriptInclude{},
			Sidebar:            viewmodels.NewSidebar(r, state),
		},
		Photos: []viewmodels.HomePagePhoto{},
	}

	originals, err := c.imageStore.List("")

	if err != nil {
		slog.Error("error listing library images", "error", err)
		viewData.IsError = true
		viewData.Message = "There was a problem getting photos for this page."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	viewData.Photos = c.convertToPhotos(originals)
	c.renderer.Render(pageName, viewData, w)
}

/*
GET /ai-tagging, /videos, /settings, /secure-folder, /memories
*/
func (c HomeController) PlaceholderPage(w http.ResponseWriter, r *http.Request) {
	state := c.viewerStore.Get(viewmodels.GetViewerFromContext(r).ID)
	item, ok := viewmodels.FindNavItem(r.URL.Path)

	if !ok {
		http.NotFound(w, r)
		return
	}

	viewData := viewmodels.PlaceholderPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx:  httphelpers.IsHtmx(r),
			Sidebar: viewmodels.NewSidebar(r, state),
		},
		Title: item.Label,
	}

	c.renderer.Render("pages/placeholder", viewData, w)
}

/*
convertToPhotos pairs each original with its thumbnail. Images whose
thumbnail hasn't been built yet fall back to the original.
*/
func (c HomeController) convertToPhotos(originals []services.StoredImage) []viewmodels.HomePagePhoto {
	result := make([]viewmodels.HomePagePhoto, 0, len(originals))

	for _, original := range originals {
		thumbnailURL := original.URL

		if u, err := c.imageStore.URL(c.imageStore.ThumbnailPath(original.Key)); err == nil {
			thumbnailURL = u
		}

		result = append(result, viewmodels.HomePagePhoto{
			OriginalPath:  original.URL,
			ThumbnailPath: thumbnailURL,
			FileName:      filepath.Base(original.Key),
		})
	}

	return result
}
