package main

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/adampresley/adamgokit/rendering"
	internalmodels "github.com/adampresley/pictogallery/cmd/website/internal/models"
	"github.com/adampresley/pictogallery/cmd/website/internal/viewmodels"
	"github.com/adampresley/pictogallery/pkg/uistate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmbeddedRenderer(t *testing.T) rendering.TemplateRenderer {
	t.Helper()

	r, err := rendering.NewGoTemplateRenderer(rendering.GoTemplateRendererConfig{
		TemplateDir:       "app",
		TemplateExtension: ".html",
		TemplateFS:        appFS,
		PagesDir:          "pages",
	})
	require.NoError(t, err)

	return r
}

func sidebarFor(path string, state *uistate.ViewerState) viewmodels.Sidebar {
	return viewmodels.NewSidebar(httptest.NewRequest("GET", path, nil), state)
}

func render(t *testing.T, r rendering.TemplateRenderer, page string, data any) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, r.Render(page, data, &buf))

	body := buf.String()
	assert.Contains(t, body, "<!DOCTYPE html>", page)
	assert.NotContains(t, body, "Rendering Error", page)

	return body
}

func TestEmbeddedPagesRenderInsideLayout(t *testing.T) {
	r := newEmbeddedRenderer(t)
	state := uistate.NewViewerState()

	body := render(t, r, "pages/home", viewmodels.HomePage{
		BaseViewModel: viewmodels.BaseViewModel{Sidebar: sidebarFor("/", state)},
		Photos:        []viewmodels.HomePagePhoto{{OriginalPath: "/a.jpg", ThumbnailPath: "/t/a.jpg", FileName: "a.jpg"}},
	})
	assert.Contains(t, body, "/t/a.jpg")

	body = render(t, r, "pages/placeholder", viewmodels.PlaceholderPage{
		BaseViewModel: viewmodels.BaseViewModel{Sidebar: sidebarFor("/videos", state)},
		Title:         "Videos",
	})
	assert.Contains(t, body, "<h1>Videos</h1>")

	body = render(t, r, "pages/albums/view", viewmodels.AlbumViewPage{
		BaseViewModel: viewmodels.BaseViewModel{Sidebar: sidebarFor("/albums/Trip", state)},
		Album: internalmodels.AlbumDetail{
			Name:   "Trip",
			Images: []internalmodels.Image{{Path: "a.jpg", OriginalURL: "/a.jpg", ThumbnailURL: "/t/a.jpg"}},
		},
	})
	assert.Contains(t, body, "<h1>Trip</h1>")
}

func TestAlbumListRendersWithEveryDialogAndOverlay(t *testing.T) {
	r := newEmbeddedRenderer(t)

	dialogs := []uistate.Dialog{
		uistate.NoDialog(),
		uistate.CreateFormDialog(),
		uistate.EditFormDialog("Trip"),
		uistate.PasswordPromptDialog("Trip"),
		uistate.ErrorDialog("Error Deleting Album", assert.AnError),
	}

	overlays := []uistate.Overlay{
		uistate.OverlayNone,
		uistate.OverlayCustomize,
		uistate.OverlayCompressor,
		uistate.OverlayCropper,
	}

	for _, dialog := range dialogs {
		for _, overlay := range overlays {
			state := uistate.NewViewerState()
			state.ShowOverlay(overlay)

			body := render(t, r, "pages/albums/list", viewmodels.AlbumsPage{
				BaseViewModel: viewmodels.BaseViewModel{Sidebar: sidebarFor("/albums", state)},
				Rows:          []internalmodels.AlbumRow{{Title: "Trip", ImageCount: 1}},
				Dialog:        dialog,
				EditingAlbum:  internalmodels.AlbumForm{Name: "Trip"},
			})

			assert.Contains(t, body, `class="album-card"`, "%s/%s", dialog.Kind, overlay)
		}
	}
}
