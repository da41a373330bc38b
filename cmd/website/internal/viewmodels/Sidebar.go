package viewmodels

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/adampresley/pictogallery/pkg/models"
	"github.com/adampresley/pictogallery/pkg/uistate"
)

type NavItem struct {
	Path   string
	Label  string
	Icon   string
	Active bool
}

type Sidebar struct {
	NavItems     []NavItem
	Overlay      uistate.Overlay
	OverlayError string
	Styles       models.SidebarStyles
	Avatar       uistate.Avatar
	AvatarURL    template.URL
	CropSource   template.URL
}

var navItems = []NavItem{
	{Path: "/", Label: "Home", Icon: "home"},
	{Path: "/ai-tagging", Label: "AI Tagging", Icon: "sparkles"},
	{Path: "/videos", Label: "Videos", Icon: "video"},
	{Path: "/albums", Label: "Albums", Icon: "images"},
	{Path: "/settings", Label: "Settings", Icon: "settings"},
	{Path: "/secure-folder", Label: "Secure Folder", Icon: "lock"},
	{Path: "/memories", Label: "Memories", Icon: "book-image"},
}

/*
NavItems returns the sidebar links with the one matching currentPath
marked active.
*/
func NavItems(currentPath string) []NavItem {
	result := make([]NavItem, 0, len(navItems))

	for _, item := range navItems {
		item.Active = item.Path == currentPath
		result = append(result, item)
	}

	return result
}

/*
FindNavItem returns the nav item for path.
*/
func FindNavItem(path string) (NavItem, bool) {
	for _, item := range navItems {
		if item.Path == path {
			return item, true
		}
	}

	return NavItem{}, false
}

func NewSidebar(r *http.Request, state *uistate.ViewerState) Sidebar {
	avatar := state.Avatar()

	return Sidebar{
		NavItems:     NavItems(r.URL.Path),
		Overlay:      state.Overlay(),
		OverlayError: state.OverlayError(),
		Styles:       state.Styles(),
		Avatar:       avatar,
		AvatarURL:    imageDataURL(avatar.Display()),
		CropSource:   imageDataURL(avatar.Uploaded),
	}
}

/*
imageDataURL marks server generated image data URLs as safe for src
attributes. Anything else is dropped.
*/
func imageDataURL(dataURL string) template.URL {
	if !strings.HasPrefix(dataURL, "data:image/") {
		return ""
	}

	return template.URL(dataURL)
}
