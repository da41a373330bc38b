package viewmodels

import (
	"net/http"

	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/pictogallery/pkg/models"
)

type BaseViewModel struct {
	Message            string
	IsError            bool
	IsWarning          bool
	IsHtmx             bool
	JavascriptIncludes []rendering.JavascriptInclude
	Sidebar            Sidebar
}

func GetViewerFromContext(r *http.Request) *models.Viewer {
	if result, ok := r.Context().Value("viewer").(*models.Viewer); ok {
		return result
	}

	return &models.Viewer{}
}
