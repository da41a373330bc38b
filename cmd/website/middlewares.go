package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/adampresley/adamgokit/sessions"
	"github.com/adampresley/pictogallery/pkg/models"
	"github.com/google/uuid"
)

/*
newViewerMiddleware makes sure every request carries a viewer. Requests
without one get a fresh viewer ID stored in the session cookie. The viewer
is placed on the request context under "viewer".
*/
func newViewerMiddleware(sessionService sessions.Session[*models.Viewer], excludedPaths []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				err    error
				viewer *models.Viewer
			)

			path := r.URL.Path

			/*
			 * If this path is excluded, keep going.
			 */
			for _, excludedPath := range excludedPaths {
				if strings.HasPrefix(path, excludedPath) {
					next.ServeHTTP(w, r)
					return
				}
			}

			if viewer, err = sessionService.Get(r); err != nil || viewer == nil || viewer.ID == "" {
				viewer = &models.Viewer{ID: uuid.NewString()}

				if err = sessionService.Set(r, viewer); err != nil {
					slog.Error("error setting viewer in session", "error", err)
				} else if err = sessionService.Save(w, r); err != nil {
					slog.Error("error saving viewer session", "error", err)
				}
			}

			ctx := context.WithValue(r.Context(), "viewer", viewer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
