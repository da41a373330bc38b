package main

import (
	"context"
	"embed"
	"encoding/gob"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/adampresley/adamgokit/awsconfig"
	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/mux"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/adamgokit/retrier"
	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/adamgokit/sessions"
	"github.com/adampresley/pictogallery/cmd/website/internal/albums"
	"github.com/adampresley/pictogallery/cmd/website/internal/cache"
	"github.com/adampresley/pictogallery/cmd/website/internal/configuration"
	"github.com/adampresley/pictogallery/cmd/website/internal/home"
	"github.com/adampresley/pictogallery/cmd/website/internal/sidebar"
	"github.com/adampresley/pictogallery/pkg/models"
	"github.com/adampresley/pictogallery/pkg/querycache"
	"github.com/adampresley/pictogallery/pkg/services"
	"github.com/adampresley/pictogallery/pkg/uistate"
	_ "github.com/glebarez/sqlite"
	"github.com/rfberaldo/sqlz"
	"github.com/rfberaldo/sqlz/binds"
)

var (
	Version string = "development"
	appName string = "pictogallery"

	//go:embed app
	appFS embed.FS

	//go:embed sql-migrations
	sqlMigrationsFs embed.FS

	config configuration.Config

	/* Services */
	albumCache       *querycache.Cache[[]*models.Album]
	albumService     services.AlbumServicer
	db               *sqlz.DB
	imageService     services.ImageServicer
	imageStore       services.ImageStorer
	renderer         rendering.TemplateRenderer
	sessionService   sessions.Session[*models.Viewer]
	thumbnailCreator cache.ThumbnailCreator
	viewerStore      *uistate.Store
	zipService       services.ZipServicer

	/* Controllers */
	albumsController  albums.AlbumsHandlers
	homeController    home.HomeHandlers
	sidebarController sidebar.SidebarHandlers
)

func main() {
	var (
		err error
	)

	config = configuration.LoadConfig()
	setupLogger(&config, Version)

	slog.Info("configuration loaded",
		slog.String("app", appName),
		slog.String("version", Version),
		slog.String("loglevel", config.LogLevel),
		slog.String("host", config.Host),
		slog.String("awsEndpointUrl", config.AwsEndpointUrl),
		slog.String("awsRegion", config.AwsRegion),
		slog.String("libraryFolder", config.LibraryFolder),
	)

	slog.Debug("setting up...")

	shutdownCtx, cancel := context.WithCancel(context.Background())

	/*
	 * Setup services
	 */
	binds.Register("sqlite", binds.BindByDriver("sqlite3"))
	if db, err = sqlz.Connect("sqlite", config.DSN); err != nil {
		panic(err)
	}

	migrateDatabase()
	gob.Register(&models.Viewer{})

	cookieStore := sessions.NewCookieStore(config.CookieSecret)
	sessionService = sessions.NewSessionWrapper[*models.Viewer](cookieStore, "pictogalleryviewers", "viewer")

	awsConfig := &awsconfig.Config{
		Endpoint:        config.AwsEndpointUrl,
		Region:          config.AwsRegion,
		AccessKeyID:     config.AwsAccessKeyId,
		SecretAccessKey: config.AwsSecretAccessKey,
	}

	retrier.Retry(func() error {
		if err = awsConfig.Load(); err != nil {
			slog.Error("failed to load AWS config. trying again", "error", err)
			return err
		}

		return nil
	})

	if err != nil {
		panic(err)
	}

	s3Client, err := s3.NewClient(awsConfig)

	if err != nil {
		panic(err)
	}

	renderer, err = rendering.NewGoTemplateRenderer(rendering.GoTemplateRendererConfig{
		TemplateDir:       "app",
		TemplateExtension: ".html",
		TemplateFS:        appFS,
		PagesDir:          "pages",
	})

	if err != nil {
		panic(err)
	}

	maxUploadBytes := int64(config.MaxUploadMB) << 20

	albumService = services.NewAlbumService(services.AlbumServiceConfig{
		BcryptCost: config.BcryptCost,
		DB:         db,
	})

	albumCache = querycache.New[[]*models.Album](time.Duration(config.AlbumCacheSeconds) * time.Second)

	imageStore = services.NewImageStore(services.ImageStoreConfig{
		Bucket:        config.AwsBucket,
		LibraryFolder: config.LibraryFolder,
		S3Client:      s3Client,
	})

	imageService = services.NewImageService(services.ImageServiceConfig{
		AvatarSize:     uint(config.AvatarSize),
		MaxUploadBytes: maxUploadBytes,
	})

	zipService = services.NewZipService(services.ZipServiceConfig{
		ImageStore: imageStore,
	})

	viewerStore = uistate.NewStore(uistate.StoreConfig{
		IdleTimeout: time.Duration(config.ViewerIdleMinutes) * time.Minute,
	})

	thumbnailCreator = cache.NewThumbnailCreatorService(cache.ThumbnailCreatorConfig{
		AlbumService:    albumService,
		AwsBucket:       config.AwsBucket,
		AwsRegion:       config.AwsRegion,
		ImageStore:      imageStore,
		MaxCacheWorkers: config.MaxCacheWorkers,
		S3Client:        s3Client,
		ShutdownCtx:     shutdownCtx,
	})

	if err = thumbnailCreator.EnsureBucketExists(); err != nil {
		slog.Error("error ensuring bucket exists. aborting", "bucket", config.AwsBucket, "error", err)
		os.Exit(1)
	}

	/*
	 * Setup controllers
	 */
	albumsController = albums.NewAlbumsController(albums.AlbumsControllerConfig{
		AlbumCache:       albumCache,
		AlbumService:     albumService,
		ImageStore:       imageStore,
		ListHiddenAlbums: config.ListHiddenAlbums,
		Renderer:         renderer,
		ViewerStore:      viewerStore,
		ZipService:       zipService,
	})

	homeController = home.NewHomeController(home.HomeControllerConfig{
		ImageStore:  imageStore,
		Renderer:    renderer,
		ViewerStore: viewerStore,
	})

	sidebarController = sidebar.NewSidebarController(sidebar.SidebarControllerConfig{
		ImageService:   imageService,
		MaxUploadBytes: maxUploadBytes,
		ViewerStore:    viewerStore,
	})

	/*
	 * Setup router and http server
	 */
	slog.Debug("setting up routes...")

	viewerMiddleware := []mux.MiddlewareFunc{
		newViewerMiddleware(
			sessionService,
			[]string{
				"/static",
				"/heartbeat",
			},
		),
	}

	routes := []mux.Route{
		{Path: "GET /heartbeat", HandlerFunc: heartbeat},
		{Path: "GET /", HandlerFunc: homeController.HomePage, Middlewares: viewerMiddleware},
		{Path: "GET /ai-tagging", HandlerFunc: homeController.PlaceholderPage, Middlewares: viewerMiddleware},
		{Path: "GET /videos", HandlerFunc: homeController.PlaceholderPage, Middlewares: viewerMiddleware},
		{Path: "GET /settings", HandlerFunc: homeController.PlaceholderPage, Middlewares: viewerMiddleware},
		{Path: "GET /secure-folder", HandlerFunc: homeController.PlaceholderPage, Middlewares: viewerMiddleware},
		{Path: "GET /memories", HandlerFunc: homeController.PlaceholderPage, Middlewares: viewerMiddleware},

		{Path: "GET /albums", HandlerFunc: albumsController.AlbumListPage, Middlewares: viewerMiddleware},
		{Path: "POST /albums", HandlerFunc: albumsController.CreateAlbumAction, Middlewares: viewerMiddleware},
		{Path: "POST /albums/back", HandlerFunc: albumsController.BackAction, Middlewares: viewerMiddleware},
		{Path: "POST /albums/create-form", HandlerFunc: albumsController.OpenCreateFormAction, Middlewares: viewerMiddleware},
		{Path: "POST /albums/dialog/close", HandlerFunc: albumsController.CloseDialogAction, Middlewares: viewerMiddleware},
		{Path: "GET /albums/{name}", HandlerFunc: albumsController.ViewAlbumPage, Middlewares: viewerMiddleware},
		{Path: "POST /albums/{name}", HandlerFunc: albumsController.UpdateAlbumAction, Middlewares: viewerMiddleware},
		{Path: "POST /albums/{name}/select", HandlerFunc: albumsController.SelectAlbumAction, Middlewares: viewerMiddleware},
		{Path: "POST /albums/{name}/unlock", HandlerFunc: albumsController.UnlockAlbumAction, Middlewares: viewerMiddleware},
		{Path: "POST /albums/{name}/edit-form", HandlerFunc: albumsController.OpenEditFormAction, Middlewares: viewerMiddleware},
		{Path: "POST /albums/{name}/delete", HandlerFunc: albumsController.DeleteAlbumAction, Middlewares: viewerMiddleware},
		{Path: "POST /albums/{name}/images", HandlerFunc: albumsController.AddImagesAction, Middlewares: viewerMiddleware},
		{Path: "POST /albums/{name}/images/remove", HandlerFunc: albumsController.RemoveImageAction, Middlewares: viewerMiddleware},
		{Path: "GET /albums/{name}/download", HandlerFunc: albumsController.DownloadAlbum, Middlewares: viewerMiddleware},

		{Path: "POST /sidebar/overlay/close", HandlerFunc: sidebarController.CloseOverlayAction, Middlewares: viewerMiddleware},
		{Path: "POST /sidebar/overlay/{name}", HandlerFunc: sidebarController.OpenOverlayAction, Middlewares: viewerMiddleware},
		{Path: "POST /sidebar/styles", HandlerFunc: sidebarController.SaveStylesAction, Middlewares: viewerMiddleware},
		{Path: "POST /sidebar/styles/reset", HandlerFunc: sidebarController.ResetStylesAction, Middlewares: viewerMiddleware},
		{Path: "POST /sidebar/compress", HandlerFunc: sidebarController.CompressImageAction, Middlewares: viewerMiddleware},
		{Path: "POST /sidebar/avatar", HandlerFunc: sidebarController.UploadAvatarAction, Middlewares: viewerMiddleware},
		{Path: "POST /sidebar/avatar/crop", HandlerFunc: sidebarController.CropAvatarAction, Middlewares: viewerMiddleware},
	}

	routerConfig := mux.RouterConfig{
		Address:              config.Host,
		Debug:                Version == "development",
		ServeStaticContent:   true,
		StaticContentRootDir: "app",
		StaticContentPrefix:  "/static/",
		StaticFS:             appFS,
		HttpWriteTimeout:     60,
	}

	m := mux.SetupRouter(routerConfig, routes)
	httpServer, quit := mux.SetupServer(routerConfig, m)

	/*
	 * Start the idle viewer cleanup job
	 */
	viewerStore.StartCleanupRoutine(15 * time.Minute)
	defer viewerStore.StopCleanupRoutine()

	/*
	 * Start the thumbnail job
	 */
	setupThumbnailCreator(quit)

	/*
	 * Wait for graceful shutdown
	 */
	slog.Info("server started")

	<-quit

	cancel()
	mux.Shutdown(httpServer)
	slog.Info("server stopped")
}

func heartbeat(w http.ResponseWriter, r *http.Request) {
	httphelpers.TextOK(w, "OK")
}

func migrateDatabase() {
	var (
		err  error
		dirs []fs.DirEntry
		b    []byte
	)

	if dirs, err = sqlMigrationsFs.ReadDir("sql-migrations"); err != nil {
		panic(err)
	}

	for _, d := range dirs {
		if d.IsDir() {
			continue
		}

		if strings.HasPrefix(d.Name(), "commit") {
			if b, err = fs.ReadFile(sqlMigrationsFs, filepath.Join("sql-migrations", d.Name())); err != nil {
				panic(err)
			}

			if err = runSqlScript(b); err != nil {
				if !isIgnorableError(err) {
					panic(err)
				}
			}
		}
	}
}

func runSqlScript(script []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	_, err := db.Exec(ctx, string(script))
	return err
}

func isIgnorableError(err error) bool {
	if strings.Contains(err.Error(), "duplicate column") {
		return true
	}

	return false
}

func setupThumbnailCreator(quit chan os.Signal) {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		running := atomic.Bool{}

		runner := func() {
			if !running.CompareAndSwap(false, true) {
				slog.Info("thumbnail creator already running. skipping...")
				return
			}

			defer running.Store(false)

			thumbnailCreator.CreateCache()
			slog.Info("thumbnail creator finished.")
		}

		runner()

		for {
			select {
			case <-quit:
				ticker.Stop()
				return

			case <-ticker.C:
				runner()
			}
		}
	}()
}
