package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adampresley/adamgokit/slices"
	"github.com/adampresley/pictogallery/pkg/models"
	"github.com/rfberaldo/sqlz"
	"golang.org/x/crypto/bcrypt"
)

// Names that collide with album routes.
var reservedAlbumNames = []string{"back", "create-form"}

type AlbumServicer interface {
	AddImages(ctx context.Context, name string, imagePaths []string) (*models.Album, error)
	CreateAlbum(ctx context.Context, input models.AlbumInput) (*models.Album, error)
	DeleteAlbum(ctx context.Context, name string) error
	GetAlbum(ctx context.Context, name string) (*models.Album, error)
	GetAlbumList(ctx context.Context, includeHidden bool) ([]*models.Album, error)
	RemoveImage(ctx context.Context, name, imagePath string) (*models.Album, error)
	UpdateAlbum(ctx context.Context, name string, input models.AlbumInput) (*models.Album, error)
	VerifyPassword(ctx context.Context, name, password string) error
}

type AlbumServiceConfig struct {
	BcryptCost int
	DB         *sqlz.DB
}

type AlbumService struct {
	bcryptCost int
	db         *sqlz.DB
	now        func() time.Time
}

func NewAlbumService(config AlbumServiceConfig) AlbumService {
	if config.BcryptCost < bcrypt.MinCost {
		config.BcryptCost = bcrypt.DefaultCost
	}

	return AlbumService{
		bcryptCost: config.BcryptCost,
		db:         config.DB,
		now:        time.Now,
	}
}

func (s AlbumService) GetAlbumList(ctx context.Context, includeHidden bool) ([]*models.Album, error) {
	var (
		err    error
		images []models.AlbumImage
	)

	result := []*models.Album{}

	sql := `
SELECT
   a.id
   , a.created_at
   , a.updated_at
   , a.deleted_at
   , a.name
   , a.description
   , a.is_hidden
FROM albums AS a
WHERE 1=1
   AND a.deleted_at IS NULL
   AND (a.is_hidden = 0 OR ? = 1)
ORDER BY a.name
   `

	queryCtx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.db.Query(queryCtx, &result, sql, includeHidden); err != nil {
		if sqlz.IsNotFound(err) {
			return result, nil
		}

		return result, fmt.Errorf("error querying for albums: %w", err)
	}

	sql = `
SELECT
   ai.album_id
   , ai.position
   , ai.image_path
FROM album_images AS ai
   INNER JOIN albums AS a ON a.id=ai.album_id
WHERE 1=1
   AND a.deleted_at IS NULL
ORDER BY ai.album_id, ai.position
   `

	queryCtx, cancel = context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.db.Query(queryCtx, &images, sql); err != nil && !sqlz.IsNotFound(err) {
		return result, fmt.Errorf("error querying for album images: %w", err)
	}

	byAlbum := map[uint][]string{}

	for _, image := range images {
		byAlbum[image.AlbumID] = append(byAlbum[image.AlbumID], image.ImagePath)
	}

	for _, album := range result {
		album.ImagePaths = byAlbum[album.ID]

		if album.ImagePaths == nil {
			album.ImagePaths = []string{}
		}
	}

	return result, nil
}

/*
GetAlbum returns a single album with its image paths and password hash.
*/
func (s AlbumService) GetAlbum(ctx context.Context, name string) (*models.Album, error) {
	var (
		err    error
		images []models.AlbumImage
	)

	result := &models.Album{}

	sql := `
SELECT
   a.id
   , a.created_at
   , a.updated_at
   , a.deleted_at
   , a.name
   , a.description
   , a.is_hidden
   , a.password_hash
FROM albums AS a
WHERE 1=1
   AND a.deleted_at IS NULL
   AND a.name=?
   `

	queryCtx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(queryCtx, result, sql, name); err != nil {
		if sqlz.IsNotFound(err) {
			return result, fmt.Errorf("%w: '%s'", models.ErrAlbumNotFound, name)
		}

		return result, fmt.Errorf("error querying for album '%s': %w", name, err)
	}

	sql = `
SELECT
   album_id
   , position
   , image_path
FROM album_images
WHERE 1=1
   AND album_id=?
ORDER BY position
   `

	queryCtx, cancel = context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.db.Query(queryCtx, &images, sql, result.ID); err != nil && !sqlz.IsNotFound(err) {
		return result, fmt.Errorf("error querying for images in album '%s': %w", name, err)
	}

	result.ImagePaths = slices.Map(images, func(input models.AlbumImage, index int) string {
		return input.ImagePath
	})

	return result, nil
}

func (s AlbumService) CreateAlbum(ctx context.Context, input models.AlbumInput) (*models.Album, error) {
	var (
		err  error
		hash string
	)

	input = input.Normalize()

	if input.Name == "" {
		return nil, models.ErrInvalidAlbumName
	}

	if strings.ContainsAny(input.Name, "/\\?#") {
		return nil, fmt.Errorf("%w: names can't contain '/', '\\', '?' or '#'", models.ErrInvalidAlbumName)
	}

	if slices.IsInSlice(strings.ToLower(input.Name), reservedAlbumNames) {
		return nil, fmt.Errorf("%w: '%s' is reserved", models.ErrInvalidAlbumName, input.Name)
	}

	if input.IsHidden {
		if input.Password == "" {
			return nil, models.ErrPasswordRequired
		}

		if hash, err = s.hashPassword(input.Password); err != nil {
			return nil, err
		}
	}

	sql := `
INSERT INTO albums (
   created_at,
   updated_at,
   name,
   description,
   is_hidden,
   password_hash
) VALUES (?, ?, ?, ?, ?, ?)
`

	now := s.now().UTC()
	params := []any{now, now, input.Name, input.Description, input.IsHidden, hash}

	queryCtx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(queryCtx, sql, params...); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: '%s'", models.ErrAlbumExists, input.Name)
		}

		return nil, fmt.Errorf("error creating album '%s': %w", input.Name, err)
	}

	return s.GetAlbum(ctx, input.Name)
}

/*
UpdateAlbum saves the description, hidden flag and password of an album.
A blank password keeps the stored hash. Making an album visible drops its
password.
*/
func (s AlbumService) UpdateAlbum(ctx context.Context, name string, input models.AlbumInput) (*models.Album, error) {
	var (
		err      error
		existing *models.Album
	)

	input = input.Normalize()

	if existing, err = s.GetAlbum(ctx, name); err != nil {
		return nil, err
	}

	hash := existing.PasswordHash

	switch {
	case !input.IsHidden:
		hash = ""

	case input.Password != "":
		if hash, err = s.hashPassword(input.Password); err != nil {
			return nil, err
		}

	case hash == "":
		return nil, models.ErrPasswordRequired
	}

	sql := `
UPDATE albums SET
   updated_at=?
   , description=?
   , is_hidden=?
   , password_hash=?
WHERE 1=1
   AND id=?
`

	params := []any{s.now().UTC(), input.Description, input.IsHidden, hash, existing.ID}

	queryCtx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(queryCtx, sql, params...); err != nil {
		return nil, fmt.Errorf("error updating album '%s': %w", name, err)
	}

	return s.GetAlbum(ctx, name)
}

func (s AlbumService) DeleteAlbum(ctx context.Context, name string) error {
	var (
		err      error
		existing *models.Album
	)

	if existing, err = s.GetAlbum(ctx, name); err != nil {
		return err
	}

	sql := `
UPDATE albums SET
   deleted_at=?
WHERE 1=1
   AND id=?
`

	queryCtx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(queryCtx, sql, s.now().UTC(), existing.ID); err != nil {
		return fmt.Errorf("error deleting album '%s': %w", name, err)
	}

	return nil
}

/*
VerifyPassword returns nil when the album can be opened with password.
Visible albums accept any password.
*/
func (s AlbumService) VerifyPassword(ctx context.Context, name, password string) error {
	var (
		err   error
		album *models.Album
	)

	if album, err = s.GetAlbum(ctx, name); err != nil {
		return err
	}

	if !album.IsHidden {
		return nil
	}

	if err = bcrypt.CompareHashAndPassword([]byte(album.PasswordHash), []byte(password)); err != nil {
		return models.ErrIncorrectPassword
	}

	return nil
}

/*
AddImages appends image paths to the end of an album. Paths already in the
album are skipped.
*/
func (s AlbumService) AddImages(ctx context.Context, name string, imagePaths []string) (*models.Album, error) {
	var (
		err      error
		existing *models.Album
	)

	if existing, err = s.GetAlbum(ctx, name); err != nil {
		return nil, err
	}

	next := models.AlbumImage{}

	sql := `
SELECT
   COALESCE(MAX(position), -1) + 1 AS position
FROM album_images
WHERE 1=1
   AND album_id=?
`

	queryCtx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(queryCtx, &next, sql, existing.ID); err != nil {
		return nil, fmt.Errorf("error finding next image position for album '%s': %w", name, err)
	}

	position := next.Position

	sql = `
INSERT OR IGNORE INTO album_images (
   album_id,
   position,
   image_path
) VALUES (?, ?, ?)
`

	for _, imagePath := range NormalizeImagePaths(imagePaths) {
		if slices.IsInSlice(imagePath, existing.ImagePaths) {
			continue
		}

		queryCtx, cancel := context.WithTimeout(ctx, time.Second*5)

		if _, err = s.db.Exec(queryCtx, sql, existing.ID, position, imagePath); err != nil {
			cancel()
			return nil, fmt.Errorf("error adding image '%s' to album '%s': %w", imagePath, name, err)
		}

		cancel()
		position++
	}

	if err = s.touch(ctx, existing.ID); err != nil {
		return nil, err
	}

	return s.GetAlbum(ctx, name)
}

func (s AlbumService) RemoveImage(ctx context.Context, name, imagePath string) (*models.Album, error) {
	var (
		err      error
		existing *models.Album
	)

	if existing, err = s.GetAlbum(ctx, name); err != nil {
		return nil, err
	}

	sql := `
DELETE FROM album_images
WHERE 1=1
   AND album_id=?
   AND image_path=?
`

	queryCtx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(queryCtx, sql, existing.ID, imagePath); err != nil {
		return nil, fmt.Errorf("error removing image '%s' from album '%s': %w", imagePath, name, err)
	}

	if err = s.touch(ctx, existing.ID); err != nil {
		return nil, err
	}

	return s.GetAlbum(ctx, name)
}

func (s AlbumService) touch(ctx context.Context, albumID uint) error {
	queryCtx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if _, err := s.db.Exec(queryCtx, `UPDATE albums SET updated_at=? WHERE id=?`, s.now().UTC(), albumID); err != nil {
		return fmt.Errorf("error updating album %d: %w", albumID, err)
	}

	return nil
}

func (s AlbumService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)

	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password must be 72 bytes or fewer", models.ErrPasswordRequired)
		}

		return "", fmt.Errorf("error hashing album password: %w", err)
	}

	return string(hash), nil
}

/*
NormalizeImagePaths splits form input on newlines and commas, trims each
path and drops blanks and duplicates while keeping order.
*/
func NormalizeImagePaths(input []string) []string {
	result := []string{}

	for _, chunk := range input {
		for _, p := range strings.FieldsFunc(chunk, func(r rune) bool { return r == '\n' || r == ',' || r == '\r' }) {
			p = strings.TrimSpace(p)

			if p == "" || slices.IsInSlice(p, result) {
				continue
			}

			result = append(result, p)
		}
	}

	return result
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
