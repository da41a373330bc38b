package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/nfnt/resize"
)

var (
	ErrInvalidDataURL = fmt.Errorf("invalid data URL")
	ErrInvalidCrop    = fmt.Errorf("crop area is outside the image")
	ErrImageTooLarge  = fmt.Errorf("image is too large")
)

type ImageServicer interface {
	Compress(r io.Reader, options CompressOptions) (CompressResult, error)
	Crop(dataURL string, area CropArea) (string, error)
	ReadDataURL(r io.Reader, contentType string) (string, error)
}

type ImageServiceConfig struct {
	AvatarSize     uint
	MaxUploadBytes int64
}

type ImageService struct {
	avatarSize     uint
	maxUploadBytes int64
}

type CompressOptions struct {
	Quality  int
	MaxWidth uint
}

type CompressResult struct {
	Data           []byte
	OriginalSize   int
	CompressedSize int
	Width          int
	Height         int
}

/*
CropArea is a square in source image pixels. A zero Size crops the largest
centered square.
*/
type CropArea struct {
	X    int
	Y    int
	Size int
}

func NewImageService(config ImageServiceConfig) ImageService {
	if config.AvatarSize == 0 {
		config.AvatarSize = 256
	}

	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 20 << 20
	}

	return ImageService{
		avatarSize:     config.AvatarSize,
		maxUploadBytes: config.MaxUploadBytes,
	}
}

/*
Compress re-encodes an image as JPEG at the requested quality, scaling it
down to MaxWidth first when it is wider.
*/
func (s ImageService) Compress(r io.Reader, options CompressOptions) (CompressResult, error) {
	var (
		err      error
		original []byte
		img      image.Image
		buf      bytes.Buffer
	)

	result := CompressResult{}

	if options.Quality < 1 || options.Quality > 100 {
		options.Quality = 75
	}

	if original, err = s.readAll(r); err != nil {
		return result, err
	}

	if img, _, err = image.Decode(bytes.NewReader(original)); err != nil {
		return result, fmt.Errorf("error decoding image: %w", err)
	}

	if options.MaxWidth > 0 && uint(img.Bounds().Dx()) > options.MaxWidth {
		img = resize.Resize(options.MaxWidth, 0, img, resize.Lanczos3)
	}

	if err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: options.Quality}); err != nil {
		return result, fmt.Errorf("error encoding compressed image: %w", err)
	}

	result.Data = buf.Bytes()
	result.OriginalSize = len(original)
	result.CompressedSize = buf.Len()
	result.Width = img.Bounds().Dx()
	result.Height = img.Bounds().Dy()

	return result, nil
}

/*
Crop cuts a square out of the image in dataURL, scales it to the avatar
size and returns it as a JPEG data URL.
*/
func (s ImageService) Crop(dataURL string, area CropArea) (string, error) {
	var (
		err error
		b   []byte
		img image.Image
		buf bytes.Buffer
	)

	if _, b, err = DecodeDataURL(dataURL); err != nil {
		return "", err
	}

	if img, _, err = image.Decode(bytes.NewReader(b)); err != nil {
		return "", fmt.Errorf("error decoding avatar image: %w", err)
	}

	bounds := img.Bounds()

	if area.Size == 0 {
		area.Size = min(bounds.Dx(), bounds.Dy())
		area.X = (bounds.Dx() - area.Size) / 2
		area.Y = (bounds.Dy() - area.Size) / 2
	}

	rect := image.Rect(area.X, area.Y, area.X+area.Size, area.Y+area.Size).Add(bounds.Min)

	if area.X < 0 || area.Y < 0 || area.Size < 1 || !rect.In(bounds) {
		return "", fmt.Errorf("%w: %dx%d at (%d, %d) in a %dx%d image", ErrInvalidCrop, area.Size, area.Size, area.X, area.Y, bounds.Dx(), bounds.Dy())
	}

	cropped := subImage(img, rect)
	scaled := resize.Resize(s.avatarSize, s.avatarSize, cropped, resize.Lanczos3)

	if err = jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: 90}); err != nil {
		return "", fmt.Errorf("error encoding cropped avatar: %w", err)
	}

	return EncodeDataURL("image/jpeg", buf.Bytes()), nil
}

/*
ReadDataURL reads an uploaded file fully into a data URL.
*/
func (s ImageService) ReadDataURL(r io.Reader, contentType string) (string, error) {
	b, err := s.readAll(r)

	if err != nil {
		return "", err
	}

	return EncodeDataURL(contentType, b), nil
}

func (s ImageService) readAll(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, s.maxUploadBytes+1))

	if err != nil {
		return nil, fmt.Errorf("error reading image: %w", err)
	}

	if int64(len(b)) > s.maxUploadBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrImageTooLarge, s.maxUploadBytes)
	}

	return b, nil
}

func EncodeDataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func DecodeDataURL(dataURL string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")

	if !ok {
		return "", nil, ErrInvalidDataURL
	}

	header, payload, ok := strings.Cut(rest, ",")

	if !ok {
		return "", nil, ErrInvalidDataURL
	}

	contentType, isBase64 := strings.CutSuffix(header, ";base64")

	if !isBase64 {
		return "", nil, fmt.Errorf("%w: only base64 data URLs are supported", ErrInvalidDataURL)
	}

	b, err := base64.StdEncoding.DecodeString(payload)

	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrInvalidDataURL, err.Error())
	}

	return contentType, b, nil
}

/*
ResizeLongestEdge scales img so its longest edge is maxSize, keeping the
aspect ratio.
*/
func ResizeLongestEdge(img image.Image, maxSize uint) image.Image {
	bounds := img.Bounds()
	width := uint(bounds.Dx())
	height := uint(bounds.Dy())

	var newWidth, newHeight uint
	if width > height {
		// Landscape orientation
		newWidth = maxSize
		newHeight = uint(float64(height) * (float64(maxSize) / float64(width)))
	} else {
		// Portrait orientation or square
		newHeight = maxSize
		newWidth = uint(float64(width) * (float64(maxSize) / float64(height)))
	}

	return resize.Resize(newWidth, newHeight, img, resize.Lanczos3)
}

func subImage(img image.Image, rect image.Rectangle) image.Image {
	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}

	if si, ok := img.(subImager); ok {
		return si.SubImage(rect)
	}

	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))

	for y := 0; y < rect.Dy(); y++ {
		for x := 0; x < rect.Dx(); x++ {
			dst.Set(x, y, img.At(rect.Min.X+x, rect.Min.Y+y))
		}
	}

	return dst
}
