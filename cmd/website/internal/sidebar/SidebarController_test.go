package sidebar

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/adampresley/pictogallery/pkg/models"
	"github.com/adampresley/pictogallery/pkg/services"
	"github.com/adampresley/pictogallery/pkg/uistate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testViewer = "viewer-1"

func newTestController() SidebarController {
	return NewSidebarController(SidebarControllerConfig{
		ImageService: services.NewImageService(services.ImageServiceConfig{AvatarSize: 32}),
		ViewerStore:  uistate.NewStore(uistate.StoreConfig{}),
	})
}

func withViewer(req *http.Request) *http.Request {
	req.Header.Set("Referer", "http://example.com/albums")
	ctx := context.WithValue(req.Context(), "viewer", &models.Viewer{ID: testViewer})
	return req.WithContext(ctx)
}

func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return withViewer(req)
}

func uploadRequest(t *testing.T, target, field, contentType string, body []byte, extra map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range extra {
		require.NoError(t, mw.WriteField(k, v))
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="photo.png"`)
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	require.NoError(t, err)

	_, err = io.Copy(part, bytes.NewReader(body))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return withViewer(req)
}

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestOpenOverlayReplacesCurrentOne(t *testing.T) {
	c := newTestController()
	state := c.viewerStore.Get(testViewer)

	req := formRequest("/sidebar/overlay/customize", url.Values{})
	req.SetPathValue("name", "customize")
	w := httptest.NewRecorder()
	c.OpenOverlayAction(w, req)

	assert.Equal(t, uistate.OverlayCustomize, state.Overlay())
	assert.Equal(t, "/albums", w.Header().Get("Location"))

	req = formRequest("/sidebar/overlay/compressor", url.Values{})
	req.SetPathValue("name", "compressor")
	c.OpenOverlayAction(httptest.NewRecorder(), req)

	assert.Equal(t, uistate.OverlayCompressor, state.Overlay())

	c.CloseOverlayAction(httptest.NewRecorder(), formRequest("/sidebar/overlay/close", url.Values{}))
	assert.Equal(t, uistate.OverlayNone, state.Overlay())
}

func TestOpenUnknownOverlayIsNotFound(t *testing.T) {
	c := newTestController()

	req := formRequest("/sidebar/overlay/cropper", url.Values{})
	req.SetPathValue("name", "cropper")
	w := httptest.NewRecorder()
	c.OpenOverlayAction(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, uistate.OverlayNone, c.viewerStore.Get(testViewer).Overlay())
}

func TestSaveAndResetStyles(t *testing.T) {
	c := newTestController()
	state := c.viewerStore.Get(testViewer)

	c.SaveStylesAction(httptest.NewRecorder(), formRequest("/sidebar/styles", url.Values{
		"bgColor":  {"#000000"},
		"fontSize": {"18"},
	}))

	styles := state.Styles()
	assert.Equal(t, "#000000", styles.BgColor)
	assert.Equal(t, 18, styles.FontSize)
	assert.Equal(t, models.DefaultSidebarStyles().TextColor, styles.TextColor)

	c.SaveStylesAction(httptest.NewRecorder(), formRequest("/sidebar/styles", url.Values{
		"fontSize": {"huge"},
	}))

	assert.Equal(t, 18, state.Styles().FontSize)
	assert.NotEmpty(t, state.OverlayError())

	c.ResetStylesAction(httptest.NewRecorder(), formRequest("/sidebar/styles/reset", url.Values{}))
	assert.Equal(t, models.DefaultSidebarStyles(), state.Styles())
}

func TestUploadNonImageKeepsCroppedAvatar(t *testing.T) {
	c := newTestController()
	state := c.viewerStore.Get(testViewer)

	c.UploadAvatarAction(httptest.NewRecorder(), uploadRequest(t, "/sidebar/avatar", "avatar", "image/png", testPNG(t, 40, 30), nil))
	c.CropAvatarAction(httptest.NewRecorder(), formRequest("/sidebar/avatar/crop", url.Values{
		"x":    {"0"},
		"y":    {"0"},
		"size": {"30"},
	}))

	cropped := state.Avatar().Cropped
	require.NotEmpty(t, cropped)

	c.UploadAvatarAction(httptest.NewRecorder(), uploadRequest(t, "/sidebar/avatar", "avatar", "application/pdf", []byte("%PDF"), nil))

	avatar := state.Avatar()
	assert.Equal(t, uistate.AvatarError, avatar.Status)
	assert.Equal(t, uistate.InvalidImageMessage, avatar.Error)
	assert.Equal(t, cropped, avatar.Cropped)
}

func TestUploadThenCropAvatar(t *testing.T) {
	c := newTestController()
	state := c.viewerStore.Get(testViewer)

	w := httptest.NewRecorder()
	c.UploadAvatarAction(w, uploadRequest(t, "/sidebar/avatar", "avatar", "image/png", testPNG(t, 40, 30), nil))

	avatar := state.Avatar()
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, uistate.AvatarPendingCrop, avatar.Status)
	assert.True(t, strings.HasPrefix(avatar.Uploaded, "data:image/png;base64,"))
	assert.Equal(t, uistate.OverlayCropper, state.Overlay())

	c.CropAvatarAction(httptest.NewRecorder(), formRequest("/sidebar/avatar/crop", url.Values{
		"x":    {"5"},
		"y":    {"5"},
		"size": {"20"},
	}))

	avatar = state.Avatar()
	assert.Equal(t, uistate.AvatarCropped, avatar.Status)
	assert.True(t, strings.HasPrefix(avatar.Cropped, "data:image/jpeg;base64,"))
	assert.Equal(t, uistate.OverlayNone, state.Overlay())
}

func TestOversizedAvatarUploadIsAReadFailure(t *testing.T) {
	c := NewSidebarController(SidebarControllerConfig{
		ImageService:   services.NewImageService(services.ImageServiceConfig{AvatarSize: 32}),
		MaxUploadBytes: 1024,
		ViewerStore:    uistate.NewStore(uistate.StoreConfig{}),
	})
	state := c.viewerStore.Get(testViewer)

	w := httptest.NewRecorder()
	c.UploadAvatarAction(w, uploadRequest(t, "/sidebar/avatar", "avatar", "image/png", bytes.Repeat([]byte{0x89}, 3<<20), nil))

	avatar := state.Avatar()
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, uistate.AvatarError, avatar.Status)
	assert.Equal(t, uistate.ReadFailureMessage, avatar.Error)
}

func TestUploadWithoutFileIsInvalidImage(t *testing.T) {
	c := newTestController()
	state := c.viewerStore.Get(testViewer)

	c.UploadAvatarAction(httptest.NewRecorder(), uploadRequest(t, "/sidebar/avatar", "other", "image/png", testPNG(t, 4, 4), nil))

	avatar := state.Avatar()
	assert.Equal(t, uistate.AvatarError, avatar.Status)
	assert.Equal(t, uistate.InvalidImageMessage, avatar.Error)
}

func TestCropWithoutUploadSetsOverlayError(t *testing.T) {
	c := newTestController()
	state := c.viewerStore.Get(testViewer)

	c.CropAvatarAction(httptest.NewRecorder(), formRequest("/sidebar/avatar/crop", url.Values{}))

	assert.Equal(t, uistate.ErrNoPendingCrop.Error(), state.OverlayError())
}

func TestCompressImageReturnsAttachment(t *testing.T) {
	c := newTestController()
	original := testPNG(t, 64, 32)

	w := httptest.NewRecorder()
	c.CompressImageAction(w, uploadRequest(t, "/sidebar/compress", "image", "image/png", original, map[string]string{
		"quality":  "50",
		"maxWidth": "32",
	}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "photo-compressed.jpg")
	assert.Equal(t, w.Header().Get("X-Compressed-Size"), strconv.Itoa(w.Body.Len()))

	img, _, err := image.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
}

func TestCompressNonImageSetsOverlayError(t *testing.T) {
	c := newTestController()
	state := c.viewerStore.Get(testViewer)

	w := httptest.NewRecorder()
	c.CompressImageAction(w, uploadRequest(t, "/sidebar/compress", "image", "text/plain", []byte("hello"), nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, uistate.InvalidImageMessage, state.OverlayError())
}

func TestBackPathOnlyFollowsLocalReferers(t *testing.T) {
	tests := []struct {
		referer string
		want    string
	}{
		{referer: "", want: "/"},
		{referer: "http://example.com/albums?x=1", want: "/albums?x=1"},
		{referer: "https://evil.test/albums", want: "/"},
		{referer: "/settings", want: "/settings"},
		{referer: "//evil.test/x", want: "/"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/sidebar/overlay/close", nil)
		req.Header.Set("Referer", tt.referer)

		assert.Equal(t, tt.want, backPath(req), tt.referer)
	}
}

func TestCompressedFileName(t *testing.T) {
	assert.Equal(t, "holiday-compressed.jpg", compressedFileName("holiday.png"))
	assert.Equal(t, "image-compressed.jpg", compressedFileName(""))
}
