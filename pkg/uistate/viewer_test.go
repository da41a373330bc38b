package uistate

import (
	"errors"
	"fmt"
	"testing"

	"github.com/adampresley/pictogallery/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnlyOneDialogIsActive(t *testing.T) {
	v := NewViewerState()

	v.SetDialog(CreateFormDialog())
	v.SetDialog(EditFormDialog("Trip"))
	assert.Equal(t, DialogEditForm, v.Dialog().Kind)

	v.ShowError("Error Deleting Album", fmt.Errorf("database is locked"))

	d := v.Dialog()
	assert.Equal(t, DialogError, d.Kind)
	assert.Equal(t, "Error Deleting Album", d.Title)
	assert.Equal(t, "database is locked", d.Description)
	assert.Equal(t, "", d.AlbumName)

	v.CloseDialog()
	assert.False(t, v.Dialog().IsOpen())
}

func TestErrorDialogFallsBackToGenericDescription(t *testing.T) {
	d := ErrorDialog("Error Creating Album", nil)
	assert.Equal(t, UnknownErrorMessage, d.Description)
	assert.Equal(t, ErrorKindUnknown, d.ErrorKind)

	d = ErrorDialog("Error Creating Album", errors.New(""))
	assert.Equal(t, UnknownErrorMessage, d.Description)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ErrorKindUnknown},
		{"bad image", fmt.Errorf("upload: %w", ErrInvalidImage), ErrorKindInvalidInput},
		{"missing name", models.ErrInvalidAlbumName, ErrorKindInvalidInput},
		{"duplicate", fmt.Errorf("create: %w", models.ErrAlbumExists), ErrorKindInvalidInput},
		{"read", ErrReadFailure, ErrorKindReadFailure},
		{"password", models.ErrIncorrectPassword, ErrorKindAuthMismatch},
		{"store", fmt.Errorf("error deleting album: disk I/O error"), ErrorKindNetworkFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestOverlaysAreMutuallyExclusive(t *testing.T) {
	v := NewViewerState()

	v.ShowOverlay(OverlayCustomize)
	v.ShowOverlay(OverlayCompressor)
	assert.Equal(t, OverlayCompressor, v.Overlay())

	v.HideOverlay()
	assert.Equal(t, OverlayNone, v.Overlay())
}

func TestParseOverlay(t *testing.T) {
	o, err := ParseOverlay("customize")
	require.NoError(t, err)
	assert.Equal(t, OverlayCustomize, o)

	_, err = ParseOverlay("cropper")
	assert.ErrorIs(t, err, ErrUnknownOverlay)

	_, err = ParseOverlay("nope")
	assert.ErrorIs(t, err, ErrUnknownOverlay)
}

func TestAvatarUploadAndCrop(t *testing.T) {
	v := NewViewerState()
	assert.Equal(t, AvatarIdle, v.Avatar().Status)

	tok, err := v.BeginAvatarUpload("image/png")
	require.NoError(t, err)
	assert.True(t, v.Avatar().IsLoading())

	assert.True(t, v.CompleteAvatarUpload(tok, "data:image/png;base64,AAAA"))
	assert.Equal(t, AvatarPendingCrop, v.Avatar().Status)
	assert.Equal(t, OverlayCropper, v.Overlay())

	source, cropTok, err := v.PendingCrop()
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", source)

	require.NoError(t, v.CompleteCrop(cropTok, "data:image/jpeg;base64,BBBB"))

	a := v.Avatar()
	assert.Equal(t, AvatarCropped, a.Status)
	assert.Equal(t, "data:image/jpeg;base64,BBBB", a.Display())
	assert.Equal(t, OverlayNone, v.Overlay())
}

func TestNonImageUploadKeepsCroppedAvatar(t *testing.T) {
	v := NewViewerState()

	tok, _ := v.BeginAvatarUpload("image/jpeg")
	v.CompleteAvatarUpload(tok, "data:image/jpeg;base64,AAAA")
	require.NoError(t, v.CompleteCrop(tok, "data:image/jpeg;base64,CROPPED"))

	_, err := v.BeginAvatarUpload("application/pdf")
	assert.ErrorIs(t, err, ErrInvalidImage)

	a := v.Avatar()
	assert.Equal(t, AvatarError, a.Status)
	assert.Equal(t, InvalidImageMessage, a.Error)
	assert.Equal(t, "data:image/jpeg;base64,CROPPED", a.Cropped)
	assert.Equal(t, "data:image/jpeg;base64,CROPPED", a.Display())

	_, _, err = v.PendingCrop()
	assert.ErrorIs(t, err, ErrNoPendingCrop)
}

func TestCropOfReplacedUploadIsDiscarded(t *testing.T) {
	v := NewViewerState()

	tok, _ := v.BeginAvatarUpload("image/png")
	v.CompleteAvatarUpload(tok, "data:image/png;base64,OLD")

	_, oldTok, err := v.PendingCrop()
	require.NoError(t, err)

	tok, _ = v.BeginAvatarUpload("image/png")
	v.CompleteAvatarUpload(tok, "data:image/png;base64,NEW")

	err = v.CompleteCrop(oldTok, "data:image/jpeg;base64,CROPPED-FROM-OLD")
	assert.ErrorIs(t, err, ErrStaleCrop)

	a := v.Avatar()
	assert.Equal(t, AvatarPendingCrop, a.Status)
	assert.Equal(t, "", a.Cropped)
	assert.Equal(t, "data:image/png;base64,NEW", a.Uploaded)
	assert.Equal(t, OverlayCropper, v.Overlay())
}

func TestNextSelectionClearsError(t *testing.T) {
	v := NewViewerState()

	tok, _ := v.BeginAvatarUpload("image/gif")
	v.FailAvatarUpload(tok, ReadFailureMessage)
	assert.Equal(t, ReadFailureMessage, v.Avatar().Error)

	_, err := v.BeginAvatarUpload("image/gif")
	require.NoError(t, err)
	assert.Equal(t, "", v.Avatar().Error)
	assert.Equal(t, AvatarLoading, v.Avatar().Status)
}

func TestStaleAvatarCompletionIsIgnored(t *testing.T) {
	v := NewViewerState()

	first, _ := v.BeginAvatarUpload("image/png")
	second, _ := v.BeginAvatarUpload("image/png")

	assert.True(t, v.CompleteAvatarUpload(second, "data:image/png;base64,NEW"))
	assert.False(t, v.CompleteAvatarUpload(first, "data:image/png;base64,OLD"))
	assert.False(t, v.FailAvatarUpload(first, ReadFailureMessage))

	a := v.Avatar()
	assert.Equal(t, "data:image/png;base64,NEW", a.Uploaded)
	assert.Equal(t, AvatarPendingCrop, a.Status)
}

func TestSetStylesRejectsInvalid(t *testing.T) {
	v := NewViewerState()

	styles := v.Styles()
	styles.FontSize = 100

	err := v.SetStyles(styles)
	assert.ErrorIs(t, err, models.ErrInvalidStyles)
	assert.Equal(t, models.DefaultSidebarStyles(), v.Styles())

	styles.FontSize = 16
	require.NoError(t, v.SetStyles(styles))
	assert.Equal(t, 16, v.Styles().FontSize)

	v.ResetStyles()
	assert.Equal(t, models.DefaultSidebarStyles(), v.Styles())
}

func TestForgetAlbumClearsUnlockAndOpenView(t *testing.T) {
	v := NewViewerState()

	v.Unlock("Secret")
	v.SetDialog(AlbumOpenDialog("Secret"))

	v.ForgetAlbum("Secret")

	assert.False(t, v.IsUnlocked("Secret"))
	assert.False(t, v.Dialog().IsOpen())
}

func TestOverlayErrorClearsOnOverlayChange(t *testing.T) {
	v := NewViewerState()
	v.ShowOverlay(OverlayCustomize)

	styles := v.Styles()
	styles.BgColor = "not-a-color"
	assert.Error(t, v.SetStyles(styles))
	assert.Contains(t, v.OverlayError(), "background color")

	v.HideOverlay()
	assert.Equal(t, "", v.OverlayError())

	v.SetOverlayError(fmt.Errorf("compression failed"))
	assert.Equal(t, "compression failed", v.OverlayError())

	v.SetOverlayError(nil)
	assert.Equal(t, "", v.OverlayError())
}

func TestFailedUnlocksResetOnSuccess(t *testing.T) {
	v := NewViewerState()

	assert.Equal(t, 1, v.RecordFailedUnlock("Secret"))
	assert.Equal(t, 2, v.RecordFailedUnlock("Secret"))
	assert.Equal(t, 1, v.RecordFailedUnlock("Other"))

	v.Unlock("Secret")
	assert.Equal(t, 1, v.RecordFailedUnlock("Secret"))

	v.ForgetAlbum("Other")
	assert.Equal(t, 1, v.RecordFailedUnlock("Other"))
}
