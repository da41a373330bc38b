package uistate

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/adampresley/pictogallery/pkg/models"
)

/*
ViewerState is the transient view state for one browser session: the
album dialog, the sidebar overlay, sidebar styles, the avatar pipeline and
the hidden albums this viewer has unlocked. All methods are safe for
concurrent use.
*/
type ViewerState struct {
	mu sync.Mutex

	dialog        Dialog
	overlay       Overlay
	overlayErr    string
	styles        models.SidebarStyles
	avatar        Avatar
	avatarToken   AvatarToken
	unlocked      map[string]struct{}
	failedUnlocks map[string]int
	lastSeen      time.Time
}

func NewViewerState() *ViewerState {
	return &ViewerState{
		dialog:        NoDialog(),
		overlay:       OverlayNone,
		styles:        models.DefaultSidebarStyles(),
		avatar:        Avatar{Status: AvatarIdle},
		unlocked:      map[string]struct{}{},
		failedUnlocks: map[string]int{},
	}
}

/*
Dialogs
*/

func (v *ViewerState) Dialog() Dialog {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dialog
}

func (v *ViewerState) SetDialog(d Dialog) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.dialog = d
}

func (v *ViewerState) CloseDialog() {
	v.SetDialog(NoDialog())
}

/*
ShowError replaces the active dialog with an error dialog.
*/
func (v *ViewerState) ShowError(title string, err error) Dialog {
	d := ErrorDialog(title, err)
	v.SetDialog(d)
	return d
}

/*
Hidden album unlocks
*/

func (v *ViewerState) Unlock(albumName string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.unlocked[albumName] = struct{}{}
	delete(v.failedUnlocks, albumName)
}

/*
RecordFailedUnlock counts a wrong password for albumName and returns the
number of consecutive failures since the last successful unlock.
*/
func (v *ViewerState) RecordFailedUnlock(albumName string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.failedUnlocks[albumName]++
	return v.failedUnlocks[albumName]
}

func (v *ViewerState) IsUnlocked(albumName string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.unlocked[albumName]
	return ok
}

/*
ForgetAlbum drops any state tied to an album that no longer exists under
that name.
*/
func (v *ViewerState) ForgetAlbum(albumName string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	delete(v.unlocked, albumName)
	delete(v.failedUnlocks, albumName)

	if v.dialog.AlbumName == albumName && v.dialog.Kind != DialogError {
		v.dialog = NoDialog()
	}
}

/*
Overlays
*/

func (v *ViewerState) Overlay() Overlay {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.overlay
}

/*
ShowOverlay makes o the only visible overlay and clears any message left
by the previous one.
*/
func (v *ViewerState) ShowOverlay(o Overlay) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.overlay = o
	v.overlayErr = ""
}

/*
OverlayError is the message shown inside the active overlay, if any.
*/
func (v *ViewerState) OverlayError() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.overlayErr
}

func (v *ViewerState) SetOverlayError(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err == nil {
		v.overlayErr = ""
		return
	}

	v.overlayErr = DescribeError(err)
}

func (v *ViewerState) HideOverlay() {
	v.ShowOverlay(OverlayNone)
}

/*
Styles
*/

func (v *ViewerState) Styles() models.SidebarStyles {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.styles
}

/*
SetStyles stores valid styles. Invalid styles are rejected and the reason
is kept as the overlay message so the customize panel can show it.
*/
func (v *ViewerState) SetStyles(styles models.SidebarStyles) error {
	err := styles.Validate()

	v.mu.Lock()
	defer v.mu.Unlock()

	if err != nil {
		v.overlayErr = DescribeError(err)
		return err
	}

	v.styles = styles
	v.overlayErr = ""
	return nil
}

func (v *ViewerState) ResetStyles() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.styles = models.DefaultSidebarStyles()
}

/*
Avatar pipeline
*/

func (v *ViewerState) Avatar() Avatar {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.avatar
}

/*
BeginAvatarUpload starts a new file selection, clearing any previous error.
A content type that isn't image/* moves the pipeline straight to the error
state and returns ErrInvalidImage. The cropped avatar is never touched here.
*/
func (v *ViewerState) BeginAvatarUpload(contentType string) (AvatarToken, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.avatarToken++
	v.avatar.Error = ""

	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/") {
		v.avatar.Status = AvatarError
		v.avatar.Error = InvalidImageMessage
		return v.avatarToken, fmt.Errorf("%w: content type '%s'", ErrInvalidImage, contentType)
	}

	v.avatar.Status = AvatarLoading
	return v.avatarToken, nil
}

/*
CompleteAvatarUpload stores the read image and opens the cropper. It
returns false, changing nothing, when a newer selection has started since
tok was issued.
*/
func (v *ViewerState) CompleteAvatarUpload(tok AvatarToken, dataURL string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if tok != v.avatarToken || v.avatar.Status != AvatarLoading {
		return false
	}

	v.avatar.Status = AvatarPendingCrop
	v.avatar.Uploaded = dataURL
	v.overlay = OverlayCropper
	v.overlayErr = ""
	return true
}

/*
FailAvatarUpload records a read failure for tok. Stale tokens are ignored.
*/
func (v *ViewerState) FailAvatarUpload(tok AvatarToken, message string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if tok != v.avatarToken || v.avatar.Status != AvatarLoading {
		return false
	}

	v.avatar.Status = AvatarError
	v.avatar.Error = message
	return true
}

/*
PendingCrop returns the uploaded image waiting to be cropped along with the
token of the selection that produced it.
*/
func (v *ViewerState) PendingCrop() (string, AvatarToken, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.avatar.Status != AvatarPendingCrop && v.avatar.Status != AvatarCropped {
		return "", 0, ErrNoPendingCrop
	}

	if v.avatar.Uploaded == "" {
		return "", 0, ErrNoPendingCrop
	}

	return v.avatar.Uploaded, v.avatarToken, nil
}

/*
CompleteCrop stores the cropped avatar and closes the cropper. tok must be
the token PendingCrop returned; a crop of an image that has since been
replaced returns ErrStaleCrop and changes nothing.
*/
func (v *ViewerState) CompleteCrop(tok AvatarToken, croppedDataURL string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if tok != v.avatarToken {
		return ErrStaleCrop
	}

	if v.avatar.Status != AvatarPendingCrop && v.avatar.Status != AvatarCropped {
		return ErrNoPendingCrop
	}

	if v.avatar.Uploaded == "" {
		return ErrNoPendingCrop
	}

	v.avatar.Cropped = croppedDataURL
	v.avatar.Status = AvatarCropped

	if v.overlay == OverlayCropper {
		v.overlay = OverlayNone
		v.overlayErr = ""
	}

	return nil
}

func (v *ViewerState) touch(now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastSeen = now
}

func (v *ViewerState) idleSince(now time.Time) time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return now.Sub(v.lastSeen)
}
