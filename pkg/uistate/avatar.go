package uistate

type AvatarStatus string

const (
	AvatarIdle        AvatarStatus = "idle"
	AvatarLoading     AvatarStatus = "loading"
	AvatarPendingCrop AvatarStatus = "loaded-pending-crop"
	AvatarCropped     AvatarStatus = "cropped"
	AvatarError       AvatarStatus = "error"
)

/*
AvatarToken identifies one file selection. Completions carrying an older
token than the latest selection are ignored.
*/
type AvatarToken uint64

/*
Avatar is a snapshot of the avatar pipeline. Uploaded holds the data URL of
the most recently read file, Cropped the result of the last crop.
*/
type Avatar struct {
	Status   AvatarStatus
	Uploaded string
	Cropped  string
	Error    string
}

/*
Display is the image the sidebar should show: the cropped avatar when there
is one, otherwise the uploaded one.
*/
func (a Avatar) Display() string {
	if a.Cropped != "" {
		return a.Cropped
	}

	return a.Uploaded
}

func (a Avatar) IsLoading() bool {
	return a.Status == AvatarLoading
}
