package uistate

type DialogKind string

const (
	DialogNone           DialogKind = ""
	DialogCreateForm     DialogKind = "create-form"
	DialogEditForm       DialogKind = "edit-form"
	DialogError          DialogKind = "error"
	DialogPasswordPrompt DialogKind = "password-prompt"
	DialogAlbumOpen      DialogKind = "album-open"
)

/*
Dialog is whatever is currently in front of the album listing. Only one
dialog can be active; opening another replaces it.
*/
type Dialog struct {
	Kind        DialogKind
	AlbumName   string
	Title       string
	Description string
	ErrorKind   ErrorKind
}

func NoDialog() Dialog {
	return Dialog{Kind: DialogNone}
}

func CreateFormDialog() Dialog {
	return Dialog{Kind: DialogCreateForm}
}

func EditFormDialog(albumName string) Dialog {
	return Dialog{Kind: DialogEditForm, AlbumName: albumName}
}

func PasswordPromptDialog(albumName string) Dialog {
	return Dialog{Kind: DialogPasswordPrompt, AlbumName: albumName}
}

func AlbumOpenDialog(albumName string) Dialog {
	return Dialog{Kind: DialogAlbumOpen, AlbumName: albumName}
}

func ErrorDialog(title string, err error) Dialog {
	return Dialog{
		Kind:        DialogError,
		Title:       title,
		Description: DescribeError(err),
		ErrorKind:   ClassifyError(err),
	}
}

func (d Dialog) Is(kind DialogKind) bool {
	return d.Kind == kind
}

func (d Dialog) IsOpen() bool {
	return d.Kind != DialogNone
}
