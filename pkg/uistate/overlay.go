package uistate

import "fmt"

type Overlay string

const (
	OverlayNone       Overlay = ""
	OverlayCustomize  Overlay = "customize"
	OverlayCompressor Overlay = "compressor"
	OverlayCropper    Overlay = "cropper"
)

var ErrUnknownOverlay = fmt.Errorf("unknown overlay")

/*
ParseOverlay accepts the overlay names used in sidebar URLs. The cropper
can't be opened by name; it only opens once an avatar has been read.
*/
func ParseOverlay(name string) (Overlay, error) {
	switch Overlay(name) {
	case OverlayCustomize, OverlayCompressor:
		return Overlay(name), nil
	}

	return OverlayNone, fmt.Errorf("%w: '%s'", ErrUnknownOverlay, name)
}
