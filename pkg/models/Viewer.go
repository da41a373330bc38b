package models

/*
Viewer is the value stored in the cookie session. The ID keys the viewer's
server-side UI state.
*/
type Viewer struct {
	ID string
}
