package tui

// SavedMsg reports the outcome of a save. Seq is zero when there was nothing
// to store. Markdown is the snapshot that was handed to the SaveFunc.
type SavedMsg struct {
	Markdown string
	Seq      int
	Err      error
}

// ClearStatusMsg clears the status line after a timeout.
type ClearStatusMsg struct{}
