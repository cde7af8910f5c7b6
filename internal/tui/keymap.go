package tui

// Key binding constants used in handleKey.
const (
	KeyQuit      = "q"
	KeyCtrlC     = "ctrl+c"
	KeyUp        = "up"
	KeyDown      = "down"
	KeyJ         = "j"
	KeyK         = "k"
	KeyEnter     = "enter"
	KeyMode      = "m"
	KeyAddRow    = "a"
	KeyRemoveRow = "x"
	KeyNextRow   = "tab"
	KeyPrevRow   = "shift+tab"
	KeySave      = "s"
)

// editKeys change a section or its editor state and are ignored while a save
// is in flight.
var editKeys = map[string]bool{
	KeyEnter:     true,
	KeyMode:      true,
	KeyAddRow:    true,
	KeyRemoveRow: true,
}
