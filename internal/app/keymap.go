package app

// Key binding constants used in handleKey.
const (
	KeyQuit            = "q"
	KeyQuitUpper       = "Q"
	KeyCtrlC           = "ctrl+c"
	KeySpace           = " "
	KeyTab             = "tab"
	KeyUp              = "up"
	KeyDown            = "down"
	KeyJ               = "j"
	KeyK               = "k"
	KeyEnter           = "enter"
	KeyEsc             = "esc"
	KeyEditURL         = "u"
	KeyEditAPIKey      = "a"
	KeyCopyTranscript  = "c"
	KeySaveTranscript  = "C"
	KeyCopyTopics      = "t"
	KeySaveTopics      = "T"
	KeyCopyMajor       = "m"
	KeySaveMajor       = "M"
	KeyClearTranscript = "x"
	KeyClearTopics     = "z"
	KeyClearMajor      = "Z"
	KeyClearDebug      = "l"
	KeyResetSession    = "X"
	KeyToggleDebug     = "d"
	KeyToggleTheme     = "D"
	KeyReconnect       = "r"
	KeyDisconnect      = "o"
	KeyPing            = "p"
)
