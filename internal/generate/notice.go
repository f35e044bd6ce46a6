package generate

// Level classifies a notice for display styling.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a short user-facing message about how a generation cycle went.
// Warnings mark best-effort degradations; the image is still usable.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func successNotice() Notice {
	return Notice{Level: LevelSuccess, Message: "QR code generated."}
}

func infoNotice(msg string) Notice {
	return Notice{Level: LevelInfo, Message: msg}
}

func warningNotice(msg string) Notice {
	return Notice{Level: LevelWarning, Message: msg}
}

// ErrorNotice builds the notice for validation and hard failures.
func ErrorNotice(msg string) Notice {
	return Notice{Level: LevelError, Message: msg}
}
