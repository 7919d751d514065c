package system

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// EnterPreviewConsole hides the cursor and switches to graphics mode. It
// is best-effort; failures are logged and the returned func restores the
// console either way.
func EnterPreviewConsole(l Logger) (restore func()) {
	logResult(l, "KD_GRAPHICS set", SetGraphicsMode())
	logResult(l, "cursor hidden", HideCursor())
	return func() {
		logResult(l, "cursor shown", ShowCursor())
		logResult(l, "KD_TEXT set", RestoreTextMode())
	}
}

func logResult(l Logger, ok string, err error) {
	if l == nil {
		return
	}
	if err != nil {
		l.Errorf("tty", "%v", err)
		return
	}
	l.Infof("tty", "%s", ok)
}
