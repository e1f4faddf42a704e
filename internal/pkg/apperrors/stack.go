package apperrors

import (
	"runtime"
	"strconv"
	"strings"
)

// maxStackDepth ограничивает число кадров в сохраняемом стеке.
const maxStackDepth = 32

// captureStack возвращает стек вызывающего в виде "func\n\tfile:line",
// пропуская skip кадров над собой.
func captureStack(skip int) string {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	var b strings.Builder
	for {
		frame, more := frames.Next()
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(frame.Function)
		b.WriteString("\n\t")
		b.WriteString(frame.File)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(frame.Line))
		if !more {
			break
		}
	}
	return b.String()
}
