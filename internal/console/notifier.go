package console

import (
	"fmt"
	"io"

	"canvass/internal/collector"
)

var levelPrefix = map[collector.Level]string{
	collector.LevelSuccess: "[ok]",
	collector.LevelWarning: "[!]",
	collector.LevelError:   "[error]",
}

// WriterNotifier prints notifications as single prefixed lines.
func WriterNotifier(w io.Writer) collector.Notifier {
	return collector.NotifierFunc(func(level collector.Level, message string) {
		fmt.Fprintf(w, "%s %s\n", levelPrefix[level], message)
	})
}
