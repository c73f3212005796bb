package crashnotify

import (
	"os"
	"strings"
	"time"
)

// DefaultHeader is the first line of a report when no header override is
// configured.
const DefaultHeader = "Your program has crashed ☠️"

// DefaultTimeFormat is the time layout used for generated attachment
// filenames.
const DefaultTimeFormat = "2006-01-02 15_04_05"

// EnvTimeFormat is the environment variable that overrides
// DefaultTimeFormat.
const EnvTimeFormat = "CRASHNOTIFY_FILENAME_DT_FORMAT"

// timeNow is stubbed in tests.
var timeNow = time.Now

// Report is a ready-to-send crash report.
type Report struct {
	// Body is the message text. When Attachment is set it is a short
	// caption; otherwise it carries the full trace inline.
	Body string

	// Attachment holds the full trace when the report was built for
	// file delivery, nil otherwise.
	Attachment []byte
}

// makeReport formats a captured trace into a Report. The body is the
// header, a blank line, the function and capture-time lines, and, unless
// asAttached is set, the trace itself. With asAttached the trace moves
// into the attachment and the body becomes the caption.
func makeReport(trace, funcName, header string, asAttached bool, now time.Time) Report {
	if header == "" {
		header = DefaultHeader
	}

	b := strings.Builder{}
	b.WriteString(header)
	b.WriteString("\n\n")
	if funcName != "" {
		b.WriteString("Function: ")
		b.WriteString(funcName)
		b.WriteString("\n")
	}
	b.WriteString("Time: ")
	b.WriteString(now.Format(time.RFC3339))
	b.WriteString("\n")

	if asAttached {
		return Report{
			Body:       b.String(),
			Attachment: []byte(trace),
		}
	}

	b.WriteString("\n")
	b.WriteString(trace)
	return Report{Body: b.String()}
}

// reportFilename returns name unchanged when it is set. Otherwise it
// generates "<timestamp>.txt", with the timestamp truncated to whole
// seconds and formatted with layout. An empty layout falls back to the
// EnvTimeFormat environment variable, then to DefaultTimeFormat.
func reportFilename(name, layout string) string {
	if name != "" {
		return name
	}
	if layout == "" {
		layout = os.Getenv(EnvTimeFormat)
	}
	if layout == "" {
		layout = DefaultTimeFormat
	}
	return timeNow().Truncate(time.Second).Format(layout) + ".txt"
}
