// Package logging configures the process-wide logrus logger used for
// diagnostics. Console output for the simulation itself goes through the
// console package, never through here.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultLevel is used when no level or an unknown level is requested.
const DefaultLevel = logrus.InfoLevel

// SetOutput configures logging output for standard loggers.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
	logrus.SetOutput(w)
}

// SetLevel parses level and applies it together with the csmc formatter.
// An unknown level leaves the logger at DefaultLevel and is reported as a
// warning rather than aborting the run.
func SetLevel(level string) logrus.Level {
	logrus.SetFormatter(&Formatter{})
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.SetLevel(DefaultLevel)
		logrus.WithError(err).Warnf("Unknown log level, using %s. Valid log levels are: %v", DefaultLevel, logrus.AllLevels)
		return DefaultLevel
	}
	logrus.SetLevel(parsed)
	return parsed
}

// Formatter writes entries as
//
//	2024-01-01T10:00:00.000Z [csmc] level=info msg="text" key=value
//
// with fields sorted by key.
type Formatter struct {
	// DisableTimestamp drops the leading timestamp. Used by tests.
	DisableTimestamp bool
}

func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}

	if !f.DisableTimestamp {
		b.WriteString(entry.Time.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(b, "[csmc] level=%s msg=%q", entry.Level, entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		writeValue(b, entry.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func writeValue(b *bytes.Buffer, v interface{}) {
	switch val := v.(type) {
	case string:
		fmt.Fprintf(b, "%q", val)
	case error:
		fmt.Fprintf(b, "%q", val.Error())
	case time.Duration:
		b.WriteString(val.String())
	default:
		fmt.Fprint(b, val)
	}
}
