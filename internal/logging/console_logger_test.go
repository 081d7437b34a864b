package logging

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleLoggerPrefixes(t *testing.T) {
	tests := []struct {
		name    string
		log     func(*ConsoleLogger)
		want    string
		verbose bool
	}{
		{name: "verbose enabled", verbose: true, log: func(l *ConsoleLogger) { l.Verbose("loaded %d types", 3) }, want: "[VERBOSE] loaded 3 types\n"},
		{name: "verbose disabled", log: func(l *ConsoleLogger) { l.Verbose("loaded %d types", 3) }, want: ""},
		{name: "info", log: func(l *ConsoleLogger) { l.Info("done") }, want: "done\n"},
		{name: "warn", log: func(l *ConsoleLogger) { l.Warn("ambiguous super type for %s", "Customer") }, want: "[WARN] ambiguous super type for Customer\n"},
		{name: "error", log: func(l *ConsoleLogger) { l.Error("100%% broken") }, want: "[ERROR] 100%% broken\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(NewWriterLogger(&buf, tt.verbose))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestConsoleLoggerConcurrent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, true)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			logger.Info("message %d", n)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestNullLogger(t *testing.T) {
	logger := NewNullLogger()
	assert.NotPanics(t, func() {
		logger.Verbose("x")
		logger.Info("x")
		logger.Warn("x")
		logger.Error("x")
	})
}
