package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Maladandanmian/nu-performance-nutrition-sub001/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSizeMB  = 50
	defaultMaxBackups = 20
)

type LoggerSetupParams struct {
	LogFileName   string
	LogToStdout   bool
	LogLevel      string
	LogFormatJSON bool
	// ServiceName and Environment are attached to every entry
	ServiceName string
	Environment string

	SentryEnabled          bool
	SentryDSN              string
	SentryTracesSampleRate float64
}

func Setup(params LoggerSetupParams) {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.SetLevel(ParseLevel(params.LogLevel))
	logrus.SetOutput(Output(params))
	logrus.AddHook(NewFieldsHook(logrus.Fields{
		"service": params.ServiceName,
		"env":     params.Environment,
	}))

	if !params.SentryEnabled {
		return
	}
	if params.SentryDSN == "" {
		logrus.Warnln("sentry enabled but SENTRY_DSN not set, skipping")
		return
	}
	if err := setupSentry(params); err != nil {
		logrus.Errorf("sentry init: %s", err)
	}
}

// Output picks where log lines go: stdout only when no file is configured, otherwise a
// rotated file, mirrored to stdout when asked.
func Output(params LoggerSetupParams) io.Writer {
	if params.LogFileName == "" {
		return os.Stdout
	}

	fileName := params.LogFileName
	if filepath.Ext(fileName) != ".log" {
		fileName += ".log"
	}
	rotated := &lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    defaultMaxSizeMB,
		MaxBackups: defaultMaxBackups,
		Compress:   true,
	}

	if params.LogToStdout {
		return pkg.NewCombinedWriter(os.Stdout, rotated)
	}
	return rotated
}

func setupSentry(params LoggerSetupParams) error {
	sampleRate := params.SentryTracesSampleRate
	if sampleRate <= 0 {
		sampleRate = 0.2
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              params.SentryDSN,
		Environment:      params.Environment,
		ServerName:       params.ServiceName,
		TracesSampleRate: sampleRate,
	}); err != nil {
		return err
	}

	logrus.AddHook(NewSentryHook([]logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
	}))
	logrus.Infoln("sentry set up")
	return nil
}

// ParseLevel accepts logrus level names in any case. Unknown levels fall back to info.
func ParseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

// FieldsHook adds a fixed set of fields to entries that do not already carry them.
type FieldsHook struct {
	fields logrus.Fields
}

func NewFieldsHook(fields logrus.Fields) *FieldsHook {
	nonEmpty := logrus.Fields{}
	for k, v := range fields {
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		nonEmpty[k] = v
	}
	return &FieldsHook{fields: nonEmpty}
}

func (h *FieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *FieldsHook) Fire(entry *logrus.Entry) error {
	for k, v := range h.fields {
		if _, set := entry.Data[k]; !set {
			entry.Data[k] = v
		}
	}
	return nil
}
