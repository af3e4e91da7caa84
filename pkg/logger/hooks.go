package logger

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// lineFormatter renders "[ts] [LEVEL] [prefix]: message"
type lineFormatter struct {
	colors bool
}

func (f *lineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	level, prefix := entryMeta(entry)
	timestamp := entry.Time.Format("2006-01-02 15:04:05")

	var line string
	if f.colors {
		line = fmt.Sprintf("[%s] [%s%s%s] [%s]: %s\n", timestamp, level.Color(), level.String(), colorReset, prefix, entry.Message)
	} else {
		line = fmt.Sprintf("[%s] [%s] [%s]: %s\n", timestamp, level.String(), prefix, entry.Message)
	}
	return []byte(line), nil
}

// entryMeta recovers the LogLevel and prefix stored on the entry.
// Entries logged straight through logrus fall back to its own level.
func entryMeta(entry *logrus.Entry) (LogLevel, string) {
	level, ok := entry.Data[fieldLevel].(LogLevel)
	if !ok {
		switch entry.Level {
		case logrus.PanicLevel, logrus.FatalLevel:
			level = LevelCritical
		case logrus.ErrorLevel:
			level = LevelError
		case logrus.WarnLevel:
			level = LevelWarn
		case logrus.DebugLevel, logrus.TraceLevel:
			level = LevelDebug
		default:
			level = LevelInfo
		}
	}
	prefix, _ := entry.Data[fieldPrefix].(string)
	return level, prefix
}

// fileHook appends plain lines to combined.log, and error-level lines to error.log too
type fileHook struct {
	mu        sync.Mutex
	formatter *lineFormatter
	combined  *os.File
	errors    *os.File
}

func newFileHook(dir string) (*fileHook, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	combined, err := os.OpenFile(filepath.Join(dir, "combined.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	errFile, err := os.OpenFile(filepath.Join(dir, "error.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		combined.Close()
		return nil, err
	}

	return &fileHook{
		formatter: &lineFormatter{},
		combined:  combined,
		errors:    errFile,
	}, nil
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.combined == nil {
		return nil
	}
	if _, err := h.combined.Write(line); err != nil {
		return err
	}

	level, _ := entryMeta(entry)
	if level <= LevelError {
		if _, err := h.errors.Write(line); err != nil {
			return err
		}
	}
	return nil
}

// Close closes both files; later entries are dropped
func (h *fileHook) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.combined != nil {
		h.combined.Close()
		h.combined = nil
	}
	if h.errors != nil {
		h.errors.Close()
		h.errors = nil
	}
}

// webhookHook posts each entry as a Discord embed. Errors go to the error
// webhook, everything else to the logs webhook.
type webhookHook struct {
	errorURL string
	logsURL  string
	footer   string
	client   *http.Client
}

func newWebhookHook(errorURL, logsURL, footer string) *webhookHook {
	return &webhookHook{
		errorURL: errorURL,
		logsURL:  logsURL,
		footer:   footer,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

func (h *webhookHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *webhookHook) Fire(entry *logrus.Entry) error {
	level, prefix := entryMeta(entry)

	url := h.logsURL
	if level <= LevelError {
		url = h.errorURL
	}
	if url == "" {
		return nil
	}

	embed := map[string]interface{}{
		"title":       fmt.Sprintf("[%s] %s", level.String(), prefix),
		"description": fmt.Sprintf("```%s```", entry.Message),
		"color":       level.DiscordColor(),
		"timestamp":   entry.Time.Format(time.RFC3339),
		"footer": map[string]string{
			"text": h.footer,
		},
	}

	go h.send(url, map[string]interface{}{
		"embeds": []interface{}{embed},
	})
	return nil
}

func (h *webhookHook) send(url string, payload map[string]interface{}) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}
