// Package logger keeps a bounded in-memory log buffer for the control
// API, fans entries out to subscribers, and appends JSON lines to a
// daily log file from a background worker.
package logger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"
)

// LogEntry is one log record as served by GET /api/logs.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

const (
	bufferCap   = 1000
	fileSizeCap = int64(5 * 1024 * 1024)
)

// Hub tokens must never reach the log file or the API.
var hubKeyRegex = regexp.MustCompile(`td-key-[a-zA-Z0-9]+`)

var (
	mu      sync.RWMutex
	buffer  []LogEntry
	file    *os.File
	path    string
	entryCh = make(chan LogEntry, 100)
	stopCh  chan struct{}
	doneCh  chan struct{}

	subsMu      sync.RWMutex
	subscribers = make(map[chan LogEntry]bool)
)

// Init opens today's log file under appDir/logs and starts the file
// worker. Logging works without Init; entries then stay in memory only.
func Init(appDir string) error {
	mu.Lock()
	defer mu.Unlock()

	logDir := filepath.Join(appDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	path = filepath.Join(logDir, fmt.Sprintf("%s TuneDeck Log.log", time.Now().Format("20060102")))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	file = f

	stopCh = make(chan struct{})
	doneCh = make(chan struct{})
	go fileWorker()

	return nil
}

// AddLog records an entry, echoes it to stdout, and hands it to the
// file worker and subscribers. It never blocks: slow consumers drop.
func AddLog(level, message string) {
	message = hubKeyRegex.ReplaceAllString(message, "td-key-REDACTED")

	entry := LogEntry{
		Timestamp: time.Now().Format(time.RFC3339),
		Level:     level,
		Message:   message,
	}

	mu.Lock()
	buffer = append(buffer, entry)
	if len(buffer) > bufferCap {
		buffer = buffer[len(buffer)-bufferCap:]
	}
	mu.Unlock()

	fmt.Printf("[%s] [%s] %s\n", entry.Timestamp, level, message)

	select {
	case entryCh <- entry:
	default:
	}

	subsMu.RLock()
	for sub := range subscribers {
		select {
		case sub <- entry:
		default:
		}
	}
	subsMu.RUnlock()
}

// GetLogs returns a copy of the in-memory buffer.
func GetLogs() []LogEntry {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]LogEntry, len(buffer))
	copy(out, buffer)
	return out
}

// Subscribe returns a channel receiving every new entry until
// Unsubscribe is called.
func Subscribe() chan LogEntry {
	subsMu.Lock()
	defer subsMu.Unlock()

	ch := make(chan LogEntry, 100)
	subscribers[ch] = true
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func Unsubscribe(ch chan LogEntry) {
	subsMu.Lock()
	defer subsMu.Unlock()

	delete(subscribers, ch)
	close(ch)
}

// Close drains the worker and closes the log file.
func Close() {
	if stopCh != nil {
		close(stopCh)
		<-doneCh
		stopCh = nil
	}

	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
}

func fileWorker() {
	defer close(doneCh)
	for {
		select {
		case entry := <-entryCh:
			writeEntry(entry)
		case <-stopCh:
			for {
				select {
				case entry := <-entryCh:
					writeEntry(entry)
				default:
					return
				}
			}
		}
	}
}

func writeEntry(entry LogEntry) {
	mu.Lock()
	defer mu.Unlock()

	if file == nil {
		return
	}

	if info, err := file.Stat(); err == nil && info.Size() > fileSizeCap {
		file.Close()
		f, err := os.OpenFile(path, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			file = nil
			return
		}
		file = f
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	file.Write(data)
	file.Write([]byte("\n"))
}
