package handlers

import (
	"bytes"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
)

const (
	defaultLogLines = 200
	maxLogLines     = 2000
	logChunkSize    = 8 * 1024
)

// LogsHandler serves the tail of the backend log file.
type LogsHandler struct {
	logFile string
}

func NewLogsHandler(logFile string) *LogsHandler {
	return &LogsHandler{logFile: logFile}
}

// Tail returns the last ?lines= lines of the log as plain text.
func (h *LogsHandler) Tail(w http.ResponseWriter, r *http.Request) {
	if h.logFile == "" {
		writeError(w, http.StatusNotFound, "file logging is disabled")
		return
	}

	n := defaultLogLines
	if raw := r.URL.Query().Get("lines"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "lines must be a positive integer")
			return
		}
		n = min(v, maxLogLines)
	}

	file, err := os.Open(h.logFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, "log file not found")
			return
		}
		log.Printf("[logs] open %s: %v", h.logFile, err)
		writeError(w, http.StatusInternalServerError, "failed to open log file")
		return
	}
	defer file.Close()

	lines, err := readLastNLines(file, n)
	if err != nil {
		log.Printf("[logs] read %s: %v", h.logFile, err)
		writeError(w, http.StatusInternalServerError, "failed to read log file")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, strings.Join(lines, "\n"))
}

// readLastNLines reads backwards from the end of the file in fixed chunks
// until it has seen n line breaks or reached the start.
func readLastNLines(r io.ReadSeeker, n int) ([]string, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}

	var buf []byte
	offset := size
	for offset > 0 && bytes.Count(buf, []byte{'\n'}) <= n {
		chunk := int64(logChunkSize)
		if offset < chunk {
			chunk = offset
		}
		offset -= chunk

		part := make([]byte, chunk)
		if _, err := r.Seek(offset, io.SeekStart); err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(r, part); err != nil {
			return nil, err
		}
		buf = append(part, buf...)
	}

	text := strings.TrimRight(string(buf), "\n")
	if text == "" {
		return []string{}, nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
