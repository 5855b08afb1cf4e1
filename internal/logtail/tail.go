// Package logtail reads the end of a log file and follows it as it grows.
// Backend logs are truncated on every launch, so a follower that sees the
// file shrink starts over from the beginning.
package logtail

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	defaultPoll    = 250 * time.Millisecond
	maxLineBytes   = 1024 * 1024
	initialBufSize = 64 * 1024
)

// Last returns up to n trailing lines of path and the offset just past them.
// A missing file yields no lines and offset 0.
func Last(path string, n int) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if info, err := file.Stat(); err != nil {
		return nil, 0, fmt.Errorf("stat log file: %w", err)
	} else if info.IsDir() {
		return nil, 0, fmt.Errorf("log path %q is a directory", path)
	}

	if n <= 0 {
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("seek log file: %w", err)
		}
		return nil, end, nil
	}

	ring := make([]string, n)
	count, next := 0, 0
	offset, err := scanLines(file, func(line string) {
		ring[next] = line
		next = (next + 1) % n
		if count < n {
			count++
		}
	})
	if err != nil {
		return nil, 0, err
	}

	lines := make([]string, count)
	start := 0
	if count == n {
		start = next
	}
	for i := range lines {
		lines[i] = ring[(start+i)%n]
	}
	return lines, offset, nil
}

// Follow emits lines appended to path after offset until ctx is done. When
// the file shrinks below offset it is treated as truncated and read from the
// start; onReset, if set, is called first. A zero poll uses a default.
func Follow(ctx context.Context, path string, offset int64, poll time.Duration, emit func(string), onReset func()) error {
	if poll <= 0 {
		poll = defaultPoll
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		info, err := os.Stat(path)
		switch {
		case err == nil:
			if info.Size() < offset {
				offset = 0
				if onReset != nil {
					onReset()
				}
			}
			next, readErr := readFrom(path, offset, emit)
			if readErr != nil {
				return readErr
			}
			offset = next
		case errors.Is(err, os.ErrNotExist):
			offset = 0
		default:
			return fmt.Errorf("stat log file: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func readFrom(path string, offset int64, emit func(string)) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}
	end, err := scanLines(file, emit)
	if err != nil {
		return offset, err
	}
	return end, nil
}

// scanLines feeds complete lines from the file's current position to fn and
// returns the offset after the last complete line. A trailing partial line is
// left for the next read.
func scanLines(file *os.File, fn func(string)) (int64, error) {
	start, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("determine log offset: %w", err)
	}
	reader := bufio.NewReaderSize(file, initialBufSize)
	consumed := start
	for {
		line, err := reader.ReadSlice('\n')
		if err == nil {
			consumed += int64(len(line))
			fn(trimEOL(line))
			continue
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			full, restErr := readLongLine(reader, line)
			if errors.Is(restErr, io.EOF) {
				return consumed, nil
			}
			if restErr != nil {
				return consumed, fmt.Errorf("read log file: %w", restErr)
			}
			consumed += int64(len(full))
			fn(trimEOL(full))
			continue
		}
		if errors.Is(err, io.EOF) {
			return consumed, nil
		}
		return consumed, fmt.Errorf("read log file: %w", err)
	}
}

func readLongLine(reader *bufio.Reader, prefix []byte) ([]byte, error) {
	buf := append([]byte(nil), prefix...)
	for len(buf) < maxLineBytes {
		chunk, err := reader.ReadSlice('\n')
		buf = append(buf, chunk...)
		if err == nil {
			return buf, nil
		}
		if !errors.Is(err, bufio.ErrBufferFull) {
			return buf, err
		}
	}
	return buf, nil
}

func trimEOL(line []byte) string {
	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		n--
	}
	if n > 0 && line[n-1] == '\r' {
		n--
	}
	return string(line[:n])
}
