package logging

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// LogFileName is the name of the repeat log inside the config directory.
const LogFileName = "repeater_log.txt"

// TailLines is how many lines log views show.
const TailLines = 500

// Tail returns the last n lines of the file at path. A missing file yields no
// lines and no error.
func Tail(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	if n <= 0 {
		return nil, nil
	}

	ring := make([]string, n)
	count := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		ring[count%n] = sc.Text()
		count++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	if count <= n {
		return ring[:count], nil
	}
	out := make([]string, 0, n)
	start := count % n
	out = append(out, ring[start:]...)
	out = append(out, ring[:start]...)
	return out, nil
}
