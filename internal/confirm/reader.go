package confirm

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

// LineReader reads operator input one line at a time.
type LineReader interface {
	// ReadLine returns the next line without its line ending. It returns
	// io.EOF when input is exhausted and ctx.Err() when ctx is done first.
	ReadLine(ctx context.Context) (string, error)
}

type lineResult struct {
	line string
	err  error
}

// chanLineReader reads src on a single background goroutine so that a read
// blocked on a terminal can be abandoned when ctx is cancelled.
type chanLineReader struct {
	src   io.Reader
	once  sync.Once
	lines chan lineResult
}

// NewLineReader wraps r. The background reader starts on the first ReadLine.
func NewLineReader(r io.Reader) LineReader {
	return &chanLineReader{
		src:   r,
		lines: make(chan lineResult),
	}
}

func (r *chanLineReader) start() {
	go func() {
		defer close(r.lines)
		br := bufio.NewReader(r.src)
		for {
			line, err := br.ReadString('\n')
			if line != "" {
				r.lines <- lineResult{line: strings.TrimRight(line, "\r\n")}
			}
			if err != nil {
				if err != io.EOF {
					r.lines <- lineResult{err: err}
				}
				return
			}
		}
	}()
}

// ReadLine implements LineReader.
func (r *chanLineReader) ReadLine(ctx context.Context) (string, error) {
	r.once.Do(r.start)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		return res.line, res.err
	}
}
