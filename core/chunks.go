package core

import "io"

// ChunkSource is a pull-based provider of blob data. ReadChunk returns
// the next chunk, at most maxLen bytes long. A nil or empty chunk with
// a nil error means end of stream.
//
// Errors from a ChunkSource never fail blob creation: the consumer
// treats them as end of stream and creates the blob from whatever was
// read before the error. Callers that need the full data should compare
// the resulting blob's size against their expectation.
type ChunkSource interface {
	ReadChunk(maxLen int) ([]byte, error)
}

// readerSource adapts an io.Reader to the ChunkSource interface.
type readerSource struct {
	r   io.Reader
	buf []byte
}

// ReaderSource wraps an io.Reader as a ChunkSource.
func ReaderSource(r io.Reader) ChunkSource {
	return &readerSource{r: r}
}

func (s *readerSource) ReadChunk(maxLen int) ([]byte, error) {
	if maxLen <= 0 {
		return nil, nil
	}
	if cap(s.buf) < maxLen {
		s.buf = make([]byte, maxLen)
	}

	n, err := s.r.Read(s.buf[:maxLen])
	if n > 0 {
		return s.buf[:n], nil
	}
	if err == io.EOF {
		return nil, nil
	}
	return nil, err
}
