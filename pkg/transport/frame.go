package transport

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
)

// MaxFrameSize bounds a single frame (16 MiB).
const MaxFrameSize = 1 << 24

// FrameConn implements Stream over any byte stream with u32 LE length
// prefixes. Link kinds without native message boundaries share it.
type FrameConn struct {
	mu sync.Mutex
	c  io.ReadWriteCloser
	br *bufio.Reader
	bw *bufio.Writer
}

func NewFrameConn(c io.ReadWriteCloser) *FrameConn {
	return &FrameConn{c: c, br: bufio.NewReader(c), bw: bufio.NewWriter(c)}
}

func (f *FrameConn) SendBytes(b []byte) error {
	if len(b) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(b))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var lenbuf [4]byte
	binary.LittleEndian.PutUint32(lenbuf[:], uint32(len(b)))
	if _, err := f.bw.Write(lenbuf[:]); err != nil {
		return err
	}
	if _, err := f.bw.Write(b); err != nil {
		return err
	}
	return f.bw.Flush()
}

func (f *FrameConn) RecvBytes() ([]byte, error) {
	var lenbuf [4]byte
	if _, err := io.ReadFull(f.br, lenbuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenbuf[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(f.br, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (f *FrameConn) Close() error { return f.c.Close() }
