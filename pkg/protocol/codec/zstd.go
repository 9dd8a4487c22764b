package codec

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	zstdOnce sync.Once
	zstdEnc  *zstd.Encoder
	zstdDec  *zstd.Decoder
	zstdErr  error
)

func zstdInit() {
	zstdEnc, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if zstdErr != nil {
		return
	}
	zstdDec, zstdErr = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
}

// Compress returns src compressed as a single zstd frame.
func Compress(src []byte) ([]byte, error) {
	zstdOnce.Do(zstdInit)
	if zstdErr != nil {
		return nil, zstdErr
	}
	return zstdEnc.EncodeAll(src, make([]byte, 0, len(src)/2)), nil
}

// Decompress reverses Compress.
func Decompress(src []byte) ([]byte, error) {
	zstdOnce.Do(zstdInit)
	if zstdErr != nil {
		return nil, zstdErr
	}
	return zstdDec.DecodeAll(src, nil)
}
