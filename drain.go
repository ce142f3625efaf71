package fanout

import (
	"errors"
	"io"
	"os"
)

const drainBufferSize = 4096

// Drain forwards bytes from src to dst in chunks until src reports
// end-of-stream, and returns the number of bytes written to dst.
//
// No line reassembly happens: chunks go out as they were read, so output of
// concurrent drains sharing dst may interleave at any byte. End-of-stream and
// reading from a closed file end the drain with a nil error. Other read
// errors also end it and are returned, but callers treat them like
// end-of-stream. A write error stops the drain and is returned.
func Drain(dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, drainBufferSize)
	var written int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			written += int64(w)
			if werr != nil {
				return written, werr
			}
			if w < n {
				return written, io.ErrShortWrite
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) || errors.Is(rerr, os.ErrClosed) || errors.Is(rerr, io.ErrClosedPipe) {
				return written, nil
			}
			return written, rerr
		}
	}
}
