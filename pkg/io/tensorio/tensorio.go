// Package tensorio reads and writes tensors in a flat binary format.
//
// Layout: 4-byte magic "PGT1", kind byte, rank byte, rank uint32 dims,
// then the row-major payload. Strings are length-prefixed with a uvarint,
// tuples nest their elements after a uint32 count. All integers are
// little-endian. Paths ending in .gz are transparently gzip compressed.
package tensorio

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
)

var magic = [4]byte{'P', 'G', 'T', '1'}

const (
	tagFloat64 = 0
	tagInt64   = 1
	tagString  = 2
	tagTuple   = 3
)

// WriteFile writes t to path, gzip compressed when the path ends in .gz.
func WriteFile(path string, t pg.Tensor) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	var w io.Writer = f
	var zw *gzip.Writer
	if filepath.Ext(path) == ".gz" {
		zw = gzip.NewWriter(f)
		w = zw
	}
	bw := bufio.NewWriter(w)
	werr := Write(bw, t)
	if err := bw.Flush(); werr == nil {
		werr = err
	}
	if zw != nil {
		if err := zw.Close(); werr == nil {
			werr = err
		}
	}
	if err := f.Close(); werr == nil {
		werr = err
	}
	return werr
}

// ReadFile reads a tensor from path, sniffing gzip by extension.
func ReadFile(path string) (pg.Tensor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if filepath.Ext(path) == ".gz" {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}
	return Read(bufio.NewReader(r))
}

func Write(w *bufio.Writer, t pg.Tensor) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	return writeBody(w, t)
}

func writeBody(w *bufio.Writer, t pg.Tensor) error {
	shape := t.Shape()
	if len(shape) > 255 {
		return fmt.Errorf("tensorio: rank %d too large", len(shape))
	}
	var tag byte
	switch t.Kind() {
	case pg.KindFloat64:
		tag = tagFloat64
	case pg.KindInt64:
		tag = tagInt64
	case pg.KindString:
		tag = tagString
	case pg.KindTuple:
		tag = tagTuple
	default:
		return fmt.Errorf("tensorio: unsupported kind %v", t.Kind())
	}
	if err := w.WriteByte(tag); err != nil {
		return err
	}
	if err := w.WriteByte(byte(len(shape))); err != nil {
		return err
	}
	var buf [8]byte
	for _, d := range shape {
		binary.LittleEndian.PutUint32(buf[:4], uint32(d))
		if _, err := w.Write(buf[:4]); err != nil {
			return err
		}
	}
	switch x := t.(type) {
	case *pg.Float64Tensor:
		for _, v := range x.Data() {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			if _, err := w.Write(buf[:]); err != nil {
				return err
			}
		}
	case *pg.Int64Tensor:
		for _, v := range x.Data() {
			binary.LittleEndian.PutUint64(buf[:], uint64(v))
			if _, err := w.Write(buf[:]); err != nil {
				return err
			}
		}
	case *pg.StringTensor:
		var vb [binary.MaxVarintLen64]byte
		for _, s := range x.Data() {
			n := binary.PutUvarint(vb[:], uint64(len(s)))
			if _, err := w.Write(vb[:n]); err != nil {
				return err
			}
			if _, err := w.WriteString(s); err != nil {
				return err
			}
		}
	case pg.Tuple:
		binary.LittleEndian.PutUint32(buf[:4], uint32(len(x)))
		if _, err := w.Write(buf[:4]); err != nil {
			return err
		}
		for _, el := range x {
			if err := writeBody(w, el); err != nil {
				return err
			}
		}
	}
	return nil
}

func Read(r *bufio.Reader) (pg.Tensor, error) {
	var m [4]byte
	if _, err := io.ReadFull(r, m[:]); err != nil {
		return nil, err
	}
	if m != magic {
		return nil, fmt.Errorf("tensorio: bad magic %q", m[:])
	}
	return readBody(r)
}

// allocChunk bounds how many elements are allocated ahead of the bytes
// actually read, so a corrupt header advertising a huge shape fails at EOF
// instead of provoking a giant up-front allocation.
const allocChunk = 1 << 16

func readBody(r *bufio.Reader) (pg.Tensor, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	rank, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	shape := make([]int, rank)
	var buf [8]byte
	size := 1
	for i := range shape {
		if _, err := io.ReadFull(r, buf[:4]); err != nil {
			return nil, err
		}
		shape[i] = int(binary.LittleEndian.Uint32(buf[:4]))
		if shape[i] > 0 && size > math.MaxInt64/8/shape[i] {
			return nil, fmt.Errorf("tensorio: shape %v overflows", shape[:i+1])
		}
		size *= shape[i]
	}
	switch tag {
	case tagFloat64:
		d := make([]float64, 0, minInt(size, allocChunk))
		for i := 0; i < size; i++ {
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return nil, err
			}
			d = append(d, math.Float64frombits(binary.LittleEndian.Uint64(buf[:])))
		}
		return pg.Float64TensorOf(d, shape...), nil
	case tagInt64:
		d := make([]int64, 0, minInt(size, allocChunk))
		for i := 0; i < size; i++ {
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return nil, err
			}
			d = append(d, int64(binary.LittleEndian.Uint64(buf[:])))
		}
		return pg.Int64TensorOf(d, shape...), nil
	case tagString:
		d := make([]string, 0, minInt(size, allocChunk))
		for i := 0; i < size; i++ {
			n, err := binary.ReadUvarint(r)
			if err != nil {
				return nil, err
			}
			s, err := readString(r, n)
			if err != nil {
				return nil, err
			}
			d = append(d, s)
		}
		return pg.StringTensorOf(d, shape...), nil
	case tagTuple:
		if _, err := io.ReadFull(r, buf[:4]); err != nil {
			return nil, err
		}
		n := int(binary.LittleEndian.Uint32(buf[:4]))
		tu := make(pg.Tuple, 0, minInt(n, allocChunk))
		for i := 0; i < n; i++ {
			el, err := readBody(r)
			if err != nil {
				return nil, err
			}
			tu = append(tu, el)
		}
		return tu, nil
	default:
		return nil, fmt.Errorf("tensorio: unknown kind tag %d", tag)
	}
}

// readString copies n bytes in bounded chunks, growing with the bytes it
// has actually read rather than trusting the advertised length.
func readString(r *bufio.Reader, n uint64) (string, error) {
	var sb strings.Builder
	var chunk [4096]byte
	for n > 0 {
		c := uint64(len(chunk))
		if n < c {
			c = n
		}
		if _, err := io.ReadFull(r, chunk[:c]); err != nil {
			return "", err
		}
		sb.Write(chunk[:c])
		n -= c
	}
	return sb.String(), nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
