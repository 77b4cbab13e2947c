package merge

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jfeld/tickstore/internal/codec"
	"github.com/jfeld/tickstore/internal/model"
)

// FileSource feeds an Iterator straight from a contract's raw data files for
// one calendar day, decoding incrementally as the external writer appends.
// Files are opened lazily on first refill so a stream whose file has not
// appeared yet is tolerated rather than fatal.
type FileSource struct {
	tradePath string
	depthPath string
	priceAdj  float64

	trades fileCursor
	depth  fileCursor
}

type fileCursor struct {
	f      *os.File
	hdr    codec.Header
	offset int64 // bytes consumed past the header
}

// NewFileSource creates a source for contractID's files under dataRoot,
// following the vendor layout: Data/<contract>.scid and
// Data/MarketDepthData/<contract>.<date>.depth.
func NewFileSource(dataRoot, contractID, date string, priceAdj float64) *FileSource {
	return &FileSource{
		tradePath: codec.TradeFilePath(dataRoot, contractID),
		depthPath: codec.DepthFilePath(dataRoot, contractID, date),
		priceAdj:  priceAdj,
	}
}

// Refill decodes every complete record appended to either file since the
// last call. Missing files yield no records and no error.
func (s *FileSource) Refill() ([]model.TradeRecord, []model.DepthRecord, error) {
	tradeBuf, err := s.trades.read(s.tradePath, codec.ParseTradeHeader)
	if err != nil {
		return nil, nil, fmt.Errorf("read trades: %w", err)
	}
	trades, consumed := codec.DecodeTrades(s.trades.hdr, tradeBuf, s.priceAdj)
	s.trades.offset += consumed

	depthBuf, err := s.depth.read(s.depthPath, codec.ParseDepthHeader)
	if err != nil {
		return nil, nil, fmt.Errorf("read depth: %w", err)
	}
	depth, consumed := codec.DecodeDepth(s.depth.hdr, depthBuf, s.priceAdj)
	s.depth.offset += consumed

	return trades, depth, nil
}

// Close releases both file handles.
func (s *FileSource) Close() error {
	var errs []error
	if s.trades.f != nil {
		errs = append(errs, s.trades.f.Close())
		s.trades.f = nil
	}
	if s.depth.f != nil {
		errs = append(errs, s.depth.f.Close())
		s.depth.f = nil
	}
	return errors.Join(errs...)
}

// read opens the file and parses its header on first use, then returns all
// bytes past the cursor's offset.
func (c *fileCursor) read(path string, parseHeader func(io.Reader) (codec.Header, error)) ([]byte, error) {
	if c.f == nil {
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // not written yet
		}
		if err != nil {
			return nil, err
		}

		hdr, err := parseHeader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		c.f = f
		c.hdr = hdr
	}

	pos := int64(c.hdr.HeaderSize) + c.offset
	buf, err := codec.ReadFrom(c.f, pos)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return buf, nil
}
