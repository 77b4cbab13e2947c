package extract

import (
	"errors"
	"os"
	"sort"

	"github.com/jfeld/tickstore/internal/codec"
)

// depthFile is one rotated depth file eligible for this cycle.
type depthFile struct {
	date string // YYYY-MM-DD from the file name
	path string
}

// locateDepthFiles lists the contract's depth files dated on or after
// sinceDate, oldest first. On first run (empty sinceDate) only the newest
// file is returned; earlier days were rotated before this extractor existed
// and are not backfilled. A missing depth directory yields no files, not an
// error.
func (e *Engine) locateDepthFiles(contractID, sinceDate string) ([]depthFile, error) {
	dir := codec.DepthDirPath(e.cfg.DataRoot)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var files []depthFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, date, ok := codec.ParseDepthFileName(entry.Name())
		if !ok || id != contractID {
			continue
		}
		if sinceDate != "" && date < sinceDate {
			continue // already rolled past, never revisited
		}
		files = append(files, depthFile{
			date: date,
			path: codec.DepthFilePath(e.cfg.DataRoot, contractID, date),
		})
	}

	// Dates are zero-padded ISO, so lexicographic order is chronological.
	sort.Slice(files, func(i, j int) bool { return files[i].date < files[j].date })

	if sinceDate == "" && len(files) > 1 {
		files = files[len(files)-1:]
	}
	return files, nil
}

