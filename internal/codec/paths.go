package codec

import (
	"path/filepath"
	"strings"
)

// File naming, as laid down by the external writer:
// trade files <root>/Data/<contract>.scid, depth files
// <root>/Data/MarketDepthData/<contract>.<YYYY-MM-DD>.depth, one per day.
const (
	TradeExt = ".scid"
	DepthExt = ".depth"

	dataDir  = "Data"
	depthDir = "MarketDepthData"
)

// TradeFilePath returns the trade file path for a contract.
func TradeFilePath(root, contractID string) string {
	return filepath.Join(root, dataDir, contractID+TradeExt)
}

// DepthDirPath returns the directory the writer rotates depth files into.
func DepthDirPath(root string) string {
	return filepath.Join(root, dataDir, depthDir)
}

// DepthFilePath returns the depth file path for a contract and date.
func DepthFilePath(root, contractID, date string) string {
	return filepath.Join(DepthDirPath(root), contractID+"."+date+DepthExt)
}

// ParseDepthFileName splits a depth file name into contract and date,
// reporting false for names that do not follow the rotation pattern.
func ParseDepthFileName(name string) (contractID, date string, ok bool) {
	base, found := strings.CutSuffix(name, DepthExt)
	if !found {
		return "", "", false
	}

	i := strings.LastIndex(base, ".")
	if i < 1 {
		return "", "", false
	}
	contractID, date = base[:i], base[i+1:]

	// YYYY-MM-DD
	if len(date) != 10 || date[4] != '-' || date[7] != '-' {
		return "", "", false
	}
	return contractID, date, true
}
