package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// timeFormat stamps rotated files with the rotation start time
const timeFormat = "2006-01-02_15-04-05"

// RotatedPath names the CSV file of one rotation interval:
// {dir}/{base}_{YYYY-MM-DD_HH-MM-SS}.csv
func RotatedPath(dir, base string, at time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.csv", base, at.Format(timeFormat)))
}

// RotatedCapturePath names the savefile of one rotation in pcap
// pass-through mode
func RotatedCapturePath(dir, base string, at time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.pcap", base, at.Format(timeFormat)))
}

// ConvertedPath names the single output file of a file replay run:
// {dir}/{source_stem}_converted.csv
func ConvertedPath(dir, sourceFile string) string {
	stem := strings.TrimSuffix(filepath.Base(sourceFile), filepath.Ext(sourceFile))
	if stem == "" {
		stem = "output"
	}
	return filepath.Join(dir, stem+"_converted.csv")
}
