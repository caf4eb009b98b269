package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"nplreport/internal/config"
)

// ReportFile is a transaction extract found in the input directory
type ReportFile struct {
	Path       string
	Name       string
	ReportDate string
	Size       int64
	ModTime    time.Time
}

// Discovery finds transaction extracts by file name
type Discovery struct {
	template string
}

// NewDiscovery creates a discovery for names built from template, which holds
// a single %s standing for the report date
func NewDiscovery(template string) (*Discovery, error) {
	if strings.Count(template, "%s") != 1 {
		return nil, fmt.Errorf("file name template %q must contain exactly one %%s", template)
	}
	return &Discovery{template: template}, nil
}

// Match returns the report date encoded in name
func (d *Discovery) Match(name string) (string, bool) {
	prefix, suffix, _ := strings.Cut(d.template, "%s")
	if len(name) < len(prefix)+len(suffix) {
		return "", false
	}
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return "", false
	}
	date := name[len(prefix) : len(name)-len(suffix)]
	if _, err := config.ParseReportDate(date); err != nil {
		return "", false
	}
	return date, true
}

// FindReportFiles lists the extracts in dir, oldest report date first
func (d *Discovery) FindReportFiles(dir string) ([]ReportFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var found []ReportFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		date, ok := d.Match(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, ReportFile{
			Path:       filepath.Join(dir, entry.Name()),
			Name:       entry.Name(),
			ReportDate: date,
			Size:       info.Size(),
			ModTime:    info.ModTime(),
		})
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].ReportDate < found[j].ReportDate
	})
	return found, nil
}

// Latest returns the extract with the most recent report date
func Latest(found []ReportFile) (ReportFile, bool) {
	if len(found) == 0 {
		return ReportFile{}, false
	}
	return found[len(found)-1], true
}
