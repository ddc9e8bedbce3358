package armfile

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/olusolaa/azfw-policy-drift/internal/core/domain"
	"github.com/olusolaa/azfw-policy-drift/internal/errors"
	"github.com/olusolaa/azfw-policy-drift/internal/normalize"
)

const templateExt = ".json"

// FindPairs matches every import template with the export template whose
// base name equals the import base name without its date suffix, e.g.
// hub-fw_20250627.json with hub-fw.json. When several dated imports share a
// base name only the newest one is paired, since they would all produce the
// same report. Import files without a counterpart are left out.
func FindPairs(importDir, exportDir string) ([]domain.TemplatePair, error) {
	importFiles, err := listTemplates(importDir)
	if err != nil {
		return nil, err
	}
	exportFiles, err := listTemplates(exportDir)
	if err != nil {
		return nil, err
	}

	exportByBase := make(map[string]string, len(exportFiles))
	for _, f := range exportFiles {
		exportByBase[stem(f)] = f
	}

	// importFiles is sorted and YYYYMMDD sorts chronologically, so the last
	// file seen for a base is the newest.
	latest := make(map[string]string, len(importFiles))
	var bases []string
	for _, f := range importFiles {
		base := normalize.RemoveDateSuffix(stem(f))
		if _, ok := exportByBase[base]; !ok {
			continue
		}
		if _, seen := latest[base]; !seen {
			bases = append(bases, base)
		}
		latest[base] = f
	}
	sort.Strings(bases)

	pairs := make([]domain.TemplatePair, 0, len(bases))
	for _, base := range bases {
		pairs = append(pairs, domain.TemplatePair{
			BaseName:   base,
			ImportPath: filepath.Join(importDir, latest[base]),
			ExportPath: filepath.Join(exportDir, exportByBase[base]),
		})
	}
	return pairs, nil
}

func listTemplates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodeTemplateReadError,
			"cannot read template directory "+dir, "Check the paths section of the configuration.")
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), templateExt) {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
