// Package samples bundles example IFJcode17 programs.
package samples

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// Ext is the file extension of a sample program.
const Ext = ".ifjcode"

//go:embed *.ifjcode
var files embed.FS

// Names lists the bundled samples in name order.
func Names() []string {
	entries, _ := fs.ReadDir(files, ".")

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if path.Ext(e.Name()) == Ext {
			names = append(names, strings.TrimSuffix(e.Name(), Ext))
		}
	}
	sort.Strings(names)

	return names
}

// Code returns the source of a sample.
func Code(name string) (string, error) {
	data, err := files.ReadFile(name + Ext)
	if err != nil {
		return "", fmt.Errorf("no sample named %q", name)
	}

	return string(data), nil
}
