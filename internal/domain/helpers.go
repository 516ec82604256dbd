package domain

import (
	"path"
	"strings"
)

var archiveSuffixes = []string{".tar.gz", ".tar.bz2", ".tgz", ".tbz2", ".tbz", ".tar", ".zip"}

func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// ArchiveStem names the directory an archive unpacks into by default:
// "tool-1.2.tar.gz?x=1" becomes "tool-1.2".
func ArchiveStem(source string) string {
	name, _, _ := strings.Cut(source, "?")
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))

	for _, ext := range archiveSuffixes {
		if len(name) > len(ext) && strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}

	if ext := path.Ext(name); len(name) > len(ext) {
		return strings.TrimSuffix(name, ext)
	}
	return name
}
