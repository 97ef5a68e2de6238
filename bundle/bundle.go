package bundle

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"howett.net/plist"
)

// ErrNotFound means no bundle in the applications directory matched the
// requested name.
var ErrNotFound = errors.New("application not found")

// Info describes an installed application bundle, read once from its
// Info.plist and immutable for the duration of a removal.
type Info struct {
	BundleID    string
	Name        string
	DisplayName string
}

// Stem returns a bundle's file name without the .app extension.
func Stem(bundlePath string) string {
	return strings.TrimSuffix(filepath.Base(bundlePath), ".app")
}

// Find resolves an application display name to a bundle path under appsDir.
// An exact "<name>.app" match wins; failing that, the bundles are scanned
// case-insensitively and the first match is returned.
func Find(appsDir string, name string) (string, error) {
	direct := filepath.Join(appsDir, name+".app")
	if _, err := os.Stat(direct); err == nil {
		return direct, nil
	}

	matches, _ := filepath.Glob(filepath.Join(appsDir, "*.app"))
	for _, match := range matches {
		if strings.EqualFold(Stem(match), name) {
			return match, nil
		}
	}

	return "", errors.WithMessage(ErrNotFound, name)
}

// ReadInfo extracts the bundle identifier and names from the bundle's
// Contents/Info.plist (XML or binary). Name fields absent from the plist
// default to the file name stem. A missing or unparseable plist is an
// error; callers carry on without metadata in that case.
func ReadInfo(bundlePath string) (Info, error) {
	bs, err := os.ReadFile(filepath.Join(bundlePath, "Contents", "Info.plist"))
	if err != nil {
		return Info{}, errors.WithMessage(err, "reading Info.plist")
	}

	var raw struct {
		BundleID    string `plist:"CFBundleIdentifier"`
		Name        string `plist:"CFBundleName"`
		DisplayName string `plist:"CFBundleDisplayName"`
	}
	_, err = plist.Unmarshal(bs, &raw)
	if err != nil {
		return Info{}, errors.WithMessage(err, "parsing Info.plist")
	}

	info := Info{
		BundleID:    raw.BundleID,
		Name:        raw.Name,
		DisplayName: raw.DisplayName,
	}

	stem := Stem(bundlePath)
	if info.Name == "" {
		info.Name = stem
	}
	if info.DisplayName == "" {
		info.DisplayName = stem
	}

	return info, nil
}

// IsAppStore reports whether the bundle looks like a Mac App Store install:
// either a receipt sits inside the bundle itself, or the receipts directory
// has an entry named after the bundle identifier.
func IsAppStore(bundlePath string, bundleID string, receiptsDir string) bool {
	marker := filepath.Join(bundlePath, "Contents", "_MASReceipt", "receipt")
	if _, err := os.Stat(marker); err == nil {
		return true
	}

	if bundleID == "" || receiptsDir == "" {
		return false
	}

	matches, _ := filepath.Glob(filepath.Join(receiptsDir, bundleID+".*"))
	return len(matches) > 0
}
