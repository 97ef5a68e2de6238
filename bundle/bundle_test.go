package bundle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleIdentifier</key>
	<string>com.example.App</string>
	<key>CFBundleName</key>
	<string>App</string>
	<key>CFBundleDisplayName</key>
	<string>App</string>
</dict>
</plist>`

const idOnlyPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleIdentifier</key>
	<string>com.example.Thing</string>
</dict>
</plist>`

func makeBundle(t *testing.T, appsDir, name, plistContents string) string {
	t.Helper()

	bundlePath := filepath.Join(appsDir, name+".app")
	require.NoError(t, os.MkdirAll(filepath.Join(bundlePath, "Contents"), 0755))
	if plistContents != "" {
		plistPath := filepath.Join(bundlePath, "Contents", "Info.plist")
		require.NoError(t, os.WriteFile(plistPath, []byte(plistContents), 0644))
	}
	return bundlePath
}

func TestStem(t *testing.T) {
	assert.Equal(t, "Final Cut Pro", Stem("/Applications/Final Cut Pro.app"))
	assert.Equal(t, "plain", Stem("plain"))
}

func TestFindExact(t *testing.T) {
	appsDir := t.TempDir()
	want := makeBundle(t, appsDir, "App", fullPlist)

	got, err := Find(appsDir, "App")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindCaseInsensitive(t *testing.T) {
	appsDir := t.TempDir()
	want := makeBundle(t, appsDir, "Final Cut Pro", fullPlist)
	makeBundle(t, appsDir, "Other", fullPlist)

	got, err := Find(appsDir, "final cut pro")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindNotFound(t *testing.T) {
	appsDir := t.TempDir()
	makeBundle(t, appsDir, "Other", fullPlist)

	_, err := Find(appsDir, "Missing")
	require.Error(t, err)
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}

func TestReadInfo(t *testing.T) {
	appsDir := t.TempDir()
	bundlePath := makeBundle(t, appsDir, "App", fullPlist)

	info, err := ReadInfo(bundlePath)
	require.NoError(t, err)
	assert.Equal(t, "com.example.App", info.BundleID)
	assert.Equal(t, "App", info.Name)
	assert.Equal(t, "App", info.DisplayName)
}

func TestReadInfoDefaultsToStem(t *testing.T) {
	appsDir := t.TempDir()
	bundlePath := makeBundle(t, appsDir, "Thing", idOnlyPlist)

	info, err := ReadInfo(bundlePath)
	require.NoError(t, err)
	assert.Equal(t, "com.example.Thing", info.BundleID)
	assert.Equal(t, "Thing", info.Name)
	assert.Equal(t, "Thing", info.DisplayName)
}

func TestReadInfoMissingPlist(t *testing.T) {
	appsDir := t.TempDir()
	bundlePath := makeBundle(t, appsDir, "Bare", "")

	_, err := ReadInfo(bundlePath)
	assert.Error(t, err)
}

func TestReadInfoMalformedPlist(t *testing.T) {
	appsDir := t.TempDir()
	bundlePath := makeBundle(t, appsDir, "Broken", "not a plist at all")

	_, err := ReadInfo(bundlePath)
	assert.Error(t, err)
}

func TestIsAppStoreReceiptMarker(t *testing.T) {
	appsDir := t.TempDir()
	bundlePath := makeBundle(t, appsDir, "App", fullPlist)

	receiptDir := filepath.Join(bundlePath, "Contents", "_MASReceipt")
	require.NoError(t, os.MkdirAll(receiptDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(receiptDir, "receipt"), []byte("x"), 0644))

	assert.True(t, IsAppStore(bundlePath, "", ""))
}

func TestIsAppStoreReceiptsDir(t *testing.T) {
	appsDir := t.TempDir()
	receiptsDir := t.TempDir()
	bundlePath := makeBundle(t, appsDir, "App", fullPlist)

	receipt := filepath.Join(receiptsDir, "com.example.App.bom")
	require.NoError(t, os.WriteFile(receipt, []byte("x"), 0644))

	assert.True(t, IsAppStore(bundlePath, "com.example.App", receiptsDir))
	assert.False(t, IsAppStore(bundlePath, "com.example.Other", receiptsDir))
}

func TestIsAppStoreNegative(t *testing.T) {
	appsDir := t.TempDir()
	bundlePath := makeBundle(t, appsDir, "App", fullPlist)

	assert.False(t, IsAppStore(bundlePath, "com.example.App", t.TempDir()))
	assert.False(t, IsAppStore(bundlePath, "", t.TempDir()))
}
