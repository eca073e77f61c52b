// Package archivetest builds zip fixtures shaped like GitHub source archives.
package archivetest

import (
	"archive/zip"
	"bytes"
	"io/fs"
	"sort"
	"strings"
	"testing"
	"time"
)

// Modified is the timestamp stamped on every fixture entry.
var Modified = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// Entry is one fixture entry. A path ending in "/" is a directory marker.
type Entry struct {
	Path    string
	Content string
}

// Zip builds an archive containing entries in the given order.
func Zip(tb testing.TB, entries ...Entry) []byte {
	tb.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.Path, Method: zip.Deflate, Modified: Modified}
		if strings.HasSuffix(e.Path, "/") {
			hdr.Method = zip.Store
			hdr.SetMode(fs.ModeDir | 0o755)
		} else {
			hdr.SetMode(0o644)
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			tb.Fatalf("create fixture entry %s: %v", e.Path, err)
		}
		if e.Content != "" {
			if _, err := w.Write([]byte(e.Content)); err != nil {
				tb.Fatalf("write fixture entry %s: %v", e.Path, err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("close fixture archive: %v", err)
	}
	return buf.Bytes()
}

// Repo builds an archive the way GitHub serves a repository download: a
// single root folder, directory markers before their children, sorted paths.
// files maps paths relative to the root to their content.
func Repo(tb testing.TB, root string, files map[string]string) []byte {
	tb.Helper()
	paths := make(map[string]string)
	for p, content := range files {
		paths[root+"/"+p] = content
		dir := p
		for {
			i := strings.LastIndex(dir, "/")
			if i < 0 {
				break
			}
			dir = dir[:i]
			paths[root+"/"+dir+"/"] = ""
		}
	}
	paths[root+"/"] = ""

	names := make([]string, 0, len(paths))
	for p := range paths {
		names = append(names, p)
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, n := range names {
		entries = append(entries, Entry{Path: n, Content: paths[n]})
	}
	return Zip(tb, entries...)
}

// Read returns the file contents of an archive keyed by name, plus the
// names in archive order.
func Read(tb testing.TB, data []byte) (map[string]string, []string) {
	tb.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		tb.Fatalf("read archive: %v", err)
	}
	files := make(map[string]string, len(zr.File))
	order := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			tb.Fatalf("open %s: %v", f.Name, err)
		}
		var b bytes.Buffer
		if _, err := b.ReadFrom(rc); err != nil {
			tb.Fatalf("read %s: %v", f.Name, err)
		}
		rc.Close()
		files[f.Name] = b.String()
		order = append(order, f.Name)
	}
	return files, order
}

// Templates is the fixture upstream used across package tests: a
// zero-config-templates style repository with react, express and nestjs
// folders (angular is deliberately absent).
func Templates(tb testing.TB) []byte {
	tb.Helper()
	return Repo(tb, "zero-config-templates-main", map[string]string{
		"README.md":                "# templates\n",
		"react/package.json":       `{"name":"react-app"}`,
		"react/src/App.jsx":        "export default function App() {}\n",
		"react/public/index.html":  "<!doctype html>\n",
		"express/package.json":     `{"name":"express-app"}`,
		"express/src/index.js":     "require('express')\n",
		"nestjs/package.json":      `{"name":"nest-app"}`,
		"nestjs/src/main.ts":       "bootstrap()\n",
		"nestjs/src/app.module.ts": "export class AppModule {}\n",
	})
}
