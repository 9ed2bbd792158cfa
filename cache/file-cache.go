package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	metaDirName    = "meta"
	contentDirName = "content"
	metaSuffix     = ".json"
)

// FileCache stores each entry as a pair of files under a root directory:
// a metadata document at meta/<key>.json and a body file with a random
// name under content/. The metadata document is committed with a rename,
// which makes replacing an entry atomic: readers see either the previous
// complete entry or the new one.
//
// Replaced body files are not deleted. They accumulate under content/
// until cleaned up externally.
type FileCache struct {
	root string
}

// metaRecord is the on-disk metadata document for one entry.
type metaRecord struct {
	BodyFile     string `json:"body_file"`
	ETag         string `json:"etag,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	URL          string `json:"url,omitempty"`
}

// NewFileCache creates a file cache rooted at the given directory.
// No I/O happens here: the directory is created on the first write.
func NewFileCache(root string) FileCache {
	return FileCache{root: root}
}

func (f FileCache) metaPath(key string) string {
	return filepath.Join(f.root, metaDirName, key+metaSuffix)
}

func (f FileCache) Get(key string) (Entry, bool, error) {
	raw, err := os.ReadFile(f.metaPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var meta metaRecord
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Entry{}, false, err
	}
	body, err := os.ReadFile(filepath.Join(f.root, meta.BodyFile))
	if err != nil {
		return Entry{}, false, err
	}
	return Entry{
		Body:         body,
		ETag:         meta.ETag,
		LastModified: meta.LastModified,
		URL:          meta.URL,
	}, true, nil
}

func (f FileCache) Put(key string, entry Entry) error {
	if err := os.MkdirAll(filepath.Join(f.root, metaDirName), 0755); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(f.root, contentDirName), 0755); err != nil {
		return err
	}
	// The body is written in full under a name no reader knows yet.
	// Only the metadata rename below publishes it.
	bodyFile := filepath.Join(contentDirName, uuid.NewString())
	if err := os.WriteFile(filepath.Join(f.root, bodyFile), entry.Body, 0644); err != nil {
		return err
	}
	raw, err := json.Marshal(metaRecord{
		BodyFile:     bodyFile,
		ETag:         entry.ETag,
		LastModified: entry.LastModified,
		URL:          entry.URL,
	})
	if err != nil {
		return err
	}
	return f.commitMeta(key, raw)
}

// commitMeta writes the metadata document to a temp file in the meta
// directory and renames it into place. The rename is the commit point.
func (f FileCache) commitMeta(key string, raw []byte) error {
	metaPath := f.metaPath(key)
	tmp, err := os.CreateTemp(filepath.Dir(metaPath), ".meta-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, metaPath); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (f FileCache) Keys(cb func(string)) {
	dirEntries, err := os.ReadDir(filepath.Join(f.root, metaDirName))
	if err != nil {
		return
	}
	for _, dirEntry := range dirEntries {
		name := dirEntry.Name()
		if dirEntry.IsDir() || !strings.HasSuffix(name, metaSuffix) {
			continue
		}
		cb(strings.TrimSuffix(name, metaSuffix))
	}
}

func (f FileCache) Purge(key string) error {
	raw, err := os.ReadFile(f.metaPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := os.Remove(f.metaPath(key)); err != nil {
		return err
	}
	// best effort: the body file is unreachable once the metadata is gone
	var meta metaRecord
	if err := json.Unmarshal(raw, &meta); err == nil && meta.BodyFile != "" {
		os.Remove(filepath.Join(f.root, meta.BodyFile))
	}
	return nil
}

func (f FileCache) Has(key string) bool {
	_, err := os.Stat(f.metaPath(key))
	return err == nil
}
