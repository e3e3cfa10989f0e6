package ometiff

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/nd2lab/ometiff/internal/tiffio"
)

// tiffHandle is spec.md §3's "TiffState": one open TIFF file plus the
// UUID it was assigned (generated on write, parsed on read) and the
// number of IFDs appended to it so far.
type tiffHandle struct {
	path     string
	file     *tiffio.File
	uuid     string
	ifdCount int
}

// fileSet is the canonicalised-path -> open-handle cache spec.md §3's
// Lifecycle note requires ("opening a second path reuses an already-open
// TIFF when paths match after canonicalisation"), grounded directly on
// the teacher's File.externalFiles map. It is not safe for concurrent
// use, matching spec.md §5's single-owner-thread model — callers must
// serialize access externally, same as the teacher's external-file cache.
type fileSet struct {
	handles map[string]*tiffHandle
}

func newFileSet() *fileSet {
	return &fileSet{handles: make(map[string]*tiffHandle)}
}

// get returns the handle for path if it's already open.
func (fs *fileSet) get(path string) (*tiffHandle, bool) {
	h, ok := fs.handles[path]
	return h, ok
}

// put registers a newly opened handle under its canonical path.
func (fs *fileSet) put(path string, h *tiffHandle) {
	fs.handles[path] = h
}

// closeAll closes every handle in the set, swallowing individual close
// errors the way the teacher's Close loop does for its externalFiles map
// (a partially-failed close must not prevent releasing the rest).
func (fs *fileSet) closeAll(logger Logger) {
	for path, h := range fs.handles {
		if err := h.file.Close(); err != nil {
			logger.Warnf("ometiff: error closing %s: %v", path, err)
		}
	}
	fs.handles = nil
}

// resolveExternal opens (or reuses) the file named by a UUID@FileName
// reference found in ownerPath's OME-XML, following the teacher's
// resolveExternalLink pattern: a visited set guards against reference
// cycles across files, and maxUUIDChainDepth bounds the chain length.
const maxUUIDChainDepth = 100

func (fs *fileSet) resolveExternal(ownerPath, fileName string, visited map[string]bool) (*tiffHandle, error) {
	if len(visited) >= maxUUIDChainDepth {
		return nil, newErr(InconsistentUUID, "UUID reference chain exceeds maximum depth %d", maxUUIDChainDepth)
	}
	target, err := resolveRelative(ownerPath, fileName)
	if err != nil {
		return nil, wrapErr(IO, err, "resolving UUID file reference %q", fileName)
	}
	if visited[target] {
		return nil, newErr(InconsistentUUID, "UUID reference cycle detected at %s", target)
	}
	visited[target] = true

	if h, ok := fs.get(target); ok {
		return h, nil
	}

	tf, err := tiffio.Open(target)
	if err != nil {
		return nil, wrapErr(IO, err, "opening referenced file %s", target)
	}
	h := &tiffHandle{path: target, file: tf, ifdCount: tf.IFDCount()}
	fs.put(target, h)
	return h, nil
}

// blockCache is the ambient decoded-data LRU of §4.9, keyed by (file
// path, IFD key, int key). The reader stores whole decoded ReadRegion
// results in it under roiKey of the rectangle, not single tiles or
// strips. It is a pure performance layer whose
// absence (capacity 0) never changes an observable result, only the
// amount of repeated decompression work. Grounded on
// Echoflaresat-spacecam's identical use of golang-lru for TIFF tiles.
type blockCache struct {
	cache *lru.Cache
}

type blockKey struct {
	path      string
	ifdIndex  int
	blockIdx  int
}

func newBlockCache(size int) *blockCache {
	if size <= 0 {
		return &blockCache{}
	}
	c, _ := lru.New(size)
	return &blockCache{cache: c}
}

func (b *blockCache) get(path string, ifdIndex, blockIdx int) ([]byte, bool) {
	if b.cache == nil {
		return nil, false
	}
	v, ok := b.cache.Get(blockKey{path, ifdIndex, blockIdx})
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

func (b *blockCache) put(path string, ifdIndex, blockIdx int, data []byte) {
	if b.cache == nil {
		return
	}
	b.cache.Add(blockKey{path, ifdIndex, blockIdx}, data)
}
