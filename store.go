package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb/maptile"
)

// TileFormat 瓦片存储格式
const TileFormat = "png"

// TileStore owns the local tile tree, one file per tile under
// <root>/<z>/<x>/<y>.png. Nothing else writes inside the root.
type TileStore struct {
	root string
}

// NewTileStore creates a store rooted at dir. The root itself is created
// lazily on the first Put.
func NewTileStore(dir string) *TileStore {
	return &TileStore{root: dir}
}

// Root returns the tile tree root directory.
func (s *TileStore) Root() string {
	return s.root
}

// Path returns the file path a tile lives at, whether or not it exists yet.
func (s *TileStore) Path(t maptile.Tile) string {
	return filepath.Join(s.root,
		fmt.Sprintf(`%d`, t.Z), fmt.Sprintf(`%d`, t.X), fmt.Sprintf(`%d.%s`, t.Y, TileFormat))
}

// PathTemplate returns the {z}/{x}/{y} template the map surface resolves
// locally cached tiles with.
func (s *TileStore) PathTemplate() string {
	return filepath.Join(s.root, "{z}", "{x}", fmt.Sprintf("{y}.%s", TileFormat))
}

// Exists reports whether the tile is already on disk.
func (s *TileStore) Exists(t maptile.Tile) bool {
	info, err := os.Stat(s.Path(t))
	return err == nil && !info.IsDir()
}

// Put 保存瓦片. Writes the tile bytes, creating directories on demand.
// Returns false without touching the file when the tile is already present.
func (s *TileStore) Put(t maptile.Tile, data []byte) (bool, error) {
	if s.Exists(t) {
		return false, nil
	}
	dir := filepath.Dir(s.Path(t))
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return false, fmt.Errorf("create tile dir %s: %w", dir, err)
	}
	if err := os.WriteFile(s.Path(t), data, os.ModePerm); err != nil {
		return false, fmt.Errorf("write tile file: %w", err)
	}
	return true, nil
}

// Clear 清空瓦片目录. Best effort, a failure is logged and the caller
// proceeds with the refresh anyway.
func (s *TileStore) Clear() {
	if err := os.RemoveAll(s.root); err != nil {
		log.Errorf("clear tile store %s error ~ %s", s.root, err)
	}
}
