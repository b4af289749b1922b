package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/dotiam/engine/world"
	lua "github.com/yuin/gopher-lua"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	world        *lua.LTable
	nodes        []rawNode
	items        []rawItem
	combinations []world.Combination
}

// Load reads a world from path: a YAML authoring document (.yaml, .yml),
// a single Lua file, or a directory of .lua files. The world is validated
// before it is returned; warnings are logged, errors fail the load.
func Load(path string) (*world.World, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading world %s: %w", path, err)
	}

	var w *world.World
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case info.IsDir():
		w, err = loadLuaDir(path)
	case ext == ".yaml" || ext == ".yml":
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading world %s: %w", path, err)
		}
		w, err = decodeDocument(data)
	case ext == ".lua":
		w, err = loadLuaFiles([]string{path})
	default:
		return nil, fmt.Errorf("unsupported world file %s: want .yaml, .yml, .lua or a directory", path)
	}
	if err != nil {
		return nil, err
	}

	if err := validate(w); err != nil {
		return nil, err
	}
	return w, nil
}

// loadLuaDir executes every .lua file in dir, world.lua first and the rest
// in alphabetical order.
func loadLuaDir(dir string) (*world.World, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading world directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}

	paths := make([]string, 0, len(luaFiles))
	for _, f := range sortedLuaFiles(luaFiles) {
		paths = append(paths, filepath.Join(dir, f))
	}
	return loadLuaFiles(paths)
}

// loadLuaFiles runs the files in one sandboxed VM and compiles what they
// declared. The Lua VM is discarded after loading.
func loadLuaFiles(paths []string) (*world.World, error) {
	// Create sandboxed VM.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, path := range paths {
		if err := L.DoFile(path); err != nil {
			return nil, fmt.Errorf("executing %s: %w", filepath.Base(path), err)
		}
	}

	w, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling world: %w", err)
	}
	return w, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	// Table library (table.insert, table.sort, etc.)
	lua.OpenTable(L)
	// String library (string.format, string.sub, etc.)
	lua.OpenString(L)
	// Math library (math.floor, math.max, etc.)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// World files are data; keep them deterministic.
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
			tbl.RawSetString("random", lua.LNil)
		}
	}
}

func logWarnings(warnings []string) {
	for _, w := range warnings {
		slog.Warn("world validation warning", "warning", w)
	}
}
