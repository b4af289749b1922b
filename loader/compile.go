// Package loader builds worlds from authoring documents: YAML files and a
// Lua DSL. The Lua VM is discarded after loading; no Lua runs at play time.
package loader

import (
	"fmt"
	"sort"

	"github.com/nathoo/dotiam/engine/world"
	lua "github.com/yuin/gopher-lua"
)

// rawNode holds a node table before compilation.
type rawNode struct {
	id    string
	table *lua.LTable
}

// rawItem holds an item table before compilation.
type rawItem struct {
	id    string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return int(n)
	}
	return 0
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// tableToStringMap converts a Lua table to a map[string]string.
func tableToStringMap(tbl *lua.LTable) map[string]string {
	if tbl == nil {
		return nil
	}
	m := map[string]string{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			if vs, ok := v.(lua.LString); ok {
				m[string(ks)] = string(vs)
			}
		}
	})
	if len(m) == 0 {
		return nil
	}
	return m
}

// tableToStrings converts a Lua array of strings to a slice.
func tableToStrings(tbl *lua.LTable) ([]string, error) {
	if tbl == nil {
		return nil, nil
	}
	var out []string
	for i := 1; i <= tbl.MaxN(); i++ {
		s, ok := tbl.RawGetInt(i).(lua.LString)
		if !ok {
			return nil, fmt.Errorf("entry %d is not a string", i)
		}
		out = append(out, string(s))
	}
	return out, nil
}

// compile converts all collected Lua data into a World.
func compile(coll *collector) (*world.World, error) {
	if coll.world == nil {
		return nil, fmt.Errorf("no World{} definition found")
	}

	w := world.New()
	w.Title = getString(coll.world, "title")
	w.Start = getString(coll.world, "start")

	for _, raw := range coll.nodes {
		if _, dup := w.Nodes[raw.id]; dup {
			return nil, fmt.Errorf("duplicate node %q", raw.id)
		}
		node, err := compileNode(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling node %s: %w", raw.id, err)
		}
		w.Nodes[node.ID] = node
	}

	for _, raw := range coll.items {
		if _, dup := w.Items[raw.id]; dup {
			return nil, fmt.Errorf("duplicate item %q", raw.id)
		}
		w.Items[raw.id] = compileItem(raw)
	}

	w.Combinations = append(w.Combinations, coll.combinations...)
	return w, nil
}

func compileNode(raw rawNode) (*world.Node, error) {
	node := &world.Node{
		ID:          raw.id,
		Description: getString(raw.table, "description"),
		Attributes:  tableToStringMap(getTable(raw.table, "attributes")),
	}

	items, err := tableToStrings(getTable(raw.table, "items"))
	if err != nil {
		return nil, fmt.Errorf("items: %w", err)
	}
	node.Items = items

	if edges := getTable(raw.table, "edges"); edges != nil {
		for i := 1; i <= edges.MaxN(); i++ {
			tbl, ok := edges.RawGetInt(i).(*lua.LTable)
			if !ok {
				return nil, fmt.Errorf("edge %d is not a table", i)
			}
			edge, err := compileEdge(tbl)
			if err != nil {
				return nil, fmt.Errorf("edge %d: %w", i, err)
			}
			node.Edges = append(node.Edges, edge)
		}
	}
	return node, nil
}

func compileEdge(tbl *lua.LTable) (world.Edge, error) {
	edge := world.Edge{
		Target: getString(tbl, "target"),
		Label:  getString(tbl, "label"),
	}
	if edge.Target == "" {
		return world.Edge{}, fmt.Errorf("missing target")
	}
	conds, err := compileConditions(getTable(tbl, "conditions"))
	if err != nil {
		return world.Edge{}, err
	}
	edge.Conditions = conds
	return edge, nil
}

// compileConditions converts a Lua array of condition tables to conditions.
func compileConditions(tbl *lua.LTable) ([]world.Condition, error) {
	if tbl == nil {
		return nil, nil
	}
	var conds []world.Condition
	for i := 1; i <= tbl.MaxN(); i++ {
		ct, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("condition %d is not a table", i)
		}
		c, err := compileCondition(ct)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		conds = append(conds, c)
	}
	return conds, nil
}

func compileCondition(tbl *lua.LTable) (world.Condition, error) {
	switch typ := getString(tbl, "type"); typ {
	case world.TagHasItem:
		return world.HasItem{Item: getString(tbl, "item")}, nil
	case world.TagHasAttribute:
		return world.HasAttribute{Key: getString(tbl, "key"), Value: getString(tbl, "value")}, nil
	case world.TagMinHP:
		return world.MinHP{HP: getInt(tbl, "hp")}, nil
	default:
		return nil, fmt.Errorf("%w: unknown condition type %q", world.ErrMalformedCondition, typ)
	}
}

func compileItem(raw rawItem) world.Item {
	name := getString(raw.table, "name")
	if name == "" {
		name = raw.id
	}
	return world.Item{
		ID:          raw.id,
		Name:        name,
		Description: getString(raw.table, "description"),
		CanPickup:   getBool(raw.table, "can_pickup", true),
	}
}

// sortedLuaFiles returns world.lua first, then the rest alphabetically.
func sortedLuaFiles(files []string) []string {
	var worldFile string
	var others []string
	for _, f := range files {
		if f == "world.lua" {
			worldFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if worldFile != "" {
		return append([]string{worldFile}, others...)
	}
	return others
}
