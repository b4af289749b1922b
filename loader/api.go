package loader

import (
	"github.com/nathoo/dotiam/engine/world"
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// World { title = "...", start = "..." }
	L.SetGlobal("World", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.world = tbl
		return 0
	}))

	// Node "id" { ... } is curried: Node("id") returns a function that takes a table.
	L.SetGlobal("Node", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.nodes = append(coll.nodes, rawNode{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// Item "id" { ... }, curried.
	L.SetGlobal("Item", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.items = append(coll.items, rawItem{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// Edge "target" { label = "...", conditions = {...} } is curried and returns
	// the table with the target filled in so it can sit in a node's edges list.
	L.SetGlobal("Edge", L.NewFunction(func(L *lua.LState) int {
		target := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.OptTable(1, L.NewTable())
			tbl.RawSetString("target", lua.LString(target))
			L.Push(tbl)
			return 1
		}))
		return 1
	}))

	// Combine("item1", "item2", "result")
	L.SetGlobal("Combine", L.NewFunction(func(L *lua.LState) int {
		coll.combinations = append(coll.combinations, world.Combination{
			Item1:  L.CheckString(1),
			Item2:  L.CheckString(2),
			Result: L.CheckString(3),
		})
		return 0
	}))
}

func registerConditionHelpers(L *lua.LState) {
	// HasItem("torch")
	L.SetGlobal("HasItem", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString(world.TagHasItem))
		tbl.RawSetString("item", lua.LString(item))
		L.Push(tbl)
		return 1
	}))

	// HasAttribute("class", "mage")
	L.SetGlobal("HasAttribute", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(1)
		value := L.CheckString(2)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString(world.TagHasAttribute))
		tbl.RawSetString("key", lua.LString(key))
		tbl.RawSetString("value", lua.LString(value))
		L.Push(tbl)
		return 1
	}))

	// MinHP(10)
	L.SetGlobal("MinHP", L.NewFunction(func(L *lua.LState) int {
		hp := L.CheckInt(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString(world.TagMinHP))
		tbl.RawSetString("hp", lua.LNumber(hp))
		L.Push(tbl)
		return 1
	}))
}
