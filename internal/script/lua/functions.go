// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package lua

import (
	"log/slog"
	"strings"

	"github.com/oklog/ulid/v2"
	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/periscope/internal/cost"
)

// GlobalName is the Lua global holding host functions.
const GlobalName = "periscope"

// registerFunctions installs print and the periscope table:
//
//	periscope.log(level, message)
//	periscope.new_id()         -- a fresh ULID string
//	periscope.quota()          -- used, remaining cost this tick
func registerFunctions(L *lua.LState, agent *Agent, handler *cost.Handler) {
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, L.GetTop())
		for i := range parts {
			parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
		}
		agent.logger.Info(strings.Join(parts, "\t"))
		return 0
	}))

	mod := L.NewTable()
	L.SetField(mod, "log", L.NewFunction(logFn(agent.logger)))
	L.SetField(mod, "new_id", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(ulid.Make().String()))
		return 1
	}))
	L.SetField(mod, "quota", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(handler.Used()))
		L.Push(lua.LNumber(handler.Remaining()))
		return 2
	}))
	L.SetGlobal(GlobalName, mod)
}

func logFn(logger *slog.Logger) lua.LGFunction {
	return func(L *lua.LState) int {
		level := L.CheckString(1)
		message := L.CheckString(2)

		switch level {
		case "debug":
			logger.Debug(message)
		case "warn":
			logger.Warn(message)
		case "error":
			logger.Error(message)
		default:
			logger.Info(message)
		}
		return 0
	}
}
