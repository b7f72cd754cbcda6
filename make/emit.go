/*
Copyright 2025 The goARRG Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package vkbind

import (
	"fmt"
	"strconv"
	"strings"

	"goarrg.com/lib/vkbind/vkspec"
)

// generator threads the emit-once bookkeeping through the whole main block:
// each define, type and command is emitted by whichever feature or extension
// requires it first, later requesters see it already declared.
type generator struct {
	reg           *vkspec.Registry
	featureDeps   []*depSet
	extensionDeps []*depSet
	defines       map[string]bool
	types         map[string]bool
	commands      map[string]bool
}

func newGenerator(reg *vkspec.Registry) *generator {
	reorderExtensions(reg)

	g := &generator{
		reg:      reg,
		defines:  map[string]bool{},
		types:    map[string]bool{},
		commands: map[string]bool{},
	}
	for i := range reg.Features {
		g.featureDeps = append(g.featureDeps, featureDeps(reg, &reg.Features[i]))
	}
	for i := range reg.Extensions {
		g.extensionDeps = append(g.extensionDeps, extensionDeps(reg, &reg.Extensions[i]))
	}
	return g
}

// emitMain produces the whole declaration block: features first, then
// extensions without a platform, then the platform-specific extensions each
// wrapped in their platform's guard macro.
func (g *generator) emitMain(b *strings.Builder) {
	for i := range g.reg.Features {
		g.emitFeature(b, i)
	}

	for i := range g.reg.Extensions {
		if g.reg.Extensions[i].Platform == "" {
			g.emitExtension(b, i)
		}
	}

	for _, p := range g.reg.Platforms {
		b.WriteString("#ifdef " + p.Protect + "\n")
		// Platform includes go first inside the guard, before any extension
		// content.
		for i := range g.reg.Extensions {
			if g.reg.Extensions[i].Platform == p.Name {
				g.emitIncludes(b, g.extensionDeps[i])
			}
		}
		for i := range g.reg.Extensions {
			if g.reg.Extensions[i].Platform == p.Name {
				g.emitExtension(b, i)
			}
		}
		b.WriteString("#endif /*" + p.Protect + "*/\n\n")
	}
}

func (g *generator) emitFeature(b *strings.Builder, i int) {
	f := &g.reg.Features[i]
	b.WriteString("\n#define " + f.Name + " 1\n")
	g.emitIncludes(b, g.featureDeps[i])
	for _, req := range f.Requires {
		g.emitRequireDefines(b, req)
	}
	b.WriteString("\n")
	g.emitDependencies(b, g.featureDeps[i])
	for _, req := range f.Requires {
		g.emitRequireCommands(b, req.Commands)
	}
}

func (g *generator) emitExtension(b *strings.Builder, i int) {
	e := &g.reg.Extensions[i]
	b.WriteString("\n#define " + e.Name + " 1\n")
	g.emitIncludes(b, g.extensionDeps[i])
	for _, req := range e.Requires {
		g.emitRequireDefines(b, req)
	}
	b.WriteString("\n")
	g.emitDependencies(b, g.extensionDeps[i])
	for _, req := range e.Requires {
		g.emitRequireCommands(b, req.Commands)
	}
}

func (g *generator) emitIncludes(b *strings.Builder, deps *depSet) {
	for _, name := range deps.types {
		// The generated header must not depend on vk_platform.h.
		if name == "vk_platform" {
			continue
		}
		t := g.reg.TypeByName(name)
		if t.Category == vkspec.CategoryInclude && !g.types[t.Name] {
			b.WriteString("#include <" + t.Name + ">\n")
			g.types[t.Name] = true
		}
	}
}

// emitRequireDefines handles constants declared directly inside a require
// block with an explicit value, like VK_KHR_SURFACE_SPEC_VERSION.
func (g *generator) emitRequireDefines(b *strings.Builder, req vkspec.Require) {
	for _, e := range req.Enums {
		if e.Value == "" || e.Extends != "" {
			continue
		}
		if e.Alias != "" {
			b.WriteString("#define " + e.Name + " " + e.Alias + "\n")
		} else {
			b.WriteString("#define " + e.Name + " " + e.Value + "\n")
		}
		g.defines[e.Name] = true
	}
}

// forEachExtendingEnum visits the require enums of every feature and then
// every extension that extend groupName, direct values or aliases depending
// on aliased. extNumber is the number to use for offset arithmetic.
func (g *generator) forEachExtendingEnum(groupName string, aliased bool, fn func(e vkspec.RequireEnum, extNumber string)) {
	visit := func(requires []vkspec.Require, number string) {
		for _, req := range requires {
			for _, e := range req.Enums {
				if e.Extends != groupName || (e.Alias != "") != aliased {
					continue
				}
				extNumber := e.ExtNumber
				if extNumber == "" {
					extNumber = number
				}
				fn(e, extNumber)
			}
		}
	}
	for i := range g.reg.Features {
		visit(g.reg.Features[i].Requires, "")
	}
	for i := range g.reg.Extensions {
		visit(g.reg.Extensions[i].Requires, g.reg.Extensions[i].Number)
	}
}

// emitFlagBits writes the enum group backing a bitmask type. 32-bit flag
// groups become a C enum pinned with a _MAX_ENUM value, 64-bit groups cannot
// be enums so they become a typedef plus static const values with aliases
// evaluated to literals.
func (g *generator) emitFlagBits(b *strings.Builder, t *vkspec.Type) bool {
	groupName := t.Requires
	if groupName == "" {
		groupName = t.Bitvalues
	}
	grp := g.reg.EnumByName(groupName)
	if grp == nil {
		return false
	}

	use64 := t.Bitvalues != ""
	emitted := map[string]bool{}
	count := 0
	var prefix string

	b.WriteString("\n")
	if use64 {
		b.WriteString("typedef " + t.TypeName + " " + grp.Name + ";\n")
		prefix = "static const " + grp.Name + " "
	} else {
		b.WriteString("typedef enum\n{\n")
		prefix = "    "
	}

	writeValue := func(name, rhs string) {
		if !use64 && count > 0 {
			b.WriteString(",\n")
		}
		b.WriteString(prefix + name + " = " + rhs)
		if use64 {
			b.WriteString(";\n")
		}
		emitted[name] = true
		count++
	}

	for _, v := range grp.Values {
		ev := vkspec.EnumValue{Name: v.Name, Alias: v.Alias, Value: v.Value, BitPos: v.BitPos}
		if use64 && v.Alias != "" {
			// static const initializers cannot reference other static
			// consts portably, resolve the alias to its literal.
			if found, ok := g.reg.EnumValueByName(v.Alias); ok {
				ev = found
			}
		}
		switch {
		case ev.BitPos != "":
			pos, _ := strconv.Atoi(ev.BitPos)
			writeValue(v.Name, bitPosValue(pos, grp.Name))
		case ev.Alias != "":
			writeValue(v.Name, ev.Alias)
		default:
			writeValue(v.Name, ev.Value)
		}
	}

	g.forEachExtendingEnum(grp.Name, false, func(e vkspec.RequireEnum, _ string) {
		if emitted[e.Name] {
			return
		}
		if e.BitPos != "" {
			pos, _ := strconv.Atoi(e.BitPos)
			writeValue(e.Name, bitPosValue(pos, e.Extends))
		} else {
			writeValue(e.Name, e.Value)
		}
	})

	g.forEachExtendingEnum(grp.Name, true, func(e vkspec.RequireEnum, _ string) {
		if emitted[e.Name] {
			return
		}
		if !use64 {
			writeValue(e.Name, e.Alias)
			return
		}
		if found, ok := g.reg.EnumValueByName(e.Alias); ok {
			if found.BitPos != "" {
				pos, _ := strconv.Atoi(found.BitPos)
				writeValue(e.Name, bitPosValue(pos, e.Extends))
			} else {
				writeValue(e.Name, found.Value)
			}
		} else {
			writeValue(e.Name, e.Alias)
		}
	})

	if !use64 {
		if count > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("    " + maxEnumToken(g.reg, grp.Name) + " = 0x7FFFFFFF")
		b.WriteString("\n} " + grp.Name + ";\n")
	}
	return true
}

// emitEnum writes a plain enum type, extended in two passes so that values
// aliased in by features and extensions group at the bottom.
func (g *generator) emitEnum(b *strings.Builder, t *vkspec.Type) bool {
	grp := g.reg.EnumByName(t.Name)
	if grp == nil || grp.Kind != "enum" {
		return false
	}

	emitted := map[string]bool{}

	b.WriteString("typedef enum\n{\n")
	for i, v := range grp.Values {
		if i > 0 {
			b.WriteString(",\n")
		}
		if v.Alias != "" {
			b.WriteString("    " + v.Name + " = " + v.Alias)
		} else {
			b.WriteString("    " + v.Name + " = " + v.Value)
		}
		emitted[v.Name] = true
	}

	g.forEachExtendingEnum(grp.Name, false, func(e vkspec.RequireEnum, extNumber string) {
		if emitted[e.Name] {
			return
		}
		b.WriteString(",\n")
		if e.Value != "" {
			b.WriteString("    " + e.Name + " = " + e.Value)
		} else {
			b.WriteString("    " + e.Name + " = " + extensionEnumValue(e, extNumber))
		}
		emitted[e.Name] = true
	})

	g.forEachExtendingEnum(grp.Name, true, func(e vkspec.RequireEnum, _ string) {
		if emitted[e.Name] {
			return
		}
		b.WriteString(",\n")
		b.WriteString("    " + e.Name + " = " + e.Alias)
		emitted[e.Name] = true
	})

	b.WriteString(",\n")
	b.WriteString("    " + maxEnumToken(g.reg, grp.Name) + " = 0x7FFFFFFF")
	b.WriteString("\n} " + grp.Name + ";\n\n")
	return true
}

// emitDependencies writes everything a feature or extension depends on that
// has not been emitted yet, grouped by category: defines, constants,
// basetypes, handles, bitmasks and enums, then structs, unions and function
// pointers together since those two can reference each other.
func (g *generator) emitDependencies(b *strings.Builder, deps *depSet) {
	count := 0
	for _, name := range deps.types {
		t := g.reg.TypeByName(name)
		if t.Category != vkspec.CategoryDefine || g.defines[t.Name] {
			continue
		}
		if v := cleanDefineValue(t.Verbatim); v != "" {
			b.WriteString(v + "\n")
			count++
			g.defines[t.Name] = true
		}
	}
	if count > 0 {
		b.WriteString("\n")
	}

	count = 0
	for _, name := range deps.enums {
		grp := g.reg.EnumByName(name)
		if grp.Kind != "" || len(grp.Values) == 0 || g.defines[grp.Values[0].Name] {
			continue
		}
		v := grp.Values[0]
		if v.Alias != "" {
			b.WriteString("#define " + v.Name + " " + v.Alias + "\n")
		} else {
			b.WriteString("#define " + v.Name + " " + v.Value + "\n")
		}
		count++
		g.defines[v.Name] = true
	}
	if count > 0 {
		b.WriteString("\n")
	}

	count = 0
	for _, name := range deps.types {
		t := g.reg.TypeByName(name)
		if t.Category != vkspec.CategoryBaseType || g.types[t.Name] {
			continue
		}
		b.WriteString(t.Verbatim + "\n")
		count++
		g.types[t.Name] = true
	}
	if count > 0 {
		b.WriteString("\n")
	}

	count = 0
	for _, name := range deps.types {
		t := g.reg.TypeByName(name)
		if t.Category != vkspec.CategoryHandle || g.types[t.Name] {
			continue
		}
		if t.Alias != "" {
			b.WriteString("typedef " + t.Alias + " " + t.Name + ";\n")
		} else {
			b.WriteString(t.TypeName + "(" + t.Name + ")\n")
			count++
		}
		g.types[t.Name] = true
	}
	if count > 0 {
		b.WriteString("\n")
	}

	// Bitmask and enum types share one pass because an alias of either kind
	// may be typed differently to its target.
	count = 0
	for _, name := range deps.types {
		t := g.reg.TypeByName(name)
		if (t.Category != vkspec.CategoryBitmask && t.Category != vkspec.CategoryEnum) || g.types[t.Name] {
			continue
		}
		if t.Alias != "" {
			b.WriteString("typedef " + t.Alias + " " + t.Name + ";\n")
		} else if t.Category == vkspec.CategoryBitmask {
			if t.Requires != "" || t.Bitvalues != "" {
				if g.emitFlagBits(b, t) {
					count++
				}
			}
			b.WriteString("typedef " + t.TypeName + " " + t.Name + ";\n")
		} else {
			if g.emitEnum(b, t) {
				count++
			}
		}
		g.types[t.Name] = true
	}
	if count > 0 {
		b.WriteString("\n")
	}

	wasFuncPointer := false
	count = 0
	for _, name := range deps.types {
		t := g.reg.TypeByName(name)
		if g.types[t.Name] {
			continue
		}
		switch t.Category {
		case vkspec.CategoryStruct, vkspec.CategoryUnion:
			if t.Alias != "" {
				b.WriteString("typedef " + t.Alias + " " + t.Name + ";\n\n")
			} else {
				if wasFuncPointer {
					b.WriteString("\n")
				}
				b.WriteString("typedef " + string(t.Category) + " " + t.Name + "\n{\n")
				for _, m := range t.Members {
					b.WriteString("    " + m.CType + " " + m.CName + ";\n")
				}
				b.WriteString("} " + t.Name + ";\n\n")
				count++
			}
			g.types[t.Name] = true
			wasFuncPointer = false

		case vkspec.CategoryFuncPointer:
			if t.Alias != "" {
				// Cannot typedef the alias since the target may be fenced
				// behind VK_ENABLE_BETA_EXTENSIONS, redeclare in full.
				if base := g.reg.TypeByName(t.Alias); base != nil && base.FuncPointer != nil {
					emitFunction(b, base.FuncPointer.ReturnType, t.Name, base.FuncPointer.Params)
					count++
				}
			} else if t.FuncPointer != nil {
				emitFunction(b, t.FuncPointer.ReturnType, t.Name, t.FuncPointer.Params)
				count++
			}
			g.types[t.Name] = true
			wasFuncPointer = true
		}
	}
	if count > 0 {
		b.WriteString("\n")
	}
}

func emitFunction(b *strings.Builder, returnType, name string, params []vkspec.Param) {
	prefix := ""
	if !strings.Contains(name, "PFN_") {
		prefix = "PFN_"
	}
	b.WriteString("typedef " + returnType + " (VKAPI_PTR *" + prefix + name + ")(")
	if len(params) == 0 {
		b.WriteString("void")
	} else {
		for i, p := range params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.CType + " " + p.CName)
		}
	}
	b.WriteString(");\n")
}

func (g *generator) emitRequireCommands(b *strings.Builder, commands []string) {
	for _, name := range commands {
		cmd := g.reg.CommandByName(name)
		if cmd == nil || g.commands[cmd.Name] {
			continue
		}
		if cmd.Alias != "" {
			// Same beta extension fencing problem as funcpointer aliases,
			// redeclare in full under the alias name.
			if base := g.reg.CommandByName(cmd.Alias); base != nil {
				emitFunction(b, base.ReturnType, cmd.Name, base.Params)
			}
		} else {
			emitFunction(b, cmd.ReturnType, cmd.Name, cmd.Params)
		}
		g.commands[cmd.Name] = true
	}
}

// eachRequiredCommand visits every required command in a stable order:
// features, platformless extensions, then per-platform extensions bracketed
// by #ifdef guards written to b. The visit callback does its own
// deduplication and filtering.
func (g *generator) eachRequiredCommand(b *strings.Builder, includeExtensions bool, visit func(cmd *vkspec.Command)) {
	walk := func(requires []vkspec.Require) {
		for _, req := range requires {
			for _, name := range req.Commands {
				if cmd := g.reg.CommandByName(name); cmd != nil {
					visit(cmd)
				}
			}
		}
	}

	for i := range g.reg.Features {
		walk(g.reg.Features[i].Requires)
	}
	if !includeExtensions {
		return
	}
	for i := range g.reg.Extensions {
		if g.reg.Extensions[i].Platform == "" {
			walk(g.reg.Extensions[i].Requires)
		}
	}
	for _, p := range g.reg.Platforms {
		b.WriteString("\n#ifdef " + p.Protect)
		for i := range g.reg.Extensions {
			if g.reg.Extensions[i].Platform == p.Name {
				walk(g.reg.Extensions[i].Requires)
			}
		}
		b.WriteString("\n#endif /*" + p.Protect + "*/")
	}
}

func (g *generator) isDeviceLevel(cmd *vkspec.Command) bool {
	return g.firstParamDescendsFrom(cmd, "VkDevice")
}

func (g *generator) isInstanceLevel(cmd *vkspec.Command) bool {
	return g.firstParamDescendsFrom(cmd, "VkInstance")
}

func (g *generator) firstParamDescendsFrom(cmd *vkspec.Command, root string) bool {
	seen := map[string]bool{}
	for cmd.Alias != "" && !seen[cmd.Name] {
		seen[cmd.Name] = true
		base := g.reg.CommandByName(cmd.Alias)
		if base == nil {
			return false
		}
		cmd = base
	}
	if len(cmd.Params) == 0 {
		return false
	}
	t := cmd.Params[0].TypeName
	return t == root || g.reg.IsDescendantOf(root, t)
}

func (g *generator) emitGlobalProcDecls(b *strings.Builder, indent int, prefix string) {
	pad := strings.Repeat(" ", indent)
	seen := map[string]bool{}
	g.eachRequiredCommand(b, true, func(cmd *vkspec.Command) {
		if seen[cmd.Name] {
			return
		}
		if len(seen) > 0 {
			b.WriteString("\n" + pad)
		}
		fmt.Fprintf(b, "%sPFN_%s %s;", prefix, cmd.Name, cmd.Name)
		seen[cmd.Name] = true
	})
}

func (g *generator) emitLoadGlobalProcs(b *strings.Builder) {
	seen := map[string]bool{}
	g.eachRequiredCommand(b, true, func(cmd *vkspec.Command) {
		if seen[cmd.Name] {
			return
		}
		if len(seen) > 0 {
			b.WriteString("\n    ")
		}
		fmt.Fprintf(b, "%s = (PFN_%s)vkb_dlsym(g_vkbVulkanSO, \"%s\");", cmd.Name, cmd.Name, cmd.Name)
		seen[cmd.Name] = true
	})
}

func (g *generator) emitSetStructFromGlobal(b *strings.Builder) {
	seen := map[string]bool{}
	g.eachRequiredCommand(b, true, func(cmd *vkspec.Command) {
		if seen[cmd.Name] {
			return
		}
		if len(seen) > 0 {
			b.WriteString("\n        ")
		}
		fmt.Fprintf(b, "pAPI->%s = %s;", cmd.Name, cmd.Name)
		seen[cmd.Name] = true
	})
}

func (g *generator) emitSetGlobalFromStruct(b *strings.Builder) {
	seen := map[string]bool{}
	g.eachRequiredCommand(b, true, func(cmd *vkspec.Command) {
		if seen[cmd.Name] {
			return
		}
		if len(seen) > 0 {
			b.WriteString("\n    ")
		}
		fmt.Fprintf(b, "%s = pAPI->%s;", cmd.Name, cmd.Name)
		seen[cmd.Name] = true
	})
}

func (g *generator) emitLoadInstanceAPI(b *strings.Builder) {
	// vkGetInstanceProcAddr is pre-seeded, the loader obtains it before
	// this block runs.
	seen := map[string]bool{"vkGetInstanceProcAddr": true}
	g.eachRequiredCommand(b, true, func(cmd *vkspec.Command) {
		if seen[cmd.Name] {
			return
		}
		if len(seen) > 1 {
			b.WriteString("\n    ")
		}
		fmt.Fprintf(b, "pAPI->%s = (PFN_%s)vkGetInstanceProcAddr(instance, \"%s\");", cmd.Name, cmd.Name, cmd.Name)
		seen[cmd.Name] = true
	})
}

func (g *generator) emitLoadDeviceAPI(b *strings.Builder) {
	seen := map[string]bool{"vkGetDeviceProcAddr": true}
	g.eachRequiredCommand(b, true, func(cmd *vkspec.Command) {
		if seen[cmd.Name] || !g.isDeviceLevel(cmd) {
			return
		}
		if len(seen) > 1 {
			b.WriteString("\n    ")
		}
		fmt.Fprintf(b, "pAPI->%s = (PFN_%s)pAPI->vkGetDeviceProcAddr(device, \"%s\");", cmd.Name, cmd.Name, cmd.Name)
		seen[cmd.Name] = true
	})
}

// emitLoadSafeGlobalAPI loads only commands that work with a NULL instance,
// so everything except instance-level commands, and only from core features.
func (g *generator) emitLoadSafeGlobalAPI(b *strings.Builder) {
	seen := map[string]bool{"vkGetInstanceProcAddr": true}
	g.eachRequiredCommand(b, false, func(cmd *vkspec.Command) {
		if seen[cmd.Name] || g.isInstanceLevel(cmd) {
			return
		}
		if len(seen) > 1 {
			b.WriteString("\n    ")
		}
		fmt.Fprintf(b, "%s = (PFN_%s)vkGetInstanceProcAddr(NULL, \"%s\");", cmd.Name, cmd.Name, cmd.Name)
		seen[cmd.Name] = true
	})
}

// emitSafeGlobalDocs lists, per core version, the commands safe to call
// before vkbInitInstanceAPI. Meant for the header's doc comment.
func (g *generator) emitSafeGlobalDocs(b *strings.Builder) {
	for i := range g.reg.Features {
		f := &g.reg.Features[i]
		seen := map[string]bool{}
		b.WriteString("\nVulkan " + f.Number + "\n")

		if f.Number == "1.0" {
			b.WriteString("    vkGetInstanceProcAddr")
			seen["vkGetInstanceProcAddr"] = true
		}

		for _, req := range f.Requires {
			for _, name := range req.Commands {
				cmd := g.reg.CommandByName(name)
				if cmd == nil || seen[cmd.Name] || g.isInstanceLevel(cmd) {
					continue
				}
				if len(seen) == 0 {
					b.WriteString("    ")
				} else {
					b.WriteString("\n    ")
				}
				b.WriteString(cmd.Name)
				seen[cmd.Name] = true
			}
		}
	}
}
