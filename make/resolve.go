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
	"slices"

	"goarrg.com/lib/vkbind/vkspec"
)

// depSet accumulates the types and enum groups one feature or extension
// depends on, ordered so that every entry precedes its first dependent.
// Names the registry never declares resolve to nothing and are dropped,
// that is how platform types like Display or HWND stay out of the header.
type depSet struct {
	types     []string
	enums     []string
	seenTypes map[string]bool
	seenEnums map[string]bool
}

func newDepSet() *depSet {
	return &depSet{
		seenTypes: map[string]bool{},
		seenEnums: map[string]bool{},
	}
}

func (d *depSet) addEnum(reg *vkspec.Registry, name string) {
	if reg.EnumByName(name) == nil || d.seenEnums[name] {
		return
	}
	d.seenEnums[name] = true
	d.enums = append(d.enums, name)
}

// typeDeps returns the names a type references, in declaration order. The
// alias target always comes first so aliases are declared after what they
// alias.
func typeDeps(d *depSet, reg *vkspec.Registry, t *vkspec.Type) []string {
	var deps []string
	if t.Alias != "" {
		deps = append(deps, t.Alias)
	}
	switch t.Category {
	case vkspec.CategoryDefine, vkspec.CategoryBaseType, vkspec.CategoryBitmask,
		vkspec.CategoryHandle, vkspec.CategoryEnum:
		if t.TypeName != "" {
			deps = append(deps, t.TypeName)
		}
		if t.Requires != "" {
			deps = append(deps, t.Requires)
		}
		if t.Bitvalues != "" {
			deps = append(deps, t.Bitvalues)
		}
	case vkspec.CategoryStruct, vkspec.CategoryUnion:
		for _, m := range t.Members {
			if m.TypeName == t.Name {
				continue // self referential, e.g. via a pNext pointer
			}
			if m.ArrayEnum != "" {
				d.addEnum(reg, m.ArrayEnum)
			}
			deps = append(deps, m.TypeName)
		}
	case vkspec.CategoryFuncPointer:
		if t.FuncPointer != nil {
			deps = append(deps, t.FuncPointer.ReturnType)
			for _, p := range t.FuncPointer.Params {
				if p.ArrayEnum != "" {
					d.addEnum(reg, p.ArrayEnum)
				}
				deps = append(deps, p.TypeName)
			}
		}
	case vkspec.CategoryNone:
		if t.Requires != "" {
			deps = append(deps, t.Requires)
		}
		if t.Bitvalues != "" {
			deps = append(deps, t.Bitvalues)
		}
	}
	return deps
}

// addType walks the dependency graph of name depth first with an explicit
// work list, appending each type after everything it references. The
// inProgress set breaks cycles that are not plain self references.
func (d *depSet) addType(reg *vkspec.Registry, name string) {
	type frame struct {
		name     string
		expanded bool
	}
	stack := []frame{{name: name}}
	inProgress := map[string]bool{}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		t := reg.TypeByName(f.name)
		if t == nil {
			continue
		}
		if f.expanded {
			delete(inProgress, t.Name)
			if !d.seenTypes[t.Name] {
				d.seenTypes[t.Name] = true
				d.types = append(d.types, t.Name)
			}
			continue
		}
		if d.seenTypes[t.Name] || inProgress[t.Name] {
			continue
		}
		inProgress[t.Name] = true

		// The exit marker goes on first so it pops after all dependencies,
		// which go on in reverse to pop in declaration order.
		stack = append(stack, frame{name: t.Name, expanded: true})
		deps := typeDeps(d, reg, t)
		for i := len(deps) - 1; i >= 0; i-- {
			stack = append(stack, frame{name: deps[i]})
		}
	}
}

func (d *depSet) addCommand(reg *vkspec.Registry, name string) {
	cmd := reg.CommandByName(name)
	if cmd == nil {
		return
	}
	d.addType(reg, cmd.ReturnType)
	for _, p := range cmd.Params {
		d.addType(reg, p.TypeName)
	}
}

func (d *depSet) addRequire(reg *vkspec.Registry, req vkspec.Require) {
	for _, name := range req.Types {
		d.addType(reg, name)
	}
	for _, e := range req.Enums {
		d.addEnum(reg, e.Name)
	}
	for _, name := range req.Commands {
		d.addCommand(reg, name)
	}
}

func featureDeps(reg *vkspec.Registry, f *vkspec.Feature) *depSet {
	d := newDepSet()
	for _, req := range f.Requires {
		d.addRequire(reg, req)
	}
	return d
}

func extensionDeps(reg *vkspec.Registry, e *vkspec.Extension) *depSet {
	d := newDepSet()
	for _, req := range e.Requires {
		d.addRequire(reg, req)
	}
	return d
}

// reorderExtensions moves every promoted extension to sit immediately after
// the extension or feature it was promoted into, so its aliases always come
// after their targets. Promotions into core features resolve to no extension
// and stay put, core is emitted before any extension anyway.
func reorderExtensions(reg *vkspec.Registry) {
	var promoted []string
	for i := range reg.Extensions {
		if reg.Extensions[i].PromotedTo != "" {
			promoted = append(promoted, reg.Extensions[i].Name)
		}
	}

	indexOf := func(name string) int {
		return slices.IndexFunc(reg.Extensions, func(e vkspec.Extension) bool {
			return e.Name == name
		})
	}

	for _, name := range promoted {
		old := indexOf(name)
		if old < 0 || indexOf(reg.Extensions[old].PromotedTo) < 0 {
			continue
		}
		ext := reg.Extensions[old]
		reg.Extensions = slices.Delete(reg.Extensions, old, old+1)
		reg.Extensions = slices.Insert(reg.Extensions, indexOf(ext.PromotedTo)+1, ext)
	}
}
