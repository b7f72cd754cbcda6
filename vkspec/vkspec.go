/*
Copyright 2026 The goARRG Authors.

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

// Package vkspec parses the Khronos Vulkan XML registry into a plain data
// model the generator can walk without caring about XML.
package vkspec

import "strings"

type Category string

const (
	CategoryNone        Category = ""
	CategoryInclude     Category = "include"
	CategoryDefine      Category = "define"
	CategoryBaseType    Category = "basetype"
	CategoryHandle      Category = "handle"
	CategoryBitmask     Category = "bitmask"
	CategoryEnum        Category = "enum"
	CategoryFuncPointer Category = "funcpointer"
	CategoryStruct      Category = "struct"
	CategoryUnion       Category = "union"
)

type Platform struct {
	Name    string
	Protect string
}

type Tag struct {
	Name    string
	Author  string
	Contact string
}

// Param is a command parameter, func pointer parameter or struct/union
// member. CType/CName hold the declaration exactly as it must appear in C,
// TypeName/Name hold the bare identifiers used for lookups.
type Param struct {
	CType      string
	TypeName   string
	CName      string
	Name       string
	ArrayEnum  string
	Values     string
	Optional   string
	ExternSync string
	Len        string
}

type FuncPointer struct {
	ReturnType string
	Params     []Param
}

type Type struct {
	Name        string
	Category    Category
	Alias       string
	Requires    string
	Bitvalues   string
	Parent      string
	TypeName    string
	Verbatim    string
	FuncPointer *FuncPointer
	Members     []Param
}

type EnumValue struct {
	Name   string
	Alias  string
	Value  string
	BitPos string
}

// EnumGroup is one <enums> block. Kind is "enum", "bitmask" or "" for the
// constants blocks that turn into one #define per value.
type EnumGroup struct {
	Name   string
	Kind   string
	Values []EnumValue
}

type Command struct {
	Name         string
	Alias        string
	ReturnType   string
	Params       []Param
	SuccessCodes string
	ErrorCodes   string
}

// RequireEnum is an <enum> inside a <require> block. It either references an
// existing constant, defines a new one, or extends an enum group.
type RequireEnum struct {
	Name      string
	Alias     string
	Value     string
	Extends   string
	BitPos    string
	ExtNumber string
	Offset    string
	Dir       string
}

type Require struct {
	Feature   string
	Extension string
	Types     []string
	Enums     []RequireEnum
	Commands  []string
}

type Feature struct {
	API      string
	Name     string
	Number   string
	Requires []Require
}

type Extension struct {
	Name         string
	Number       string
	Kind         string
	Platform     string
	Supported    string
	PromotedTo   string
	DeprecatedBy string
	Requires     []Require
}

type Registry struct {
	Platforms  []Platform
	Tags       []Tag
	Types      []Type
	Enums      []EnumGroup
	Commands   []Command
	Features   []Feature
	Extensions []Extension

	typeIndex    map[string]int
	enumIndex    map[string]int
	commandIndex map[string]int
}

// The registry declares api variants of the same name, e.g. a vulkan and a
// vulkansc definition of VK_HEADER_VERSION. The first declaration wins.
func (r *Registry) buildIndex() {
	r.typeIndex = make(map[string]int, len(r.Types))
	for i := range r.Types {
		if _, ok := r.typeIndex[r.Types[i].Name]; !ok {
			r.typeIndex[r.Types[i].Name] = i
		}
	}
	r.enumIndex = make(map[string]int, len(r.Enums))
	for i := range r.Enums {
		if _, ok := r.enumIndex[r.Enums[i].Name]; !ok {
			r.enumIndex[r.Enums[i].Name] = i
		}
	}
	r.commandIndex = make(map[string]int, len(r.Commands))
	for i := range r.Commands {
		if _, ok := r.commandIndex[r.Commands[i].Name]; !ok {
			r.commandIndex[r.Commands[i].Name] = i
		}
	}
}

func (r *Registry) TypeByName(name string) *Type {
	if i, ok := r.typeIndex[name]; ok {
		return &r.Types[i]
	}
	return nil
}

func (r *Registry) EnumByName(name string) *EnumGroup {
	if i, ok := r.enumIndex[name]; ok {
		return &r.Enums[i]
	}
	return nil
}

func (r *Registry) CommandByName(name string) *Command {
	if i, ok := r.commandIndex[name]; ok {
		return &r.Commands[i]
	}
	return nil
}

// TagOf returns the vendor tag suffixing name, or "" if name carries none.
func (r *Registry) TagOf(name string) string {
	for _, t := range r.Tags {
		if strings.HasSuffix(name, t.Name) {
			return t.Name
		}
	}
	return ""
}

// EnumValueByName finds the concrete definition of an enum constant,
// following alias chains. It searches the enum groups first, then values
// introduced by feature and extension require blocks.
func (r *Registry) EnumValueByName(name string) (EnumValue, bool) {
	seen := map[string]bool{}
	for !seen[name] {
		seen[name] = true
		v, ok := r.findEnumValue(name)
		if !ok {
			return EnumValue{}, false
		}
		if v.Alias == "" {
			return v, true
		}
		name = v.Alias
	}
	return EnumValue{}, false
}

func (r *Registry) findEnumValue(name string) (EnumValue, bool) {
	for i := range r.Enums {
		for _, v := range r.Enums[i].Values {
			if v.Name == name {
				return v, true
			}
		}
	}
	findRequired := func(requires []Require) (EnumValue, bool) {
		for _, req := range requires {
			for _, e := range req.Enums {
				if e.Name == name {
					return EnumValue{
						Name:   e.Name,
						Alias:  e.Alias,
						Value:  e.Value,
						BitPos: e.BitPos,
					}, true
				}
			}
		}
		return EnumValue{}, false
	}
	for i := range r.Features {
		if v, ok := findRequired(r.Features[i].Requires); ok {
			return v, true
		}
	}
	for i := range r.Extensions {
		if v, ok := findRequired(r.Extensions[i].Requires); ok {
			return v, true
		}
	}
	return EnumValue{}, false
}

// IsDescendantOf reports whether the handle named child transitively has the
// handle named parent as an ancestor. A type is never its own descendant.
func (r *Registry) IsDescendantOf(parent, child string) bool {
	seen := map[string]bool{}
	for child != parent && !seen[child] {
		seen[child] = true
		t := r.TypeByName(child)
		if t == nil || t.Category != CategoryHandle {
			return false
		}
		if t.Parent == parent {
			return true
		}
		child = t.Parent
	}
	return false
}
