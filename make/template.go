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
	"regexp"
	"strings"

	"goarrg.com/debug"
	"goarrg.com/lib/vkbind/vkspec"
)

// placeholderRE matches any template placeholder, substituted or not. The
// generated C never produces "<<name>>" on its own, shift expressions always
// carry spaces.
var placeholderRE = regexp.MustCompile(`<<[A-Za-z_][A-Za-z0-9_:]*>>`)

// generate stitches the generated code into the template by exact substring
// replacement of each placeholder. A placeholder left in the output, known
// or not, is an error: a stale template must fail loudly, not ship tokens.
func generate(reg *vkspec.Registry, template, previous string) (string, error) {
	g := newGenerator(reg)

	blocks := []struct {
		tag  string
		emit func(*strings.Builder)
	}{
		{"/*<<vulkan_main>>*/", g.emitMain},
		{"/*<<vulkan_funcpointers_decl_global>>*/", func(b *strings.Builder) { g.emitGlobalProcDecls(b, 0, "") }},
		{"/*<<vulkan_funcpointers_decl_global:4>>*/", func(b *strings.Builder) { g.emitGlobalProcDecls(b, 4, "") }},
		{"/*<<vulkan_funcpointers_decl_global:extern>>*/", func(b *strings.Builder) { g.emitGlobalProcDecls(b, 0, "extern ") }},
		{"/*<<load_global_api_funcpointers>>*/", g.emitLoadGlobalProcs},
		{"/*<<set_struct_api_from_global>>*/", g.emitSetStructFromGlobal},
		{"/*<<set_global_api_from_struct>>*/", g.emitSetGlobalFromStruct},
		{"/*<<load_instance_api>>*/", g.emitLoadInstanceAPI},
		{"/*<<load_device_api>>*/", g.emitLoadDeviceAPI},
		{"/*<<load_safe_global_api>>*/", g.emitLoadSafeGlobalAPI},
		{"<<safe_global_api_docs>>", g.emitSafeGlobalDocs},
		{"<<vulkan_version>>", func(b *strings.Builder) { b.WriteString(vulkanVersion(reg)) }},
		{"<<revision>>", func(b *strings.Builder) { b.WriteString(revision(reg, previous)) }},
	}

	out := template
	for _, block := range blocks {
		var b strings.Builder
		block.emit(&b)
		out = strings.ReplaceAll(out, block.tag, b.String())
	}

	if leftover := placeholderRE.FindString(out); leftover != "" {
		return "", debug.ErrorWrapf(ErrTemplate, "unresolved placeholder %q", leftover)
	}

	return out, nil
}
