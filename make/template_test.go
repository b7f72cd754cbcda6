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
	"errors"
	"strings"
	"testing"
)

const testTemplate = `/*
vkbind - v<<vulkan_version>>.<<revision>>
*/
/*<<vulkan_main>>*/

#ifndef VKBIND_NO_GLOBAL_API
/*<<vulkan_funcpointers_decl_global:extern>>*/
#endif

typedef struct {
    /*<<vulkan_funcpointers_decl_global:4>>*/
} VkbAPI;

#ifdef VKBIND_IMPLEMENTATION
/*<<vulkan_funcpointers_decl_global>>*/

static VkResult vkbLoadVulkanSymbols(VkbAPI* pAPI)
{
    /*<<load_global_api_funcpointers>>*/
    /*<<load_safe_global_api>>*/
    return VK_SUCCESS;
}
#endif
`

func TestGenerate(t *testing.T) {
	reg := parseTestRegistry(t)

	out, err := generate(reg, testTemplate, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if !strings.Contains(out, "vkbind - v1.1.99.0\n") {
		t.Error("version line not substituted")
	}
	if placeholderRE.MatchString(out) {
		t.Errorf("unresolved placeholder: %q", placeholderRE.FindString(out))
	}
	if !strings.Contains(out, "#define VK_VERSION_1_0 1") {
		t.Error("main block not substituted")
	}
	if !strings.Contains(out, "extern PFN_vkGetInstanceProcAddr vkGetInstanceProcAddr;") {
		t.Error("extern declarations not substituted")
	}
	if !strings.Contains(out, "    PFN_vkGetInstanceProcAddr vkGetInstanceProcAddr;\n    PFN_vkCreateInstance vkCreateInstance;") {
		t.Error("struct declarations not substituted with indentation")
	}
	if !strings.Contains(out, "vkb_dlsym(g_vkbVulkanSO, \"vkGetInstanceProcAddr\");") {
		t.Error("global loader block not substituted")
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	reg := parseTestRegistry(t)

	first, err := generate(reg, testTemplate, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := generate(reg, testTemplate, first)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if first != second {
		t.Error("regenerating from an unchanged registry must reproduce the same output")
	}
}

func TestGenerateRevisionResetsOnNewVersion(t *testing.T) {
	reg := parseTestRegistry(t)

	out, err := generate(reg, testTemplate, "vkbind - v1.0.77.9\n")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "vkbind - v1.1.99.0\n") {
		t.Error("revision must reset when the registry version moves")
	}
}

func TestGenerateUnresolvedPlaceholder(t *testing.T) {
	reg := parseTestRegistry(t)

	_, err := generate(reg, "/*<<vulkan_struct_initializers>>*/", "")
	if !errors.Is(err, ErrTemplate) {
		t.Errorf("got %v, want ErrTemplate", err)
	}
}
