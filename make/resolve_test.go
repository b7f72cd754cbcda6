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
	"strings"
	"testing"

	"goarrg.com/lib/vkbind/vkspec"
)

func TestAddTypeOrdersDependenciesFirst(t *testing.T) {
	reg := parseTestRegistry(t)

	d := newDepSet()
	d.addType(reg, "VkSampleCountFlags")

	want := []string{"VkFlags", "VkSampleCountFlagBits", "VkSampleCountFlags"}
	if !slices.Equal(d.types, want) {
		t.Errorf("types: got %v, want %v", d.types, want)
	}
}

func TestAddTypeStructMembers(t *testing.T) {
	reg := parseTestRegistry(t)

	d := newDepSet()
	d.addType(reg, "VkInstanceCreateInfo")

	// void is not a registry type and drops out, the bitmask member pulls
	// in its whole chain ahead of the struct.
	want := []string{"VkFlags", "VkSampleCountFlagBits", "VkSampleCountFlags", "VkInstanceCreateInfo"}
	if !slices.Equal(d.types, want) {
		t.Errorf("types: got %v, want %v", d.types, want)
	}
}

func TestAddTypeCycles(t *testing.T) {
	const xml = `<registry>
	<types comment="">
		<type category="struct" name="VkA">
			<member><type>VkB</type>* <name>pB</name></member>
		</type>
		<type category="struct" name="VkB">
			<member><type>VkA</type>* <name>pA</name></member>
			<member><type>VkB</type>* <name>pNext</name></member>
		</type>
	</types>
</registry>`
	reg, err := vkspec.Parse(strings.NewReader(xml))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	d := newDepSet()
	d.addType(reg, "VkA")

	want := []string{"VkB", "VkA"}
	if !slices.Equal(d.types, want) {
		t.Errorf("types: got %v, want %v", d.types, want)
	}
}

func TestAddTypeUnknownName(t *testing.T) {
	reg := parseTestRegistry(t)

	d := newDepSet()
	d.addType(reg, "uint32_t")
	d.addType(reg, "VkNoSuchType")

	if len(d.types) != 0 {
		t.Errorf("types: got %v", d.types)
	}
}

func TestAddEnum(t *testing.T) {
	reg := parseTestRegistry(t)

	d := newDepSet()
	d.addEnum(reg, "VK_TRUE")
	d.addEnum(reg, "VK_TRUE")
	d.addEnum(reg, "VK_NO_SUCH_CONSTANT")

	if !slices.Equal(d.enums, []string{"VK_TRUE"}) {
		t.Errorf("enums: got %v", d.enums)
	}
}

func TestAddCommand(t *testing.T) {
	reg := parseTestRegistry(t)

	d := newDepSet()
	d.addCommand(reg, "vkEnumeratePhysicalDevices")
	d.addCommand(reg, "vkNoSuchCommand")

	for _, name := range []string{"VkResult", "VkInstance", "VkPhysicalDevice"} {
		if !slices.Contains(d.types, name) {
			t.Errorf("types missing %s: got %v", name, d.types)
		}
	}
}

func TestReorderExtensions(t *testing.T) {
	const xml = `<registry>
	<extensions comment="">
		<extension name="VK_KHR_a" number="1" supported="vulkan" promotedto="VK_KHR_c"/>
		<extension name="VK_KHR_b" number="2" supported="vulkan"/>
		<extension name="VK_KHR_c" number="3" supported="vulkan"/>
		<extension name="VK_KHR_d" number="4" supported="vulkan" promotedto="VK_VERSION_1_1"/>
	</extensions>
</registry>`
	reg, err := vkspec.Parse(strings.NewReader(xml))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	reorderExtensions(reg)

	var names []string
	for _, e := range reg.Extensions {
		names = append(names, e.Name)
	}
	// a moves directly behind its promotion target, d is promoted to core
	// and stays where it is.
	want := []string{"VK_KHR_b", "VK_KHR_c", "VK_KHR_a", "VK_KHR_d"}
	if !slices.Equal(names, want) {
		t.Errorf("extensions: got %v, want %v", names, want)
	}
}
