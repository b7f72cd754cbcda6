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
	"testing"

	"goarrg.com/lib/vkbind/vkspec"
)

func TestExtensionEnumValue(t *testing.T) {
	tests := []struct {
		offset    string
		dir       string
		extNumber string
		want      string
	}{
		{"0", "", "1", "1000000000"},
		{"3", "", "42", "1000041003"},
		{"3", "-", "42", "-1000041003"},
		{"0", "-", "1", "-1000000000"},
	}
	for _, tt := range tests {
		got := extensionEnumValue(vkspec.RequireEnum{Offset: tt.offset, Dir: tt.dir}, tt.extNumber)
		if got != tt.want {
			t.Errorf("offset %s dir %q ext %s: got %s, want %s", tt.offset, tt.dir, tt.extNumber, got, tt.want)
		}
	}
}

func TestBitPosValue(t *testing.T) {
	tests := []struct {
		bitpos int
		want   string
	}{
		{0, "0x00000001"},
		{5, "0x00000020"},
		{31, "0x80000000"},
		{32, "(VkAccessFlagBits2)(((VkAccessFlagBits2)0x00000001 << 32) | (0x00000000))"},
		{33, "(VkAccessFlagBits2)(((VkAccessFlagBits2)0x00000002 << 32) | (0x00000000))"},
	}
	for _, tt := range tests {
		if got := bitPosValue(tt.bitpos, "VkAccessFlagBits2"); got != tt.want {
			t.Errorf("bitpos %d: got %s, want %s", tt.bitpos, got, tt.want)
		}
	}
}

func TestMaxEnumToken(t *testing.T) {
	reg := parseTestRegistry(t)

	if got := maxEnumToken(reg, "VkResult"); got != "VK_RESULT_MAX_ENUM" {
		t.Errorf("VkResult: got %s", got)
	}
	if got := maxEnumToken(reg, "VkSampleCountFlagBits"); got != "VK_SAMPLE_COUNT_FLAG_BITS_MAX_ENUM" {
		t.Errorf("VkSampleCountFlagBits: got %s", got)
	}
	// The vendor tag moves behind the MAX_ENUM part.
	if got := maxEnumToken(reg, "VkPresentModeKHR"); got != "VK_PRESENT_MODE_MAX_ENUM_KHR" {
		t.Errorf("VkPresentModeKHR: got %s", got)
	}
	// Digit runs stay attached to the word carrying them.
	if got := maxEnumToken(reg, "VkVideoEncodeH264CapabilityFlagBitsKHR"); got != "VK_VIDEO_ENCODE_H264_CAPABILITY_FLAG_BITS_MAX_ENUM_KHR" {
		t.Errorf("VkVideoEncodeH264CapabilityFlagBitsKHR: got %s", got)
	}
	if got := maxEnumToken(reg, "VkVideoEncodeAV1RateControlFlagBitsKHR"); got != "VK_VIDEO_ENCODE_AV1_RATE_CONTROL_FLAG_BITS_MAX_ENUM_KHR" {
		t.Errorf("VkVideoEncodeAV1RateControlFlagBitsKHR: got %s", got)
	}
}

func TestCleanDefineValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "whole line comment",
			in:   "// Vulkan header version\n#define VK_HEADER_VERSION 99",
			want: "#define VK_HEADER_VERSION 99",
		},
		{
			name: "trailing comment keeps newline",
			in:   "#define X 1 // note\n#define Y 2",
			want: "#define X 1 \n#define Y 2",
		},
		{
			name: "trailing comment at end",
			in:   "#define Z 3 // tail",
			want: "#define Z 3 ",
		},
		{
			name: "line continuation",
			in:   "#define A \\\n    1",
			want: "#define A     1",
		},
		{
			name: "plain",
			in:   "  #define B 2  ",
			want: "#define B 2",
		},
	}
	for _, tt := range tests {
		if got := cleanDefineValue(tt.in); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestVulkanVersion(t *testing.T) {
	reg := parseTestRegistry(t)

	// 99 is the vulkan header version, the registry's vulkansc duplicate
	// says 14 and must not win the lookup.
	if got := vulkanVersion(reg); got != "1.1.99" {
		t.Errorf("got %q", got)
	}
}

func TestRevision(t *testing.T) {
	reg := parseTestRegistry(t)

	tests := []struct {
		name     string
		previous string
		want     string
	}{
		{"no previous output", "", "0"},
		{"same version keeps revision", "header\nvkbind - v1.1.99.4\nrest", "4"},
		{"version moved resets", "vkbind - v1.0.50.7\n", "0"},
		{"garbage revision resets", "vkbind - v1.1.99.x\n", "0"},
		{"truncated version resets", "vkbind - v1.1.99\n", "0"},
	}
	for _, tt := range tests {
		if got := revision(reg, tt.previous); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}
