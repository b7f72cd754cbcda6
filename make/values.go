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

	"github.com/iancoleman/strcase"
	"goarrg.com/lib/vkbind/vkspec"
)

// extensionEnumValue computes the value of an enum constant introduced by an
// extension, per "Assigning Extension Token Values" in the Vulkan style
// guide. dir is "-" for negative values, anything else is positive.
func extensionEnumValue(e vkspec.RequireEnum, extNumber string) string {
	dir := 1
	if e.Dir == "-" {
		dir = -1
	}
	ext, _ := strconv.Atoi(extNumber)
	off, _ := strconv.Atoi(e.Offset)
	return strconv.Itoa(dir * (1000000000 + (ext-1)*1000 + off))
}

// bitPosValue renders 1<<bitpos as a C constant. Positions past 31 cannot
// live in an enum so they are written as a 64-bit expression over the flag
// type, split in two halves for old compilers.
func bitPosValue(bitpos int, typeName string) string {
	if bitpos < 32 {
		return fmt.Sprintf("0x%08x", uint32(1)<<bitpos)
	}
	v := uint64(1) << bitpos
	return fmt.Sprintf("(%s)(((%s)0x%08x << 32) | (0x%08x))",
		typeName, typeName, uint32(v>>32), uint32(v))
}

// maxEnumToken builds the VK_..._MAX_ENUM[_VENDOR] name that pins an enum's
// size to 32 bits. The vendor tag moves behind the MAX_ENUM part.
func maxEnumToken(reg *vkspec.Registry, groupName string) string {
	tag := reg.TagOf(groupName)
	snake := strcase.ToScreamingSnake(strings.TrimSuffix(groupName, tag))

	// ToScreamingSnake splits a digit run off the word carrying it, H264
	// becomes H_264. The registry's own constant names keep them attached,
	// so drop every underscore sitting in front of a digit.
	var token strings.Builder
	token.Grow(len(snake) + len("_MAX_ENUM_") + len(tag))
	for i := 0; i < len(snake); i++ {
		if snake[i] == '_' && i+1 < len(snake) && snake[i+1] >= '0' && snake[i+1] <= '9' {
			continue
		}
		token.WriteByte(snake[i])
	}

	token.WriteString("_MAX_ENUM")
	if tag != "" {
		token.WriteString("_" + tag)
	}
	return token.String()
}

// cleanDefineValue strips line continuations and // comments from a define
// body. A comment occupying a whole line disappears with its newline, a
// trailing comment leaves the newline in place.
func cleanDefineValue(value string) string {
	result := strings.TrimSpace(value)
	result = strings.ReplaceAll(result, "\\\n", "")

	for {
		pos := strings.Index(result, "//")
		if pos < 0 {
			break
		}
		wholeLine := pos == 0 || result[pos-1] == '\n'

		end := strings.Index(result[pos+2:], "\n")
		if end < 0 {
			end = len(result)
		} else {
			end += pos + 2
			if wholeLine {
				end++
			} else if result[end-1] == '\r' {
				end--
			}
		}
		result = result[:pos] + result[end:]
	}

	return result
}

// vulkanVersion is the version of the last feature block plus the value of
// the VK_HEADER_VERSION define, e.g. "1.3.280".
func vulkanVersion(reg *vkspec.Registry) string {
	if len(reg.Features) == 0 {
		return ""
	}
	version := reg.Features[len(reg.Features)-1].Number

	if t := reg.TypeByName("VK_HEADER_VERSION"); t != nil && t.Category == vkspec.CategoryDefine {
		clean := cleanDefineValue(t.Verbatim)
		if i := strings.Index(clean, t.Name); i >= 0 {
			version += "." + strings.TrimSpace(clean[i+len(t.Name):])
		}
	}

	return version
}

// revision extracts the revision counter from a previously generated header.
// The revision carries over while the Vulkan version is unchanged and resets
// to 0 when it moves, so regenerating from the same registry reproduces the
// same file byte for byte.
func revision(reg *vkspec.Registry, previous string) string {
	const marker = "vkbind - v"

	beg := strings.Index(previous, marker)
	if beg < 0 {
		return "0"
	}
	rest := previous[beg+len(marker):]

	end := strings.IndexAny(rest, " \r\n")
	if end < 0 {
		return "0"
	}
	parts := strings.Split(rest[:end], ".")
	if len(parts) != 4 {
		return "0"
	}
	if strings.Join(parts[:3], ".") != vulkanVersion(reg) {
		return "0"
	}
	if _, err := strconv.Atoi(parts[3]); err != nil {
		return "0"
	}
	return parts[3]
}
