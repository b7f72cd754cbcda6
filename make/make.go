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

// Package vkbind generates vkbind.h, a single file Vulkan API loader, from
// the Khronos vk.xml registry and a template carrying the loader runtime.
package vkbind

import (
	"os"
	"path/filepath"
	"strings"

	"goarrg.com/debug"
	"goarrg.com/lib/vkbind/vkspec"
	"goarrg.com/toolchain"
	"goarrg.com/toolchain/cgodep"
	"goarrg.com/toolchain/golang"
)

const (
	xmlPath      = "resources/vk.xml"
	templatePath = "source/vkbind_template.h"
	outputPath   = "vkbind.h"

	registryURL = "https://raw.githubusercontent.com/KhronosGroup/Vulkan-Docs/main/xml/vk.xml"

	// vk.xml is a few MB, the template under 100KB. Anything near this cap
	// is not the file we think it is.
	maxFileSize = 256 << 20
)

func readTextFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", debug.ErrorWrapf(ErrOpenFile, "%s: %v", path, err)
	}
	if info.Size() > maxFileSize {
		return "", debug.ErrorWrapf(ErrFileTooBig, "%s is %d bytes", path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", debug.ErrorWrapf(ErrReadFile, "%s: %v", path, err)
	}
	return string(data), nil
}

func downloadRegistry(dst string) error {
	debug.IPrintf("vk.xml not found, downloading")
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return debug.ErrorWrapf(ErrWriteFile, "%s: %v", filepath.Dir(dst), err)
	}
	if out, err := toolchain.RunCombinedOutput("curl", "-fsSL", "-o", dst, registryURL); err != nil {
		debug.EPrintf("%s", out)
		return debug.ErrorWrapf(ErrDownload, "%s: %v", registryURL, err)
	}
	return nil
}

func parseRegistry(path string) (*vkspec.Registry, error) {
	if _, err := os.Stat(path); err != nil {
		if err := downloadRegistry(path); err != nil {
			return nil, err
		}
	}
	xml, err := readTextFile(path)
	if err != nil {
		return nil, err
	}
	reg, err := vkspec.Parse(strings.NewReader(xml))
	if err != nil {
		return nil, debug.ErrorWrapf(ErrParse, "%s: %v", path, err)
	}
	return reg, nil
}

// Gen regenerates vkbind.h next to the module root. The previous output, if
// any, only feeds the revision counter.
func Gen() error {
	module := golang.CallersModule()

	reg, err := parseRegistry(filepath.Join(module.Dir, xmlPath))
	if err != nil {
		return err
	}
	template, err := readTextFile(filepath.Join(module.Dir, templatePath))
	if err != nil {
		return err
	}
	previous, err := readTextFile(filepath.Join(module.Dir, outputPath))
	if err != nil {
		previous = ""
	}

	out, err := generate(reg, template, previous)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(module.Dir, outputPath), []byte(out), 0o644); err != nil {
		return debug.ErrorWrapf(ErrWriteFile, "%s: %v", outputPath, err)
	}
	debug.IPrintf("Generated %s for Vulkan %s", outputPath, vulkanVersion(reg))
	return nil
}

// Install generates the header and registers it with cgodep so dependent
// modules can pick up the include path. The header itself is identical
// across targets and build types, the build only selects the install slot.
func Install(build toolchain.Build) error {
	module := golang.CallersModule()

	reg, err := parseRegistry(filepath.Join(module.Dir, xmlPath))
	if err != nil {
		return err
	}
	if err := Gen(); err != nil {
		return err
	}

	version := vulkanVersion(reg)
	installDir := cgodep.InstallDir("vkbind", toolchain.Target{}, build)
	includeDir := filepath.Join(installDir, "include")
	if cgodep.ReadVersion(installDir) == version {
		return cgodep.SetActiveBuild(installDir)
	}

	if err := os.RemoveAll(installDir); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(includeDir, "vkbind"), 0o755); err != nil {
		return err
	}
	data, err := os.ReadFile(filepath.Join(module.Dir, outputPath))
	if err != nil {
		return debug.ErrorWrapf(ErrReadFile, "%s: %v", outputPath, err)
	}
	if err := os.WriteFile(filepath.Join(includeDir, "vkbind", outputPath), data, 0o644); err != nil {
		return debug.ErrorWrapf(ErrWriteFile, "%s: %v", outputPath, err)
	}

	golang.SetShouldCleanCache()
	return cgodep.WriteMetaFile(installDir, cgodep.Meta{
		Version: version,
		Flags: cgodep.Flags{
			CFlags: []string{"-I" + includeDir},
		},
	})
}
