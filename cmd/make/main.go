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

package main

import (
	"fmt"
	"os"
	"runtime"

	"goarrg.com/debug"
	vkbind "goarrg.com/lib/vkbind/make"
	"goarrg.com/toolchain"
	"goarrg.com/toolchain/cgodep"
	"goarrg.com/toolchain/golang"
)

type command func([]string)

func main() {
	commands := map[string]command{
		"gen":     gen,
		"install": install,
	}
	if len(os.Args) > 1 {
		if cmd, ok := commands[os.Args[1]]; ok {
			cmd(os.Args[2:])
		} else {
			panic("Unknown Command " + os.Args[1])
		}
	} else {
		gen(nil)
	}
}

func gen(args []string) {
	if len(args) > 0 {
		panic(fmt.Sprintf("Unknown args: %v", args))
	}
	if err := vkbind.Gen(); err != nil {
		debug.EPrintf("%s", err)
		os.Exit(vkbind.ExitCode(err))
	}
}

func install(args []string) {
	if len(args) > 1 {
		panic(fmt.Sprintf("Unknown args: %v", args))
	}
	target := toolchain.Target{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}
	build := toolchain.BuildRelease

	if len(args) == 1 {
		switch args[0] {
		case "debug":
			build = toolchain.BuildDebug
		case "dev":
			build = toolchain.BuildDevelopment
		case "release":
			build = toolchain.BuildRelease
		default:
			debug.EPrintf("Unknown build %q", args[0])
			os.Exit(vkbind.ExitCode(vkbind.ErrInvalidArgs))
		}
	}

	golang.Setup(golang.Config{Target: target})
	cgodep.Install()

	if err := vkbind.Install(build); err != nil {
		debug.EPrintf("%s", err)
		os.Exit(vkbind.ExitCode(err))
	}

	if golang.ShouldCleanCache() {
		golang.CleanCache()
	}
}
