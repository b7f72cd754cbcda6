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

import "errors"

// One error class per failure mode, each with its own process exit code so
// scripts can tell what went wrong without scraping stderr.
var (
	ErrInvalidArgs = errors.New("invalid arguments")
	ErrFileTooBig  = errors.New("file too big")
	ErrOpenFile    = errors.New("failed to open file")
	ErrReadFile    = errors.New("failed to read file")
	ErrWriteFile   = errors.New("failed to write file")
	ErrParse       = errors.New("failed to parse registry")
	ErrDownload    = errors.New("failed to download registry")
	ErrTemplate    = errors.New("bad template")
)

func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalidArgs):
		return 2
	case errors.Is(err, ErrFileTooBig):
		return 3
	case errors.Is(err, ErrOpenFile):
		return 4
	case errors.Is(err, ErrReadFile):
		return 5
	case errors.Is(err, ErrWriteFile):
		return 6
	case errors.Is(err, ErrParse):
		return 7
	case errors.Is(err, ErrDownload):
		return 8
	case errors.Is(err, ErrTemplate):
		return 9
	default:
		return 1
	}
}
