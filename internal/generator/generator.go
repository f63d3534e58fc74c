// Package generator holds the fixed table of CMake generators cmkinit can
// configure a project for.
package generator

import (
	"errors"
	"fmt"
)

// ErrUnknown is returned by Lookup for a name not in the table.
var ErrUnknown = errors.New("unknown generator")

// Generator describes one CMake generator.
type Generator struct {
	Name        string // short name given to -G
	ID          string // CMake generator identifier
	MultiConfig bool   // project holds Debug and Release side by side
	MinCMake    string // oldest CMake supporting it, semver form
	Description string
}

// The -S/-B configure form needs CMake 3.13.
var generators = []Generator{
	{"vs2022", "Visual Studio 17 2022", true, "v3.21.0", "Generates solution for Visual Studio 17 2022"},
	{"xcode", "Xcode", true, "v3.13.0", "Generates project files for Xcode"},
	{"ninja", "Ninja", false, "v3.13.0", "Generates project files using Ninja"},
	{"ninja-mc", "Ninja Multi-Config", true, "v3.17.0", "For Ninja Multi-Config"},
	{"unix", "Unix Makefiles", false, "v3.13.0", "For Unix Makefiles"},
	{"unix-cd", "CodeBlocks - Unix Makefiles", false, "v3.13.0", "Generates Unix Makefiles for CodeBlocks"},
	{"unix-eclipse", "Eclipse CDT4 - Unix Makefiles", false, "v3.13.0", "Generate Unix Makefiles for Eclipse CDT"},
}

// Lookup returns the generator registered under name. Names are matched
// exactly; callers normalize case.
func Lookup(name string) (Generator, error) {
	for _, g := range generators {
		if g.Name == name {
			return g, nil
		}
	}
	return Generator{}, fmt.Errorf("%w %q", ErrUnknown, name)
}

// All returns every generator in table order.
func All() []Generator {
	return append([]Generator(nil), generators...)
}

// Names returns the short names in table order.
func Names() []string {
	names := make([]string, len(generators))
	for i, g := range generators {
		names[i] = g.Name
	}
	return names
}
