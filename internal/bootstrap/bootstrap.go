// Package bootstrap configures a CMake project and builds the requested
// configurations, one external invocation at a time.
package bootstrap

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/goplus/cmkinit/internal/generator"
	"github.com/goplus/cmkinit/internal/platform"
	"github.com/goplus/cmkinit/pkgs/buildsys"
	"github.com/goplus/cmkinit/pkgs/color"
	"github.com/goplus/cmkinit/x/cmake"
	"github.com/qiniu/x/log"
	"golang.org/x/mod/semver"
)

var (
	// ErrBothSingleConfig is returned when both configurations are requested
	// from a generator that holds only one.
	ErrBothSingleConfig = errors.New("cannot build both debug and release with a single-config generator")
	// ErrBadBuildType is returned for a build type other than debug, release
	// or both.
	ErrBadBuildType = errors.New("invalid build type")
	// ErrCMakeTooOld is returned by the version check.
	ErrCMakeTooOld = errors.New("cmake is too old for generator")
)

// BuildType selects which configurations to build.
type BuildType string

const (
	Debug   BuildType = "debug"
	Release BuildType = "release"
	Both    BuildType = "both"
)

// Configs returns the CMake configuration names for t, in build order.
func (t BuildType) Configs() []string {
	switch t {
	case Debug:
		return []string{"Debug"}
	case Release:
		return []string{"Release"}
	case Both:
		return []string{"Debug", "Release"}
	}
	return nil
}

// Describe returns the configurations of t as shown to the user.
func (t BuildType) Describe() string {
	if t == Both {
		return "debug and release"
	}
	return string(t)
}

// Options describes one bootstrap run.
type Options struct {
	GOOS         string // host OS identity; the running OS when empty
	Source       string // CMake source directory
	BuildRoot    string // per-platform build directories are created below it
	Generator    string // short generator name, see package generator
	BuildType    BuildType
	Toolchain    string
	Parallel     int
	Defines      map[string]string
	CheckVersion bool
}

// Bootstrapper runs the configure and build steps.
type Bootstrapper struct {
	Runner  buildsys.Runner
	Console *color.Console
}

// New returns a Bootstrapper running commands with runner and reporting
// progress to console.
func New(runner buildsys.Runner, console *color.Console) *Bootstrapper {
	return &Bootstrapper{Runner: runner, Console: console}
}

// Run validates opts, configures the project once and builds every
// requested configuration. The first failing step ends the run; its
// captured output is printed before the error is returned.
func (b *Bootstrapper) Run(opts Options) error {
	tag, err := hostTag(opts.GOOS)
	if err != nil {
		return err
	}

	gen, err := generator.Lookup(opts.Generator)
	if err != nil {
		return fmt.Errorf("%w, pick one of %v", err, generator.Names())
	}
	configs := opts.BuildType.Configs()
	if configs == nil {
		return fmt.Errorf("%w %q", ErrBadBuildType, opts.BuildType)
	}
	if !gen.MultiConfig && opts.BuildType == Both {
		return fmt.Errorf("%w %q", ErrBothSingleConfig, gen.Name)
	}

	buildDir := filepath.Join(opts.BuildRoot, string(tag))
	c := cmake.New(b.Runner, opts.Source, buildDir)
	c.Generator(gen.ID, gen.MultiConfig)
	c.Toolchain(opts.Toolchain)
	c.Parallel(opts.Parallel)
	for k, v := range opts.Defines {
		c.Define(k, v)
	}
	if !gen.MultiConfig {
		c.BuildType(configs[0])
	}

	if opts.CheckVersion {
		if err := checkVersion(c, gen); err != nil {
			return err
		}
	}

	return b.runSteps(c, gen, opts.BuildType)
}

// runSteps configures once, then builds each configuration of bt. The first
// failing step ends the run.
func (b *Bootstrapper) runSteps(bs buildsys.BuildSystem, gen generator.Generator, bt BuildType) error {
	b.Console.Infof("Running CMake project generation for %s...", gen.ID)
	if err := b.step(bs.Configure()); err != nil {
		return fmt.Errorf("CMake project generation failed: %w", err)
	}
	b.Console.Successf("CMake project generation completed!")

	if !gen.MultiConfig {
		b.Console.Infof("Running CMake single config build for %s...", bt)
		if err := b.step(bs.Build("")); err != nil {
			return fmt.Errorf("CMake single config %s build failed: %w", bt, err)
		}
		b.Console.Successf("%s build completed!", bt)
		return nil
	}

	for _, config := range bt.Configs() {
		b.Console.Infof("Running CMake build for %s...", config)
		if err := b.step(bs.Build(config)); err != nil {
			return fmt.Errorf("CMake %s build failed: %w", config, err)
		}
		b.Console.Successf("%s build completed!", config)
	}
	return nil
}

// step prints the captured output of a failed invocation and converts it
// to an error.
func (b *Bootstrapper) step(r *buildsys.Result) error {
	if !r.Failed() {
		return nil
	}
	b.Console.Output(r.Stdout)
	b.Console.Output(r.Stderr)
	return r.AsError()
}

func hostTag(goos string) (platform.Tag, error) {
	if goos == "" {
		return platform.Host()
	}
	return platform.Detect(goos)
}

func checkVersion(c *cmake.CMake, gen generator.Generator) error {
	have, err := c.Version()
	if err != nil {
		return err
	}
	log.Debugf("bootstrap: cmake %s, %s needs %s", have, gen.ID, gen.MinCMake)
	if semver.Compare(have, gen.MinCMake) < 0 {
		return fmt.Errorf("%w %q: have %s, need %s", ErrCMakeTooOld, gen.ID, have, gen.MinCMake)
	}
	return nil
}
