// Package cmake wraps the cmake configure/build workflow.
package cmake

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"

	"github.com/goplus/cmkinit/pkgs/buildsys"
)

// ErrNoVersion is returned when "cmake --version" prints no version.
var ErrNoVersion = errors.New("cmake: cannot determine version")

type defineValue struct {
	value    string
	typeName string
}

// CMake drives CMake-based builds.
type CMake struct {
	runner      buildsys.Runner
	sourceDir   string
	buildDir    string
	generator   string
	multiConfig bool
	buildType   string
	toolchain   string
	parallel    int
	defines     map[string]defineValue
}

var _ buildsys.BuildSystem = (*CMake)(nil)

// New returns a ready-to-use CMake running its commands through runner.
func New(runner buildsys.Runner, sourceDir, buildDir string) *CMake {
	return &CMake{
		runner:    runner,
		sourceDir: sourceDir,
		buildDir:  buildDir,
		defines:   make(map[string]defineValue),
	}
}

// Generator sets the CMake generator identifier (e.g. "Ninja",
// "Unix Makefiles"). multiConfig tells whether the generated project holds
// several configurations, in which case the build type is chosen per build
// instead of at configure time.
func (c *CMake) Generator(name string, multiConfig bool) {
	c.generator = name
	c.multiConfig = multiConfig
}

// BuildType sets CMAKE_BUILD_TYPE (e.g. "Release", "Debug") for
// single-config generators.
func (c *CMake) BuildType(name string) { c.buildType = name }

// Toolchain sets CMAKE_TOOLCHAIN_FILE.
func (c *CMake) Toolchain(path string) { c.toolchain = path }

// Parallel sets the job count handed to "cmake --build --parallel".
// Zero leaves the choice to the native build tool.
func (c *CMake) Parallel(jobs int) { c.parallel = jobs }

// Define adds a -D<key>:STRING=<value> definition.
func (c *CMake) Define(key, value string) {
	c.defines[key] = defineValue{value: value, typeName: "STRING"}
}

// ConfigureArgs returns the arguments of "cmake -S <source> -B <build>"
// with all configured options. Extra args are appended at the end.
func (c *CMake) ConfigureArgs(args ...string) []string {
	cmakeArgs := []string{"-S", c.sourceDir, "-B", c.buildDir}
	if c.generator != "" {
		cmakeArgs = append(cmakeArgs, "-G", c.generator)
	}
	if c.toolchain != "" {
		c.Define("CMAKE_TOOLCHAIN_FILE", c.toolchain)
	}
	if c.buildType != "" && !c.multiConfig {
		c.Define("CMAKE_BUILD_TYPE", c.buildType)
	}
	cmakeArgs = append(cmakeArgs, c.definesArgs()...)
	return append(cmakeArgs, args...)
}

// BuildArgs returns the arguments of "cmake --build <build>". config is
// passed as --config when non-empty.
func (c *CMake) BuildArgs(config string, args ...string) []string {
	cmakeArgs := []string{"--build", c.buildDir}
	if config != "" {
		cmakeArgs = append(cmakeArgs, "--config", config)
	}
	if c.parallel > 0 {
		cmakeArgs = append(cmakeArgs, "--parallel", strconv.Itoa(c.parallel))
	}
	return append(cmakeArgs, args...)
}

// Configure creates the build directory and runs the configure step.
func (c *CMake) Configure(args ...string) *buildsys.Result {
	if err := os.MkdirAll(c.buildDir, 0o755); err != nil {
		return &buildsys.Result{Args: []string{"mkdir", c.buildDir}, Err: err}
	}
	return c.runner.Run("cmake", c.ConfigureArgs(args...)...)
}

// Build runs the build step for config.
func (c *CMake) Build(config string, args ...string) *buildsys.Result {
	return c.runner.Run("cmake", c.BuildArgs(config, args...)...)
}

var versionRE = regexp.MustCompile(`cmake version (\d+)\.(\d+)(?:\.(\d+))?`)

// Version runs "cmake --version" and returns the version in semver form,
// e.g. "v3.28.1".
func (c *CMake) Version() (string, error) {
	r := c.runner.Run("cmake", "--version")
	if err := r.AsError(); err != nil {
		return "", err
	}
	m := versionRE.FindSubmatch(r.Stdout)
	if m == nil {
		return "", ErrNoVersion
	}
	patch := "0"
	if len(m[3]) > 0 {
		patch = string(m[3])
	}
	return fmt.Sprintf("v%s.%s.%s", m[1], m[2], patch), nil
}

func (c *CMake) definesArgs() []string {
	if len(c.defines) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.defines))
	for k := range c.defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, len(keys))
	for _, k := range keys {
		d := c.defines[k]
		args = append(args, "-D"+k+":"+d.typeName+"="+d.value)
	}
	return args
}
