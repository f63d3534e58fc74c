package internal

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/goplus/cmkinit/internal/bootstrap"
	"github.com/goplus/cmkinit/internal/config"
	"github.com/goplus/cmkinit/internal/platform"
	"github.com/goplus/cmkinit/pkgs/buildsys"
	"github.com/qiniu/x/log"
)

// mockRunner implements buildsys.Runner for unit testing.
type mockRunner struct {
	calls [][]string
	fail  bool
}

func (m *mockRunner) Run(name string, args ...string) *buildsys.Result {
	cmdArgs := append([]string{name}, args...)
	m.calls = append(m.calls, cmdArgs)
	r := &buildsys.Result{Args: cmdArgs}
	if m.fail {
		r.Stderr = []byte("CMake Error: boom")
		r.Err = errors.New("exit status 1")
	}
	return r
}

// setup runs the test in an empty directory on a supported host and routes
// subprocesses to a mockRunner.
func setup(t *testing.T) *mockRunner {
	t.Helper()
	chdir(t, t.TempDir())

	savedOS := hostOS
	if _, err := platform.Detect(hostOS); err != nil {
		hostOS = "linux"
	}
	m := &mockRunner{}
	savedRunner := newRunner
	newRunner = func(bool, io.Writer) buildsys.Runner { return m }
	t.Cleanup(func() {
		hostOS = savedOS
		newRunner = savedRunner
	})
	return m
}

func TestExecuteDebug(t *testing.T) {
	m := setup(t)
	var out bytes.Buffer
	if err := execute([]string{"--debug", "-G", "UNIX"}, &out); err != nil {
		t.Fatalf("execute: %v\n%s", err, out.String())
	}
	if len(m.calls) != 2 {
		t.Fatalf("calls = %q, want configure and one build", m.calls)
	}
	if !slices.Contains(m.calls[0], "Unix Makefiles") {
		t.Errorf("configure = %q, want Unix Makefiles", m.calls[0])
	}
	for _, want := range []string{"compiled for debug", "done!"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
	if _, err := os.Stat("build"); err != nil {
		t.Errorf("build directory not created: %v", err)
	}
}

func TestExecuteBothMultiConfig(t *testing.T) {
	m := setup(t)
	var out bytes.Buffer
	if err := execute([]string{"--both", "-G", "ninja-mc", "-B", "out"}, &out); err != nil {
		t.Fatalf("execute: %v\n%s", err, out.String())
	}
	if len(m.calls) != 3 {
		t.Fatalf("calls = %q, want configure and two builds", m.calls)
	}
	if !slices.Contains(m.calls[1], "Debug") || !slices.Contains(m.calls[2], "Release") {
		t.Errorf("builds = %q, want Debug then Release", m.calls[1:])
	}
	if !strings.Contains(out.String(), "debug and release") {
		t.Errorf("output missing final banner:\n%s", out.String())
	}
}

func TestExecuteUsageErrors(t *testing.T) {
	tests := []struct {
		args []string
		want error
	}{
		{[]string{"-G", "unix"}, config.ErrNoBuildType},
		{nil, config.ErrNoBuildType},
		{[]string{"--release"}, config.ErrNoGenerator},
		{[]string{"--both", "-G", "unix"}, bootstrap.ErrBothSingleConfig},
	}
	for _, tt := range tests {
		m := setup(t)
		var out bytes.Buffer
		err := execute(tt.args, &out)
		if !errors.Is(err, tt.want) {
			t.Errorf("execute(%q) err = %v, want %v", tt.args, err, tt.want)
		}
		if len(m.calls) != 0 {
			t.Errorf("execute(%q) ran %q", tt.args, m.calls)
		}
		if !strings.Contains(out.String(), "execution of full build process was unsuccessful") {
			t.Errorf("execute(%q) output missing failure line:\n%s", tt.args, out.String())
		}
	}
}

func TestExecuteUnsupportedPlatform(t *testing.T) {
	m := setup(t)
	hostOS = "solaris"
	var out bytes.Buffer
	err := execute([]string{"--debug", "-G", "unix"}, &out)
	if !errors.Is(err, platform.ErrUnsupported) {
		t.Fatalf("err = %v, want platform.ErrUnsupported", err)
	}
	if len(m.calls) != 0 {
		t.Errorf("calls = %q, want none", m.calls)
	}
	if _, err := os.Stat("build"); !os.IsNotExist(err) {
		t.Errorf("build directory created on unsupported platform")
	}
}

func TestExecuteBuildFailure(t *testing.T) {
	m := setup(t)
	m.fail = true
	var out bytes.Buffer
	if err := execute([]string{"--release", "-G", "ninja"}, &out); err == nil {
		t.Fatal("execute succeeded with a failing cmake")
	}
	if len(m.calls) != 1 {
		t.Errorf("calls = %q, want configure only", m.calls)
	}
	if !strings.Contains(out.String(), "CMake Error: boom") {
		t.Errorf("captured stderr not printed:\n%s", out.String())
	}
}

func TestExecuteConfigFile(t *testing.T) {
	m := setup(t)
	if err := os.WriteFile(config.FileName+".yaml", []byte("generator: xcode\nrelease: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := execute(nil, &out); err != nil {
		t.Fatalf("execute: %v\n%s", err, out.String())
	}
	if len(m.calls) != 2 || !slices.Contains(m.calls[0], "Xcode") {
		t.Errorf("calls = %q, want Xcode configure and build", m.calls)
	}
}

func TestExecuteDryRun(t *testing.T) {
	setup(t)
	newRunner = func(dryRun bool, out io.Writer) buildsys.Runner {
		if !dryRun {
			t.Fatal("dry run not requested from the runner factory")
		}
		return buildsys.DryRunner{W: out}
	}
	var out bytes.Buffer
	if err := execute([]string{"--debug", "-G", "ninja", "--dry-run", "--check-version"}, &out); err != nil {
		t.Fatalf("execute: %v\n%s", err, out.String())
	}
	want := "cmake --build " + filepath.Join("build", hostTag(t))
	if !strings.Contains(out.String(), want) {
		t.Errorf("dry run output missing %q:\n%s", want, out.String())
	}
	if strings.Contains(out.String(), "--version") {
		t.Errorf("version probe ran in dry run:\n%s", out.String())
	}
}

func TestGenerators(t *testing.T) {
	setup(t)
	var out bytes.Buffer
	if err := execute([]string{"generators"}, &out); err != nil {
		t.Fatalf("execute: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 8 {
		t.Fatalf("got %d lines, want header and 7 generators:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[4], "Ninja Multi-Config") || !strings.Contains(lines[4], "multi") {
		t.Errorf("ninja-mc line = %q", lines[4])
	}
}

func hostTag(t *testing.T) string {
	tag, err := platform.Detect(hostOS)
	if err != nil {
		t.Fatal(err)
	}
	return string(tag)
}

func TestExecuteBuildTypeFlagOverridesConfig(t *testing.T) {
	m := setup(t)
	if err := os.WriteFile(config.FileName+".yaml", []byte("debug: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := execute([]string{"--release", "-G", "ninja-mc"}, &out); err != nil {
		t.Fatalf("execute: %v\n%s", err, out.String())
	}
	if len(m.calls) != 2 || !slices.Contains(m.calls[1], "Release") {
		t.Errorf("calls = %q, want one Release build", m.calls)
	}

	m = setup(t)
	t.Setenv("CMKINIT_DEBUG", "true")
	out.Reset()
	if err := execute([]string{"--release", "-G", "xcode"}, &out); err != nil {
		t.Fatalf("execute: %v\n%s", err, out.String())
	}
	if len(m.calls) != 2 || !slices.Contains(m.calls[1], "Release") {
		t.Errorf("calls = %q, want one Release build", m.calls)
	}
}

func TestExecuteVerboseLogsConfigFile(t *testing.T) {
	setup(t)
	if err := os.WriteFile(config.FileName+".yaml", []byte("generator: ninja\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	log.SetOutput(&logs)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetOutputLevel(log.Linfo)
	})

	var out bytes.Buffer
	if err := execute([]string{"--debug", "-v"}, &out); err != nil {
		t.Fatalf("execute: %v\n%s", err, out.String())
	}
	if !strings.Contains(logs.String(), "config: using") {
		t.Errorf("verbose log missing the config file line:\n%s", logs.String())
	}
}
