// Package platform detects the operating system, distribution, and native
// package manager of the machine being provisioned.
package platform

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"gopkg.in/ini.v1"
)

// OS represents the operating system type.
type OS string

const (
	// OSDarwin is macOS.
	OSDarwin OS = "darwin"
	// OSLinux is Linux (native, container, or WSL).
	OSLinux OS = "linux"
	// OSUnknown is an unsupported OS.
	OSUnknown OS = "unknown"
)

// Environment represents the execution environment.
type Environment string

const (
	// EnvNative is a native OS environment.
	EnvNative Environment = "native"
	// EnvDocker is running inside a container.
	EnvDocker Environment = "docker"
	// EnvWSL is Windows Subsystem for Linux.
	EnvWSL Environment = "wsl"
)

// PackageManager identifies a supported system package manager.
type PackageManager string

const (
	// ManagerApt is apt-get on Debian and Ubuntu.
	ManagerApt PackageManager = "apt"
	// ManagerApk is apk on Alpine.
	ManagerApk PackageManager = "apk"
	// ManagerDnf is dnf on Fedora and RHEL.
	ManagerDnf PackageManager = "dnf"
	// ManagerBrew is Homebrew on macOS.
	ManagerBrew PackageManager = "brew"
	// ManagerUnknown means no supported manager was found.
	ManagerUnknown PackageManager = ""
)

// String returns the manager name.
func (m PackageManager) String() string {
	return string(m)
}

// ParseManager maps a manifest package_manager value to a PackageManager.
// Common aliases (apt-get, yum, homebrew) are accepted.
func ParseManager(name string) (PackageManager, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "apt", "apt-get":
		return ManagerApt, true
	case "apk":
		return ManagerApk, true
	case "dnf", "yum":
		return ManagerDnf, true
	case "brew", "homebrew":
		return ManagerBrew, true
	default:
		return ManagerUnknown, false
	}
}

// ManagerNames returns the supported manager names in manifest spelling.
func ManagerNames() []string {
	return []string{"apt", "apk", "dnf", "brew"}
}

// Platform contains detected platform information.
type Platform struct {
	os          OS
	arch        string
	environment Environment
	distro      string
	distroLike  []string
	manager     PackageManager
}

var (
	detected    *Platform
	detectOnce  sync.Once
	detectedErr error

	testPlatform *Platform // For testing
)

// Detect returns the current platform information.
// Results are cached after the first call.
func Detect() (*Platform, error) {
	if testPlatform != nil {
		return testPlatform, nil
	}

	detectOnce.Do(func() {
		detected, detectedErr = detect()
	})
	return detected, detectedErr
}

// SetTestPlatform sets a mock platform for testing.
// Pass nil to reset to actual detection.
func SetTestPlatform(p *Platform) {
	testPlatform = p
}

//nolint:unparam // error return kept for parity with Detect
func detect() (*Platform, error) {
	p := &Platform{
		arch:        runtime.GOARCH,
		environment: EnvNative,
	}

	switch runtime.GOOS {
	case "darwin":
		p.os = OSDarwin
	case "linux":
		p.os = OSLinux
		p.detectLinuxEnvironment()
		p.readOSRelease("/etc/os-release")
	default:
		p.os = OSUnknown
	}

	p.manager = p.resolveManager()
	return p, nil
}

// detectLinuxEnvironment checks if running in WSL or a container.
func (p *Platform) detectLinuxEnvironment() {
	if isWSL() {
		p.environment = EnvWSL
		return
	}
	if isDocker() {
		p.environment = EnvDocker
	}
}

// isWSL checks /proc/version for Microsoft or WSL indicators.
func isWSL() bool {
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}

	version := strings.ToLower(string(data))
	return strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
}

// isDocker checks for container-specific files.
func isDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	data, err := os.ReadFile("/proc/1/cgroup")
	if err != nil {
		return false
	}

	return strings.Contains(string(data), "docker") ||
		strings.Contains(string(data), "containerd")
}

// readOSRelease loads the distribution ID and ID_LIKE from an os-release
// file. os-release is key=value with optional quoting, which the ini
// format covers.
func (p *Platform) readOSRelease(path string) {
	cfg, err := ini.Load(path)
	if err != nil {
		return
	}

	section := cfg.Section("")
	p.distro = strings.ToLower(section.Key("ID").String())

	if like := strings.ToLower(section.Key("ID_LIKE").String()); like != "" {
		p.distroLike = strings.Fields(like)
	}
}

// resolveManager picks the native package manager for the platform.
// Distribution families are checked first; when the distro is unknown
// the first manager binary found on PATH wins.
func (p *Platform) resolveManager() PackageManager {
	if p.os == OSDarwin {
		return ManagerBrew
	}
	if p.os != OSLinux {
		return ManagerUnknown
	}

	switch {
	case p.isFamily("alpine"):
		return ManagerApk
	case p.isFamily("debian"), p.isFamily("ubuntu"):
		return ManagerApt
	case p.isFamily("fedora"), p.isFamily("rhel"), p.isFamily("centos"):
		return ManagerDnf
	}

	for _, candidate := range []struct {
		binary  string
		manager PackageManager
	}{
		{"apt-get", ManagerApt},
		{"apk", ManagerApk},
		{"dnf", ManagerDnf},
		{"brew", ManagerBrew},
	} {
		if HasCommand(candidate.binary) {
			return candidate.manager
		}
	}

	return ManagerUnknown
}

// isFamily checks the distro ID and its ID_LIKE ancestors.
func (p *Platform) isFamily(family string) bool {
	if p.distro == family {
		return true
	}
	for _, like := range p.distroLike {
		if like == family {
			return true
		}
	}
	return false
}

// OS returns the operating system.
func (p *Platform) OS() OS {
	return p.os
}

// Arch returns the architecture.
func (p *Platform) Arch() string {
	return p.arch
}

// Environment returns the execution environment.
func (p *Platform) Environment() Environment {
	return p.environment
}

// Distro returns the os-release ID, empty outside Linux.
func (p *Platform) Distro() string {
	return p.distro
}

// Manager returns the native package manager.
func (p *Platform) Manager() PackageManager {
	return p.manager
}

// IsMacOS returns true if running on macOS.
func (p *Platform) IsMacOS() bool {
	return p.os == OSDarwin
}

// IsLinux returns true if running on Linux.
func (p *Platform) IsLinux() bool {
	return p.os == OSLinux
}

// IsDocker returns true if running in a container.
func (p *Platform) IsDocker() bool {
	return p.environment == EnvDocker
}

// IsWSL returns true if running in WSL.
func (p *Platform) IsWSL() bool {
	return p.environment == EnvWSL
}

// HasCommand checks if a command is available in PATH.
func HasCommand(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// String returns a human-readable description like "linux/amd64/ubuntu/apt".
func (p *Platform) String() string {
	parts := []string{string(p.os), p.arch}

	if p.distro != "" {
		parts = append(parts, p.distro)
	}
	if p.environment != EnvNative {
		parts = append(parts, string(p.environment))
	}
	if p.manager != ManagerUnknown {
		parts = append(parts, string(p.manager))
	}

	return strings.Join(parts, "/")
}

// New creates a Platform with the given values (for testing).
func New(osType OS, arch string, env Environment) *Platform {
	p := &Platform{
		os:          osType,
		arch:        arch,
		environment: env,
	}
	p.manager = p.resolveManager()
	return p
}

// NewLinux creates a Linux Platform with a known distro and manager
// (for testing).
func NewLinux(distro string, manager PackageManager) *Platform {
	return &Platform{
		os:          OSLinux,
		arch:        "amd64",
		environment: EnvNative,
		distro:      distro,
		manager:     manager,
	}
}
