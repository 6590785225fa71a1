package playground

import (
	"strings"

	"github.com/unkn0wn-root/playterm/internal/errdef"
)

type Channel string

const (
	ChannelStable  Channel = "stable"
	ChannelBeta    Channel = "beta"
	ChannelNightly Channel = "nightly"
)

type Mode string

const (
	ModeDebug   Mode = "debug"
	ModeRelease Mode = "release"
)

type CrateType string

const (
	CrateBinary  CrateType = "bin"
	CrateLibrary CrateType = "lib"
)

type Target string

const (
	TargetAssembly Target = "asm"
	TargetLLVMIR   Target = "llvm-ir"
	TargetMIR      Target = "mir"
)

type FormatStyle string

const (
	FormatDefault FormatStyle = "default"
	FormatRFC     FormatStyle = "rfc"
)

type Editor string

const (
	EditorSimple   Editor = "simple"
	EditorAdvanced Editor = "advanced"
)

var (
	channels = []Channel{ChannelStable, ChannelBeta, ChannelNightly}
	modes    = []Mode{ModeDebug, ModeRelease}
)

// Configuration is the user-adjustable part of the session sent alongside
// source code.
type Configuration struct {
	Channel   Channel
	Mode      Mode
	CrateType CrateType
	Tests     bool
	Editor    Editor
}

func DefaultConfiguration() Configuration {
	return Configuration{
		Channel:   ChannelStable,
		Mode:      ModeDebug,
		CrateType: CrateBinary,
		Editor:    EditorAdvanced,
	}
}

// PrimaryLabel names the primary action button. The request sent is the same
// execute request whatever the label says.
func (c Configuration) PrimaryLabel() string {
	if c.Tests {
		return "Test"
	}
	if c.CrateType == CrateBinary {
		return "Run"
	}
	return "Build"
}

// MIRAvailable reports whether the selected channel can emit MIR.
func (c Configuration) MIRAvailable() bool {
	return c.Channel == ChannelBeta || c.Channel == ChannelNightly
}

// NextChannel cycles stable -> beta -> nightly -> stable.
func (c Configuration) NextChannel() Channel {
	for i, ch := range channels {
		if ch == c.Channel {
			return channels[(i+1)%len(channels)]
		}
	}
	return ChannelStable
}

func (c Configuration) NextMode() Mode {
	for i, m := range modes {
		if m == c.Mode {
			return modes[(i+1)%len(modes)]
		}
	}
	return ModeDebug
}

func ParseChannel(raw string) (Channel, error) {
	switch Channel(normalize(raw)) {
	case ChannelStable:
		return ChannelStable, nil
	case ChannelBeta:
		return ChannelBeta, nil
	case ChannelNightly:
		return ChannelNightly, nil
	}
	return "", errdef.New(errdef.CodeConfig, "the value %q is not a valid channel", raw)
}

func ParseMode(raw string) (Mode, error) {
	switch Mode(normalize(raw)) {
	case ModeDebug:
		return ModeDebug, nil
	case ModeRelease:
		return ModeRelease, nil
	}
	return "", errdef.New(errdef.CodeConfig, "the value %q is not a valid mode", raw)
}

// ParseCrateType maps "bin" to a binary crate and anything else to a library,
// matching the playground server.
func ParseCrateType(raw string) CrateType {
	if normalize(raw) == string(CrateBinary) {
		return CrateBinary
	}
	return CrateLibrary
}

func ParseTarget(raw string) (Target, error) {
	switch Target(normalize(raw)) {
	case TargetAssembly:
		return TargetAssembly, nil
	case TargetLLVMIR:
		return TargetLLVMIR, nil
	case TargetMIR:
		return TargetMIR, nil
	}
	return "", errdef.New(errdef.CodeConfig, "the value %q is not a valid target", raw)
}

func ParseFormatStyle(raw string) (FormatStyle, error) {
	switch FormatStyle(normalize(raw)) {
	case FormatDefault, "":
		return FormatDefault, nil
	case FormatRFC:
		return FormatRFC, nil
	}
	return "", errdef.New(errdef.CodeConfig, "the value %q is not a valid format style", raw)
}

func ParseEditor(raw string) (Editor, error) {
	switch Editor(normalize(raw)) {
	case EditorSimple:
		return EditorSimple, nil
	case EditorAdvanced:
		return EditorAdvanced, nil
	}
	return "", errdef.New(errdef.CodeConfig, "the value %q is not a valid editor", raw)
}

func normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
