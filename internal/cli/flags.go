package cli

import (
	"fmt"
	"strings"
)

// Common flag names and descriptions
const (
	// Flag names
	FlagOutput  = "output"
	FlagExtract = "extract"
	FlagConfig  = "config"
	FlagForce   = "force"
	FlagHost    = "host"
	FlagPort    = "port"
	FlagVerbose = "verbose"
	FlagNoColor = "no-color"
	FlagQuiet   = "quiet"
	FlagDebug   = "debug"

	// Flag descriptions
	DescOutput  = "Output archive path (default: generated filename)"
	DescExtract = "Extract into this directory instead of writing an archive"
	DescConfig  = "Path to config file"
	DescForce   = "Force overwrite"
	DescHost    = "Interface to listen on"
	DescPort    = "TCP port to listen on"
	DescVerbose = "Show progress events"
	DescNoColor = "Disable colored output"
	DescQuiet   = "Suppress output"
	DescDebug   = "Enable debug logging"
)

// ParseTemplateArgs splits arguments like "react,express nestjs" into
// template names, dropping empty parts.
func ParseTemplateArgs(args []string) []string {
	var names []string
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if part = strings.TrimSpace(part); part != "" {
				names = append(names, part)
			}
		}
	}
	return names
}

// ValidateOutputPath validates an output file path
func ValidateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	if !strings.HasSuffix(strings.ToLower(path), ".zip") {
		return fmt.Errorf("output path must end in .zip: %s", path)
	}
	return nil
}
