//go:build ignore

// validate_parser feeds captured ONVIF XML responses through the protocol
// parsers and reports what parsed and what did not. Useful when adding
// support for a camera model whose responses deviate from the usual shape:
// save the raw SOAP bodies to files and point this tool at the directory.
//
// The response kind is sniffed from the body, so files can be named
// anything. One file per response.
//
//	go run tools/validate_parser.go captures/
//	go run tools/validate_parser.go captures/probe-match-dahua.xml
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/muldr/camscan/internal/device"
	"github.com/muldr/camscan/internal/protocol"
)

// Statistics tracks parsing results across all input files.
type Statistics struct {
	TotalFiles   int
	ParseSuccess int
	ParseFailure int
	Kinds        map[string]int
	Failures     []Failure
}

// Failure stores information about a single parse failure.
type Failure struct {
	File  string
	Kind  string
	Error string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: validate_parser <directory-or-file>")
		fmt.Println("Example: validate_parser captures/")
		fmt.Println("         validate_parser captures/probe-match-dahua.xml")
		os.Exit(1)
	}

	path := os.Args[1]

	stats := Statistics{
		Kinds: make(map[string]int),
	}

	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Error accessing path: %v\n", err)
		os.Exit(1)
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			fmt.Printf("Error reading directory: %v\n", err)
			os.Exit(1)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			files = append(files, filepath.Join(path, entry.Name()))
		}
	} else {
		files = []string{path}
	}

	for _, file := range files {
		validateFile(file, &stats)
	}

	printReport(&stats)
	if stats.ParseFailure > 0 {
		os.Exit(1)
	}
}

func validateFile(file string, stats *Statistics) {
	data, err := os.ReadFile(file)
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", file, err)
		return
	}

	stats.TotalFiles++
	raw := string(data)
	kind := sniffKind(raw)
	stats.Kinds[kind]++

	if err := parseAs(kind, raw); err != nil {
		stats.ParseFailure++
		stats.Failures = append(stats.Failures, Failure{
			File:  filepath.Base(file),
			Kind:  kind,
			Error: err.Error(),
		})
		return
	}
	stats.ParseSuccess++
}

// sniffKind identifies the response by its distinguishing element.
func sniffKind(raw string) string {
	switch {
	case strings.Contains(raw, "ProbeMatch"):
		return "ProbeMatch"
	case strings.Contains(raw, "GetCapabilitiesResponse"):
		return "Capabilities"
	case strings.Contains(raw, "GetDeviceInformationResponse"):
		return "DeviceInformation"
	case strings.Contains(raw, "GetNetworkInterfacesResponse"):
		return "NetworkInterfaces"
	case strings.Contains(raw, "GetProfilesResponse"):
		return "MediaProfiles"
	case strings.Contains(raw, "GetStreamUriResponse"):
		return "StreamURI"
	case strings.Contains(raw, "GetSnapshotUriResponse"):
		return "SnapshotURI"
	case strings.Contains(raw, "GetImagingSettingsResponse"):
		return "ImagingSettings"
	default:
		return "Unknown"
	}
}

func parseAs(kind, raw string) error {
	dev := &device.Device{}
	switch kind {
	case "ProbeMatch":
		parsed, err := protocol.ParseProbeMatch(raw)
		if err != nil {
			return err
		}
		if parsed.ServiceURL == "" {
			return fmt.Errorf("probe match has no service URL")
		}
		return nil
	case "Capabilities":
		return protocol.ParseCapabilities(raw, dev)
	case "DeviceInformation":
		return protocol.ParseDeviceInformation(raw, dev)
	case "NetworkInterfaces":
		return protocol.ParseNetworkInterfaces(raw, dev)
	case "MediaProfiles":
		_, err := protocol.ParseMediaProfiles(raw)
		return err
	case "StreamURI":
		_, err := protocol.ParseStreamURI(raw)
		return err
	case "SnapshotURI":
		_, err := protocol.ParseSnapshotURI(raw)
		return err
	case "ImagingSettings":
		return protocol.ParseImagingSettings(raw, dev)
	default:
		return fmt.Errorf("unrecognized response body")
	}
}

func printReport(stats *Statistics) {
	fmt.Println()
	fmt.Println("=== Parser Validation Report ===")
	fmt.Printf("Files:     %d\n", stats.TotalFiles)
	fmt.Printf("Parsed:    %d\n", stats.ParseSuccess)
	fmt.Printf("Failed:    %d\n", stats.ParseFailure)

	fmt.Println("\nResponse kinds:")
	kinds := make([]string, 0, len(stats.Kinds))
	for kind := range stats.Kinds {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Printf("  %-18s %d\n", kind, stats.Kinds[kind])
	}

	if len(stats.Failures) > 0 {
		fmt.Println("\nFailures:")
		for _, f := range stats.Failures {
			fmt.Printf("  %s (%s): %s\n", f.File, f.Kind, f.Error)
		}
	}
}
