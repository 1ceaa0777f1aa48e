// Package sysinfo asks the OS for the primary display size. The slideshow
// uses it when its window cannot report a size yet.
package sysinfo

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoDisplay is returned when no display size could be found.
var ErrNoDisplay = errors.New("no display found")

// resolutionRegex matches strings like "3456 x 2234", "1920x1080 pixels" or "1710 x 1107 @ 60.00Hz"
var resolutionRegex = regexp.MustCompile(`(\d+)\s*x\s*(\d+)`)

// ScreenSize returns the primary display size in pixels.
func ScreenSize() (image.Point, error) {
	w, h, err := screenDimensions()
	if err != nil {
		return image.Point{}, err
	}
	if w <= 0 || h <= 0 {
		return image.Point{}, fmt.Errorf("%w: reported %dx%d", ErrNoDisplay, w, h)
	}
	return image.Pt(w, h), nil
}

func parseResolutionString(s string) (int, int, error) {
	matches := resolutionRegex.FindStringSubmatch(s)
	if len(matches) < 3 {
		return 0, 0, fmt.Errorf("failed to parse resolution from string: %q", s)
	}

	width, errW := strconv.Atoi(matches[1])
	height, errH := strconv.Atoi(matches[2])
	if errW != nil || errH != nil {
		return 0, 0, fmt.Errorf("failed to convert dimensions: %v, %v", errW, errH)
	}
	return width, height, nil
}

// parseXdpyinfo reads the first "dimensions:    1920x1080 pixels (508x285 millimeters)" line.
func parseXdpyinfo(out string) (int, int, error) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "dimensions:"); ok {
			return parseResolutionString(rest)
		}
	}
	return 0, 0, fmt.Errorf("%w in xdpyinfo output", ErrNoDisplay)
}

// systemProfilerOutput represents the nested structure of system_profiler -json
type systemProfilerOutput struct {
	Displays []gpuInfo `json:"SPDisplaysDataType"`
}

type gpuInfo struct {
	NDRVs []displayInfo `json:"spdisplays_ndrvs"`
}

type displayInfo struct {
	Resolution string `json:"_spdisplays_pixels"` // e.g. "3420 x 2214"
	Main       string `json:"spdisplays_main"`    // "spdisplays_yes"
}

func parseProfilerJSON(data []byte) (int, int, error) {
	var profiler systemProfilerOutput
	if err := json.Unmarshal(data, &profiler); err != nil {
		return 0, 0, fmt.Errorf("decoding system_profiler JSON: %w", err)
	}

	for _, gpu := range profiler.Displays {
		for _, display := range gpu.NDRVs {
			if display.Main == "spdisplays_yes" {
				return parseResolutionString(display.Resolution)
			}
		}
	}

	// No main display flagged, use the first one.
	if len(profiler.Displays) > 0 && len(profiler.Displays[0].NDRVs) > 0 {
		return parseResolutionString(profiler.Displays[0].NDRVs[0].Resolution)
	}
	return 0, 0, fmt.Errorf("%w in system_profiler output", ErrNoDisplay)
}
