// Package argo selects Argo float profiles from the GDAC profile index and
// builds the rsync commands that mirror their directories.
package argo

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chrissnell/oceanlab/pkg/geo"
)

const (
	// DefaultLocalRoot is the local mirror of the GDAC tree
	DefaultLocalRoot = "/data/datos/ARGO/gdac"
	// DefaultRemote is the rsync module serving the GDAC tree
	DefaultRemote = "vdmzrs.ifremer.fr::argo"

	indexTimeLayout = "20060102150405"
)

// ErrMalformedIndex is returned for index lines that cannot be parsed
var ErrMalformedIndex = errors.New("malformed profile index")

// Profile is one entry of the GDAC profile index
type Profile struct {
	File         string
	Date         time.Time
	Lat          float64
	Lon          float64
	Ocean        string
	ProfilerType int
	Institution  string
	Updated      time.Time
}

// DAC returns the data assembly center of the profile file
func (p Profile) DAC() string {
	dac, _ := splitFloat(p.File)
	return dac
}

// Float returns the WMO number of the float
func (p Profile) Float() string {
	_, float := splitFloat(p.File)
	return float
}

func splitFloat(file string) (dac, float string) {
	parts := strings.SplitN(file, "/", 3)
	if len(parts) < 2 {
		return "", ""
	}
	return parts[0], parts[1]
}

// ParseIndex reads an ar_index_global_prof.txt style index. Comment lines
// start with '#' and the first remaining line is the column header.
// Missing dates and positions are left as zero time and NaN.
func ParseIndex(r io.Reader) ([]Profile, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	if _, ok := col["file"]; !ok {
		return nil, fmt.Errorf("no file column in header %v: %w", header, ErrMalformedIndex)
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var profiles []Profile
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, ErrMalformedIndex)
		}
		line, _ := cr.FieldPos(0)

		p := Profile{
			File:        field(rec, "file"),
			Ocean:       field(rec, "ocean"),
			Institution: field(rec, "institution"),
		}
		if p.DAC() == "" {
			return nil, fmt.Errorf("line %d: file %q has no dac/float prefix: %w", line, p.File, ErrMalformedIndex)
		}
		if p.Date, err = parseIndexTime(field(rec, "date")); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if p.Updated, err = parseIndexTime(field(rec, "date_update")); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if p.Lat, err = parseCoordinate(field(rec, "latitude")); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if p.Lon, err = parseCoordinate(field(rec, "longitude")); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if s := field(rec, "profiler_type"); s != "" {
			if p.ProfilerType, err = strconv.Atoi(s); err != nil {
				return nil, fmt.Errorf("line %d: profiler type %q: %w", line, s, ErrMalformedIndex)
			}
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func parseIndexTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(indexTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", s, ErrMalformedIndex)
	}
	return t, nil
}

func parseCoordinate(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("coordinate %q: %w", s, ErrMalformedIndex)
	}
	return v, nil
}

// Select returns the profiles inside region observed at or after since.
// A nil region keeps every position.
func Select(profiles []Profile, region geo.Polygon, since time.Time) []Profile {
	var out []Profile
	for _, p := range profiles {
		if p.Date.Before(since) {
			continue
		}
		if region != nil && !geo.ContainsPoint(region, geo.Point{Lon: p.Lon, Lat: p.Lat}) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// limaLocation is the zone used to stamp screen session names
func limaLocation() *time.Location {
	loc, err := time.LoadLocation("America/Lima")
	if err != nil {
		return time.FixedZone("PET", -5*60*60)
	}
	return loc
}

// BuildDownloadList returns one detached screen session running rsync for
// every distinct dac/float directory among files, in order of first
// appearance. Session names carry now in Lima local time.
func BuildDownloadList(files []string, localRoot string, now time.Time) []string {
	if localRoot == "" {
		localRoot = DefaultLocalRoot
	}
	stamp := now.In(limaLocation()).Format("20060102_15h")

	seen := make(map[string]bool)
	var cmds []string
	for _, file := range files {
		dac, float := splitFloat(file)
		if dac == "" {
			continue
		}
		combined := path.Join(dac, float)
		if seen[combined] {
			continue
		}
		seen[combined] = true
		cmds = append(cmds, fmt.Sprintf(
			"screen -dmS auto_%s_%s_%s rsync -avvzhP --delete-during --timeout=30 %s/%s %s",
			dac, float, stamp, DefaultRemote, combined, filepath.Join(localRoot, "dac", dac),
		))
	}
	return cmds
}

// WriteLaunchScript writes a login-shell script running cmds and waiting
// until every auto_ screen session has exited
func WriteLaunchScript(script string, cmds []string) error {
	var b strings.Builder
	b.WriteString("#!/bin/bash -l\n\n")
	b.WriteString(strings.Join(cmds, "\n"))
	b.WriteString("\n\nwhile screen -list | grep -q auto\ndo\n    sleep 1\ndone\n")
	if err := os.WriteFile(script, []byte(b.String()), 0o755); err != nil {
		return fmt.Errorf("writing launch script: %w", err)
	}
	return nil
}

// Launch runs the script with sh and waits for it to finish
func Launch(ctx context.Context, script string) error {
	cmd := exec.CommandContext(ctx, "sh", script)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", script, err)
	}
	return nil
}
