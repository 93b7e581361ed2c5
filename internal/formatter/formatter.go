// package formatter renders devices, tracks and player state as text, JSON, CSV or Markdown
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/sptty/internal/models"
	"github.com/desertthunder/sptty/internal/shared"
	"github.com/desertthunder/sptty/internal/ui"
	"github.com/mattn/go-isatty"
)

// Format selects an output encoding.
type Format string

const (
	Text     Format = "text"
	JSON     Format = "json"
	CSV      Format = "csv"
	Markdown Format = "markdown"
)

// Formats lists every supported format, in help order.
var Formats = []Format{Text, JSON, CSV, Markdown}

// ParseFormat maps a flag value to a [Format]. "md" is accepted for Markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text", "txt":
		return Text, nil
	case "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
}

// IsTerminal reports whether w is a terminal, so text output may carry color.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// FormatDuration renders d as m:ss, or h:mm:ss past an hour.
func FormatDuration(d time.Duration) string {
	total := int(d.Round(time.Second) / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// DevicesToText lists one device per line, marking the active one with ✔.
func DevicesToText(devices []models.Device, styled bool) []byte {
	var buf bytes.Buffer
	for _, d := range devices {
		if d.IsActive {
			line := "✔ " + d.Name
			if styled {
				line = ui.Styles().OK(line)
			}
			buf.WriteString(line + "\n")
		} else {
			buf.WriteString("  " + d.Name + "\n")
		}
	}
	return buf.Bytes()
}

// DevicesToCSV converts devices to CSV with columns: ID, Name, Type, Active, Volume
func DevicesToCSV(devices []models.Device) ([]byte, error) {
	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		rows = append(rows, []string{d.ID, d.Name, d.Type, strconv.FormatBool(d.IsActive), strconv.Itoa(d.VolumePercent)})
	}
	return writeCSV([]string{"ID", "Name", "Type", "Active", "Volume"}, rows)
}

// DevicesToMarkdown converts devices to a Markdown table.
func DevicesToMarkdown(devices []models.Device) []byte {
	var buf bytes.Buffer
	buf.WriteString("| Active | Name | Type | Volume |\n")
	buf.WriteString("| --- | --- | --- | --- |\n")
	for _, d := range devices {
		active := ""
		if d.IsActive {
			active = "✔"
		}
		fmt.Fprintf(&buf, "| %s | %s | %s | %d%% |\n", active, escapeCell(d.Name), escapeCell(d.Type), d.VolumePercent)
	}
	return buf.Bytes()
}

// TracksToText lists tracks as "n. Artist - Title [m:ss]" under an optional heading.
func TracksToText(title string, tracks []models.PlaylistTrack, styled bool) []byte {
	var buf bytes.Buffer
	if title != "" {
		heading := fmt.Sprintf("%s (%d tracks)", title, len(tracks))
		if styled {
			heading = ui.Styles().Title(heading)
		}
		buf.WriteString(heading + "\n")
		if !styled {
			buf.WriteString("\n")
		}
	}

	for i, item := range tracks {
		if item.Track == nil {
			fmt.Fprintf(&buf, "%d. (unavailable)\n", i+1)
			continue
		}
		t := item.Track
		fmt.Fprintf(&buf, "%d. %s - %s [%s]\n", i+1, t.ArtistNames(), t.Name, FormatDuration(t.Duration()))
	}
	return buf.Bytes()
}

// TracksToCSV converts tracks to CSV with columns: ID, Title, Artist, Album, Duration, URI, ISRC
func TracksToCSV(tracks []models.PlaylistTrack) ([]byte, error) {
	rows := make([][]string, 0, len(tracks))
	for _, item := range tracks {
		if item.Track == nil {
			continue
		}
		t := item.Track
		isrc := ""
		if t.ExternalIDs != nil {
			isrc = t.ExternalIDs.ISRC
		}
		rows = append(rows, []string{
			t.ID,
			t.Name,
			t.ArtistNames(),
			t.AlbumName(),
			strconv.FormatInt(int64(t.Duration()/time.Second), 10),
			t.URI,
			isrc,
		})
	}
	return writeCSV([]string{"ID", "Title", "Artist", "Album", "Duration", "URI", "ISRC"}, rows)
}

// TracksToMarkdown renders tracks as a numbered Markdown list under a heading.
func TracksToMarkdown(title string, tracks []models.PlaylistTrack) []byte {
	var buf bytes.Buffer
	if title == "" {
		title = "Tracks"
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(tracks))

	for i, item := range tracks {
		if item.Track == nil {
			fmt.Fprintf(&buf, "%d. _unavailable_\n", i+1)
			continue
		}
		t := item.Track
		albumPart := ""
		if album := t.AlbumName(); album != "" {
			albumPart = fmt.Sprintf(" (%s)", album)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, t.ArtistNames(), t.Name, albumPart, FormatDuration(t.Duration()))
	}
	return buf.Bytes()
}

// NowPlaying summarizes the player state in one line.
func NowPlaying(state *models.CurrentlyPlayingContext, styled bool) string {
	if state == nil || state.Item == nil {
		return "Nothing is playing"
	}

	marker := "▶"
	if !state.IsPlaying {
		marker = "⏸"
	}
	t := state.Item
	line := fmt.Sprintf("%s %s - %s [%s/%s] on %s", marker, t.ArtistNames(), t.Name,
		FormatDuration(time.Duration(state.ProgressMS)*time.Millisecond), FormatDuration(t.Duration()), state.Device.Name)
	if styled {
		return ui.Styles().OK(line)
	}
	return line
}

// RenderDevices writes devices to w in format.
func RenderDevices(w io.Writer, format Format, devices []models.Device) error {
	var data []byte
	var err error
	switch format {
	case JSON:
		data, err = shared.MarshalJSON(devices, true)
		data = append(data, '\n')
	case CSV:
		data, err = DevicesToCSV(devices)
	case Markdown:
		data = DevicesToMarkdown(devices)
	default:
		data = DevicesToText(devices, IsTerminal(w))
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// RenderTracks writes tracks to w in format, under title when the format has headings.
func RenderTracks(w io.Writer, format Format, title string, tracks []models.PlaylistTrack) error {
	var data []byte
	var err error
	switch format {
	case JSON:
		data, err = shared.MarshalJSON(tracks, true)
		data = append(data, '\n')
	case CSV:
		data, err = TracksToCSV(tracks)
	case Markdown:
		data = TracksToMarkdown(title, tracks)
	default:
		data = TracksToText(title, tracks, IsTerminal(w))
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func writeCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// WriteTracksFile writes tracks to the file at path, replacing it.
func WriteTracksFile(path string, format Format, title string, tracks []models.PlaylistTrack) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := RenderTracks(f, format, title, tracks); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
