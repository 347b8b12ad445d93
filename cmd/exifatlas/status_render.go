package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"exifatlas/internal/catalog"
	"exifatlas/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

// preflightLines renders check results. Failed optional checks are warnings.
func preflightLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		kind := statusOK
		switch {
		case !r.Passed && r.Optional:
			kind = statusWarn
		case !r.Passed:
			kind = statusError
		}
		lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
	}
	return lines
}

func healthLines(h catalog.DatabaseHealth, colorize bool) []string {
	lines := []string{renderStatusLine("Database", statusInfo, h.DBPath, colorize)}
	if !h.DatabaseExists {
		return append(lines, renderStatusLine("Exists", statusError, "database file not found", colorize))
	}
	lines = append(lines, renderStatusLine("Readable", boolKind(h.DatabaseReadable), yesNo(h.DatabaseReadable), colorize))
	lines = append(lines, renderStatusLine("Schema version", statusInfo, valueOrDash(h.SchemaVersion), colorize))
	lines = append(lines, renderStatusLine("Photos table", boolKind(h.TableExists), yesNo(h.TableExists), colorize))
	if len(h.MissingColumns) > 0 {
		lines = append(lines, renderStatusLine("Columns", statusError, "missing "+strings.Join(h.MissingColumns, ", "), colorize))
	} else if h.TableExists {
		lines = append(lines, renderStatusLine("Columns", statusOK, fmt.Sprintf("%d present", len(h.ColumnsPresent)), colorize))
	}
	lines = append(lines, renderStatusLine("Integrity", boolKind(h.IntegrityCheck), yesNo(h.IntegrityCheck), colorize))
	lines = append(lines, renderStatusLine("Total photos", statusInfo, fmt.Sprint(h.TotalPhotos), colorize))
	if h.Error != "" {
		lines = append(lines, renderStatusLine("Error", statusError, h.Error, colorize))
	}
	return lines
}

func boolKind(ok bool) statusKind {
	if ok {
		return statusOK
	}
	return statusError
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
