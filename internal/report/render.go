package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"sbomstat/internal/resolver"
)

// MatchHeader is the column header of the match report.
var MatchHeader = []string{"VEX", "Num", "SBOMs"}

type frequencyDocument struct {
	Title     string  `json:"title" yaml:"title"`
	Unit      string  `json:"unit" yaml:"unit"`
	Unique    int     `json:"unique" yaml:"unique"`
	Processed int     `json:"processed" yaml:"processed"`
	Entries   []Entry `json:"entries" yaml:"entries"`
}

// RenderFrequency writes f to w in the requested format.
func RenderFrequency(w io.Writer, f *Frequency, format Format) error {
	switch format {
	case FormatText:
		return renderFrequencyText(w, f)
	case FormatTable, "":
		return renderFrequencyTable(w, f)
	case FormatCSV:
		return renderFrequencyCSV(w, f)
	case FormatJSON:
		return writeJSON(w, frequencyDoc(f))
	case FormatYAML:
		return writeYAML(w, frequencyDoc(f))
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func frequencyDoc(f *Frequency) frequencyDocument {
	return frequencyDocument{
		Title:     f.Title,
		Unit:      f.unit(),
		Unique:    f.Len(),
		Processed: f.Processed,
		Entries:   f.Entries(),
	}
}

func (f *Frequency) unit() string {
	if f.Unit == "" {
		return "entries"
	}
	return f.Unit
}

func renderFrequencyText(w io.Writer, f *Frequency) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%d unique %s\n", f.Len(), f.unit())
	for _, entry := range f.Entries() {
		if f.KeysOnly {
			b.WriteString(entry.Key)
		} else {
			fmt.Fprintf(&b, "%s: %d", entry.Key, entry.Count)
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func renderFrequencyTable(w io.Writer, f *Frequency) error {
	entries := f.Entries()
	var (
		headers []string
		rows    = make([][]string, 0, len(entries))
		aligns  []Alignment
		footer  []string
	)
	if f.KeysOnly {
		headers = []string{"Name"}
		aligns = []Alignment{AlignLeft}
		for _, entry := range entries {
			rows = append(rows, []string{entry.Key})
		}
		footer = []string{fmt.Sprintf("%d unique %s", len(entries), f.unit())}
	} else {
		headers = []string{"Key", "Count"}
		aligns = []Alignment{AlignLeft, AlignRight}
		for _, entry := range entries {
			rows = append(rows, []string{entry.Key, strconv.Itoa(entry.Count)})
		}
		footer = []string{fmt.Sprintf("%d unique %s", len(entries), f.unit()), ""}
	}
	_, err := fmt.Fprintln(w, Table(f.Title, headers, rows, aligns, footer))
	return err
}

func renderFrequencyCSV(w io.Writer, f *Frequency) error {
	cw := csv.NewWriter(w)
	if f.KeysOnly {
		if err := cw.Write([]string{"name"}); err != nil {
			return err
		}
	} else if err := cw.Write([]string{"key", "count"}); err != nil {
		return err
	}
	for _, entry := range f.Entries() {
		record := []string{entry.Key}
		if !f.KeysOnly {
			record = append(record, strconv.Itoa(entry.Count))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RenderMatch writes a resolver result to w in the requested format.
func RenderMatch(w io.Writer, result resolver.Result, format Format) error {
	switch format {
	case FormatText:
		return renderMatchText(w, result)
	case FormatTable, "":
		return renderMatchTable(w, result)
	case FormatCSV:
		return renderMatchCSV(w, result)
	case FormatJSON:
		return writeJSON(w, result)
	case FormatYAML:
		return writeYAML(w, result)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// HitsLine formats the match summary.
func HitsLine(result resolver.Result) string {
	return fmt.Sprintf("Hits: %d, Misses: %d", result.Hits, result.Misses)
}

func joinTargets(targets []string) string {
	return "[" + strings.Join(targets, " ") + "]"
}

func renderMatchText(w io.Writer, result resolver.Result) error {
	var b strings.Builder
	b.WriteString(strings.Join(MatchHeader, ","))
	b.WriteByte('\n')
	for _, row := range result.Rows {
		fmt.Fprintf(&b, "%q,%d,%q\n", row.Source, row.Count(), joinTargets(row.Targets))
	}
	b.WriteString(HitsLine(result))
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

func renderMatchTable(w io.Writer, result resolver.Result) error {
	rows := make([][]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		rows = append(rows, []string{row.Source, strconv.Itoa(row.Count()), strings.Join(row.Targets, "\n")})
	}
	aligns := []Alignment{AlignLeft, AlignRight, AlignLeft}
	_, err := fmt.Fprintf(w, "%s\n%s\n", Table("", MatchHeader, rows, aligns, nil), HitsLine(result))
	return err
}

func renderMatchCSV(w io.Writer, result resolver.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(MatchHeader); err != nil {
		return err
	}
	for _, row := range result.Rows {
		if err := cw.Write([]string{row.Source, strconv.Itoa(row.Count()), joinTargets(row.Targets)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
