// Package runlog appends the metadata of a finished run to a log file and a
// CSV file kept next to the output directory.
package runlog

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Record describes one run.
type Record struct {
	Time       time.Time
	Program    string
	Iterations int
	Resolution int
	Width      int
	Height     int
	Step       float64
	Scheduling string
	Workers    int
	Elapsed    time.Duration
}

// Header is the first line of every CSV file.
const Header = "Date,Time,Program,Iterations,Resolution,Width,Height,Step,Scheduling,Workers,Time (seconds)"

// LogPath is where the log lines of runs writing to out are kept.
func LogPath(out, suffix string) (string, error) {
	return derivePath(out, suffix, "logs", ".log")
}

// CSVPath is where the CSV rows of runs writing to out are kept.
func CSVPath(out, suffix string) (string, error) {
	return derivePath(out, suffix, "data", ".csv")
}

// derivePath maps out/dir/name_a_b.txt to out/<folder>/name_a<suffix><ext>
// and creates the folder.
func derivePath(out, suffix, folder, ext string) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(out), filepath.Ext(out))
	dir := filepath.Join(filepath.Dir(filepath.Dir(out)), folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return filepath.Join(dir, baseName(stem)+suffix+ext), nil
}

// baseName cuts name right before its second underscore.
func baseName(name string) string {
	first := strings.IndexByte(name, '_')
	if first < 0 {
		return name
	}
	second := strings.IndexByte(name[first+1:], '_')
	if second < 0 {
		return name
	}
	return name[:first+1+second]
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

func step(s float64) string {
	return strconv.FormatFloat(s, 'g', 6, 64)
}

// AppendLog appends one tab separated line describing rec to path.
func AppendLog(path string, rec Record) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	line := fmt.Sprintf("Date:\t%s\tProgram:\t%s\tIterations:\t%d\tResolution:\t%d\tWidth:\t%d\tHeight:\t%d\tStep:\t%s\tScheduling:\t%s\tWorkers:\t%d\tTime:\t%s\tseconds\n",
		rec.Time.Format(time.DateTime), rec.Program, rec.Iterations, rec.Resolution,
		rec.Width, rec.Height, step(rec.Step), rec.Scheduling, rec.Workers, seconds(rec.Elapsed))
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// HasHeader reports whether the first line of the file at path is Header.
// A missing file has no header.
func HasHeader(path string) (bool, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return false, sc.Err()
	}
	return strings.TrimSuffix(sc.Text(), "\r") == Header, nil
}

// AppendCSV appends rec as a CSV row to path, writing Header first unless the
// file already starts with it.
func AppendCSV(path string, rec Record) error {
	hasHeader, err := HasHeader(path)
	if err != nil {
		return fmt.Errorf("check header: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if !hasHeader {
		w.Write(strings.Split(Header, ","))
	}
	w.Write([]string{
		rec.Time.Format(time.DateOnly),
		rec.Time.Format(time.TimeOnly),
		rec.Program,
		strconv.Itoa(rec.Iterations),
		strconv.Itoa(rec.Resolution),
		strconv.Itoa(rec.Width),
		strconv.Itoa(rec.Height),
		step(rec.Step),
		rec.Scheduling,
		strconv.Itoa(rec.Workers),
		seconds(rec.Elapsed),
	})
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Save appends rec to both the log and the CSV file derived from out.
// suffix tells apart the executors writing to the same output directory.
func Save(out, suffix string, rec Record) error {
	logPath, err := LogPath(out, suffix)
	if err != nil {
		return err
	}
	if err := AppendLog(logPath, rec); err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	csvPath, err := CSVPath(out, suffix)
	if err != nil {
		return err
	}
	if err := AppendCSV(csvPath, rec); err != nil {
		return fmt.Errorf("append csv: %w", err)
	}
	return nil
}
