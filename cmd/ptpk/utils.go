package main

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/chrgeorgiou/CCL/nlpt"
)

func openFile(filename string) *os.File {
	f, err := os.Open(filename)
	if err != nil {
		log.Fatal(err)
	}
	return f
}

func createFile(filename string) *os.File {
	w, err := os.Create(filename)
	if err != nil {
		log.Fatal(err)
	}
	return w
}

// readTable reads a whitespace-separated numeric table with ncols
// columns, skipping blank lines and '#' comments, and returns it
// column-major.
func readTable(filename string, ncols int) [][]float64 {
	f := openFile(filename)
	defer f.Close()

	cols := make([][]float64, ncols)
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != ncols {
			log.Fatalf("%s:%d: got %d columns, want %d", filename, line, len(fields), ncols)
		}
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				log.Fatalf("%s:%d: %v", filename, line, err)
			}
			cols[i] = append(cols[i], v)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatal(err)
	}
	return cols
}

func gridOptions() nlpt.Options {
	opts := nlpt.DefaultOptions()
	opts.Log10kMin = *log10kMin
	opts.Log10kMax = *log10kMax
	opts.NkPerDecade = *nkPerDecade
	return opts
}
