package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func isStdio(path string) bool {
	return path == "" || path == "-"
}

// openInput opens path for reading; "" and "-" mean standard input.
func openInput(path string) (io.ReadCloser, error) {
	if isStdio(path) {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, nil
}

// createOutput creates path for writing; "" and "-" mean stdout.
func createOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if isStdio(path) {
		return nopWriteCloser{stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, nil
}

// readIdentifiers returns args when given, otherwise the non-blank lines of
// the input file.
func readIdentifiers(args []string, input string) ([]string, error) {
	if len(args) > 0 {
		ids := make([]string, 0, len(args))
		for _, a := range args {
			if a = strings.TrimSpace(a); a != "" {
				ids = append(ids, a)
			}
		}
		return ids, nil
	}

	r, err := openInput(input)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return scanIdentifiers(r)
}

func scanIdentifiers(r io.Reader) ([]string, error) {
	var ids []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			ids = append(ids, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read identifiers: %w", err)
	}
	return ids, nil
}
