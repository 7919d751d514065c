package card

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseImport reads a newline-delimited text file. Blank lines are
// dropped, the rest are grouped in triples (the last one padded with
// empty lines) and each triple becomes one card.
func ParseImport(r io.Reader) ([]Composition, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}

	for len(lines)%LineCount != 0 {
		lines = append(lines, "")
	}

	cards := make([]Composition, 0, len(lines)/LineCount)
	for i := 0; i < len(lines); i += LineCount {
		var triple [LineCount]string
		copy(triple[:], lines[i:i+LineCount])
		cards = append(cards, Imported(triple))
	}
	return cards, nil
}

// LoadImportFile opens path and parses it with ParseImport.
func LoadImportFile(path string) ([]Composition, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("import %s: %w", path, ErrAssetNotFound)
		}
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	defer f.Close()
	return ParseImport(f)
}
