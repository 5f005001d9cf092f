// Corpus reader: loads training data back from any of the three output
// formats, for inspection tooling and round-trip verification.

package datagen

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Corpus is a fully loaded training-data file.
type Corpus struct {
	Samples []TrainingSample
	Stats   CorpusStats
}

// ReadCorpus loads a corpus from path, dispatching on the same suffix
// rules the writer uses.
func ReadCorpus(path string) (*Corpus, error) {
	switch classifyPath(path) {
	case modeBinaryArchive:
		return readBinaryArchive(path)
	case modeJSONArchive:
		return readJSONArchive(path)
	default:
		return readJSONL(path)
	}
}

// readJSONL loads a line-streamed corpus.
func readJSONL(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	corpus := newCorpus()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1<<20), 64<<20) // lines carry whole action spaces

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if err := corpus.addLine(scanner.Bytes()); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return corpus, nil
}

// readJSONArchive loads a per-year JSONL zip archive. Members are
// visited in name order for deterministic sample ordering.
func readJSONArchive(path string) (*Corpus, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	defer zr.Close()

	corpus := newCorpus()
	for _, member := range sortedMembers(&zr.Reader, ".jsonl") {
		data, err := readMember(member)
		if err != nil {
			return nil, err
		}
		lineNum := 0
		for line := range bytes.Lines(data) {
			lineNum++
			if err := corpus.addLine(line); err != nil {
				return nil, fmt.Errorf("%s:%d: %w", member.Name, lineNum, err)
			}
		}
	}
	return corpus, nil
}

// readBinaryArchive loads a per-month binary batch zip archive.
func readBinaryArchive(path string) (*Corpus, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	defer zr.Close()

	corpus := newCorpus()
	for _, member := range sortedMembers(&zr.Reader, ".cpb") {
		data, err := readMember(member)
		if err != nil {
			return nil, err
		}
		batch, err := DecodeBatch(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", member.Name, err)
		}
		for _, s := range batch {
			corpus.add(s)
		}
	}
	return corpus, nil
}

// sortedMembers lists the archive members with the given suffix in name
// order.
func sortedMembers(zr *zip.Reader, suffix string) []*zip.File {
	members := make([]*zip.File, 0, len(zr.File))
	for _, member := range zr.File {
		if strings.HasSuffix(member.Name, suffix) {
			members = append(members, member)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	return members
}

func readMember(member *zip.File) ([]byte, error) {
	rc, err := member.Open()
	if err != nil {
		return nil, fmt.Errorf("opening member %s: %w", member.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading member %s: %w", member.Name, err)
	}
	return data, nil
}

func newCorpus() *Corpus {
	return &Corpus{Stats: newCorpusStats()}
}

func (c *Corpus) add(s TrainingSample) {
	c.Stats.add(&s)
	c.Samples = append(c.Samples, s)
}

func (c *Corpus) addLine(line []byte) error {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}
	var s TrainingSample
	if err := json.Unmarshal(line, &s); err != nil {
		return fmt.Errorf("parsing sample: %w", err)
	}
	c.add(s)
	return nil
}

// FilterCountry returns the samples for one country, in corpus order.
func (c *Corpus) FilterCountry(tag string) []TrainingSample {
	var out []TrainingSample
	for _, s := range c.Samples {
		if string(s.Country) == tag {
			out = append(out, s)
		}
	}
	return out
}
