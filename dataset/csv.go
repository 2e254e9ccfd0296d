package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rushteam/hybridrec/core"
)

// csvTable 是带表头的 CSV 读取器，按列名取值。
type csvTable struct {
	r     *csv.Reader
	index map[string]int
	line  int
}

func newCSVTable(r io.Reader) (*csvTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, core.InvalidInput(core.ModuleDataset, "csv has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		index[name] = i
	}
	return &csvTable{r: cr, index: index, line: 1}, nil
}

// columns 解析所需列的位置，缺列时返回 INVALID_INPUT。
func (t *csvTable) columns(names ...string) ([]int, error) {
	out := make([]int, len(names))
	for i, name := range names {
		idx, ok := t.index[name]
		if !ok {
			return nil, core.InvalidInput(core.ModuleDataset, "csv is missing column %q", name)
		}
		out[i] = idx
	}
	return out, nil
}

// next 读取下一行，返回 io.EOF 表示结束。
func (t *csvTable) next() ([]string, error) {
	rec, err := t.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read csv line %d: %w", t.line+1, err)
	}
	t.line++
	return rec, nil
}

func field(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}
