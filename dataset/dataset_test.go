package dataset

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rushteam/hybridrec/core"
)

const eventsCSV = `timestamp,visitorid,event,itemid,transactionid
1433221332117,257597,view,355908,
1433224214164,992329,view,248676,
1433221999827,111016,addtocart,318965,
1433221955914,483717,transaction,253185,4000
1433221337106,951259,click,367447,
1433223236124,972639,view,22556,
`

func TestReadInteractions(t *testing.T) {
	cfg := DefaultInteractionConfig()
	cfg.SampleSize = 0

	got, err := ReadInteractions(context.Background(), strings.NewReader(eventsCSV), cfg)
	if err != nil {
		t.Fatalf("ReadInteractions() error = %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5 (unknown event dropped)", len(got))
	}

	want := Interaction{UserID: "111016", ItemID: "318965", Event: "addtocart", Weight: 2, Timestamp: 1433221999827}
	if got[2] != want {
		t.Errorf("got[2] = %+v, want %+v", got[2], want)
	}
	if got[3].Weight != 3 {
		t.Errorf("transaction weight = %v, want 3", got[3].Weight)
	}
}

func TestReadInteractions_CustomWeights(t *testing.T) {
	cfg := DefaultInteractionConfig()
	cfg.SampleSize = 0
	cfg.Weights = ActionWeights{"click": 0.5}

	got, err := ReadInteractions(context.Background(), strings.NewReader(eventsCSV), cfg)
	if err != nil {
		t.Fatalf("ReadInteractions() error = %v", err)
	}
	if len(got) != 1 || got[0].ItemID != "367447" || got[0].Weight != 0.5 {
		t.Errorf("got %+v, want single click on 367447", got)
	}
}

func TestReadInteractions_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		cfg   func(*InteractionConfig)
	}{
		{name: "missing column", input: "visitorid,itemid\n1,2\n"},
		{name: "empty file", input: ""},
		{name: "bad timestamp", input: "timestamp,visitorid,event,itemid\nabc,1,view,2\n"},
		{
			name:  "non-positive weight",
			input: eventsCSV,
			cfg:   func(c *InteractionConfig) { c.Weights = ActionWeights{"view": 0} },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultInteractionConfig()
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			_, err := ReadInteractions(context.Background(), strings.NewReader(tt.input), cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !core.IsInvalidInput(err) {
				t.Errorf("error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestSample(t *testing.T) {
	src := make([]int, 100)
	for i := range src {
		src[i] = i
	}

	a := Sample(src, 10, 42)
	b := Sample(src, 10, 42)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same seed produced different samples: %v vs %v", a, b)
	}
	if len(a) != 10 {
		t.Fatalf("len = %d, want 10", len(a))
	}
	seen := map[int]bool{}
	for i, v := range a {
		if seen[v] {
			t.Errorf("duplicate element %d", v)
		}
		seen[v] = true
		if i > 0 && a[i-1] >= v {
			t.Errorf("sample not in original order: %v", a)
		}
	}

	if got := Sample(src, 0, 1); len(got) != 100 {
		t.Errorf("Sample(n=0) len = %d, want 100", len(got))
	}
	if got := Sample(src, 500, 1); len(got) != 100 {
		t.Errorf("Sample(n>len) len = %d, want 100", len(got))
	}
}

func TestReadInteractions_SampleTooLarge(t *testing.T) {
	cfg := DefaultInteractionConfig() // SampleSize 5000 > 5
	got, err := ReadInteractions(context.Background(), strings.NewReader(eventsCSV), cfg)
	if err != nil {
		t.Fatalf("ReadInteractions() error = %v", err)
	}
	if len(got) != 5 {
		t.Errorf("len = %d, want 5", len(got))
	}
}

const propertiesCSV = `timestamp,itemid,property,value
1435460400000,460429,categoryid,1338
1441508400000,206783,888,1116035 1149317 n24.000
1439089200000,395014,400,n552.000 639502 n720.000 424566
1431226800000,59481,790,n15360.000
1431831600000,156781,categoryid,1101
1436065200000,460429,categoryid,1277
1434250800000,9,categoryid,1338
`

func TestReadMetadata(t *testing.T) {
	got, err := ReadMetadata(context.Background(), strings.NewReader(propertiesCSV), DefaultMetadataConfig())
	if err != nil {
		t.Fatalf("ReadMetadata() error = %v", err)
	}
	want := []ItemMetadata{
		{ItemID: "9", Text: "1338"},
		{ItemID: "156781", Text: "1101"},
		{ItemID: "460429", Text: "1338 1277"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadMetadata() = %+v, want %+v", got, want)
	}
}

func TestReadMetadata_MaxRows(t *testing.T) {
	cfg := DefaultMetadataConfig()
	cfg.MaxRows = 1

	got, err := ReadMetadata(context.Background(), strings.NewReader(propertiesCSV), cfg)
	if err != nil {
		t.Fatalf("ReadMetadata() error = %v", err)
	}
	if len(got) != 1 || got[0].ItemID != "460429" || got[0].Text != "1338" {
		t.Errorf("got %+v, want only the first row", got)
	}
}

func TestReadMetadata_MultipleProperties(t *testing.T) {
	cfg := DefaultMetadataConfig()
	cfg.Properties = []string{"categoryid", "790"}

	got, err := ReadMetadata(context.Background(), strings.NewReader(propertiesCSV), cfg)
	if err != nil {
		t.Fatalf("ReadMetadata() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[1].ItemID != "59481" || got[1].Text != "n15360.000" {
		t.Errorf("got[1] = %+v", got[1])
	}
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	events := filepath.Join(dir, "events.csv")
	props := filepath.Join(dir, "props.csv")
	if err := os.WriteFile(events, []byte(eventsCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(props, []byte(propertiesCSV), 0o600); err != nil {
		t.Fatal(err)
	}

	icfg := DefaultInteractionConfig()
	icfg.Path = events
	icfg.SampleSize = 3
	inter, err := LoadInteractions(context.Background(), icfg)
	if err != nil {
		t.Fatalf("LoadInteractions() error = %v", err)
	}
	if len(inter) != 3 {
		t.Errorf("len(inter) = %d, want 3", len(inter))
	}

	mcfg := DefaultMetadataConfig()
	mcfg.Path = props
	meta, err := PrepareMetadata(context.Background(), mcfg)
	if err != nil {
		t.Fatalf("PrepareMetadata() error = %v", err)
	}
	if len(meta) != 3 {
		t.Errorf("len(meta) = %d, want 3", len(meta))
	}

	icfg.Path = filepath.Join(dir, "missing.csv")
	if _, err := LoadInteractions(context.Background(), icfg); err == nil {
		t.Error("expected error for missing file")
	}
}
