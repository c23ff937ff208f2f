package loader

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReadTSV(t *testing.T) {
	in := "I love this movie\tpositive\n\nterrible acting\tnegative\n"
	got, err := ReadTSV(strings.NewReader(in), []Field{
		StringField("text"), StringField("true_label"),
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []Sample{
		{"text": "I love this movie", "true_label": "positive"},
		{"text": "terrible acting", "true_label": "negative"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestReadTSV_RowErrors(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		fields []Field
		want   string
	}{
		{
			name:   "column count",
			in:     "a\tb\nc\n",
			fields: []Field{StringField("x"), StringField("y")},
			want:   "row 2: expected 2 columns, got 1",
		},
		{
			name:   "bad number",
			in:     "1.5\nnot-a-number\n",
			fields: []Field{FloatField("score")},
			want:   `row 2: column score: invalid number "not-a-number"`,
		},
		{
			name:   "bad integer",
			in:     "x\n",
			fields: []Field{IntField("id")},
			want:   `row 1: column id: invalid integer "x"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTSV(strings.NewReader(tt.in), tt.fields)
			if err == nil || err.Error() != tt.want {
				t.Errorf("got error %v, want %q", err, tt.want)
			}
		})
	}
}

func TestReadJSON(t *testing.T) {
	in := `[{"text": "hi", "true_label": "greeting"}, {"text": "bye", "true_label": "farewell"}]`
	got, err := ReadJSON(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1]["true_label"] != "farewell" {
		t.Errorf("unexpected samples: %v", got)
	}
}

func TestReadCoNLL(t *testing.T) {
	in := "EU\tB-ORG\tB-ORG\nrejects\tO\tO\nGerman\tB-MISC\tB-PER\n\nPeter\tB-PER\tB-PER\nBlackburn\tI-PER\tI-PER\n"
	got, err := ReadCoNLL(strings.NewReader(in), []string{"true_tags", "predicted_tags"})
	if err != nil {
		t.Fatal(err)
	}
	want := []Sample{
		{
			"tokens":         []string{"EU", "rejects", "German"},
			"true_tags":      []string{"B-ORG", "O", "B-MISC"},
			"predicted_tags": []string{"B-ORG", "O", "B-PER"},
		},
		{
			"tokens":         []string{"Peter", "Blackburn"},
			"true_tags":      []string{"B-PER", "I-PER"},
			"predicted_tags": []string{"B-PER", "I-PER"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sentences mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCoNLL_FieldCountError(t *testing.T) {
	in := "EU\tB-ORG\nrejects\n"
	_, err := ReadCoNLL(strings.NewReader(in), []string{"true_tags"})
	if err == nil || !strings.Contains(err.Error(), "row 2") {
		t.Errorf("expected row 2 error, got %v", err)
	}
}

func TestReadText(t *testing.T) {
	got, err := ReadText(strings.NewReader("positive\nnegative\n\n"), "predicted_label")
	if err != nil {
		t.Fatal(err)
	}
	want := []Sample{
		{"predicted_label": "positive"},
		{"predicted_label": "negative"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge(t *testing.T) {
	dataset := []Sample{{"id": "1", "text": "hi", "true_label": "pos"}}
	output := []Sample{{"id": "1", "predicted_label": "neg"}}
	got, err := Merge(dataset, output)
	if err != nil {
		t.Fatal(err)
	}
	if got[0]["true_label"] != "pos" || got[0]["predicted_label"] != "neg" {
		t.Errorf("unexpected merge: %v", got[0])
	}
}

func TestMerge_Errors(t *testing.T) {
	_, err := Merge([]Sample{{}, {}}, []Sample{{}})
	if err == nil || !strings.Contains(err.Error(), "2 rows but system output has 1") {
		t.Errorf("expected row count error, got %v", err)
	}

	_, err = Merge(
		[]Sample{{"id": "1"}, {"id": "2"}},
		[]Sample{{"id": "1"}, {"id": "7"}},
	)
	if err == nil || !strings.Contains(err.Error(), "row 2") {
		t.Errorf("expected row 2 id mismatch, got %v", err)
	}
}

func TestReadMetaEvalTSV(t *testing.T) {
	in := "sysA\t1\tnewstest2020\tquelle\tref text\tsys text\t78.5\t0.42\n" +
		"sysA\t2\tnewstest2020\tquelle2\tref2\tsys2\t\t-0.10\n"
	got, err := ReadMetaEvalTSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d segments, want 2", len(got))
	}
	if got[0]["manual_score_z"] != 0.42 || got[0]["sys_name"] != "sysA" {
		t.Errorf("unexpected first segment: %v", got[0])
	}
	if _, ok := got[1]["manual_score_raw"]; ok {
		t.Errorf("empty manualRaw should be absent, got %v", got[1]["manual_score_raw"])
	}
}

func TestParseFileType(t *testing.T) {
	if _, err := ParseFileType("tsv"); err != nil {
		t.Errorf("tsv: %v", err)
	}
	if _, err := ParseFileType("parquet"); err == nil {
		t.Error("expected error for unknown file type")
	}
}
