package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_CustomDataset(t *testing.T) {
	dir := t.TempDir()
	dataset := writeFile(t, dir, "reviews.tsv",
		"loved it\tpositive\nhated it\tnegative\n")
	output := writeFile(t, dir, "my-system.txt", "positive\npositive\n")

	r, err := Run(context.Background(), Options{
		Task:         "text-classification",
		DatasetPath:  dataset,
		SystemOutput: output,
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.SystemName != "my-system" {
		t.Errorf("system name = %q, want my-system", r.SystemName)
	}
	if got := r.Overall["Accuracy"].Score; got != 0.5 {
		t.Errorf("accuracy = %v, want 0.5", got)
	}
}

func TestRun_HubDataset(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /datasets/sst2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"sst2","task":"text-classification","file_type":"tsv","splits":["test"]}`))
	})
	mux.HandleFunc("GET /datasets/sst2/test.tsv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("fine film\tpositive\nawful\tnegative\n"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	output := writeFile(t, dir, "sys.txt", "positive\nnegative\n")

	r, err := Run(context.Background(), Options{
		Task:         "text-classification",
		Dataset:      "sst2",
		SystemOutput: output,
		HubURL:       srv.URL,
		CacheDir:     filepath.Join(dir, "cache"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.Dataset.Name != "sst2" {
		t.Errorf("dataset = %+v, want name sst2", r.Dataset)
	}
	if got := r.Overall["Accuracy"].Score; got != 1.0 {
		t.Errorf("accuracy = %v, want 1.0", got)
	}
}

func TestRun_TaskMismatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /datasets/squad", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"squad","task":"qa-extractive","file_type":"json","splits":["test"]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	output := writeFile(t, dir, "sys.txt", "positive\n")

	_, err := Run(context.Background(), Options{
		Task:         "text-classification",
		Dataset:      "squad",
		SystemOutput: output,
		HubURL:       srv.URL,
		CacheDir:     filepath.Join(dir, "cache"),
	})
	if err == nil {
		t.Fatal("expected task mismatch error")
	}
}

func TestRun_DatasetFlagValidation(t *testing.T) {
	_, err := Run(context.Background(), Options{Task: "text-classification", SystemOutput: "x"})
	if err == nil {
		t.Error("expected error when no dataset is given")
	}

	_, err = Run(context.Background(), Options{
		Task: "text-classification", DatasetPath: "a", Dataset: "b", SystemOutput: "x",
	})
	if err == nil {
		t.Error("expected error when both dataset forms are given")
	}
}

func TestRun_RowMismatch(t *testing.T) {
	dir := t.TempDir()
	dataset := writeFile(t, dir, "d.tsv", "one\tpositive\ntwo\tnegative\n")
	output := writeFile(t, dir, "o.txt", "positive\n")

	_, err := Run(context.Background(), Options{
		Task:         "text-classification",
		DatasetPath:  dataset,
		SystemOutput: output,
	})
	if err == nil {
		t.Fatal("expected merge error for row count mismatch")
	}
}

func TestRun_NERTrainingVocabulary(t *testing.T) {
	dir := t.TempDir()
	dataset := writeFile(t, dir, "test.conll",
		"Peter B-PER\nBlackburn I-PER\n\nBRUSSELS B-LOC\n1996-08-22 O\n")
	output := writeFile(t, dir, "tagger.conll",
		"Peter B-PER B-PER\nBlackburn I-PER I-PER\n\nBRUSSELS B-LOC B-LOC\n1996-08-22 O O\n")
	training := writeFile(t, dir, "train.conll",
		"Peter B-PER\nBlackburn I-PER\n\nBRUSSELS B-LOC\n1996-08-22 O\n")

	r, err := Run(context.Background(), Options{
		Task:         "named-entity-recognition",
		DatasetPath:  dataset,
		SystemOutput: output,
		TrainingPath: training,
	})
	if err != nil {
		t.Fatal(err)
	}

	// The training split contains every test token, so the vocabulary must
	// be seeded from the CoNLL token sequences and all OOV counts are zero.
	found := false
	for _, ar := range r.Analyses {
		if ar.Bucket == nil || ar.Bucket.Name != "num_oov" {
			continue
		}
		found = true
		for _, bp := range ar.Bucket.Buckets {
			if bp.Interval == nil || bp.Interval.Lo != 0 || bp.Interval.Hi != 0 {
				t.Errorf("num_oov bucket covers %v, want only 0", bp.Interval)
			}
		}
	}
	if !found {
		t.Fatal("num_oov analysis missing from the report")
	}
}

func TestRun_TrainingSetNotApplicable(t *testing.T) {
	dir := t.TempDir()
	dataset := writeFile(t, dir, "d.tsv", "1.5\n")
	output := writeFile(t, dir, "o.txt", "1.5\n")

	_, err := Run(context.Background(), Options{
		Task:         "tabular-regression",
		DatasetPath:  dataset,
		SystemOutput: output,
		TrainingPath: dataset,
	})
	if err == nil {
		t.Fatal("expected error for a training set on a task without vocabulary features")
	}
}
