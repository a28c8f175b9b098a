package processing

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"facerec/db"
	"facerec/faces/facestest"
	"facerec/index"
	"facerec/storage"
)

type testEnv struct {
	pipeline *Pipeline
	detector *facestest.Detector
	media    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	media := t.TempDir()
	s, err := storage.NewDiskStorage(media)
	if err != nil {
		t.Fatal(err)
	}
	gdb, err := db.Open("", filepath.Join(t.TempDir(), "faces.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	idx, err := index.New(gdb)
	if err != nil {
		t.Fatal(err)
	}
	detector := &facestest.Detector{}
	return &testEnv{
		pipeline: &Pipeline{
			Storage:       s,
			Detector:      detector,
			Index:         idx,
			FacesDir:      "faces",
			ProbeDir:      media,
			MaxDistanceSq: 0.36,
		},
		detector: detector,
		media:    media,
	}
}

func upload(name string, data []byte) Upload {
	return Upload{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func (e *testEnv) storedFiles(t *testing.T) []string {
	t.Helper()
	names, err := e.pipeline.Storage.List("faces")
	if err != nil {
		t.Fatal(err)
	}
	return names
}

func TestStoredName(t *testing.T) {
	tests := []struct {
		userID string
		name   string
		want   string
	}{
		{"42", "me.jpg", "42_me.jpg"},
		{"42", "../../etc/passwd", "42_passwd"},
		{"7", "dir/sub/face.png", "7_face.png"},
		{"7", "", "7_image"},
		{"../x", "a.jpg", "..-x_a.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := StoredName(tt.userID, tt.name); got != tt.want {
				t.Errorf("StoredName() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPipeline_IngestMixedBatch(t *testing.T) {
	env := newTestEnv(t)
	results := env.pipeline.Ingest("42", []Upload{
		upload("a.png", facestest.Face(10)),
		upload("empty.png", facestest.NoFace()),
		upload("b.png", facestest.Face(200)),
	})

	want := []IngestResult{
		{File: "42_a.png", Saved: true, Faces: 1},
		{File: "42_empty.png", Error: ErrNoFace.Error()},
		{File: "42_b.png", Saved: true, Faces: 1},
	}
	if !reflect.DeepEqual(results, want) {
		t.Errorf("Ingest() = %+v, want %+v", results, want)
	}
	if got := env.storedFiles(t); !reflect.DeepEqual(got, []string{"42_a.png", "42_b.png"}) {
		t.Errorf("stored files = %v", got)
	}
	if _, err := os.Stat(filepath.Join(env.media, "faces", "42_empty.png")); !os.IsNotExist(err) {
		t.Errorf("image without a face was kept: %v", err)
	}
	if env.pipeline.Index.Count() != 2 {
		t.Errorf("index has %d entries, want 2", env.pipeline.Index.Count())
	}
}

func TestPipeline_IngestInvalidFiles(t *testing.T) {
	env := newTestEnv(t)
	broken := Upload{
		Name: "broken.png",
		Open: func() (io.ReadCloser, error) { return nil, errors.New("boom") },
	}
	results := env.pipeline.Ingest("1", []Upload{
		upload("notes.txt", []byte("not an image")),
		broken,
	})
	for _, r := range results {
		if r.Saved || r.Error == "" {
			t.Errorf("result %+v should be an error", r)
		}
	}
	if got := env.storedFiles(t); len(got) != 0 {
		t.Errorf("stored files = %v, want none", got)
	}
}

func TestPipeline_IngestOverwriteWithoutFace(t *testing.T) {
	env := newTestEnv(t)
	env.pipeline.Ingest("42", []Upload{upload("me.png", facestest.Face(90))})
	if _, ok := env.pipeline.Index.Get("42_me.png"); !ok {
		t.Fatal("first upload not indexed")
	}
	// Same name, no face: the old file is gone, so must be its index entry
	env.pipeline.Ingest("42", []Upload{upload("me.png", facestest.NoFace())})
	if _, ok := env.pipeline.Index.Get("42_me.png"); ok {
		t.Error("stale index entry kept")
	}
	if got := env.storedFiles(t); len(got) != 0 {
		t.Errorf("stored files = %v, want none", got)
	}
}

func TestPipeline_IngestSameNameInBatch(t *testing.T) {
	replaced := errReplaced.Error()
	tests := []struct {
		name    string
		uploads []Upload
		want    []IngestResult
		stored  []string
	}{
		{
			name:    "face then no face",
			uploads: []Upload{upload("me.png", facestest.Face(90)), upload("me.png", facestest.NoFace())},
			want: []IngestResult{
				{File: "42_me.png", Error: replaced},
				{File: "42_me.png", Error: ErrNoFace.Error()},
			},
			stored: []string{},
		},
		{
			name:    "two faces",
			uploads: []Upload{upload("me.png", facestest.Face(90)), upload("me.png", facestest.Face(30))},
			want: []IngestResult{
				{File: "42_me.png", Error: replaced},
				{File: "42_me.png", Saved: true, Faces: 1},
			},
			stored: []string{"42_me.png"},
		},
		{
			name:    "no face then face",
			uploads: []Upload{upload("me.png", facestest.NoFace()), upload("me.png", facestest.Face(30))},
			want: []IngestResult{
				{File: "42_me.png", Error: ErrNoFace.Error()},
				{File: "42_me.png", Saved: true, Faces: 1},
			},
			stored: []string{"42_me.png"},
		},
		{
			name: "unreadable second upload keeps the first",
			uploads: []Upload{
				upload("me.png", facestest.Face(90)),
				{Name: "me.png", Open: func() (io.ReadCloser, error) { return nil, errors.New("boom") }},
			},
			want: []IngestResult{
				{File: "42_me.png", Saved: true, Faces: 1},
				{File: "42_me.png", Error: "cannot read upload: boom"},
			},
			stored: []string{"42_me.png"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			results := env.pipeline.Ingest("42", tt.uploads)
			if !reflect.DeepEqual(results, tt.want) {
				t.Errorf("Ingest() = %+v, want %+v", results, tt.want)
			}
			if got := env.storedFiles(t); len(got) != len(tt.stored) || (len(got) > 0 && !reflect.DeepEqual(got, tt.stored)) {
				t.Errorf("stored files = %v, want %v", got, tt.stored)
			}
			if _, ok := env.pipeline.Index.Get("42_me.png"); ok != (len(tt.stored) == 1) {
				t.Errorf("index entry present = %v", ok)
			}
		})
	}
}

func TestPipeline_Recognize(t *testing.T) {
	env := newTestEnv(t)
	env.pipeline.Ingest("42", []Upload{
		upload("a.png", facestest.Face(10)),
		upload("b.png", facestest.Face(200)),
	})

	tests := []struct {
		name    string
		probe   []byte
		want    string
		wantErr error
	}{
		{"matches a", facestest.Face(10), "42_a.png", nil},
		{"matches b", facestest.Face(201), "42_b.png", nil},
		{"unknown", facestest.Face(120), "", nil},
		{"no face", facestest.NoFace(), "", ErrNoFace},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.pipeline.RecognizeUpload("probe.png", bytes.NewReader(tt.probe))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("RecognizeUpload() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("RecognizeUpload() = %q, want %q", got, tt.want)
			}
			probes, _ := filepath.Glob(filepath.Join(env.media, "probe_*"))
			if len(probes) != 0 {
				t.Errorf("probe files left behind: %v", probes)
			}
		})
	}
}

func TestPipeline_RecognizeFirstMatchWins(t *testing.T) {
	env := newTestEnv(t)
	env.pipeline.Ingest("2", []Upload{upload("x.png", facestest.Face(50))})
	env.pipeline.Ingest("1", []Upload{upload("x.png", facestest.Face(50))})

	got, err := env.pipeline.RecognizeUpload("p.png", bytes.NewReader(facestest.Face(50)))
	if err != nil {
		t.Fatal(err)
	}
	if got != "1_x.png" {
		t.Errorf("RecognizeUpload() = %q, want the first file in name order", got)
	}
}

func TestPipeline_RecognizeEmptyStore(t *testing.T) {
	env := newTestEnv(t)
	got, err := env.pipeline.RecognizeUpload("p.png", bytes.NewReader(facestest.Face(50)))
	if err != nil || got != "" {
		t.Errorf("RecognizeUpload() = %q, %v, want no match", got, err)
	}
}

func TestPipeline_RecognizeBackfillsIndex(t *testing.T) {
	env := newTestEnv(t)
	// Files copied into the faces directory by hand are not in the index yet
	dir := filepath.Join(env.media, "faces")
	if err := os.MkdirAll(dir, 0777); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "9_manual.png"), facestest.Face(30), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "9_blank.png"), facestest.NoFace(), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "9_junk.txt"), []byte("junk"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := env.pipeline.RecognizeUpload("p.png", bytes.NewReader(facestest.Face(30)))
	if err != nil || got != "9_manual.png" {
		t.Fatalf("RecognizeUpload() = %q, %v", got, err)
	}
	entry, ok := env.pipeline.Index.Get("9_manual.png")
	if !ok || !entry.HasFace || entry.UserID != "9" {
		t.Errorf("index entry = %+v, %v", entry, ok)
	}
	if blank, ok := env.pipeline.Index.Get("9_blank.png"); !ok || blank.HasFace {
		t.Errorf("blank entry = %+v, %v, want indexed without face", blank, ok)
	}

	// Second lookup only runs the detector on the probe
	before := env.detector.Calls()
	got, err = env.pipeline.RecognizeUpload("p.png", bytes.NewReader(facestest.Face(120)))
	if err != nil || got != "" {
		t.Fatalf("RecognizeUpload() = %q, %v", got, err)
	}
	// probe + the junk file, which can't be indexed
	if calls := env.detector.Calls() - before; calls != 2 {
		t.Errorf("detector ran %d times, want 2", calls)
	}
}
