package storage

import (
	"path/filepath"
	"testing"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := OpenIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestIndexRecordsSaves(t *testing.T) {
	st := New(t.TempDir())
	idx := openTestIndex(t)
	st.SetIndex(idx)

	for _, preset := range []string{"hero", "nebula", "hero"} {
		meta := SessionMetadata{Preset: preset, Seed: 5, Metrics: map[string]float64{"links_per_frame": 3.5}}
		if _, err := st.Save(meta, sampleFrames(), nil); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	all, err := idx.Sessions("", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(all))
	}
	if all[0].Frames != 2 || all[0].LinksPerFrame != 3.5 {
		t.Errorf("summary = %+v", all[0])
	}
	for i := 1; i < len(all); i++ {
		if all[i].Timestamp.After(all[i-1].Timestamp) {
			t.Error("sessions not newest first")
		}
	}

	hero, err := idx.Sessions("hero", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hero) != 2 {
		t.Errorf("expected 2 hero sessions, got %d", len(hero))
	}

	one, err := idx.Sessions("", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(one) != 1 {
		t.Errorf("limit ignored: %d rows", len(one))
	}
}

func TestIndexRebuild(t *testing.T) {
	st := New(t.TempDir())
	for i := 0; i < 2; i++ {
		if _, err := st.Save(SessionMetadata{Preset: "contact"}, nil, nil); err != nil {
			t.Fatal(err)
		}
	}

	idx := openTestIndex(t)
	if err := idx.Add(SessionMetadata{ID: "stale", Preset: "hero"}); err != nil {
		t.Fatal(err)
	}
	n, err := idx.Rebuild(st)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("rebuilt %d sessions, want 2", n)
	}
	rows, err := idx.Sessions("", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Errorf("expected stale row dropped, got %d rows", len(rows))
	}
	for _, r := range rows {
		if r.Preset != "contact" {
			t.Errorf("unexpected row %+v", r)
		}
	}
}

func TestIndexReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Add(SessionMetadata{ID: "a", Preset: "hero"}); err != nil {
		t.Fatal(err)
	}
	idx.Close()

	idx, err = OpenIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	rows, err := idx.Sessions("hero", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ID != "a" {
		t.Errorf("rows = %+v", rows)
	}
}
