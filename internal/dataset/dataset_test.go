package dataset

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"spiralfit/internal/model"
)

func TestReadParsesNamedColumns(t *testing.T) {
	in := strings.NewReader("idx,y,x\n1,42.5,6.0\n2,43.25,7.5\n")
	obs, err := Read(in)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if obs.Len() != 2 {
		t.Fatalf("len = %d, want 2", obs.Len())
	}
	if obs.X[0] != 6.0 || obs.Y[0] != 42.5 {
		t.Fatalf("first pair = (%v,%v), want (6,42.5)", obs.X[0], obs.Y[0])
	}
	if obs.X[1] != 7.5 || obs.Y[1] != 43.25 {
		t.Fatalf("second pair = (%v,%v), want (7.5,43.25)", obs.X[1], obs.Y[1])
	}
}

func TestReadSkipsBlankRows(t *testing.T) {
	in := strings.NewReader("x,y\n1,2\n,\n3,4\n")
	obs, err := Read(in)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if obs.Len() != 2 {
		t.Fatalf("len = %d, want 2", obs.Len())
	}
}

func TestReadMissingColumn(t *testing.T) {
	in := strings.NewReader("a,b\n1,2\n")
	if _, err := Read(in); err == nil {
		t.Fatal("expected error for missing x/y columns")
	}
}

func TestReadRejectsBadValue(t *testing.T) {
	in := strings.NewReader("x,y\n1,two\n")
	if _, err := Read(in); err == nil {
		t.Fatal("expected error for unparsable value")
	}
}

func TestReadRejectsEmptyBody(t *testing.T) {
	in := strings.NewReader("x,y\n")
	if _, err := Read(in); err == nil {
		t.Fatal("expected error for source without data rows")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWriteLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xy_data.csv")
	in := Observations{X: []float64{6, 7.125, 60}, Y: []float64{42, 45.5, 70.25}}
	if err := Write(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Len() != in.Len() {
		t.Fatalf("len = %d, want %d", out.Len(), in.Len())
	}
	for i := range in.X {
		if out.X[i] != in.X[i] || out.Y[i] != in.Y[i] {
			t.Fatalf("pair %d = (%v,%v), want (%v,%v)", i, out.X[i], out.Y[i], in.X[i], in.Y[i])
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	p := model.Params{ThetaDeg: 25, M: 0.015, X: 50}
	a := Generate(p, 100, 0.5, 42)
	b := Generate(p, 100, 0.5, 42)
	if a.Len() != 100 || b.Len() != 100 {
		t.Fatalf("lens = %d, %d, want 100", a.Len(), b.Len())
	}
	for i := range a.X {
		if a.X[i] != b.X[i] || a.Y[i] != b.Y[i] {
			t.Fatalf("sample %d differs across identical seeds", i)
		}
	}
}

func TestGenerateNoiseless(t *testing.T) {
	p := model.Params{ThetaDeg: 0, M: 0, X: 10}
	obs := Generate(p, 3, 0, 7)
	for i := range obs.X {
		if math.IsNaN(obs.X[i]) || math.IsNaN(obs.Y[i]) {
			t.Fatalf("sample %d not finite", i)
		}
	}
	// theta=0, M=0: x = t + X and y = 42 + sin(0.3t).
	if math.Abs(obs.X[0]-16) > 1e-12 {
		t.Fatalf("first x = %v, want 16", obs.X[0])
	}
}
