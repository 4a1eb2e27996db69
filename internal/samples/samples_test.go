package samples

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/curvature.report/internal/fsutil"
)

func TestReadCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		cols Columns
		want Series
	}{
		{
			name: "headerless first two columns",
			in:   "0,1\n1,2\n2,0\n",
			want: Series{X: []float64{0, 1, 2}, Y: []float64{1, 2, 0}},
		},
		{
			name: "header skipped when columns unnamed",
			in:   "time,value\n0,1\n1,2\n",
			want: Series{X: []float64{0, 1}, Y: []float64{1, 2}},
		},
		{
			name: "named columns in any order",
			in:   "speed, uptime, extra\n5,2,x\n7,1,y\n",
			cols: Columns{X: "uptime", Y: "Speed"},
			want: Series{X: []float64{1, 2}, Y: []float64{7, 5}},
		},
		{
			name: "empty cells and comments skipped",
			in:   "# exported\nx,y\n0,1\n1,\n2,3\n",
			cols: Columns{X: "x", Y: "y"},
			want: Series{X: []float64{0, 2}, Y: []float64{1, 3}},
		},
		{
			name: "sorted by x",
			in:   "2,20\n0,0\n1,10\n",
			want: Series{X: []float64{0, 1, 2}, Y: []float64{0, 10, 20}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadCSV(strings.NewReader(tt.in), tt.cols)
			if err != nil {
				t.Fatalf("ReadCSV: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("series mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadCSV_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		cols    Columns
		wantErr string
	}{
		{name: "empty", in: "", wantErr: "no samples"},
		{name: "header only", in: "x,y\n", wantErr: "no samples"},
		{name: "bad value", in: "0,1\n1,abc\n", wantErr: `csv line 2: bad y value "abc"`},
		{name: "missing column", in: "a,b\n1,2\n", cols: Columns{X: "a", Y: "c"}, wantErr: `column "c" not found`},
		{name: "one column named", in: "a,b\n1,2\n", cols: Columns{X: "a"}, wantErr: "must be named"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in), tt.cols)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadCSV_MemoryFileSystem(t *testing.T) {
	t.Parallel()

	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/data/run.csv", []byte("x,y\n0,0\n1,1\n2,4\n"), 0644))

	got, err := LoadCSV(mfs, "/data/run.csv", Columns{X: "x", Y: "y"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, got.X)
	assert.Equal(t, []float64{0, 1, 4}, got.Y)

	_, err = LoadCSV(mfs, "/data/missing.csv", Columns{})
	require.Error(t, err)

	require.NoError(t, mfs.WriteFile("/data/empty.csv", []byte("x,y\n"), 0644))
	_, err = LoadCSV(mfs, "/data/empty.csv", Columns{})
	assert.True(t, errors.Is(err, ErrNoSamples))
	assert.Contains(t, err.Error(), "/data/empty.csv")
}

func TestStore_SaveAndLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "samples.db")
	store, err := OpenStore(path)
	require.NoError(t, err)

	ctx := context.Background()
	want := Series{X: []float64{0, 1, 2, 3}, Y: []float64{0, 0.5, 2, 4.5}}
	require.NoError(t, store.SaveSeries(ctx, DefaultQuery(), Series{X: []float64{9}, Y: []float64{9}}))
	require.NoError(t, store.SaveSeries(ctx, DefaultQuery(), want))
	require.NoError(t, store.Close())

	got, err := LoadSQLite(ctx, path, DefaultQuery())
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_OrdersAndSkipsNull(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "radar.db")
	store, err := OpenStore(path)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Exec(`
		CREATE TABLE data (uptime DOUBLE, speed DOUBLE);
		INSERT INTO data VALUES (3, 30), (1, 10), (2, NULL), (NULL, 5), (0, 0);
	`)
	require.NoError(t, err)

	got, err := store.Series(context.Background(), Query{Table: "data", XColumn: "uptime", YColumn: "speed"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 3}, got.X)
	assert.Equal(t, []float64{0, 10, 30}, got.Y)
}

func TestStore_Errors(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "s.db")
	store, err := OpenStore(path)
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	_, err = store.Series(ctx, Query{Table: "samples; DROP TABLE x", XColumn: "x", YColumn: "y"})
	assert.ErrorContains(t, err, "invalid sql identifier")

	_, err = store.Series(ctx, DefaultQuery())
	assert.ErrorContains(t, err, "failed to query samples")

	_, err = store.Exec(`CREATE TABLE empty (x DOUBLE, y DOUBLE)`)
	require.NoError(t, err)
	_, err = store.Series(ctx, Query{Table: "empty", XColumn: "x", YColumn: "y"})
	assert.ErrorIs(t, err, ErrNoSamples)

	err = store.SaveSeries(ctx, DefaultQuery(), Series{X: []float64{1, 2}, Y: []float64{1}})
	assert.ErrorContains(t, err, "2 x values and 1 y values")
}

func TestLoadSQLite_MissingFileNotCreated(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.db")
	_, err := LoadSQLite(context.Background(), path, DefaultQuery())
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "LoadSQLite must not create %s", path)
}

func TestSynthetic(t *testing.T) {
	t.Parallel()

	a, err := DefaultSynthetic().Series()
	require.NoError(t, err)
	b, err := DefaultSynthetic().Series()
	require.NoError(t, err)
	assert.Equal(t, a, b, "same seed must give the same series")
	require.Equal(t, 60, a.Len())
	assert.Equal(t, 0.0, a.X[0])
	assert.InDelta(t, DefaultSynthetic().Span, a.X[59], 1e-12)
	for i := 1; i < a.Len(); i++ {
		assert.Greater(t, a.X[i], a.X[i-1])
	}

	other := DefaultSynthetic()
	other.Seed = 2
	c, err := other.Series()
	require.NoError(t, err)
	assert.NotEqual(t, a.Y, c.Y)

	clean := DefaultSynthetic()
	clean.Noise = 0
	d, err := clean.Series()
	require.NoError(t, err)
	assert.InDelta(t, 0.0, d.Y[0], 1e-15)

	for _, bad := range []Synthetic{
		{N: 2, Span: 1},
		{N: 10, Span: 0},
		{N: 10, Span: 1, Noise: -1},
	} {
		_, err := bad.Series()
		assert.Error(t, err, "%+v", bad)
	}
}
