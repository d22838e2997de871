package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nathangeffen/libuseful/pkg/config"
	"github.com/nathangeffen/libuseful/pkg/errors"
	"github.com/nathangeffen/libuseful/pkg/formats/columnar"
	"github.com/nathangeffen/libuseful/pkg/testutil"
)

const peopleCSV = `First,Last,age
Joe,Bloggs,23.123457
Jane,Doe,30.123457
Mary-Jane,Smith,29.234000
Peter,Piper,56.100000
John,James,37.123450
Leon,The Lion,21.000000
Igor,"The ""Gentle"" Giant",22.222222
Gloria,Gaynor,18.200000
Lola,Lillyfield,90.000000
`

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	a := newApp()
	root := a.rootCommand()

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err = root.Execute()
	require.NoError(t, a.close(context.Background()))
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "useful v"+version)
	assert.Contains(t, out, "Go version:")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		args    []string
		want    []string
		wantErr bool
	}{
		{
			name:    "valid",
			content: peopleCSV,
			want:    []string{"CSV is valid"},
		},
		{
			name:    "ragged",
			content: "a,b\n1,2\n3\n4,5,6\n",
			want:    []string{"CSV is invalid"},
			wantErr: true,
		},
		{
			name:    "ragged verbose",
			content: "a,b\n1,2\n3\n4,5,6\n",
			args:    []string{"--verbose"},
			want: []string{
				"CSV is invalid",
				"Row 1 has 1 columns, expected 2.",
				"Row 2 has 3 columns, expected 2.",
			},
			wantErr: true,
		},
		{
			name:    "semicolons",
			content: "a;b\n1;2\n",
			args:    []string{"--delimiter", ";"},
			want:    []string{"CSV is valid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.TempFile(t, "input.csv", tt.content)
			out, _, err := run(t, append([]string{"validate", path}, tt.args...)...)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
			} else {
				require.NoError(t, err)
			}
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestValidateDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("x,y\n1,2\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte("x,y\n1\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x\n1,2,3\n"), 0o600))

	out, _, err := run(t, "validate", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed validation")
	assert.Contains(t, out, filepath.Join(dir, "a.csv")+": CSV is valid")
	assert.Contains(t, out, filepath.Join(dir, "b.csv")+": CSV is invalid")
	assert.NotContains(t, out, "notes.txt")

	out, _, err = run(t, "validate", dir, "--glob", "a.*")
	require.NoError(t, err)
	assert.Contains(t, out, "CSV is valid")

	_, _, err = run(t, "validate", dir, "--glob", "*.tsv")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}

func TestConvertRoundTrip(t *testing.T) {
	for _, ext := range []string{".json", ".arrow", ".parquet", ".avro", ".json.gz", ".arrow.zst"} {
		t.Run(ext, func(t *testing.T) {
			input := testutil.TempFile(t, "people.csv", peopleCSV)
			dir := filepath.Dir(input)
			table := filepath.Join(dir, "people"+ext)
			back := filepath.Join(dir, "back.csv")

			out, _, err := run(t, "convert", input, table, "--types", "text, text, number")
			require.NoError(t, err)
			assert.Contains(t, out, "Converted 9 rows and 3 columns")

			_, _, err = run(t, "convert", table, back)
			require.NoError(t, err)

			got, err := os.ReadFile(back)
			require.NoError(t, err)
			assert.Equal(t, peopleCSV, string(got))
		})
	}
}

func TestConvertToStdout(t *testing.T) {
	input := testutil.TempFile(t, "people.csv", peopleCSV)

	out, _, err := run(t, "convert", input, "-", "--format", "json")
	require.NoError(t, err)

	table, err := columnar.Read(strings.NewReader(out), columnar.JSON)
	require.NoError(t, err)
	assert.Equal(t, 9, table.Rows())

	// Types were inferred from the cells.
	age, err := table.Float(8, 2)
	require.NoError(t, err)
	assert.Equal(t, 90.0, age)
	name, err := table.Text(6, 1)
	require.NoError(t, err)
	assert.Equal(t, `The "Gentle" Giant`, name)
}

func TestConvertErrors(t *testing.T) {
	input := testutil.TempFile(t, "people.csv", peopleCSV)
	dir := filepath.Dir(input)

	tests := []struct {
		name     string
		args     []string
		wantType errors.ErrorType
	}{
		{"missing input", []string{"convert", filepath.Join(dir, "nope.csv"), "-"}, errors.ErrorTypeFile},
		{"bad types", []string{"convert", input, "-", "--types", "text, blob, number"}, errors.ErrorTypeInvalidArgument},
		{"wrong arity", []string{"convert", input, "-", "--types", "text, number"}, errors.ErrorTypeInvalidArgument},
		{"bad format", []string{"convert", input, "-", "--format", "xlsx"}, errors.ErrorTypeInvalidArgument},
		{"bad parquet codec", []string{"convert", input, filepath.Join(dir, "x.parquet"), "--compression", "rar"}, errors.ErrorTypeInvalidArgument},
		{"bad stream codec", []string{"convert", input, filepath.Join(dir, "x.json"), "--compression", "rar"}, errors.ErrorTypeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantType, errors.TypeOf(err), err.Error())
		})
	}
}

func TestConvertFailFast(t *testing.T) {
	input := testutil.TempFile(t, "people.csv", peopleCSV)
	output := filepath.Join(filepath.Dir(input), "out.json")

	_, _, err := run(t, "convert", input, output, "--types", "text, number, number")
	require.NoError(t, err, "conversion errors are tolerated by default")

	cfg := config.NewDefaultConfig("useful")
	cfg.Conversion.FailFast = true
	path := filepath.Join(filepath.Dir(input), "useful.yaml")
	require.NoError(t, config.Save(path, cfg))

	_, _, err = run(t, "--config", path, "convert", input, output, "--types", "text, number, number")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNumericFormat))
}

func TestMatrix(t *testing.T) {
	input := testutil.TempFile(t, "grid.csv", "x,y\n1,2\n3,4.5\n")

	out, stderr, err := run(t, "matrix", input)
	require.NoError(t, err)
	assert.Equal(t, "       x         y\n1.000000  2.000000\n3.000000  4.500000\n", out)
	assert.Empty(t, stderr)

	out, _, err = run(t, "matrix", input, "--csv")
	require.NoError(t, err)
	assert.Equal(t, "x,y\n1.000000,2.000000\n3.000000,4.500000\n", out)
}

func TestMatrixReportsBadCells(t *testing.T) {
	input := testutil.TempFile(t, "grid.csv", "x,y\n7x,2\n")

	out, stderr, err := run(t, "matrix", input, "--csv")
	require.NoError(t, err)
	assert.Equal(t, "x,y\n7.000000,2.000000\n", out)
	assert.Contains(t, stderr, `row 0, column 0: cannot convert "7x", stored 7.000000`)
}

func TestMetricsFlag(t *testing.T) {
	input := testutil.TempFile(t, "grid.csv", "x,y\n1,2\n")

	_, stderr, err := run(t, "--metrics", "validate", input)
	require.NoError(t, err)
	assert.Contains(t, stderr, "libuseful_csv_rows_read_total")
}

func TestTraceFlag(t *testing.T) {
	input := testutil.TempFile(t, "grid.csv", "x,y\n1,2\n")

	_, stderr, err := run(t, "--trace", "validate", input)
	require.NoError(t, err)
	assert.Contains(t, stderr, `"Name":"validate"`)
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "useful.yaml")

	out, _, err := run(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	_, _, err = run(t, "config", "init", path)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))

	_, _, err = run(t, "config", "init", path, "--force")
	require.NoError(t, err)

	t.Setenv("USEFUL_CSV_QUOTE_MODE", "always")
	out, _, err = run(t, "--config", path, "--delimiter", ";", "config", "show")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, ";", cfg.CSV.Delimiter)
	assert.Equal(t, "always", cfg.CSV.QuoteMode)
	assert.True(t, cfg.CSV.HasHeader)
	assert.Equal(t, "warn", cfg.Observability.LogLevel)
}

func TestInvalidSettings(t *testing.T) {
	_, _, err := run(t, "--delimiter", "::", "version")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, _, err = run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}

func TestProfileFlag(t *testing.T) {
	input := testutil.TempFile(t, "grid.csv", "x,y\n1,2\n")
	dir := filepath.Join(t.TempDir(), "profiles")

	_, _, err := run(t, "--profile", "cpu,memory", "--profile-dir", dir, "validate", input)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, _, err = run(t, "--profile", "disk", "version")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidArgument))
}
