package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringArgs(t *testing.T) {
	args := map[string]any{"name": "  report.pdf ", "blank": "   ", "number": 3.0}

	assert.Equal(t, "report.pdf", StringArg(args, "name"))
	assert.Equal(t, "  report.pdf ", RawStringArg(args, "name"))
	assert.Empty(t, StringArg(args, "missing"))
	assert.Empty(t, StringArg(args, "number"))

	_, err := RequiredString(args, "blank")
	assert.EqualError(t, err, "blank is required")

	v, err := RequiredString(args, "name")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", v)
}

func TestIntArg(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    int
		wantErr bool
	}{
		{name: "absent uses default", value: nil, want: 10},
		{name: "json number", value: 25.0, want: 25},
		{name: "numeric string", value: "7", want: 7},
		{name: "blank string uses default", value: " ", want: 10},
		{name: "fraction", value: 2.5, wantErr: true},
		{name: "word", value: "ten", wantErr: true},
		{name: "bool", value: true, wantErr: true},
		{name: "above int range", value: 1e20, wantErr: true},
		{name: "below int range", value: -1e20, wantErr: true},
		{name: "two to the 63", value: 9223372036854775808.0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]any{}
			if tt.value != nil {
				args["page_size"] = tt.value
			}
			got, err := IntArg(args, "page_size", 10)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValuesArg(t *testing.T) {
	rows, err := ValuesArg(map[string]any{"values": []any{[]any{"a", 1.0}, []any{}}}, "values")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"a", 1.0}, {}}, rows)

	rows, err = ValuesArg(map[string]any{"values": `[["x","y"]]`}, "values")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"x", "y"}}, rows)

	_, err = ValuesArg(map[string]any{"values": []any{"not a row"}}, "values")
	assert.Error(t, err)

	_, err = ValuesArg(map[string]any{}, "values")
	assert.Error(t, err)

	_, err = ValuesArg(map[string]any{"values": "{"}, "values")
	assert.Error(t, err)
}

func TestListArg(t *testing.T) {
	list, err := ListArg(map[string]any{"requests": []any{map[string]any{"addSheet": map[string]any{}}}}, "requests")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = ListArg(map[string]any{"requests": 42.0}, "requests")
	assert.Error(t, err)
}
