package wheel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheelhouse-build/wheelhouse/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     *Wheel
		wantErr  bool
	}{
		{
			name:     "five fields",
			filename: "requests-2.0.0-py3-none-any.whl",
			want: &Wheel{
				Distribution: "requests", Version: "2.0.0",
				PythonTag: "py3", ABITag: "none", PlatformTag: "any",
			},
		},
		{
			name:     "build tag",
			filename: "numpy-1.26.0-1-cp311-cp311-manylinux_2_17_x86_64.whl",
			want: &Wheel{
				Distribution: "numpy", Version: "1.26.0", BuildTag: "1",
				PythonTag: "cp311", ABITag: "cp311", PlatformTag: "manylinux_2_17_x86_64",
			},
		},
		{
			name:     "escaped distribution name",
			filename: "typing_extensions-4.8.0-py3-none-any.whl",
			want: &Wheel{
				Distribution: "typing_extensions", Version: "4.8.0",
				PythonTag: "py3", ABITag: "none", PlatformTag: "any",
			},
		},
		{name: "not a wheel", filename: "requests-2.0.0.tar.gz", wantErr: true},
		{name: "too few fields", filename: "requests-2.0.0-any.whl", wantErr: true},
		{name: "too many fields", filename: "a-b-c-d-e-f-g.whl", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.filename)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidWheel))
				return
			}
			require.NoError(t, err)
			tt.want.Path = tt.filename
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestName(t *testing.T) {
	w, err := Parse("Typing_Extensions-4.8.0-py3-none-any.whl")
	require.NoError(t, err)
	assert.Equal(t, "typing-extensions", w.Name())
}
