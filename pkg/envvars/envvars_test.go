package envvars

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	env := New("id", "2", "version", "latest", "IDS", "4,5")

	testCases := []struct {
		name        string
		input       string
		expectedRes string
	}{
		{
			name:        "no placeholder",
			input:       "abc",
			expectedRes: "abc",
		},
		{
			name:        "empty text",
			input:       "",
			expectedRes: "",
		},
		{
			name:        "braced placeholder",
			input:       "image-${id}",
			expectedRes: "image-2",
		},
		{
			name:        "bare placeholder",
			input:       "image-$id",
			expectedRes: "image-2",
		},
		{
			name:        "multiple placeholders",
			input:       "1,2,3,${IDS}/${version}",
			expectedRes: "1,2,3,4,5/latest",
		},
		{
			name:        "unresolved braced placeholder",
			input:       "image-${missing}",
			expectedRes: "image-${missing}",
		},
		{
			name:        "unresolved bare placeholder",
			input:       "image-$missing",
			expectedRes: "image-$missing",
		},
		{
			name:        "lone dollar",
			input:       "cost $ 5",
			expectedRes: "cost $ 5",
		},
	}

	for _, tc := range testCases {
		res := env.Expand(tc.input)
		require.Equalf(t, tc.expectedRes, res, "TC: %s", tc.name)
	}
}

func TestExpandNil(t *testing.T) {
	var env EnvVars
	require.Equal(t, "${id}", env.Expand("${id}"))
}

func TestNew(t *testing.T) {
	require.Equal(t, EnvVars{"a": "1"}, New("a", "1", "dangling"))
}

func TestFromEnviron(t *testing.T) {
	env := FromEnviron([]string{"A=1", "B=x=y", "C=", "=bad", "noequals"})
	require.Equal(t, EnvVars{"A": "1", "B": "x=y", "C": ""}, env)
}

func TestParse(t *testing.T) {
	env, err := Parse([]string{"version=latest", "empty="})
	require.NoError(t, err)
	require.Equal(t, EnvVars{"version": "latest", "empty": ""}, env)

	_, err = Parse([]string{"novalue"})
	require.Error(t, err)
}

func TestOverride(t *testing.T) {
	env := New("a", "1", "b", "2").Override(New("b", "3"))
	require.Equal(t, EnvVars{"a": "1", "b": "3"}, env)
}
