package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateEmailCmd(t *testing.T) {
	cases := []struct {
		address string
		want    string
	}{
		{"test@example.com", "true\n"},
		{"first.last@sub.example.org", "true\n"},
		{"invalid-email", "false\n"},
		{"a@b.c", "true\n"},
	}
	for _, c := range cases {
		t.Run(c.address, func(t *testing.T) {
			out, err := run(t, "validate-email", c.address)
			require.NoError(t, err)
			assert.Equal(t, c.want, out)
		})
	}
}

func TestValidateEmailCmd_RequiresOneArg(t *testing.T) {
	_, err := run(t, "validate-email")
	assert.Error(t, err)
}

func TestFormatNameCmd(t *testing.T) {
	out, err := run(t, "format-name", "john", "doe")
	require.NoError(t, err)
	assert.Equal(t, "John Doe\n", out)

	out, err = run(t, "format-name", "MARY", "smith")
	require.NoError(t, err)
	assert.Equal(t, "Mary Smith\n", out)
}

func TestFormatNameCmd_WrongArgCount(t *testing.T) {
	_, err := run(t, "format-name", "john")
	assert.Error(t, err)
}

func TestShowConfigCmd(t *testing.T) {
	for _, args := range [][]string{
		{"show-config"},
		{"show-config", "config.yaml"},
		{"show-config", "/does/not/exist.yaml"},
	} {
		out, err := run(t, args...)
		require.NoError(t, err)
		assert.JSONEq(t, `{"debug":true,"port":8080}`, out)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, ".", defaultConfigPath())

	t.Setenv("CONFIG_PATH", "/etc/fixture")
	assert.Equal(t, "/etc/fixture", defaultConfigPath())
}
