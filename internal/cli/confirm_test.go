package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/pocket-migrate/internal/importers"
)

func TestConsoleConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "lower y", input: "y\n", want: true},
		{name: "upper Y", input: "Y\n", want: true},
		{name: "padded", input: "  y  \n", want: true},
		{name: "no trailing newline", input: "y", want: true},
		{name: "yes is not y", input: "yes\n", want: false},
		{name: "n", input: "n\n", want: false},
		{name: "empty line", input: "\n", want: false},
		{name: "eof", input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			confirm := consoleConfirm(strings.NewReader(tt.input), &out)

			got := confirm(importers.Preview{Total: 3})

			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), confirmPrompt)
			assert.Contains(t, out.String(), "Ready to import 3 links")
		})
	}
}

func TestAutoConfirm(t *testing.T) {
	var out bytes.Buffer

	assert.True(t, autoConfirm(&out)(importers.Preview{Total: 1}))
	assert.NotContains(t, out.String(), confirmPrompt)
}
