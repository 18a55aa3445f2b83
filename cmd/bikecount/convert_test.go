// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptPaths(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		input     string
		wantSrc   string
		wantDst   string
		wantAsked []string
	}{
		{
			name:      "both prompted",
			input:     "data/bike.rdf\n  out.csv  \n",
			wantSrc:   "data/bike.rdf",
			wantDst:   "out.csv",
			wantAsked: []string{promptInput, promptOutput},
		},
		{
			name:      "input from args",
			args:      []string{"bike.rdf"},
			input:     "out.csv\n",
			wantSrc:   "bike.rdf",
			wantDst:   "out.csv",
			wantAsked: []string{promptOutput},
		},
		{
			name:    "both from args",
			args:    []string{"bike.rdf", "out.csv"},
			wantSrc: "bike.rdf",
			wantDst: "out.csv",
		},
		{
			name:      "last line without newline",
			input:     "bike.rdf\r\nout.csv",
			wantSrc:   "bike.rdf",
			wantDst:   "out.csv",
			wantAsked: []string{promptInput, promptOutput},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			src, dst, err := promptPaths(strings.NewReader(tt.input), &out, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSrc, src)
			assert.Equal(t, tt.wantDst, dst)
			assert.Equal(t, strings.Join(tt.wantAsked, ""), out.String())
		})
	}
}

func TestPromptPaths_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "closed input", input: "", want: "input closed"},
		{name: "blank path", input: "   \nout.csv\n", want: "no path given"},
		{name: "output missing", input: "bike.rdf\n", want: "input closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := promptPaths(strings.NewReader(tt.input), &bytes.Buffer{}, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
