// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package planner

import (
	"errors"
	"strings"
	"testing"
)

func TestParseStreamJSON(t *testing.T) {
	t.Parallel()

	output := strings.Join([]string{
		`{"type":"system","subtype":"init"}`,
		`{"type":"assistant","message":{"stop_reason":null,"content":[{"type":"text","text":"Here is "}]}}`,
		`{"type":"assistant","message":{"stop_reason":"end_turn","content":[{"type":"text","text":"the plan."}]}}`,
		`{"type":"result","usage":{"input_tokens":120,"output_tokens":34}}`,
	}, "\n")

	res := parseStreamJSON([]byte(output))
	if res.Text != "Here is the plan." {
		t.Errorf("Text = %q", res.Text)
	}
	if res.Truncated {
		t.Error("end_turn reported as truncated")
	}
	if res.InputTokens != 120 || res.OutputTokens != 34 {
		t.Errorf("tokens = (%d, %d), want (120, 34)", res.InputTokens, res.OutputTokens)
	}
}

func TestParseStreamJSON_Truncation(t *testing.T) {
	t.Parallel()
	output := `{"type":"assistant","message":{"stop_reason":"max_tokens","content":[{"type":"text","text":"partial"}]}}`
	res := parseStreamJSON([]byte(output))
	if !res.Truncated {
		t.Error("max_tokens stop reason not reported as truncated")
	}
	if res.Text != "partial" {
		t.Errorf("Text = %q, want %q", res.Text, "partial")
	}
}

func TestParseStreamJSON_GarbageLines(t *testing.T) {
	t.Parallel()
	res := parseStreamJSON([]byte("not json\n\nalso not json"))
	if res.Text != "" || res.Truncated {
		t.Errorf("garbage parsed to %+v", res)
	}
}

func TestExtractYAMLBlock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{
			name: "yaml fence",
			text: "Preamble.\n```yaml\ninitiatives: []\n```\nTrailer.",
			want: "initiatives: []\n",
		},
		{
			name: "plain fence",
			text: "```\nkey: value\n```",
			want: "key: value\n",
		},
		{
			name:    "no fence",
			text:    "just prose",
			wantErr: true,
		},
		{
			name:    "unterminated fence",
			text:    "```yaml\nkey: value",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := extractYAMLBlock(tc.text)
			if tc.wantErr {
				if !errors.Is(err, ErrMalformedOutput) {
					t.Fatalf("err = %v, want ErrMalformedOutput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("block = %q, want %q", got, tc.want)
			}
		})
	}
}
