// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package planner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Binary names.
const (
	binClaude = "claude"
	binGh     = "gh"
)

// defaultClaudeArgs are the CLI arguments for automated Claude execution.
// Used by Config.applyDefaults when ClaudeArgs is empty.
var defaultClaudeArgs = []string{
	"--dangerously-skip-permissions",
	"-p",
	"--verbose",
	"--output-format", "stream-json",
}

// GenerateResult is what a generation backend returns: the assistant's
// text, whether output was cut off by the output-size limit, and token
// usage for accounting.
type GenerateResult struct {
	Text         string
	Truncated    bool
	InputTokens  int
	OutputTokens int
}

// Generator is the generation backend. Given a prompt it returns either
// a result or a transport error. Truncation is reported on the result,
// not as an error: the orchestrator must distinguish it from parse
// failures.
type Generator interface {
	Generate(prompt string) (GenerateResult, error)
}

// ClaudeGenerator runs the claude CLI with stream-json output.
type ClaudeGenerator struct {
	Args    []string
	Silence bool
}

// NewClaudeGenerator returns a generator configured from cfg.
func NewClaudeGenerator(cfg Config) *ClaudeGenerator {
	return &ClaudeGenerator{Args: cfg.ClaudeArgs, Silence: cfg.Silence()}
}

// Generate executes Claude with the given prompt on stdin and parses the
// stream-json output into a GenerateResult.
func (g *ClaudeGenerator) Generate(prompt string) (GenerateResult, error) {
	logf("claude: promptLen=%d silence=%v", len(prompt), g.Silence)
	cmd := exec.Command(binClaude, g.Args...)
	cmd.Stdin = strings.NewReader(prompt)

	var stdoutBuf bytes.Buffer
	if g.Silence {
		cmd.Stdout = &stdoutBuf
	} else {
		cmd.Stdout = io.MultiWriter(os.Stdout, &stdoutBuf)
		cmd.Stderr = os.Stderr
	}

	start := time.Now()
	err := cmd.Run()
	result := parseStreamJSON(stdoutBuf.Bytes())
	logf("claude: finished in %s tokens(in=%d out=%d) truncated=%v (err=%v)",
		time.Since(start).Round(time.Second), result.InputTokens, result.OutputTokens, result.Truncated, err)
	if err != nil {
		return result, fmt.Errorf("running claude: %w", err)
	}
	return result, nil
}

// streamMessage is the subset of Claude's stream-json lines the parser
// cares about: assistant messages carry text and the stop reason, the
// final result line carries token usage.
type streamMessage struct {
	Type    string `json:"type"`
	Message struct {
		StopReason string `json:"stop_reason"`
		Content    []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// parseStreamJSON walks Claude's line-delimited stream-json output,
// concatenating assistant text and extracting usage from the result line.
// Truncated is set when the last assistant message stopped for
// "max_tokens", the output-size limit, as opposed to a normal end turn.
func parseStreamJSON(output []byte) GenerateResult {
	var result GenerateResult
	var text strings.Builder

	for _, line := range bytes.Split(bytes.TrimSpace(output), []byte("\n")) {
		var msg streamMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "assistant":
			for _, block := range msg.Message.Content {
				if block.Type == "text" {
					text.WriteString(block.Text)
				}
			}
			result.Truncated = msg.Message.StopReason == "max_tokens"
		case "result":
			result.InputTokens = msg.Usage.InputTokens
			result.OutputTokens = msg.Usage.OutputTokens
		}
	}
	result.Text = text.String()
	return result
}

// extractYAMLBlock pulls the first fenced YAML block out of model output.
// Returns ErrMalformedOutput when no fence is present; bare output that
// already parses as YAML is the caller's concern.
func extractYAMLBlock(text string) (string, error) {
	const fence = "```"
	start := strings.Index(text, fence+"yaml")
	offset := len(fence) + 4
	if start < 0 {
		start = strings.Index(text, fence)
		offset = len(fence)
	}
	if start < 0 {
		return "", planErrorf(ErrMalformedOutput, "no fenced block in %d bytes of output", len(text))
	}
	rest := text[start+offset:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, fence)
	if end < 0 {
		return "", planErrorf(ErrMalformedOutput, "unterminated fenced block")
	}
	return rest[:end], nil
}
