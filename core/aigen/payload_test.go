package aigen

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantErr     bool
		wantTasks   []TaskSpec
		wantSkipped []SkipReason
	}{
		{name: "not json", text: "lol", wantErr: true},
		{name: "json scalar", text: `42`, wantErr: true},
		{name: "missing tasks key", text: `{"items": []}`, wantErr: true},
		{name: "tasks not an array", text: `{"tasks": "lol"}`, wantErr: true},
		{name: "empty tasks", text: `{"tasks": []}`},
		{
			name: "single task",
			text: `{"tasks": [{"title": "Design", "description": "API design"}]}`,
			wantTasks: []TaskSpec{
				{Title: "Design", Description: "API design"},
			},
		},
		{
			name: "task with subtasks",
			text: `{"tasks": [{"title": "A", "subtasks": [{"title": "A1"}, {"title": "A2", "description": "d"}]}]}`,
			wantTasks: []TaskSpec{
				{Title: "A", Subtasks: []SubtaskSpec{{Title: "A1"}, {Title: "A2", Description: "d"}}},
			},
		},
		{
			name: "non-object entry skipped",
			text: `{"tasks": ["lol", {"title": "B"}]}`,
			wantTasks: []TaskSpec{
				{Title: "B"},
			},
			wantSkipped: []SkipReason{{Path: "tasks[0]", Reason: "not an object"}},
		},
		{
			name: "blank title skipped",
			text: `{"tasks": [{"title": "  "}, {"title": "C"}]}`,
			wantTasks: []TaskSpec{
				{Title: "C"},
			},
			wantSkipped: []SkipReason{{Path: "tasks[0]", Reason: "missing title"}},
		},
		{
			name: "broken subtasks keeps parent",
			text: `{"tasks": [{"title": "D", "subtasks": "lol"}]}`,
			wantTasks: []TaskSpec{
				{Title: "D"},
			},
			wantSkipped: []SkipReason{{Path: "tasks[0].subtasks", Reason: "not an array"}},
		},
		{
			name: "bad subtask entries skipped",
			text: `{"tasks": [{"title": "E", "subtasks": [42, {"title": ""}, {"title": "E1"}]}]}`,
			wantTasks: []TaskSpec{
				{Title: "E", Subtasks: []SubtaskSpec{{Title: "E1"}}},
			},
			wantSkipped: []SkipReason{
				{Path: "tasks[0].subtasks[0]", Reason: "not an object"},
				{Path: "tasks[0].subtasks[1]", Reason: "missing title"},
			},
		},
		{
			name: "null subtasks",
			text: `{"tasks": [{"title": "F", "subtasks": null}]}`,
			wantTasks: []TaskSpec{
				{Title: "F"},
			},
		},
		{
			name: "titles trimmed",
			text: `{"tasks": [{"title": "  G  ", "description": " g "}]}`,
			wantTasks: []TaskSpec{
				{Title: "G", Description: "g"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePayload(tt.text)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParsePayload() expected an error")
				}
				assert.Equal(t, ErrBadResponse, errors.Cause(err))
				return
			}
			if err != nil {
				t.Fatalf("ParsePayload() failed: %v", err)
			}
			assert.Equal(t, tt.wantTasks, p.Tasks)
			assert.Equal(t, tt.wantSkipped, p.Skipped)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("Plan a website project")

	assert.Contains(t, prompt, "Create a JSON response matching exactly this schema and return JSON only:")
	assert.Contains(t, prompt, `"subtasks"`)
	assert.True(t, len(prompt) > len(responseSchema))
	assert.Contains(t, prompt, "\n\nPlan a website project")
}
