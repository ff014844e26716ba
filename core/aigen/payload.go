package aigen

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/techproject/core"
)

type (
	SubtaskSpec struct {
		Title       string
		Description string
	}

	TaskSpec struct {
		Title       string
		Description string
		Subtasks    []SubtaskSpec
	}

	// SkipReason records one malformed payload entry that was dropped.
	SkipReason struct {
		Path   string // e.g. "tasks[2]", "tasks[0].subtasks[1]"
		Reason string
	}

	// Payload is the validated intermediate representation of a provider
	// response: only well-formed entries survive into Tasks, everything
	// dropped is accounted for in Skipped.
	Payload struct {
		Tasks   []TaskSpec
		Skipped []SkipReason
	}
)

// ParsePayload validates the provider's response text against the expected
// two-level tree shape. A response that is not a JSON object carrying a
// `tasks` array fails with ErrBadResponse; malformed entries within a
// well-formed payload are skipped, never fatal.
func ParsePayload(text string) (Payload, error) {
	var raw struct {
		Tasks []json.RawMessage `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Payload{}, errors.WithMessage(ErrBadResponse, err.Error())
	}
	if raw.Tasks == nil {
		return Payload{}, errors.WithMessage(ErrBadResponse, "missing tasks key")
	}

	var p Payload
	for i, entry := range raw.Tasks {
		path := fmt.Sprintf("tasks[%d]", i)

		var te struct {
			Title       string          `json:"title"`
			Description string          `json:"description"`
			Subtasks    json.RawMessage `json:"subtasks"`
		}
		if err := json.Unmarshal(entry, &te); err != nil {
			p.skip(path, "not an object")
			continue
		}

		title := core.CleanString(te.Title)
		if title == "" {
			p.skip(path, "missing title")
			continue
		}
		spec := TaskSpec{Title: title, Description: core.CleanString(te.Description)}

		// a broken subtasks list never takes the parent down with it
		var subs []json.RawMessage
		if len(te.Subtasks) > 0 && string(te.Subtasks) != "null" {
			if err := json.Unmarshal(te.Subtasks, &subs); err != nil {
				p.skip(path+".subtasks", "not an array")
			}
		}
		for j, sub := range subs {
			subPath := fmt.Sprintf("%s.subtasks[%d]", path, j)

			var se struct {
				Title       string `json:"title"`
				Description string `json:"description"`
			}
			if err := json.Unmarshal(sub, &se); err != nil {
				p.skip(subPath, "not an object")
				continue
			}
			subTitle := core.CleanString(se.Title)
			if subTitle == "" {
				p.skip(subPath, "missing title")
				continue
			}
			spec.Subtasks = append(spec.Subtasks, SubtaskSpec{Title: subTitle, Description: core.CleanString(se.Description)})
		}

		p.Tasks = append(p.Tasks, spec)
	}
	return p, nil
}

func (p *Payload) skip(path, reason string) {
	p.Skipped = append(p.Skipped, SkipReason{Path: path, Reason: reason})
}
