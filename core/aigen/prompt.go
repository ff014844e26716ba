package aigen

import "fmt"

// responseSchema is the exact two-level tree shape the provider must return,
// kept verbatim in the prompt.
const responseSchema = `{
  "tasks": [
    {"title": "Task title", "description": "Optional description",
     "subtasks": [
       {"title": "Subtask title", "description": "Optional description"}
     ]
    }
  ]
}`

const promptTemplate = "Create a JSON response matching exactly this schema and return JSON only: %s"

// BuildPrompt renders the schema instruction and appends the operator's raw
// instructions after a blank-line separator.
func BuildPrompt(instructions string) string {
	return fmt.Sprintf(promptTemplate, responseSchema) + "\n\n" + instructions
}
