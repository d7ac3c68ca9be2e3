package gateway

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/abhisek/knowflow/internal/llm"
)

// graphOutput is the raw graph response before normalization.
type graphOutput struct {
	Nodes []nodeOutput `json:"nodes" jsonschema:"description=Ordered learning path from fundamentals to advanced"`
}

type nodeOutput struct {
	ID           string   `json:"id,omitempty" jsonschema:"description=Short unique kebab-case identifier"`
	Label        string   `json:"label" jsonschema:"description=Concise concept name shown on the card"`
	Description  string   `json:"description" jsonschema:"description=One sentence on what the learner will master"`
	Dependencies []string `json:"dependencies,omitempty" jsonschema:"description=Ids of nodes that must be completed first"`
}

// quizOutput is the raw quiz response before validation.
type quizOutput struct {
	Questions []questionOutput `json:"questions"`
}

type questionOutput struct {
	ID           string   `json:"id,omitempty"`
	Text         string   `json:"text" jsonschema:"description=The question prompt. Markdown code fences are allowed"`
	Options      []string `json:"options" jsonschema:"minItems=2,description=Answer options with exactly one correct"`
	CorrectIndex int      `json:"correctIndex" jsonschema:"minimum=0,description=Zero-based index of the correct option"`
	Explanation  string   `json:"explanation" jsonschema:"description=Why the correct option is right"`
}

var (
	// GraphSchema describes the knowledge graph payload.
	GraphSchema = reflectSchema[graphOutput]("knowledge-graph", "An ordered learning path of 5 to 8 concept nodes")

	// QuizSchema describes the quiz payload.
	QuizSchema = reflectSchema[quizOutput]("node-quiz", "Multiple-choice questions testing one concept")
)

// reflectSchema derives a schema definition from T's json and jsonschema
// tags. Extra properties are tolerated since local models like to add them.
func reflectSchema[T any](name, description string) *llm.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)

	raw, err := json.Marshal(schema)
	if err != nil {
		panic("gateway: marshal schema " + name + ": " + err.Error())
	}
	var def map[string]any
	if err := json.Unmarshal(raw, &def); err != nil {
		panic("gateway: unmarshal schema " + name + ": " + err.Error())
	}
	delete(def, "$schema")
	delete(def, "$id")

	return &llm.Schema{Name: name, Description: description, Definition: def}
}
