package model

// QuestionBank is the wrapped document form accepted by the bank loaders
// alongside a bare JSON/YAML array of records.
type QuestionBank struct {
	Title     string        `json:"title,omitempty" yaml:"title"`
	Questions []RawQuestion `json:"questions" yaml:"questions"`
}
