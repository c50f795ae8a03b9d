package dialect

import (
	"regexp"

	"github.com/Lumos-Labs-HQ/factorygen/internal/types"
)

// Go factories take a *gofakeit.Faker named faker.
var Go = &Dialect{
	Name:      "go",
	Extension: "go",
	Template:  mustTemplate("go.tmpl"),
	Null:      "nil",
	Expressions: map[string]string{
		"integer":  "faker.Number(1, 100)",
		"string":   "faker.LetterN(50)",
		"text":     `faker.Paragraph(1, 3, 12, " ")`,
		"boolean":  "faker.Bool()",
		"float":    "faker.Float64Range(0, 100)",
		"datetime": "faker.Date()",
		"date":     `faker.Date().Format("2006-01-02")`,
		"time":     `faker.Date().Format("15:04:05")`,
		"json":     `map[string]any{"value": faker.Word()}`,
	},
	Hints: []Hint{
		{Keywords: []string{"email"}, Expression: "faker.Email()"},
		{Keywords: []string{"name"}, Exclude: []string{"file", "user"}, Expression: "faker.Name()"},
		{Keywords: []string{"title"}, Expression: "faker.Sentence(4)"},
		{Keywords: []string{"description", "content"}, Expression: `faker.Paragraph(1, 3, 12, " ")`},
		{Keywords: []string{"url", "link"}, Expression: "faker.URL()"},
		{Keywords: []string{"phone"}, Expression: "faker.Phone()"},
		{Keywords: []string{"address"}, Expression: "faker.Street()"},
	},
	DefinitionPattern: regexp.MustCompile(`(?m)^//factorygen:model[ \t]+(\S+)`),
	ClassName: func(model types.Model) string {
		return model.Name
	},
}

func init() {
	Register(Go)
}
