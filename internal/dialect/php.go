package dialect

import (
	"regexp"
	"strings"

	"github.com/Lumos-Labs-HQ/factorygen/internal/types"
)

// PHP renders Laravel model factories.
var PHP = &Dialect{
	Name:      "php",
	Extension: "php",
	Template:  mustTemplate("php.tmpl"),
	Null:      "null",
	Expressions: map[string]string{
		"integer":  "$faker->numberBetween(1, 100)",
		"string":   "$faker->text(50)",
		"text":     "$faker->text()",
		"boolean":  "(int) $faker->boolean",
		"float":    "$faker->randomFloat(2, 0, 100)",
		"datetime": "$faker->dateTime",
		"date":     "$faker->date()",
		"time":     "$faker->time()",
		"json":     "array_fill(0, 10, $faker->unique()->realText())",
	},
	Hints: []Hint{
		{Keywords: []string{"email"}, Expression: "$faker->safeEmail"},
		{Keywords: []string{"name"}, Exclude: []string{"file", "user"}, Expression: "$faker->name"},
		{Keywords: []string{"title"}, Expression: "$faker->sentence(4)"},
		{Keywords: []string{"description", "content"}, Expression: "$faker->paragraph"},
		{Keywords: []string{"url", "link"}, Expression: "$faker->url"},
		{Keywords: []string{"phone"}, Expression: "$faker->phoneNumber"},
		{Keywords: []string{"address"}, Expression: "$faker->address"},
	},
	DefinitionPattern: regexp.MustCompile(`\$factory->define\(\s*\\?([A-Za-z0-9_\\]+)::class`),
	ClassName: func(model types.Model) string {
		return strings.NewReplacer("/", `\`, ".", `\`).Replace(model.Name)
	},
}

func init() {
	Register(PHP)
}
