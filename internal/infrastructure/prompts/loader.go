package prompts

import (
	_ "embed"
)

//go:embed mapping.txt
var MappingSystemPrompt string

//go:embed challenge.txt
var ChallengeSystemPrompt string

//go:embed mapping_user.tmpl
var MappingUserTemplate string
