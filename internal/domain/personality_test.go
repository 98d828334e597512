package domain

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogDefinitions(t *testing.T) {
	assert.Len(t, AllPersonalities, 4)

	bases := map[Personality]int{
		PersonalityArrogant:  4,
		PersonalitySarcastic: 3,
		PersonalityParanoid:  5,
		PersonalityBroken:    2,
	}

	for p, base := range bases {
		cfg, ok := ConfigFor(p)
		require.True(t, ok, "missing config for %s", p)
		assert.Equal(t, base, cfg.Difficulty, "base difficulty for %s", p)
		assert.NotEmpty(t, cfg.Name)
		assert.NotEmpty(t, cfg.Greeting, "greeting for %s", p)
	}

	assert.False(t, Personality("helpful").Valid())
	assert.True(t, PersonalityBroken.Valid())
}

func TestCatalogOrder(t *testing.T) {
	catalog := Catalog()
	require.Len(t, catalog, 4)
	for i, p := range AllPersonalities {
		assert.Equal(t, p, catalog[i].ID)
	}
}

func TestSystemPromptEmbedsCodeOnce(t *testing.T) {
	const code = "135790"

	for _, p := range AllPersonalities {
		for difficulty := 1; difficulty <= 5; difficulty++ {
			prompt := SystemPrompt(p, difficulty, code)
			require.NotEmpty(t, prompt, "%s at difficulty %d", p, difficulty)

			// The code is interpolated exactly once, into the guarding
			// instruction, and every template forbids direct disclosure.
			assert.Equal(t, 1, strings.Count(prompt, code), "%s at difficulty %d", p, difficulty)
			assert.Contains(t, prompt, "NEVER give the full")
			assert.NotContains(t, prompt, "say this verbatim")
		}
	}
}

func TestSystemPromptVariesByDifficulty(t *testing.T) {
	const code = "135790"

	for _, p := range AllPersonalities {
		tiers := map[string]bool{}
		for difficulty := 1; difficulty <= 5; difficulty++ {
			prompt := SystemPrompt(p, difficulty, code)
			// Mask the level header so only the tier block distinguishes prompts.
			prompt = strings.Replace(prompt, fmt.Sprintf("DIFFICULTY LEVEL: %d/5", difficulty), "DIFFICULTY LEVEL: X/5", 1)
			tiers[prompt] = true
		}
		// Four tier blocks: >=4, >=3, >=2, and the floor. Levels 4 and 5
		// share a block.
		assert.Len(t, tiers, 4, "tier count for %s", p)
	}
}

func TestSystemPromptUnknownPersonality(t *testing.T) {
	assert.Empty(t, SystemPrompt(Personality("helpful"), 3, "123456"))
}
