package ai

import (
	"strings"

	"github.com/recipebox/recipebox/internal/domain/recipe"
)

const normalizationInstructions = `INSTRUCTIONS:
1. The input may be unstructured text, HTML, or structured data taken from a web page or video.
2. Extract and structure the recipe information into a consistent template.
3. STRICTLY use only the information provided in the input. DO NOT hallucinate or invent ingredients or steps.
4. If the input has ingredients but no steps, still return the recipe with "steps" set to "1. Steps were not provided in the source." and explain this in the notes.
5. If the input does not contain a recipe at all, return a JSON object with only an "error" field explaining why.

FORMATTING RULES:

INGREDIENTS:
- Format each line as: "Ingredient – quantity" (use an en-dash '–' separator).
- PRESERVE DUAL UNITS if provided (e.g. "1 cup (120g)"). Do not remove the metric/gram equivalent if the cup measurement exists.
- Convert mL to cups (240 mL = 1 cup, 180 mL = 3/4 cup, 120 mL = 1/2 cup, 80 mL = 1/3 cup, 60 mL = 1/4 cup, 15 mL = 1 tbsp, 5 mL = 1 tsp).
- List ALL ingredients in a single flat list.
- EXCEPTION: If there are marination ingredients, list "Marination" as a header line, then list marination ingredients below it. Otherwise, NO headers like "For the sauce" or "A/B/C".
- Example: "All-purpose flour – 2 cups"
- Example: "Vanilla extract – 1 tsp"
- Example: "Water – 1 cup" (NOT "Water – 240 mL")
- DO NOT output "null" or "undefined" for quantity. If quantity is missing, output only the ingredient name.

STEPS:
- Number all steps (1., 2., 3., etc.).
- ALWAYS prefer volume units (cups, tbsp) in steps for readability.
- Repeat ingredient quantities inside the steps (e.g., "Add 1 cup flour and 2 tbsp sugar to the bowl").
- Break complex actions into multiple steps.
- Clean up messy narrative wording to be concise and clear.
- NO bold text anywhere.

NOTES:
- Add useful tips, variations, or optional upgrades from the original recipe.
- If there are "optional additions", "variations", or "upgrades" mentioned, include them here.
- If the input came from a URL, include "Source: [URL]" at the end of the notes.
- Remove duplicate or conflicting information.

GENERAL:
- No bold text or other emphasis markup anywhere.
- Always produce clean, copy-ready output.
- Scale recipes if the user explicitly asks in the input (e.g. "convert to 1 kg"), otherwise keep original quantities.
- Categorize the recipe as one of: `

const normalizationResponseFormat = `
- Estimate times in minutes if not explicitly stated.
- If cuisine type is apparent, include it.

RESPOND ONLY WITH VALID JSON in this exact format (no markdown, no code fences, no extra text):
{
  "title": "Recipe name",
  "category": "Category name",
  "cuisine": "Cuisine type or null",
  "servings": "Number of servings as text (e.g., '4 servings')",
  "prep_time_minutes": number or null,
  "cook_time_minutes": number or null,
  "ingredients": "Flour – 1 cup\nSugar – 2 tbsp\n...",
  "steps": "1. Preheat oven to 350°F\n2. Mix 1 cup flour and 2 tbsp sugar...\n...",
  "source_url": "Original URL OR source name (e.g. 'Mom's Kitchen') if known, otherwise null",
  "notes": "Use room temperature eggs."
}
`

// BuildNormalizationPrompt renders the fixed extraction prompt around content.
// sourceURL is optional and only adds a SOURCE URL line.
func BuildNormalizationPrompt(content, sourceURL string) string {
	var prompt strings.Builder

	prompt.WriteString("You are a recipe extraction expert. Extract structured recipe data from the following text (which may be unstructured or HTML content).\n\n")
	if sourceURL != "" {
		prompt.WriteString("SOURCE URL: ")
		prompt.WriteString(sourceURL)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("INPUT:\n")
	prompt.WriteString(content)
	prompt.WriteString("\n\n")
	prompt.WriteString(normalizationInstructions)

	names := make([]string, len(recipe.Categories))
	for i, c := range recipe.Categories {
		names[i] = string(c)
	}
	prompt.WriteString(strings.Join(names, ", "))
	prompt.WriteString(".")
	prompt.WriteString(normalizationResponseFormat)

	return prompt.String()
}
