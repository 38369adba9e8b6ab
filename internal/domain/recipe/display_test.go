package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconstructIngredients(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []IngredientRow
	}{
		{
			name: "en dash pairs",
			text: "Flour – 2 cups\nSugar – 1 tbsp",
			expected: []IngredientRow{
				{Ingredient: "Flour", Quantity: "2 cups"},
				{Ingredient: "Sugar", Quantity: "1 tbsp"},
			},
		},
		{
			name: "marination header",
			text: "Marination\nChicken – 500 g\nYogurt – 1/2 cup",
			expected: []IngredientRow{
				{Header: true, Ingredient: "Marination"},
				{Ingredient: "Chicken", Quantity: "500 g"},
				{Ingredient: "Yogurt", Quantity: "1/2 cup"},
			},
		},
		{
			name: "splits on last separator",
			text: "Salt - pepper mix - 1 tsp",
			expected: []IngredientRow{
				{Ingredient: "Salt - pepper mix", Quantity: "1 tsp"},
			},
		},
		{
			name: "trailing quantities without dashes",
			text: "Flour 2 cups\nSalt to taste",
			expected: []IngredientRow{
				{Ingredient: "Flour", Quantity: "2 cups"},
				{Ingredient: "Salt", Quantity: "to taste"},
			},
		},
		{
			name: "dual units",
			text: "Milk — 1 cup / 240 ml",
			expected: []IngredientRow{
				{Ingredient: "Milk", Quantity: "1 cup / 240 ml"},
			},
		},
		{
			name: "blank lines and padding ignored",
			text: "\n  Butter – 50 g  \n\n",
			expected: []IngredientRow{
				{Ingredient: "Butter", Quantity: "50 g"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ReconstructIngredients(tt.text))
		})
	}
}

func TestReconstructIngredients_PlainText(t *testing.T) {
	assert.Nil(t, ReconstructIngredients("Some flour\nA bit of sugar"))
	assert.Nil(t, ReconstructIngredients(""))
}

func TestReconstructSteps(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []StepRow
	}{
		{
			name: "numbered steps",
			text: "1. Preheat oven.\n2. Mix flour and sugar.",
			expected: []StepRow{
				{Number: "1", Text: "Preheat oven."},
				{Number: "2", Text: "Mix flour and sugar."},
			},
		},
		{
			name: "header keeps numbering",
			text: "To make the sauce\n1. Heat oil.\n2. Add garlic.",
			expected: []StepRow{
				{Header: true, Text: "To make the sauce"},
				{Number: "1", Text: "Heat oil."},
				{Number: "2", Text: "Add garlic."},
			},
		},
		{
			name: "numbered header",
			text: "1) Mix.\n2) Garnish\n3) Serve warm with rice.",
			expected: []StepRow{
				{Number: "1", Text: "Mix."},
				{Header: true, Text: "Garnish"},
				{Header: true, Text: "Serve warm with rice."},
			},
		},
		{
			name: "long narrative is not a header",
			text: "1. To make the most of this dish, rest the dough overnight.",
			expected: []StepRow{
				{Number: "1", Text: "To make the most of this dish, rest the dough overnight."},
			},
		},
		{
			name: "unnumbered chatter dropped",
			text: "1. Mix.\nsome chatter\n2. Bake.",
			expected: []StepRow{
				{Number: "1", Text: "Mix."},
				{Number: "2", Text: "Bake."},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ReconstructSteps(tt.text))
		})
	}
}

func TestReconstructSteps_PlainText(t *testing.T) {
	assert.Nil(t, ReconstructSteps("Mix everything.\nBake until golden."))
}

func TestIsStepHeader_LengthGate(t *testing.T) {
	short := "For the filling"
	long := "For the filling, combine the ricotta and spinach"

	assert.True(t, IsStepHeader(short))
	require.Greater(t, len(long), MaxHeaderLength)
	assert.False(t, IsStepHeader(long))
}

func TestReconstruct_Idempotent(t *testing.T) {
	record := Record{
		Ingredients: "Marination\nChicken – 500 g\nSalt to taste",
		Steps:       "For the sauce\n1. Heat oil.\n2. Add onions.",
	}

	first := Reconstruct(record)
	second := Reconstruct(record)

	assert.Equal(t, first, second)
	assert.Len(t, first.Ingredients, 3)
	assert.Len(t, first.Steps, 3)
}

func TestDetect(t *testing.T) {
	assert.Equal(t, "dash-separated", Detect(IngredientDetectors, []string{"Rice - 1 cup"}))
	assert.Equal(t, "trailing-quantity", Detect(IngredientDetectors, []string{"Rice 1 cup"}))
	assert.Equal(t, "", Detect(IngredientDetectors, []string{"Rice"}))
	assert.Equal(t, "numbered", Detect(StepDetectors, []string{"3: Stir"}))
}
