package service

import (
	"testing"

	recognitiondomain "github.com/nutrilog/nutrilog/internal/recognition/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_AcceptedShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want recognitiondomain.FoodEstimate
	}{
		{
			name: "plain json",
			raw:  `{"food": "apple", "calories": 95}`,
			want: recognitiondomain.FoodEstimate{Name: "apple", Calories: 95},
		},
		{
			name: "markdown fenced json",
			raw:  "```json\n{\"food\": \"grilled chicken\", \"grams\": 150}\n```",
			want: recognitiondomain.FoodEstimate{Name: "grilled chicken", Grams: 150},
		},
		{
			name: "json with surrounding prose",
			raw:  "Sure! Here is the analysis:\n{\"food\": \"rice\", \"calories\": 206, \"grams\": 158}\nLet me know if you need more.",
			want: recognitiondomain.FoodEstimate{Name: "rice", Calories: 206, Grams: 158},
		},
		{
			name: "name and kcal aliases",
			raw:  `{"name": "banana", "kcal": 105}`,
			want: recognitiondomain.FoodEstimate{Name: "banana", Calories: 105},
		},
		{
			name: "estimated_grams alias",
			raw:  `{"food": "steak", "estimated_grams": 220}`,
			want: recognitiondomain.FoodEstimate{Name: "steak", Grams: 220},
		},
		{
			name: "key value lines",
			raw:  "food: oatmeal\ncalories: 150\ngrams: 40",
			want: recognitiondomain.FoodEstimate{Name: "oatmeal", Calories: 150, Grams: 40},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, *got)
		})
	}
}

func TestNormalize_PerHundredMacros(t *testing.T) {
	got, err := Normalize(`{"food": "cheese", "calories": 402, "protein": 25, "fat": 33, "carbs": 1.3}`)
	require.NoError(t, err)

	require.NotNil(t, got.PerHundred)
	assert.Equal(t, 25.0, got.PerHundred.Protein)
	assert.Equal(t, 33.0, got.PerHundred.Fat)
	assert.Equal(t, 1.3, got.PerHundred.Carbs)
}

// Calories next to a grams figure describe the portion, not 100 g of it. They
// must stay on the estimate and never slip into the per-100g profile, or
// downstream scaling by grams/100 would distort them.
func TestNormalize_PortionCaloriesStayOutOfProfile(t *testing.T) {
	got, err := Normalize(`{"food": "apple", "calories": 95, "grams": 150, "protein": 0.3, "fat": 0.2, "carbs": 14}`)
	require.NoError(t, err)

	assert.Equal(t, 95.0, got.Calories)
	assert.Equal(t, 150.0, got.Grams)
	require.NotNil(t, got.PerHundred)
	assert.Zero(t, got.PerHundred.Calories)
	assert.Equal(t, 0.3, got.PerHundred.Protein)
}

func TestNormalize_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: "   "},
		{name: "narrative without data", raw: "I am not sure what this is."},
		{name: "not food flag", raw: `{"error": "not_food"}`},
		{name: "null food", raw: `{"food": null, "calories": 100}`},
		{name: "missing name", raw: `{"calories": 95}`},
		{name: "name without numbers", raw: `{"food": "mystery"}`},
		{name: "negative calories", raw: `{"food": "apple", "calories": -5}`},
		{name: "broken json no fallback", raw: `{"food": "apple", "calories": }`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.raw)
			assert.ErrorIs(t, err, recognitiondomain.ErrNotRecognized)
		})
	}
}
