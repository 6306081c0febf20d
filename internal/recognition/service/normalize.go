package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	recognitiondomain "github.com/nutrilog/nutrilog/internal/recognition/domain"
)

// providerPayload covers the field aliases observed across provider shapes.
type providerPayload struct {
	Food     *string      `json:"food"`
	Name     *string      `json:"name"`
	Error    string       `json:"error"`
	Calories *json.Number `json:"calories"`
	Kcal     *json.Number `json:"kcal"`
	Grams    *json.Number `json:"grams"`
	EstGrams *json.Number `json:"estimated_grams"`
	Protein  *json.Number `json:"protein"`
	Fat      *json.Number `json:"fat"`
	Carbs    *json.Number `json:"carbs"`
}

// Normalize maps arbitrary provider output to a FoodEstimate. All format
// guessing lives here: markdown fences and surrounding prose are stripped,
// JSON is preferred, and "key: value" lines are the fallback. Output that
// still lacks a name plus a calorie or gram figure is ErrNotRecognized.
func Normalize(raw string) (*recognitiondomain.FoodEstimate, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: empty provider response", recognitiondomain.ErrNotRecognized)
	}

	payload, ok := parseJSONObject(text)
	if !ok {
		payload, ok = parseKeyValueLines(text)
	}
	if !ok {
		return nil, fmt.Errorf("%w: unparseable provider response", recognitiondomain.ErrNotRecognized)
	}

	if strings.EqualFold(strings.TrimSpace(payload.Error), "not_food") {
		return nil, fmt.Errorf("%w: provider flagged input as not food", recognitiondomain.ErrNotRecognized)
	}

	name := ""
	if payload.Food != nil {
		name = strings.TrimSpace(*payload.Food)
	}
	if name == "" && payload.Name != nil {
		name = strings.TrimSpace(*payload.Name)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: no food name in provider response", recognitiondomain.ErrNotRecognized)
	}

	est := &recognitiondomain.FoodEstimate{
		Name:     name,
		Calories: number(payload.Calories, payload.Kcal),
		Grams:    number(payload.Grams, payload.EstGrams),
	}
	if est.Calories < 0 || est.Grams < 0 {
		return nil, fmt.Errorf("%w: negative nutrition values", recognitiondomain.ErrNotRecognized)
	}
	if est.Calories == 0 && est.Grams == 0 {
		return nil, fmt.Errorf("%w: neither calories nor grams in provider response", recognitiondomain.ErrNotRecognized)
	}

	// The calorie figure is portion-level, never per-100g; only the macro
	// fields go into the profile. PerHundred.Calories stays zero and callers
	// fall back to est.Calories for energy.
	protein := number(payload.Protein, nil)
	fat := number(payload.Fat, nil)
	carbs := number(payload.Carbs, nil)
	if protein > 0 || fat > 0 || carbs > 0 {
		est.PerHundred = &recognitiondomain.MacroProfile{
			Protein: protein,
			Fat:     fat,
			Carbs:   carbs,
		}
	}

	return est, nil
}

// parseJSONObject extracts the first {...} object from text, tolerating
// ```json fences and narrative prose around it.
func parseJSONObject(text string) (providerPayload, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return providerPayload{}, false
	}

	var payload providerPayload
	dec := json.NewDecoder(strings.NewReader(text[start : end+1]))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return providerPayload{}, false
	}
	return payload, true
}

// parseKeyValueLines handles the free-text "food: apple\ncalories: 95" shape.
func parseKeyValueLines(text string) (providerPayload, bool) {
	var payload providerPayload
	found := false

	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if value == "" {
			continue
		}

		switch key {
		case "food", "name":
			v := value
			payload.Food = &v
			found = true
		case "calories", "kcal":
			if n, ok := parseNumber(value); ok {
				payload.Calories = &n
				found = true
			}
		case "grams", "estimated_grams":
			if n, ok := parseNumber(value); ok {
				payload.Grams = &n
				found = true
			}
		case "protein":
			if n, ok := parseNumber(value); ok {
				payload.Protein = &n
			}
		case "fat":
			if n, ok := parseNumber(value); ok {
				payload.Fat = &n
			}
		case "carbs", "carbohydrates":
			if n, ok := parseNumber(value); ok {
				payload.Carbs = &n
			}
		case "error":
			payload.Error = value
			found = true
		}
	}

	return payload, found
}

func parseNumber(value string) (json.Number, bool) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(value, "g"), "kcal"))
	trimmed = strings.TrimSpace(trimmed)
	if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
		return "", false
	}
	return json.Number(trimmed), true
}

func number(primary, fallback *json.Number) float64 {
	for _, n := range []*json.Number{primary, fallback} {
		if n == nil {
			continue
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return 0
}
