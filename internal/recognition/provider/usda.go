package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	recognitiondomain "github.com/nutrilog/nutrilog/internal/recognition/domain"
	"go.uber.org/zap"
)

const usdaSearchURL = "https://api.nal.usda.gov/fdc/v1/foods/search"

// USDAClient resolves food names to per-100g macros via FoodData Central.
type USDAClient struct {
	apiKey     string
	baseURL    string
	log        *zap.Logger
	httpClient *http.Client
}

func NewUSDAClient(apiKey string, timeout time.Duration, log *zap.Logger) *USDAClient {
	return &USDAClient{
		apiKey:  apiKey,
		baseURL: usdaSearchURL,
		log:     log.Named("provider.usda"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type usdaNutrient struct {
	NutrientName string  `json:"nutrientName"`
	Value        float64 `json:"value"`
}

type usdaSearchResponse struct {
	Foods []struct {
		Description   string         `json:"description"`
		FoodNutrients []usdaNutrient `json:"foodNutrients"`
	} `json:"foods"`
}

// Search returns the best-matching entry's per-100g profile. FoodData Central
// survey values are already per 100 g.
func (c *USDAClient) Search(ctx context.Context, food string) (*recognitiondomain.MacroProfile, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", food)
	params.Set("pageSize", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create food search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call food search: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("food search returned non-200", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("food search status %d", resp.StatusCode)
	}

	var parsed usdaSearchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode food search response: %w", err)
	}
	if len(parsed.Foods) == 0 {
		return nil, fmt.Errorf("%w: no composition match for %q", recognitiondomain.ErrNotRecognized, food)
	}

	nutrients := parsed.Foods[0].FoodNutrients
	profile := &recognitiondomain.MacroProfile{
		Calories: nutrientValue(nutrients, "energy"),
		Protein:  nutrientValue(nutrients, "protein"),
		Fat:      nutrientValue(nutrients, "fat"),
		Carbs:    nutrientValue(nutrients, "carbohydrate"),
	}

	c.log.Debug("composition resolved",
		zap.String("query", food),
		zap.String("match", parsed.Foods[0].Description),
		zap.Float64("kcal_per_100g", profile.Calories),
	)
	return profile, nil
}

func nutrientValue(nutrients []usdaNutrient, name string) float64 {
	for _, n := range nutrients {
		if strings.Contains(strings.ToLower(n.NutrientName), name) {
			return n.Value
		}
	}
	return 0
}
