package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nutrilog/nutrilog/internal/config"
	"github.com/nutrilog/nutrilog/internal/observability/metrics"
	recognitiondomain "github.com/nutrilog/nutrilog/internal/recognition/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg         config.Config
	Log         *zap.Logger
	Metrics     *metrics.Metrics
	Text        recognitiondomain.TextProvider
	Vision      recognitiondomain.VisionProvider
	Composition recognitiondomain.CompositionProvider
}

type Gateway struct {
	log         *zap.Logger
	metrics     *metrics.Metrics
	text        recognitiondomain.TextProvider
	vision      recognitiondomain.VisionProvider
	composition recognitiondomain.CompositionProvider
	timeout     time.Duration
}

func New(p Params) recognitiondomain.Gateway {
	return &Gateway{
		log:         p.Log.Named("recognition.gateway"),
		metrics:     p.Metrics,
		text:        p.Text,
		vision:      p.Vision,
		composition: p.Composition,
		timeout:     p.Cfg.ProviderTimeout,
	}
}

func (g *Gateway) Identify(ctx context.Context, textHint string, photo []byte) (*recognitiondomain.FoodEstimate, error) {
	textHint = strings.TrimSpace(textHint)
	if textHint == "" && len(photo) == 0 {
		return nil, fmt.Errorf("%w: nothing to identify", recognitiondomain.ErrNotRecognized)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var (
		raw      string
		err      error
		provider string
	)
	started := time.Now()
	if len(photo) > 0 {
		provider = "vision"
		raw, err = g.vision.Analyze(callCtx, textHint, photo)
	} else {
		provider = "text"
		raw, err = g.text.Analyze(callCtx, textHint)
	}
	g.metrics.ProviderLatency.WithLabelValues(provider).Observe(time.Since(started).Seconds())

	if err != nil {
		g.metrics.RecognitionFailures.Inc()
		g.log.Warn("recognition provider call failed",
			zap.Error(err),
			zap.String("provider", provider),
		)
		return nil, fmt.Errorf("%w: %v", recognitiondomain.ErrNotRecognized, err)
	}

	est, err := Normalize(raw)
	if err != nil {
		g.metrics.RecognitionFailures.Inc()
		g.log.Warn("recognition response rejected",
			zap.Error(err),
			zap.String("provider", provider),
		)
		return nil, err
	}

	g.log.Debug("food identified",
		zap.String("provider", provider),
		zap.String("food", est.Name),
		zap.Float64("calories", est.Calories),
		zap.Float64("grams", est.Grams),
	)
	return est, nil
}

func (g *Gateway) LookupComposition(ctx context.Context, foodName string) (*recognitiondomain.MacroProfile, error) {
	foodName = strings.TrimSpace(foodName)
	if foodName == "" {
		return nil, fmt.Errorf("%w: empty food name", recognitiondomain.ErrNotRecognized)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	started := time.Now()
	profile, err := g.composition.Search(callCtx, foodName)
	g.metrics.ProviderLatency.WithLabelValues("composition").Observe(time.Since(started).Seconds())

	if err != nil {
		g.metrics.RecognitionFailures.Inc()
		g.log.Warn("composition lookup failed",
			zap.Error(err),
			zap.String("food", foodName),
		)
		if errors.Is(err, recognitiondomain.ErrNotRecognized) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", recognitiondomain.ErrNotRecognized, err)
	}
	return profile, nil
}
