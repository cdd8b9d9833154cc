// Package pipeline runs OCR, extraction and composition for one session.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mgetnet/faydagen/internal/compose"
	"github.com/mgetnet/faydagen/internal/extract"
	"github.com/mgetnet/faydagen/internal/metrics"
	"github.com/mgetnet/faydagen/internal/ocr"
)

// Options tune caller-level policy. Substituting a sample record on a poor
// extraction fabricates identity data, so it is off unless explicitly
// enabled, and the result is flagged synthetic either way.
type Options struct {
	UseSampleOnMiss bool
}

// Result describes a completed run.
type Result struct {
	OutputPath     string
	Fields         extract.Fields
	Synthetic      bool
	SkippedRegions []string
}

type Pipeline struct {
	provider   ocr.Provider
	compositor *compose.Compositor
	opts       Options
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

func New(provider ocr.Provider, compositor *compose.Compositor, opts Options, logger *zap.Logger, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		provider:   provider,
		compositor: compositor,
		opts:       opts,
		logger:     logger,
		metrics:    m,
	}
}

// Run processes the three session images: OCR on front and back, field
// extraction over the combined lines (front lines first), then composition
// with the photo+QR page. On any fatal error no output file is written.
func (p *Pipeline) Run(ctx context.Context, frontPath, backPath, photoPath, outPath string) (*Result, error) {
	p.metrics.PipelinesStarted.Inc()

	frontText, err := p.ocrText(ctx, frontPath)
	if err != nil {
		p.metrics.PipelinesFailed.Inc()
		return nil, err
	}
	backText, err := p.ocrText(ctx, backPath)
	if err != nil {
		p.metrics.PipelinesFailed.Inc()
		return nil, err
	}

	lines := append(extract.NormalizeLines(frontText), extract.NormalizeLines(backText)...)
	fields := extract.Extract(lines)
	recovered := fields.Recovered()
	p.metrics.FieldsRecovered.Observe(float64(recovered))
	p.logger.Info("Extraction complete",
		zap.Int("lines", len(lines)), zap.Int("fields_recovered", recovered))

	synthetic := false
	if recovered < extract.MinRecoveredFields && p.opts.UseSampleOnMiss {
		p.logger.Warn("Too few fields recovered, substituting sample record",
			zap.Int("recovered", recovered), zap.Int("threshold", extract.MinRecoveredFields))
		fields = extract.SampleFields()
		synthetic = true
	}

	start := time.Now()
	composed, err := p.compositor.Compose(fields, photoPath, outPath)
	p.metrics.ComposeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		p.metrics.PipelinesFailed.Inc()
		return nil, err
	}
	if n := len(composed.SkippedRegions); n > 0 {
		p.metrics.CosmeticFailures.Add(float64(n))
	}

	p.metrics.PipelinesComplete.Inc()
	return &Result{
		OutputPath:     outPath,
		Fields:         fields,
		Synthetic:      synthetic,
		SkippedRegions: composed.SkippedRegions,
	}, nil
}

func (p *Pipeline) ocrText(ctx context.Context, imagePath string) (string, error) {
	text, err := p.provider.Text(ctx, imagePath)
	if err != nil {
		p.metrics.OCRCalls.WithLabelValues("error").Inc()
		return "", err
	}
	p.metrics.OCRCalls.WithLabelValues("ok").Inc()
	return text, nil
}
