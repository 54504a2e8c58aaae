package services

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"solar-proposal-backend/config"
	"solar-proposal-backend/db/models"
	"solar-proposal-backend/internal/layout"
	"solar-proposal-backend/internal/metrics"
	"solar-proposal-backend/internal/render"
	"solar-proposal-backend/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrUnknownVariant = errors.New("unknown proposal variant")

const (
	renderCachePrefix = "proposal_pdf"
	renderCacheTTL    = time.Hour
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Filename is the download name of a proposal PDF.
func Filename(customerName string) string {
	return "proposta_" + whitespaceRun.ReplaceAllString(customerName, "_") + ".pdf"
}

// DocumentService renders proposals to PDF. It holds one engine per variant;
// each render gets its own measurer so concurrent requests share nothing.
type DocumentService struct {
	engines        map[string]*layout.Engine
	defaultVariant string
	cache          *redis.Client
}

type DocumentOptions struct {
	Variants       map[string]layout.Variant
	DefaultVariant string
	LogoPath       string
	// Cache is optional; without it every RenderBytes call renders.
	Cache    *redis.Client
	Measurer layout.MeasurerFactory
}

func NewDocumentService(opts DocumentOptions) (*DocumentService, error) {
	if len(opts.Variants) == 0 {
		opts.Variants = layout.BuiltinVariants()
	}
	if opts.DefaultVariant == "" {
		opts.DefaultVariant = layout.DefaultVariant
	}
	if _, ok := opts.Variants[opts.DefaultVariant]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, opts.DefaultVariant)
	}
	if opts.Measurer == nil {
		opts.Measurer = render.NewMeasurer
	}

	engines := make(map[string]*layout.Engine, len(opts.Variants))
	for name, v := range opts.Variants {
		cfg := layout.NewConfig(v)
		cfg.LogoPath = opts.LogoPath
		engines[name] = layout.NewEngine(cfg, layout.WithMeasurer(opts.Measurer))
	}

	return &DocumentService{
		engines:        engines,
		defaultVariant: opts.DefaultVariant,
		cache:          opts.Cache,
	}, nil
}

func (s *DocumentService) Variants() []string {
	names := make(map[string]layout.Variant, len(s.engines))
	for name, e := range s.engines {
		names[name] = e.Config().Variant
	}
	return layout.VariantNames(names)
}

// ResolveVariant maps an empty name to the default and rejects unknown ones.
func (s *DocumentService) ResolveVariant(name string) (string, error) {
	if name == "" {
		return s.defaultVariant, nil
	}
	if _, ok := s.engines[name]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}
	return name, nil
}

// CompanyName is the issuer printed by the variant.
func (s *DocumentService) CompanyName(variant string) string {
	name, err := s.ResolveVariant(variant)
	if err != nil {
		name = s.defaultVariant
	}
	return s.engines[name].Config().Variant.Copy.CompanyName
}

// Layout runs the engine only; no PDF is produced.
func (s *DocumentService) Layout(p *models.Proposal, variant string) (*layout.Document, string, error) {
	name, err := s.ResolveVariant(variant)
	if err != nil {
		return nil, "", err
	}
	return s.engines[name].Render(ToRecord(p)), name, nil
}

// Render streams the PDF. It blocks until the first byte is ready, so a
// render failure is returned here and never after the caller has started
// answering.
func (s *DocumentService) Render(ctx context.Context, p *models.Proposal, variant string) (io.ReadCloser, error) {
	doc, name, err := s.Layout(p, variant)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	stream := render.Stream(doc)
	buffered := bufio.NewReader(stream)

	peeked := make(chan error, 1)
	go func() {
		_, err := buffered.Peek(1)
		peeked <- err
	}()

	select {
	case err = <-peeked:
	case <-ctx.Done():
		stream.Close()
		<-peeked
		err = ctx.Err()
	}
	if err != nil {
		stream.Close()
		metrics.ObserveRender(metrics.ResultError, name, time.Since(start))
		config.Logger.Error("Proposal render failed",
			zap.String("proposal_id", p.ID.String()),
			zap.String("variant", name),
			zap.Error(err),
		)
		return nil, err
	}

	return &renderStream{Reader: buffered, stream: stream, variant: name, start: start}, nil
}

// renderStream reports the render once the consumer is done with it.
type renderStream struct {
	io.Reader
	stream  io.Closer
	variant string
	start   time.Time
	failed  bool
}

func (r *renderStream) Read(p []byte) (int, error) {
	n, err := r.Reader.Read(p)
	if err != nil && err != io.EOF {
		r.failed = true
	}
	return n, err
}

func (r *renderStream) Close() error {
	result := metrics.ResultSuccess
	if r.failed {
		result = metrics.ResultError
	}
	metrics.ObserveRender(result, r.variant, time.Since(r.start))
	return r.stream.Close()
}

func cacheKey(id, variant string) string {
	return fmt.Sprintf("%s:%s:%s", renderCachePrefix, id, variant)
}

// RenderBytes returns the whole PDF, through the render cache when one is
// configured.
func (s *DocumentService) RenderBytes(ctx context.Context, p *models.Proposal, variant string) ([]byte, error) {
	name, err := s.ResolveVariant(variant)
	if err != nil {
		return nil, err
	}
	key := cacheKey(p.ID.String(), name)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			metrics.IncRenderCache(true)
			return cached, nil
		case !errors.Is(err, redis.Nil):
			config.Logger.Warn("Render cache read failed", zap.String("key", key), zap.Error(err))
		}
		metrics.IncRenderCache(false)
	}

	start := time.Now()
	var buf bytes.Buffer
	if err := render.Emit(s.engines[name].Render(ToRecord(p)), &buf); err != nil {
		metrics.ObserveRender(metrics.ResultError, name, time.Since(start))
		return nil, err
	}
	metrics.ObserveRender(metrics.ResultSuccess, name, time.Since(start))

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, buf.Bytes(), renderCacheTTL).Err(); err != nil {
			config.Logger.Warn("Render cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return buf.Bytes(), nil
}

// Invalidate drops every cached render of the proposal, including those of
// variants that no longer exist.
func (s *DocumentService) Invalidate(ctx context.Context, id string) error {
	if s.cache == nil {
		return nil
	}
	if _, err := utils.InvalidateCache(ctx, s.cache, renderCachePrefix+":"+id); err != nil {
		return fmt.Errorf("failed to invalidate render cache: %w", err)
	}
	return nil
}

// InvalidateAll drops the whole render cache in the background, used when
// the variant set changes.
func (s *DocumentService) InvalidateAll() {
	if s.cache != nil {
		utils.InvalidateCacheAsync(s.cache, renderCachePrefix)
	}
}
