package dataset

import (
	"context"
	"os"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"golang.org/x/sync/singleflight"

	"github.com/RyanBlaney/contest-audio-dataset/pkg/audiofile"
	"github.com/RyanBlaney/contest-audio-dataset/pkg/catalog"
	"github.com/RyanBlaney/contest-audio-dataset/pkg/features"
)

// BundleCache resolves artifact paths to feature bundles. It layers
// two caches: the persisted bundle document colocated with each
// artifact (shared across runs), and in-flight coalescing so
// concurrent workers asking for the same artifact trigger exactly one
// computation.
type BundleCache struct {
	decoder   *audiofile.Decoder
	extractor *features.Extractor
	logger    logging.Logger
	group     singleflight.Group
}

// NewBundleCache creates a cache backed by the given decoder and
// extractor.
func NewBundleCache(decoder *audiofile.Decoder, extractor *features.Extractor, logger logging.Logger) *BundleCache {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &BundleCache{
		decoder:   decoder,
		extractor: extractor,
		logger:    logger,
	}
}

type cacheResult struct {
	bundle    *features.Bundle
	fromCache bool
}

// GetOrCompute returns the bundle for an artifact. A parseable
// persisted document short-circuits extraction; otherwise the artifact
// is decoded, extracted and the document written back. The returned
// bool reports whether the bundle came from the persisted cache.
//
// The computation itself is not interrupted by ctx — a timed-out
// caller degrades its row while the computation finishes and lands in
// the document cache for the next run.
func (c *BundleCache) GetOrCompute(ctx context.Context, artifactPath string) (*features.Bundle, bool, error) {
	ch := c.group.DoChan(artifactPath, func() (any, error) {
		return c.compute(artifactPath)
	})

	select {
	case <-ctx.Done():
		return nil, false, features.NewError(features.ErrCodeDecoding, artifactPath,
			"extraction timed out", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		r := res.Val.(cacheResult)
		return r.bundle, r.fromCache, nil
	}
}

func (c *BundleCache) compute(artifactPath string) (any, error) {
	documentPath := catalog.BundlePath(artifactPath)

	if bundle, err := features.LoadBundle(documentPath); err == nil {
		return cacheResult{bundle: bundle, fromCache: true}, nil
	} else if fileExists(documentPath) {
		// A present but unusable document is discarded and re-extracted.
		c.logger.Warn("discarding malformed bundle document", logging.Fields{
			"document": documentPath,
			"error":    err.Error(),
		})
	}

	audio, err := c.decoder.DecodeFile(artifactPath)
	if err != nil {
		return nil, err
	}

	bundle, err := c.extractor.Extract(audio.PCM, audio.SampleRate)
	if err != nil {
		return nil, err
	}

	if err := features.SaveBundle(documentPath, bundle); err != nil {
		// Cache write failures cost recomputation next run, nothing
		// more.
		c.logger.Warn("failed to persist bundle document", logging.Fields{
			"document": documentPath,
			"error":    err.Error(),
		})
	}

	return cacheResult{bundle: bundle, fromCache: false}, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
