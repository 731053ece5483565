package commands

import (
	"context"
	"io"

	"github.com/de-tools/social-atlas/pkg/services/catalog"
	"github.com/de-tools/social-atlas/pkg/services/config"
	"github.com/de-tools/social-atlas/pkg/services/normalizer"
	"github.com/de-tools/social-atlas/pkg/services/report"
)

type Uploader interface {
	Upload(ctx context.Context, body io.Reader, contentType string) (string, error)
}

// Deps are the collaborators shared by the commands. The factories defer
// building network and AWS clients until a command actually needs them.
type Deps struct {
	Catalogs    *catalog.Registry
	Normalizers *normalizer.Registry
	NewFetcher  func(cfg config.APIConfig) (report.Fetcher, error)
	NewUploader func(ctx context.Context, cfg config.S3Config) (Uploader, error)
}
