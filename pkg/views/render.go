package views

import (
	"context"
	"io"

	"github.com/sgaunet/s3peek/pkg/dto"
)

// RenderBuckets renders the bucket list
func (v *Views) RenderBuckets(ctx context.Context, w io.Writer, buckets []dto.Bucket) error {
	return Buckets(buckets).Render(ctx, w)
}

// RenderListing renders the listing page
func (v *Views) RenderListing(ctx context.Context, w io.Writer, data ListingData) error {
	return Listing(data).Render(ctx, w)
}

// RenderPreview renders the preview page
func (v *Views) RenderPreview(ctx context.Context, w io.Writer, data PreviewData) error {
	return Preview(data).Render(ctx, w)
}

// RenderError renders the error page
func (v *Views) RenderError(ctx context.Context, w io.Writer, status int, msg string) error {
	return Error(status, msg).Render(ctx, w)
}
