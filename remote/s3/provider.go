// Package s3 implements remote.Provider on top of an S3-compatible object
// store, issuing presigned GET URLs.
package s3

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/polyscene/viewcache/remote"
)

const defaultExpiry = 15 * time.Minute

// Provider issues presigned GET URLs for objects in one bucket.
type Provider struct {
	svc       *s3.S3
	bucket    string
	expiry    time.Duration
	headCheck bool
}

// Option configures a Provider.
type Option func(*Provider)

// WithExpiry sets how long issued URLs remain valid. Defaults to 15 minutes.
func WithExpiry(d time.Duration) Option {
	return func(p *Provider) {
		p.expiry = d
	}
}

// WithExistenceCheck enables a HEAD request on the object before signing,
// so a missing or inaccessible object is reported at issuance time instead
// of at download time. Costs one round trip per URL.
func WithExistenceCheck() Option {
	return func(p *Provider) {
		p.headCheck = true
	}
}

// New creates a Provider for the given bucket using the session's
// credentials and region.
func New(sess *session.Session, bucket string, opts ...Option) (*Provider, error) {
	if sess == nil {
		return nil, errors.New("s3: session is nil")
	}
	if bucket == "" {
		return nil, errors.New("s3: bucket is empty")
	}
	p := &Provider{
		svc:    s3.New(sess),
		bucket: bucket,
		expiry: defaultExpiry,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.expiry <= 0 {
		return nil, errors.New("s3: expiry must be positive")
	}
	return p, nil
}

// SignedURL returns a presigned GET URL for key.
func (p *Provider) SignedURL(ctx context.Context, key string) (string, error) {
	if p.headCheck {
		_, err := p.svc.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return "", fmt.Errorf("s3: head %s: %w", key, mapAwsError(err))
		}
	}

	req, _ := p.svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	req.SetContext(ctx)

	url, err := req.Presign(p.expiry)
	if err != nil {
		return "", fmt.Errorf("s3: presign %s: %w", key, mapAwsError(err))
	}
	return url, nil
}

// mapAwsError translates SDK errors into the remote package sentinels
// where a sensible mapping exists.
func mapAwsError(err error) error {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) {
		switch reqErr.StatusCode() {
		case http.StatusNotFound:
			return remote.ErrNotFound
		case http.StatusUnauthorized, http.StatusForbidden:
			return remote.ErrUnauthorized
		}
	}
	var awsErr awserr.Error
	if errors.As(err, &awsErr) {
		switch awsErr.Code() {
		case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket, "NotFound":
			return remote.ErrNotFound
		case "AccessDenied":
			return remote.ErrUnauthorized
		}
	}
	return err
}
