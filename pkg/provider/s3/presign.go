package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Presigned URL TTL bounds. SigV4 caps expiry at 7 days; zero or negative
// TTLs fall back to the default.
const (
	DefaultSignTTL = 24 * time.Hour
	MaxSignTTL     = 7 * 24 * time.Hour
)

// SignGetURL returns a presigned GET URL for key, valid for ttl.
//
// Signing is a local SigV4 computation: no request is made to S3 and the
// object's existence is not verified. A URL for a missing object simply
// yields 404 when fetched.
func (p *Provider) SignGetURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", p.wrapError("SignGetURL", key, fmt.Errorf("key is required"))
	}

	req, err := p.presign.PresignGetObject(ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(key),
		},
		s3.WithPresignExpires(clampSignTTL(ttl)),
	)
	if err != nil {
		return "", p.wrapError("SignGetURL", key, err)
	}

	return req.URL, nil
}

// clampSignTTL bounds a signing TTL to what SigV4 allows.
func clampSignTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultSignTTL
	}
	if ttl > MaxSignTTL {
		return MaxSignTTL
	}
	return ttl
}
