// Package storage talks to the S3-compatible bucket that holds product
// images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"storeadmin/internal/apperr"
	"storeadmin/internal/config"
)

type ObjectStore struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	public    *url.URL
	// legacy bases are only used to map old image URLs back to keys.
	legacy []*url.URL
}

func NewObjectStore(ctx context.Context, cfg config.Config) (*ObjectStore, error) {
	if cfg.StorageBucket == "" {
		return nil, errors.New("storage bucket is not configured")
	}
	public, err := parsePublicBase(cfg.StoragePublicBaseURL)
	if err != nil {
		return nil, err
	}
	legacy := make([]*url.URL, 0, len(cfg.StorageLegacyPublicURLs))
	for _, raw := range cfg.StorageLegacyPublicURLs {
		base, err := parsePublicBase(raw)
		if err != nil {
			return nil, fmt.Errorf("legacy %w", err)
		}
		legacy = append(legacy, base)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.StorageRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.StorageAccessKeyID, cfg.StorageSecretAccessKey, "",
		)),
		// R2 rejects the checksum parameters newer SDKs add to presigned PUTs.
		awsconfig.WithRequestChecksumCalculation(aws.RequestChecksumCalculationWhenRequired),
	)
	if err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.StorageEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.StorageEndpoint)
		}
		o.UsePathStyle = cfg.StoragePathStyle
	})

	log.Printf("[STORAGE] [INFO] object store ready: bucket=%s endpoint=%s", cfg.StorageBucket, cfg.StorageEndpoint)
	return &ObjectStore{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.StorageBucket,
		public:    public,
		legacy:    legacy,
	}, nil
}

func parsePublicBase(raw string) (*url.URL, error) {
	public, err := url.Parse(strings.TrimRight(strings.TrimSpace(raw), "/"))
	if err != nil || public.Scheme == "" || public.Host == "" {
		return nil, fmt.Errorf("invalid public base url %q", raw)
	}
	return public, nil
}

// PresignPut signs a PUT for key that only accepts the given content type.
func (s *ObjectStore) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", apperr.Upstream("presign put", err)
	}
	return req.URL, nil
}

func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return apperr.Upstream("delete object", err)
	}
	log.Println("[STORAGE] [INFO] object deleted:", key)
	return nil
}

// PublicURL is where a stored object is served from. It is never the signed
// upload URL.
func (s *ObjectStore) PublicURL(key string) string {
	return s.public.String() + "/" + url.PathEscape(key)
}

// KeyFromURL recovers the object key from a public URL. The current public
// base and any configured legacy base are accepted. Legacy bases match on
// host and path only, since older records mix http and https.
func (s *ObjectStore) KeyFromURL(rawURL string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}
	if strings.EqualFold(parsed.Scheme, s.public.Scheme) {
		if key, ok := keyUnder(s.public, parsed); ok {
			return key, true
		}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", false
	}
	for _, base := range s.legacy {
		if key, ok := keyUnder(base, parsed); ok {
			return key, true
		}
	}
	return "", false
}

func keyUnder(base, parsed *url.URL) (string, bool) {
	if !strings.EqualFold(parsed.Host, base.Host) {
		return "", false
	}
	prefix := base.Path + "/"
	if !strings.HasPrefix(parsed.Path, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(parsed.Path, prefix)
	if key == "" {
		return "", false
	}
	return key, true
}
