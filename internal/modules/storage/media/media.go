// Package media uploads editor assets (hero images, gallery media) to
// S3-compatible object storage and hands back the public URL to store on
// the content row.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/akshayrajput12/chronical-sub004/internal/config"
	"github.com/akshayrajput12/chronical-sub004/internal/pkg/response"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadBytes = 16 << 20

// Service wraps the S3 client for media uploads.
type Service struct {
	client *s3.Client
	opts   config.S3Options
}

// NewService builds the S3 client from static credentials. A custom
// endpoint (MinIO, R2) forces path-style addressing.
func NewService(opts config.S3Options) (*Service, error) {
	if opts.Bucket == "" || opts.Region == "" || opts.AccessKeyID == "" || opts.SecretAccessKey == "" {
		return nil, fmt.Errorf("incomplete s3 config: bucket/region/access_key_id/secret_access_key are required")
	}

	cfg := aws.Config{
		Region:      opts.Region,
		Credentials: credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			endpoint := opts.Endpoint
			if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
				endpoint = "https://" + endpoint
			}
			o.BaseEndpoint = aws.String(strings.TrimSuffix(endpoint, "/"))
			o.UsePathStyle = true
		}
		if opts.PathStyleAccess {
			o.UsePathStyle = true
		}
	})

	return &Service{client: client, opts: opts}, nil
}

// Upload puts the payload under the given key and returns its public URL.
func (s *Service) Upload(ctx context.Context, key string, payload []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = http.DetectContentType(payload)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.opts.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload: %w", err)
	}
	return s.publicURL(key), nil
}

func (s *Service) publicURL(key string) string {
	if s.opts.CustomDomain != "" {
		return strings.TrimRight(s.opts.CustomDomain, "/") + "/" + key
	}
	if s.opts.Endpoint != "" {
		endpoint := strings.TrimSuffix(s.opts.Endpoint, "/")
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		return fmt.Sprintf("%s/%s/%s", endpoint, s.opts.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.opts.Bucket, s.opts.Region, key)
}

// objectKey files uploads by month so the bucket stays browsable.
func objectKey(filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("media/%s/%s%s", now.Format("2006/01"), uuid.New().String(), ext)
}

// Handler handles media HTTP requests.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	media := rg.Group("/media", authMW)
	media.POST("/upload", h.upload)
}

func (h *Handler) upload(c *gin.Context) {
	if h.svc == nil {
		response.BadRequest(c, "media storage is not configured")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file field")
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		response.BadRequest(c, "file too large")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	url, err := h.svc.Upload(c.Request.Context(), objectKey(header.Filename, time.Now()), payload, header.Header.Get("Content-Type"))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.Created(c, gin.H{"url": url})
}
