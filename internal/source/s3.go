package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type s3Location struct {
	host   string
	bucket string
	prefix string
	region string
}

// parseS3URL splits s3://bucket/prefix or s3://host:port/bucket/prefix (localstack, GCS).
func parseS3URL(u *url.URL) (s3Location, error) {
	var loc s3Location
	host := u.Host
	path := strings.TrimPrefix(u.Path, "/")
	if strings.Contains(host, ".") || strings.Contains(host, ":") || host == "localhost" {
		tok := strings.SplitN(path, "/", 2)
		loc.host = host
		loc.bucket = tok[0]
		if len(tok) > 1 {
			loc.prefix = tok[1]
		}
	} else {
		loc.bucket = host
		loc.prefix = path
	}
	if loc.bucket == "" {
		return loc, fmt.Errorf("s3 url is missing a bucket: %s", u.String())
	}
	if loc.prefix != "" && !strings.HasSuffix(loc.prefix, "/") {
		loc.prefix += "/"
	}
	loc.region = os.Getenv("AWS_REGION")
	if u.Query().Get("region") != "" {
		loc.region = u.Query().Get("region")
	} else if loc.region == "" {
		loc.region = "us-west-2"
	}
	return loc, nil
}

func (l s3Location) endpoint() string {
	if l.host == "" {
		return ""
	}
	if strings.Contains(l.host, "googleapis.com") {
		return "https://storage.googleapis.com"
	}
	if strings.Contains(l.host, "localhost") {
		return "http://" + l.host
	}
	return "https://" + l.host
}

type s3Source struct {
	loc    s3Location
	client *awss3.Client
}

var _ Source = (*s3Source)(nil)

// NewS3 returns a source reading objects under an S3 prefix. Credentials come from the standard AWS environment.
func NewS3(ctx context.Context, u *url.URL) (Source, error) {
	loc, err := parseS3URL(u)
	if err != nil {
		return nil, err
	}
	region := loc.region
	if strings.Contains(loc.host, "googleapis.com") {
		region = "auto"
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		o.UsePathStyle = true
		if endpoint := loc.endpoint(); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &s3Source{loc: loc, client: client}, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var re *awshttp.ResponseError
	if errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound {
		return true
	}
	return false
}

func (s *s3Source) Open(ctx context.Context, table string) (string, io.ReadCloser, error) {
	for _, name := range Candidates(table) {
		key := s.loc.prefix + name
		resp, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
			Bucket: aws.String(s.loc.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return "", nil, fmt.Errorf("error fetching s3 object %s:%s: %w", s.loc.bucket, key, err)
		}
		return "s3://" + s.loc.bucket + "/" + key, resp.Body, nil
	}
	return "", nil, ErrNotFound
}

func (s *s3Source) String() string {
	return "s3://" + s.loc.bucket + "/" + s.loc.prefix
}
