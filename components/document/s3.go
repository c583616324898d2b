package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the s3 client used by the corpus
type S3API interface {
	s3.ListObjectsV2APIClient
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 is a document stored as an S3 object, read with ranged GETs
type S3 struct {
	ctx    context.Context
	bucket string
	key    string
	client S3API
	offset int64
	size   int64
	mu     sync.Mutex
	Content
}

var _ Object = (*S3)(nil)

type S3Option func(*S3)

func WithS3Bucket(bucket string) S3Option {
	return func(s *S3) {
		s.bucket = bucket
	}
}

func WithS3Key(key string) S3Option {
	return func(s *S3) {
		s.key = key
	}
}

func WithS3Client(clt S3API) S3Option {
	return func(s *S3) {
		s.client = clt
	}
}

// NewS3 creates a new S3 document, ctx bounds every subsequent read.
func NewS3(ctx context.Context, opts ...S3Option) (*S3, error) {
	ret := &S3{ctx: ctx}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.client == nil {
		return nil, errors.New("s3: missing client")
	}
	headObjOutput, err := ret.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(ret.bucket),
		Key:    aws.String(ret.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object metadata: %w", err)
	}
	ret.size = aws.ToInt64(headObjOutput.ContentLength)
	ret.meta = map[string]string{
		"source":    "s3",
		"bucket":    ret.bucket,
		"key":       ret.key,
		"id":        ret.key,
		"file_name": baseName(ret.key),
	}
	return ret, nil
}

// Read implements the io.Reader interface.
func (s *S3) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.readAt(p, s.offset)
	s.offset += int64(n)
	return n, err
}

// ReadAt implements the io.ReaderAt interface.
func (s *S3) ReadAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAt(p, off)
}

func (s *S3) readAt(p []byte, off int64) (int, error) {
	if off >= s.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	end := min(off+int64(len(p)), s.size) - 1
	resp, err := s.client.GetObject(s.ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, end)),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer resp.Body.Close()
	n, err := io.ReadFull(resp.Body, p[:end-off+1])
	if err == nil && n < len(p) {
		err = io.EOF
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	return n, err
}

// Close implements the io.Closer interface.
func (s *S3) Close() error {
	return nil
}

func (s *S3) Size() int64 {
	return s.size
}

// S3Bucket is a corpus backed by the objects under a bucket prefix
type S3Bucket struct {
	client S3API
	bucket string
	prefix string
}

var _ Corpus = (*S3Bucket)(nil)

func NewS3Bucket(client S3API, bucket string, prefix string) *S3Bucket {
	return &S3Bucket{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// List returns the keys of every supported object under the prefix
func (b *S3Bucket) List(ctx context.Context) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
	}
	if b.prefix != "" {
		input.Prefix = aws.String(b.prefix)
	}
	var ret []string
	paginator := s3.NewListObjectsV2Paginator(b.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", b.bucket, b.prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, "/") || !Supported(key) {
				continue
			}
			ret = append(ret, key)
		}
	}
	slices.Sort(ret)
	return ret, nil
}

func (b *S3Bucket) Open(ctx context.Context, id string) (Object, error) {
	return NewS3(ctx, WithS3Client(b.client), WithS3Bucket(b.bucket), WithS3Key(id))
}

func baseName(key string) string {
	if idx := strings.LastIndexByte(key, '/'); idx >= 0 {
		return key[idx+1:]
	}
	return key
}
