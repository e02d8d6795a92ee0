// Package s3svc_test tests the s3svc package functionality
package s3svc_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sgaunet/s3peek/pkg/config"
	"github.com/sgaunet/s3peek/pkg/objstore"
	"github.com/sgaunet/s3peek/pkg/s3svc"
)

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) ListBuckets(ctx context.Context, in *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.ListBucketsOutput)
	return out, args.Error(1)
}

func (m *mockS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.ListObjectsV2Output)
	return out, args.Error(1)
}

func (m *mockS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.HeadObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func newService(m *mockS3) *s3svc.Service {
	svc := s3svc.NewS3Svc(config.S3Config{MaxKeys: 2}, m)
	svc.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc
}

func TestListBuckets(t *testing.T) {
	m := &mockS3{}
	created := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	m.On("ListBuckets", mock.Anything, mock.Anything).Return(&s3.ListBucketsOutput{
		Buckets: []types.Bucket{{Name: aws.String("logs"), CreationDate: aws.Time(created)}},
	}, nil)

	buckets, err := newService(m).ListBuckets(context.Background())
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, "logs", buckets[0].Name)
	assert.Equal(t, created, buckets[0].CreationDate)
}

func TestListBucketsTransportError(t *testing.T) {
	m := &mockS3{}
	m.On("ListBuckets", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := newService(m).ListBuckets(context.Background())
	assert.ErrorIs(t, err, objstore.ErrStoreUnavailable)
}

func TestListOnePrefix(t *testing.T) {
	m := &mockS3{}
	m.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.Bucket) == "b" &&
			aws.ToString(in.Prefix) == "data/" &&
			aws.ToString(in.Delimiter) == "/" &&
			aws.ToInt32(in.MaxKeys) == 2
	})).Return(&s3.ListObjectsV2Output{
		IsTruncated:    aws.Bool(false),
		CommonPrefixes: []types.CommonPrefix{{Prefix: aws.String("data/2024/")}},
		Contents: []types.Object{{
			Key:          aws.String("data/a.csv"),
			Size:         aws.Int64(42),
			LastModified: aws.Time(time.Unix(0, 0).UTC()),
			StorageClass: types.ObjectStorageClassStandard,
		}},
	}, nil)

	l, err := newService(m).ListOnePrefix(context.Background(), "b", "data/")
	require.NoError(t, err)
	assert.Equal(t, []string{"data/2024/"}, l.CommonPrefixes)
	require.Len(t, l.Objects, 1)
	assert.Equal(t, "data/a.csv", l.Objects[0].Key)
	assert.Equal(t, int64(42), l.Objects[0].Size)
	assert.Equal(t, "STANDARD", l.Objects[0].StorageClass)
	m.AssertExpectations(t)
}

func TestListOnePrefixTruncated(t *testing.T) {
	m := &mockS3{}
	m.On("ListObjectsV2", mock.Anything, mock.Anything).Return(&s3.ListObjectsV2Output{
		IsTruncated: aws.Bool(true),
		MaxKeys:     aws.Int32(2),
		Contents:    []types.Object{{Key: aws.String("a")}, {Key: aws.String("b")}},
	}, nil)

	l, err := newService(m).ListOnePrefix(context.Background(), "b", "")
	assert.Nil(t, l)
	require.ErrorIs(t, err, objstore.ErrListingTooLarge)
	var tooLarge *objstore.ListingTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, 2, tooLarge.MaxKeys)
}

func TestStat(t *testing.T) {
	m := &mockS3{}
	m.On("HeadObject", mock.Anything, mock.Anything).Return(&s3.HeadObjectOutput{
		ContentLength: aws.Int64(1234),
		LastModified:  aws.Time(time.Unix(100, 0).UTC()),
	}, nil)

	rec, err := newService(m).Stat(context.Background(), "b", "k")
	require.NoError(t, err)
	assert.Equal(t, "k", rec.Key)
	assert.Equal(t, int64(1234), rec.Size)
	assert.Equal(t, "STANDARD", rec.StorageClass)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		notFound bool
	}{
		{name: "NoSuchKey", err: &types.NoSuchKey{}, notFound: true},
		{name: "NotFound", err: &types.NotFound{}, notFound: true},
		{name: "NoSuchBucket", err: &types.NoSuchBucket{}, notFound: true},
		{name: "api code", err: &smithy.GenericAPIError{Code: "NoSuchKey"}, notFound: true},
		{name: "status 404", err: &smithyhttp.ResponseError{
			Response: &smithyhttp.Response{Response: &http.Response{StatusCode: http.StatusNotFound}},
			Err:      errors.New("not found"),
		}, notFound: true},
		{name: "access denied", err: &smithy.GenericAPIError{Code: "AccessDenied"}},
		{name: "transport", err: errors.New("dial tcp: timeout")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockS3{}
			m.On("HeadObject", mock.Anything, mock.Anything).Return(nil, tt.err)

			_, err := newService(m).Stat(context.Background(), "b", "k")
			require.Error(t, err)
			if tt.notFound {
				assert.ErrorIs(t, err, objstore.ErrNotFound)
				assert.NotErrorIs(t, err, objstore.ErrStoreUnavailable)
				return
			}
			assert.ErrorIs(t, err, objstore.ErrStoreUnavailable)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestReadRange(t *testing.T) {
	m := &mockS3{}
	m.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Range) == "bytes=10-19"
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("0123456789"))}, nil)

	data, err := newService(m).ReadRange(context.Background(), "b", "k", 10, 19)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(data))
	m.AssertExpectations(t)
}

func TestReadRangePastEnd(t *testing.T) {
	m := &mockS3{}
	m.On("GetObject", mock.Anything, mock.Anything).Return(nil, &smithy.GenericAPIError{Code: "InvalidRange"})

	data, err := newService(m).ReadRange(context.Background(), "b", "k", 500, 600)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestReadRangeRejectsInvertedRange(t *testing.T) {
	m := &mockS3{}

	_, err := newService(m).ReadRange(context.Background(), "b", "k", 10, 5)
	assert.ErrorIs(t, err, objstore.ErrInvalidRange)
	m.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything)
}

func TestOpenNotFound(t *testing.T) {
	m := &mockS3{}
	m.On("GetObject", mock.Anything, mock.Anything).Return(nil, &types.NoSuchKey{})

	rc, err := newService(m).Open(context.Background(), "b", "missing")
	assert.Nil(t, rc)
	var nf *objstore.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.Key)
}

func TestGetAwsConfigWithEndpoint(t *testing.T) {
	cfg := config.S3Config{
		Endpoint:  "http://localhost:9000",
		AccessKey: "id",
		SecretKey: "secret",
		Region:    "us-east-1",
	}
	awsCfg, err := s3svc.GetAwsConfig(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", awsCfg.Region)

	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "id", creds.AccessKeyID)
	assert.Equal(t, "secret", creds.SecretAccessKey)
}

func TestGetAwsConfigPartialKeys(t *testing.T) {
	cfg := config.S3Config{AccessKey: "id"}
	_, err := s3svc.GetAwsConfig(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.ErrorIs(t, err, s3svc.ErrNoAwsConfigMethod)
}

const listBucketResult = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
<Name>data</Name><Prefix>dir/</Prefix><Delimiter>/</Delimiter><MaxKeys>2</MaxKeys><IsTruncated>false</IsTruncated>
<Contents><Key>dir/a.txt</Key><LastModified>2024-01-02T03:04:05.000Z</LastModified><Size>12</Size><StorageClass>STANDARD</StorageClass></Contents>
<CommonPrefixes><Prefix>dir/sub/</Prefix></CommonPrefixes>
</ListBucketResult>`

// newHTTPService points a real S3 client at a local server answering every
// request with status and body.
func newHTTPService(t *testing.T, status int, body string) *s3svc.Service {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data", r.URL.Path)
		assert.Equal(t, "dir/", r.URL.Query().Get("prefix"))
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	cfg := config.S3Config{
		Endpoint:  srv.URL,
		AccessKey: "access",
		SecretKey: "secret",
		Region:    "us-east-1",
		MaxKeys:   2,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := s3svc.NewClient(context.Background(), cfg, log, func(o *s3.Options) {
		o.Retryer = aws.NopRetryer{}
	})
	require.NoError(t, err)
	svc := s3svc.NewS3Svc(cfg, client)
	svc.SetLogger(log)
	return svc
}

func TestListOnePrefixOverHTTP(t *testing.T) {
	svc := newHTTPService(t, http.StatusOK, listBucketResult)

	l, err := svc.ListOnePrefix(context.Background(), "data", "dir/")
	require.NoError(t, err)
	assert.Equal(t, []string{"dir/sub/"}, l.CommonPrefixes)
	require.Len(t, l.Objects, 1)
	assert.Equal(t, "dir/a.txt", l.Objects[0].Key)
	assert.Equal(t, int64(12), l.Objects[0].Size)
	assert.Equal(t, "STANDARD", l.Objects[0].StorageClass)
}

func TestListOnePrefixNon2xxStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "service unavailable", status: http.StatusServiceUnavailable,
			body: `<Error><Code>SlowDown</Code><Message>Please reduce your request rate.</Message></Error>`},
		{name: "forbidden", status: http.StatusForbidden,
			body: `<Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`},
		{name: "redirect without body", status: http.StatusMovedPermanently, body: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newHTTPService(t, tt.status, tt.body)

			l, err := svc.ListOnePrefix(context.Background(), "data", "dir/")
			require.Error(t, err)
			assert.Nil(t, l)
			assert.ErrorIs(t, err, objstore.ErrStoreUnavailable)
			assert.ErrorIs(t, err, s3svc.ErrUnexpectedStatus)
			assert.False(t, objstore.IsNotFound(err))
			assert.Contains(t, err.Error(), strconv.Itoa(tt.status))
		})
	}
}

func TestListOnePrefixMissingBucketOverHTTP(t *testing.T) {
	svc := newHTTPService(t, http.StatusNotFound,
		`<Error><Code>NoSuchBucket</Code><Message>The specified bucket does not exist</Message></Error>`)

	_, err := svc.ListOnePrefix(context.Background(), "data", "dir/")
	require.Error(t, err)
	assert.True(t, objstore.IsNotFound(err))
	assert.NotErrorIs(t, err, s3svc.ErrUnexpectedStatus)
}
