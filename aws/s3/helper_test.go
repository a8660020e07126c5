package s3

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDSN(t *testing.T) {
	b, err := ParseDSN("s3://my-bucket/warehouse/sql/", "eu-west-2")
	require.NoError(t, err)
	assert.Equal(t, AwsS3Bucket{Name: "my-bucket", Prefix: "warehouse/sql", Region: "eu-west-2"}, b)

	b, err = ParseDSN("my-bucket", "eu-west-2")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", b.Name)
	assert.Equal(t, "", b.Prefix)

	_, err = ParseDSN("s3://my-bucket", "")
	assert.Error(t, err)
	_, err = ParseDSN("gs://my-bucket", "eu-west-2")
	assert.Error(t, err)
}

func TestAwsS3BucketRoundTrip(t *testing.T) {
	b := AwsS3Bucket{Name: "b", Prefix: "p", Region: "us-east-1"}
	require.NoError(t, b.Parse())
	m := b.GetMap(nil)
	assert.Equal(t, map[string]string{"name": "b", "prefix": "p", "region": "us-east-1"}, m)
	scheme, err := b.GetScheme()
	require.NoError(t, err)
	assert.Equal(t, "s3", scheme)
	assert.Equal(t, "s3://b/p (us-east-1)", b.String())
	assert.True(t, IsS3URL("S3://b/p"))
	assert.False(t, IsS3URL("./out"))
}

// fakeS3 records puts and deletes; unimplemented S3API methods panic.
type fakeS3 struct {
	s3iface.S3API
	puts    map[string]string
	deletes []string
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts[aws.StringValue(in.Key)] = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(ctx aws.Context, in *s3.DeleteObjectInput, opts ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) GetObjectWithContext(ctx aws.Context, in *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error) {
	return nil, awserr.New(s3.ErrCodeNoSuchKey, "missing", nil)
}

func TestBasicClientUsesPrefix(t *testing.T) {
	api := &fakeS3{puts: map[string]string{}}
	c := NewBasicClientWithAPI("b", "eu-west-2", "out/", api)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "stg/Tables/Customer.sql", []byte("CREATE TABLE")))
	assert.Equal(t, map[string]string{"out/stg/Tables/Customer.sql": "CREATE TABLE"}, api.puts)

	require.NoError(t, c.Delete(ctx, "stg/Tables/Customer.sql"))
	assert.Equal(t, []string{"out/stg/Tables/Customer.sql"}, api.deletes)

	_, err := c.Get(ctx, "nope")
	assert.True(t, errors.Is(err, ErrKeyNotFound))
}
