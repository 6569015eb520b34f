package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	puts    map[string]string
	types   map[string]string
	deleted []string
	putErr  error
}

func (f *fakeAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, _ := io.ReadAll(in.Body)
	f.puts[aws.ToString(in.Key)] = string(b)
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestStore_PutDelete(t *testing.T) {
	api := &fakeAPI{puts: map[string]string{}, types: map[string]string{}}
	st := NewWithClient(api, "cats", "http://minio:9000/cats/")

	path, err := st.Put(context.Background(), "/cats/c1/p1.webp", strings.NewReader("img"), "image/webp")
	require.NoError(t, err)
	require.Equal(t, "http://minio:9000/cats/cats/c1/p1.webp", path)
	require.Equal(t, "img", api.puts["cats/c1/p1.webp"])
	require.Equal(t, "image/webp", api.types["cats/c1/p1.webp"])

	require.NoError(t, st.Delete(context.Background(), "cats/c1/p1.webp"))
	require.Equal(t, []string{"cats/c1/p1.webp"}, api.deleted)

	api.putErr = errors.New("access denied")
	_, err = st.Put(context.Background(), "k", strings.NewReader("x"), "")
	require.ErrorContains(t, err, "access denied")
}

func TestPublicBase(t *testing.T) {
	require.Equal(t, "http://localhost:9000/bkt", publicBase(Config{Bucket: "bkt", Endpoint: "http://localhost:9000/"}, "us-east-1"))
	require.Equal(t, "https://bkt.s3.eu-central-1.amazonaws.com", publicBase(Config{Bucket: "bkt"}, "eu-central-1"))
	require.Equal(t, "https://s3.eu-central-1.amazonaws.com/bkt", publicBase(Config{Bucket: "bkt", PathStyle: true}, "eu-central-1"))
}
