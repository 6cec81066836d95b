package clients

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockS3API struct {
	objects     map[string][]byte
	contentType string
	getErr      error
}

func (m *mockS3API) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)] = body
	m.contentType = aws.ToString(params.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3API) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	body, ok := m.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("The specified key does not exist.")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func Test_S3Client_PutThenGet(t *testing.T) {
	//Arrange
	api := &mockS3API{objects: map[string][]byte{}}
	client := NewS3ClientWithAPI(api, "backups")

	//Act
	err := client.PutObject(context.Background(), "inventory-backup.json", []byte(`{"version":1}`), "application/json")
	require.NoError(t, err)
	body, err := client.GetObject(context.Background(), "inventory-backup.json")

	//Assert
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(body))
	assert.Equal(t, "application/json", api.contentType)
	assert.Contains(t, api.objects, "backups/inventory-backup.json")
}

func Test_S3Client_MissingKey(t *testing.T) {
	client := NewS3ClientWithAPI(&mockS3API{objects: map[string][]byte{}}, "backups")

	_, err := client.GetObject(context.Background(), "nothing-here")

	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func Test_S3Client_OtherErrorsAreWrapped(t *testing.T) {
	cause := errors.New("access denied")
	client := NewS3ClientWithAPI(&mockS3API{objects: map[string][]byte{}, getErr: cause}, "backups")

	_, err := client.GetObject(context.Background(), "k")

	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrObjectNotFound)
}
