package s3

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDerivesPublicBaseURL(t *testing.T) {
	store, err := New(context.Background(), Config{
		Endpoint:  "http://minio:9000/",
		Region:    "us-east-1",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "progress-photos",
	})
	require.NoError(t, err)
	require.Equal(t, "http://minio:9000/progress-photos", store.baseURL)
}

func TestNewHonoursPublicBaseURLOverride(t *testing.T) {
	store, err := New(context.Background(), Config{
		Endpoint:      "http://minio:9000",
		Region:        "us-east-1",
		AccessKey:     "minioadmin",
		SecretKey:     "minioadmin",
		Bucket:        "progress-photos",
		PublicBaseURL: "https://cdn.example.com/photos/",
	})
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/photos", store.baseURL)
}
