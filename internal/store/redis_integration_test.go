//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreIntegration(t *testing.T) {
	addr := os.Getenv("DEGREE_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	s, err := NewRedisStore(context.Background(), addr, "degreetrack-test-"+uuid.NewString()+":")
	if err != nil {
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	defer s.Close()
	t.Cleanup(func() {
		_ = s.Delete(context.Background(), "other")
	})
	require.NotNil(t, s)
	exerciseStore(t, s)
}
