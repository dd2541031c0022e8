package api_test

import (
	"testing"

	"github.com/aretw0/lay/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	doc, err := api.Load()
	require.NoError(t, err)

	for _, path := range []string{"/v1/run", "/v1/sessions", "/v1/sessions/{sessionID}/traces", "/v1/traces/{traceID}"} {
		assert.NotNil(t, doc.Paths.Value(path), path)
	}
	run := doc.Paths.Value("/v1/run").Post
	require.NotNil(t, run)
	assert.NotNil(t, run.RequestBody.Value.Content.Get("application/json"))
}
