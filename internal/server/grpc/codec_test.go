package grpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestDecode(t *testing.T) {
	in, err := structpb.NewStruct(map[string]any{
		"customer_ids": []any{1, 2},
		"template":     "Hi {ContactName}",
		"ignored":      true,
	})
	require.NoError(t, err)

	var req generatePreviewRequest
	require.NoError(t, Decode(in, &req))
	assert.Equal(t, []int64{1, 2}, req.CustomerIDs)
	assert.Equal(t, "Hi {ContactName}", req.Template)

	var empty idRequest
	require.NoError(t, Decode(nil, &empty))
	assert.Zero(t, empty.ID)

	in, err = structpb.NewStruct(map[string]any{"id": "x"})
	require.NoError(t, err)
	assert.Error(t, Decode(in, &empty))
}

func TestEncode(t *testing.T) {
	out, err := Encode(&sendBatchResponse{
		Attempted: 2,
		Sent:      1,
		Failed:    1,
		Results:   []sendResultDTO{{CustomerID: 4, OK: false, Error: "delivery failed"}},
	})
	require.NoError(t, err)

	m := out.AsMap()
	assert.Equal(t, float64(2), m["attempted"])
	assert.Equal(t, float64(0), m["skipped"])
	results := m["results"].([]any)
	require.Len(t, results, 1)
	r := results[0].(map[string]any)
	assert.Equal(t, "delivery failed", r["error"])
	assert.NotContains(t, r, "email_log_id")

	_, err = Encode([]int{1})
	assert.Error(t, err)
}
