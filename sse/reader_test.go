package sse_test

import (
	"io"
	"strings"
	"testing"

	"github.com/fwojciec/ideas/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, body string) []sse.Message {
	t.Helper()
	r := sse.NewReader(strings.NewReader(body))
	var msgs []sse.Message
	for {
		msg, err := r.Next()
		if err == io.EOF {
			return msgs
		}
		require.NoError(t, err)
		msgs = append(msgs, msg)
	}
}

func TestReader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want []sse.Message
	}{
		{
			name: "data lines",
			body: "data: one\n\ndata: two\n\n",
			want: []sse.Message{{Data: "one"}, {Data: "two"}},
		},
		{
			name: "multi-line data joined",
			body: "data: ## Problem\ndata: Lots of people\n\n",
			want: []sse.Message{{Data: "## Problem\nLots of people"}},
		},
		{
			name: "space after colon optional",
			body: "data:tight\n\n",
			want: []sse.Message{{Data: "tight"}},
		},
		{
			name: "only one leading space stripped",
			body: "data:   - nested\n\n",
			want: []sse.Message{{Data: "  - nested"}},
		},
		{
			name: "crlf line endings",
			body: "event: message\r\ndata: hi\r\n\r\n",
			want: []sse.Message{{Event: "message", Data: "hi"}},
		},
		{
			name: "event without data dispatches",
			body: "event: done\n\n",
			want: []sse.Message{{Event: "done"}},
		},
		{
			name: "empty data line is a message",
			body: "data:\n\n",
			want: []sse.Message{{Data: ""}},
		},
		{
			name: "comments and retry ignored",
			body: ": keep-alive\nretry: 1000\n\ndata: x\n\n",
			want: []sse.Message{{Data: "x"}},
		},
		{
			name: "id recorded",
			body: "id: 7\ndata: x\n\n",
			want: []sse.Message{{ID: "7", Data: "x"}},
		},
		{
			name: "pending message flushed at end",
			body: "data: tail",
			want: []sse.Message{{Data: "tail"}},
		},
		{
			name: "empty body",
			body: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, readAll(t, tt.body))
		})
	}
}

func TestReader_LongLine(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 200*1024)
	msgs := readAll(t, "data: "+long+"\n\n")
	require.Len(t, msgs, 1)
	assert.Len(t, msgs[0].Data, len(long))
}
