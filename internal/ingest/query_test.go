package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildQuery(t *testing.T) {
	after := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		senders         []string
		subjectKeywords []string
		after           *time.Time
		want            string
	}{
		{
			name:    "single sender only",
			senders: []string{"alerts@hdfcbank.net"},
			want:    "from:alerts@hdfcbank.net",
		},
		{
			name:    "multiple senders OR'd",
			senders: []string{"alerts@hdfcbank.net", "noreply@icicibank.com"},
			want:    "(from:alerts@hdfcbank.net OR from:noreply@icicibank.com)",
		},
		{
			name:            "senders AND subject keywords",
			senders:         []string{"alerts@hdfcbank.net"},
			subjectKeywords: []string{"debited", "credited"},
			want:            "from:alerts@hdfcbank.net (subject:debited OR subject:credited)",
		},
		{
			name:    "with after date",
			senders: []string{"alerts@hdfcbank.net"},
			after:   &after,
			want:    "from:alerts@hdfcbank.net after:2025/03/01",
		},
		{
			name: "empty lists yield empty query",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildQuery(tt.senders, tt.subjectKeywords, tt.after)
			assert.Equal(t, tt.want, got)
		})
	}
}
