package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		name                        string
		ctype, scope, subject, body string
		want                        string
	}{
		{
			name:  "Full",
			ctype: CommitTypeData, scope: "notes", subject: "write notes", body: "  2 notes\n",
			want: "data(notes): write notes\n\n2 notes\n\n" + Footer,
		},
		{
			name:    "Default Type Without Scope",
			subject: "init",
			want:    "chore: init\n\n" + Footer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatMessage(tt.ctype, tt.scope, tt.subject, tt.body)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got[:len(Subject(got))], Subject(got))
		})
	}
}
