package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name   string
		friend Friend
		want   string
	}{
		{
			name:   "nickname wins",
			friend: Friend{FirstName: "Ada", LastName: "Lovelace", Nickname: "The Countess"},
			want:   "The Countess",
		},
		{
			name:   "full name without nickname",
			friend: Friend{FirstName: "Ada", LastName: "Lovelace"},
			want:   "Ada Lovelace",
		},
		{
			name:   "first name only",
			friend: Friend{FirstName: "Ada"},
			want:   "Ada",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.friend.DisplayName())
		})
	}
}
