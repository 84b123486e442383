package mentions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasMentionMarker(t *testing.T) {
	assert.True(t, HasMentionMarker("hey @bob"))
	assert.True(t, HasMentionMarker("@"))
	assert.False(t, HasMentionMarker("no tags here"))
	assert.False(t, HasMentionMarker(""))
}

func TestExtractMentions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty text",
			text: "",
			want: nil,
		},
		{
			name: "no mentions",
			text: "just a plain post",
			want: nil,
		},
		{
			name: "single mention",
			text: "hello @alice",
			want: []string{"alice"},
		},
		{
			name: "multiple mentions",
			text: "@alice meet @bob",
			want: []string{"alice", "bob"},
		},
		{
			name: "duplicates collapse to first occurrence",
			text: "hey @bob and @bob again, also @alice then @bob",
			want: []string{"bob", "alice"},
		},
		{
			name: "underscore and digits",
			text: "ping @user_42 about it",
			want: []string{"user_42"},
		},
		{
			name: "punctuation terminates the name",
			text: "thanks @alice! cc @bob, @carol.",
			want: []string{"alice", "bob", "carol"},
		},
		{
			name: "bare at sign yields nothing",
			text: "meet @ noon",
			want: nil,
		},
		{
			name: "escaped at is skipped",
			text: `email me \@alice but tag @bob`,
			want: []string{"bob"},
		},
		{
			name: "double backslash does not escape",
			text: `path \\@alice`,
			want: []string{"alice"},
		},
		{
			name: "adjacent mentions",
			text: "@alice@bob",
			want: []string{"alice", "bob"},
		},
		{
			name: "mention at end of text",
			text: "all yours @zed",
			want: []string{"zed"},
		},
		{
			name: "case preserved",
			text: "hi @Alice and @alice",
			want: []string{"Alice", "alice"},
		},
		{
			name: "non-ascii stops the scan",
			text: "hola @josé",
			want: []string{"jos"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractMentions(tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractMentionsIsPure(t *testing.T) {
	text := "hey @bob and @alice"
	first := ExtractMentions(text)
	second := ExtractMentions(text)
	assert.Equal(t, first, second)
}
