package middleware

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMessageContent(t *testing.T) {
	assert.NoError(t, ValidateMessageContent("surf trip to Portugal"))
	assert.Error(t, ValidateMessageContent(""))
	assert.Error(t, ValidateMessageContent(strings.Repeat("a", 8193)))
	assert.Error(t, ValidateMessageContent("bad \xff utf8"))
}

func TestValidateConversationID(t *testing.T) {
	assert.NoError(t, ValidateConversationID("0190a6a0-1234-7abc-8def-0123456789ab"))
	assert.Error(t, ValidateConversationID("not-a-uuid"))
	assert.Error(t, ValidateConversationID(""))
}

func TestValidateGroupID(t *testing.T) {
	assert.NoError(t, ValidateGroupID(""))
	assert.NoError(t, ValidateGroupID("group-1"))
	assert.Error(t, ValidateGroupID(strings.Repeat("g", 65)))
}
