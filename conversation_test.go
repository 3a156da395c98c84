package parley_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/parleychat/parley"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversation_Defaults(t *testing.T) {
	t.Parallel()

	conv := parley.NewConversation()

	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, parley.DefaultTitle, conv.Title)
	assert.Empty(t, conv.Messages)
	assert.Empty(t, conv.Tags)
	assert.False(t, conv.LastUpdated.IsZero())
}

func TestAddMessage_AppendsInOrder(t *testing.T) {
	t.Parallel()

	conv := parley.NewConversation()
	m1 := conv.AddMessage(parley.RoleUser, "first")
	m2 := conv.AddMessage(parley.RoleUser, "second")
	m3 := conv.AddMessage(parley.RoleUser, "third")

	require.Len(t, conv.Messages, 3)
	assert.Equal(t, []string{"first", "second", "third"},
		[]string{conv.Messages[0].Content, conv.Messages[1].Content, conv.Messages[2].Content})
	assert.NotEqual(t, m1.ID, m2.ID)
	assert.NotEqual(t, m2.ID, m3.ID)
	assert.False(t, m1.CreatedAt.IsZero())
}

func TestAddMessage_BumpsLastUpdated(t *testing.T) {
	t.Parallel()

	conv := parley.NewConversation()
	before := conv.LastUpdated
	conv.AddMessage(parley.RoleUser, "hello")

	assert.False(t, conv.LastUpdated.Before(before))
}

func TestTitle_DerivedFromFirstAssistantMessage(t *testing.T) {
	t.Parallel()

	conv := parley.NewConversation()
	conv.AddMessage(parley.RoleUser, "What is Go?")
	assert.Equal(t, parley.DefaultTitle, conv.Title, "user messages never derive the title")

	conv.AddMessage(parley.RoleAssistant, "Go is a programming language.")
	assert.Equal(t, "Go is a programming language.", conv.Title)
}

func TestTitle_DerivedOnlyOnce(t *testing.T) {
	t.Parallel()

	conv := parley.NewConversation()
	conv.AddMessage(parley.RoleAssistant, "First reply")
	conv.AddMessage(parley.RoleAssistant, "Second reply")

	assert.Equal(t, "First reply", conv.Title)
}

func TestTitle_TruncatedWithEllipsis(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 60)
	conv := parley.NewConversation()
	conv.AddMessage(parley.RoleAssistant, long)

	assert.Equal(t, strings.Repeat("a", 50)+"...", conv.Title)
}

func TestTitle_ExactlyFiftyNotTruncated(t *testing.T) {
	t.Parallel()

	exact := strings.Repeat("b", 50)
	conv := parley.NewConversation()
	conv.AddMessage(parley.RoleAssistant, exact)

	assert.Equal(t, exact, conv.Title)
}

func TestTitle_TruncationIsGraphemeSafe(t *testing.T) {
	t.Parallel()

	// 60 family emoji: each is one grapheme cluster but many bytes. The
	// cut must never split a cluster.
	emoji := "👨‍👩‍👧‍👦"
	conv := parley.NewConversation()
	conv.AddMessage(parley.RoleAssistant, strings.Repeat(emoji, 60))

	assert.Equal(t, strings.Repeat(emoji, 50)+"...", conv.Title)
}

func TestTitle_FirstLineOnly(t *testing.T) {
	t.Parallel()

	conv := parley.NewConversation()
	conv.AddMessage(parley.RoleAssistant, "Short answer.\nWith a much longer second line that should not appear.")

	assert.Equal(t, "Short answer.", conv.Title)
}

func TestTitle_ImmuneToLaterEdits(t *testing.T) {
	t.Parallel()

	conv := parley.NewConversation()
	msg := conv.AddMessage(parley.RoleAssistant, "Original title text")
	conv.UpdateMessage(msg.ID, "Edited content that must not retitle")

	assert.Equal(t, "Original title text", conv.Title)
}

func TestUpdateMessage_ReplacesContentAndMarksEdited(t *testing.T) {
	t.Parallel()

	conv := parley.NewConversation()
	msg := conv.AddMessage(parley.RoleUser, "draft")
	conv.UpdateMessage(msg.ID, "final")

	assert.Equal(t, "final", msg.Content)
	assert.True(t, msg.Edited)
	assert.False(t, msg.EditedAt.IsZero())
}

func TestUpdateMessage_UnknownIDIsNoOp(t *testing.T) {
	t.Parallel()

	conv := parley.NewConversation()
	conv.AddMessage(parley.RoleUser, "hello")
	before := conv.LastUpdated

	conv.UpdateMessage("no-such-id", "ignored")

	assert.Equal(t, "hello", conv.Messages[0].Content)
	assert.False(t, conv.Messages[0].Edited)
	assert.Equal(t, before, conv.LastUpdated)
}

func TestUpdateMessage_PreservesOrder(t *testing.T) {
	t.Parallel()

	conv := parley.NewConversation()
	conv.AddMessage(parley.RoleUser, "a")
	mid := conv.AddMessage(parley.RoleUser, "b")
	conv.AddMessage(parley.RoleUser, "c")

	conv.UpdateMessage(mid.ID, "B")

	assert.Equal(t, []string{"a", "B", "c"},
		[]string{conv.Messages[0].Content, conv.Messages[1].Content, conv.Messages[2].Content})
}

func TestContext_ProjectsRoleAndContent(t *testing.T) {
	t.Parallel()

	conv := parley.NewConversation()
	conv.AddMessage(parley.RoleUser, "question")
	conv.AddMessage(parley.RoleAssistant, "answer")

	got := slices.Collect(conv.Context())

	require.Len(t, got, 2)
	assert.Equal(t, parley.ContextMessage{Role: parley.RoleUser, Content: "question"}, got[0])
	assert.Equal(t, parley.ContextMessage{Role: parley.RoleAssistant, Content: "answer"}, got[1])
}

func TestContext_Restartable(t *testing.T) {
	t.Parallel()

	conv := parley.NewConversation()
	conv.AddMessage(parley.RoleUser, "one")
	conv.AddMessage(parley.RoleUser, "two")

	seq := conv.Context()
	first := slices.Collect(seq)
	second := slices.Collect(seq)

	assert.Equal(t, first, second)
}

func TestContext_EarlyBreak(t *testing.T) {
	t.Parallel()

	conv := parley.NewConversation()
	conv.AddMessage(parley.RoleUser, "one")
	conv.AddMessage(parley.RoleUser, "two")

	var got []parley.ContextMessage
	for cm := range conv.Context() {
		got = append(got, cm)
		break
	}

	require.Len(t, got, 1)
	assert.Equal(t, "one", got[0].Content)
}

func TestTags_SetSemantics(t *testing.T) {
	t.Parallel()

	conv := parley.NewConversation()
	conv.AddTag("go")
	conv.AddTag("chat")
	conv.AddTag("go") // duplicate

	assert.ElementsMatch(t, []string{"go", "chat"}, conv.Tags)

	conv.RemoveTag("go")
	assert.Equal(t, []string{"chat"}, conv.Tags)

	conv.RemoveTag("absent") // no-op
	assert.Equal(t, []string{"chat"}, conv.Tags)
}

func TestLastMessage(t *testing.T) {
	t.Parallel()

	conv := parley.NewConversation()
	assert.Nil(t, conv.LastMessage())

	conv.AddMessage(parley.RoleUser, "first")
	last := conv.AddMessage(parley.RoleAssistant, "second")

	assert.Same(t, last, conv.LastMessage())
}
