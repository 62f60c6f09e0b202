package compress

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/taskforce/core"
	"github.com/hupe1980/taskforce/model"
	"github.com/hupe1980/taskforce/tokenizer"
)

func transcript() []core.Message {
	return []core.Message{
		core.NewSystemMessage("you are a researcher"),
		core.NewUserMessage("find the population of Lisbon"),
		core.NewAssistantMessage(`<tool>{"name":"put_database","args":{"content":"545k"}}</tool>`),
		core.NewUserMessage("<result>Agent a stored data into database with ID: 1a2b3c4d</result>"),
	}
}

func TestShouldCompress(t *testing.T) {
	m := model.NewMockModel("mock")
	msgs := transcript()
	size := tokenizer.HeuristicCounter{}.CountMessages(msgs)

	below := New(m, func(o *Options) { o.Threshold = size })
	assert.False(t, below.ShouldCompress(msgs))

	above := New(m, func(o *Options) { o.Threshold = size - 1 })
	assert.True(t, above.ShouldCompress(msgs))

	assert.Equal(t, DefaultThreshold, New(m).Threshold())
	assert.Equal(t, 0, m.Calls(), "deciding never calls the model")
}

func TestCompress(t *testing.T) {
	m := model.NewMockModel("mock", "**PROGRESS MADE:** population stored as 1a2b3c4d")
	c := New(m)

	out, err := c.Compress(context.Background(), transcript(), "you are a researcher")
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, core.NewSystemMessage("you are a researcher"), out[0])
	assert.Equal(t, core.RoleUser, out[1].Role)
	assert.True(t, strings.HasPrefix(out[1].Content, "CONTEXT SUMMARY:\n**PROGRESS MADE:** population stored as 1a2b3c4d"))
	assert.True(t, strings.HasSuffix(out[1].Content, ResumeInstruction))

	require.Equal(t, 1, m.Calls())
	req := m.Requests()[0]
	require.Len(t, req.Messages, 2)
	assert.Equal(t, DigestSystemPrompt, req.Messages[0].Content)

	prompt := req.Messages[1].Content
	for _, heading := range []string{"PROGRESS MADE", "DATABASE STORAGE", "TASK ASSIGNMENTS", "NEXT STEPS"} {
		assert.Contains(t, prompt, heading)
	}
	assert.Contains(t, prompt, "USER: find the population of Lisbon")
	assert.Contains(t, prompt, "ASSISTANT: <tool>")
	assert.NotContains(t, prompt, "SYSTEM: you are a researcher")
}

func TestCompress_ModelFailure(t *testing.T) {
	m := model.NewMockModel("mock").AddError(errors.New("overloaded"))

	_, err := New(m).Compress(context.Background(), transcript(), "sys")
	assert.ErrorIs(t, err, core.ErrModelCall)
}
