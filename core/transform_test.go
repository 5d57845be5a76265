package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type markTransformer struct {
	key string
	err error
}

func (m *markTransformer) Transform(s *Session) error {
	if m.err != nil {
		return m.err
	}
	s.Messages = append(s.Messages, Message{ID: m.key})
	return nil
}

func TestChain(t *testing.T) {
	t.Run("applies in order", func(t *testing.T) {
		s := &Session{}
		err := Chain(s, &markTransformer{key: "a"}, &markTransformer{key: "b"})
		require.NoError(t, err)
		require.Len(t, s.Messages, 2)
		assert.Equal(t, "a", s.Messages[0].ID)
		assert.Equal(t, "b", s.Messages[1].ID)
	})

	t.Run("stops at first error", func(t *testing.T) {
		s := &Session{}
		boom := errors.New("boom")
		err := Chain(s, &markTransformer{key: "a"}, &markTransformer{err: boom}, &markTransformer{key: "c"})
		require.ErrorIs(t, err, boom)
		assert.Len(t, s.Messages, 1)
	})
}
