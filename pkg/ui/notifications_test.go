package ui

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNotifierTypes(t *testing.T) {
	n := NewNotifier("none")
	assert.True(t, n.silent)
	assert.Nil(t, n.sender)

	n = NewNotifier("terminal")
	assert.False(t, n.silent)
	assert.Nil(t, n.sender)

	n = NewNotifier("desktop")
	assert.False(t, n.silent)
	switch runtime.GOOS {
	case "linux", "darwin", "windows":
		assert.NotNil(t, n.sender)
	default:
		assert.Nil(t, n.sender)
	}

	// Unknown types behave like terminal
	n = NewNotifier("carrier-pigeon")
	assert.False(t, n.silent)
	assert.Nil(t, n.sender)
}

type recordingSender struct {
	titles []string
}

func (r *recordingSender) Send(title, message string) error {
	r.titles = append(r.titles, title)
	return nil
}

func TestNotifierSilentDropsEverything(t *testing.T) {
	rec := &recordingSender{}
	n := &Notifier{sender: rec, silent: true}

	n.SendNotification("a", "b")
	n.SendSuccess("c", "d")
	n.SendError("e", "f")

	assert.Empty(t, rec.titles)
}

func TestNotifierForwardsToSender(t *testing.T) {
	SetQuietMode(true)
	defer SetQuietMode(false)

	rec := &recordingSender{}
	n := &Notifier{sender: rec}

	n.SendNotification("paused", "backing off")
	n.SendSuccess("done", "rated")

	assert.Equal(t, []string{"paused", "done"}, rec.titles)
}
